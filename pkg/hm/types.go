package hm

import (
	"fmt"
	"strings"
)

// Type represents all possible type constructors
type Type interface {
	Substitutable
	Name() string
	Eq(Type) bool
	fmt.Stringer
}

// Substitutable is any type that can have substitutions applied and knows its free type variables
type Substitutable interface {
	Apply(Subs) Substitutable
	FreeTypeVar() TypeVarSet
}

// TypeVariable is a unification variable.
type TypeVariable int

func (tv TypeVariable) Name() string {
	return fmt.Sprintf("t%d", int(tv))
}

func (tv TypeVariable) Apply(subs Subs) Substitutable {
	if t, exists := subs[tv]; exists {
		return t
	}
	return tv
}

func (tv TypeVariable) FreeTypeVar() TypeVarSet {
	return NewTypeVarSet(tv)
}

func (tv TypeVariable) Eq(other Type) bool {
	if ot, ok := other.(TypeVariable); ok {
		return tv == ot
	}
	return false
}

func (tv TypeVariable) String() string {
	return "unknown"
}

// TypeConst is a rigid type: a named constant such as True, or a type
// parameter while the body that declares it is being checked. Constants with
// the same name but different IDs are different types.
type TypeConst struct {
	name string
	id   int
}

// NewTypeConst creates a constant. ID 0 is reserved for global constants.
func NewTypeConst(name string, id int) TypeConst {
	return TypeConst{name: name, id: id}
}

func (tc TypeConst) Name() string {
	return tc.name
}

func (tc TypeConst) Apply(Subs) Substitutable {
	return tc
}

func (tc TypeConst) FreeTypeVar() TypeVarSet {
	return NewTypeVarSet()
}

func (tc TypeConst) Eq(other Type) bool {
	if ot, ok := other.(TypeConst); ok {
		return tc == ot
	}
	return false
}

func (tc TypeConst) String() string {
	return tc.name
}

// FunctionType represents a function type. A nil arg is a function of no
// parameters.
type FunctionType struct {
	arg Type
	ret Type
}

func NewFnType(arg, ret Type) *FunctionType {
	return &FunctionType{arg: arg, ret: ret}
}

func (ft *FunctionType) Name() string {
	return ft.String()
}

func (ft *FunctionType) Apply(subs Subs) Substitutable {
	result := &FunctionType{ret: ft.ret.Apply(subs).(Type)}
	if ft.arg != nil {
		result.arg = ft.arg.Apply(subs).(Type)
	}
	return result
}

func (ft *FunctionType) FreeTypeVar() TypeVarSet {
	result := ft.ret.FreeTypeVar()
	if ft.arg != nil {
		result = result.Union(ft.arg.FreeTypeVar())
	}
	return result
}

func (ft *FunctionType) Eq(other Type) bool {
	ot, ok := other.(*FunctionType)
	if !ok {
		return false
	}
	if (ft.arg == nil) != (ot.arg == nil) {
		return false
	}
	if ft.arg != nil && !ft.arg.Eq(ot.arg) {
		return false
	}
	return ft.ret.Eq(ot.ret)
}

func (ft *FunctionType) String() string {
	if ft.arg == nil {
		return fmt.Sprintf("() => %s", ft.ret)
	}
	return fmt.Sprintf("(_: %s) => %s", ft.arg, ft.ret)
}

// Arg returns the argument type, or nil for a function of no parameters.
func (ft *FunctionType) Arg() Type {
	return ft.arg
}

// Ret returns the return type.
func (ft *FunctionType) Ret() Type {
	return ft.ret
}

// ConstructorType is a named type applied to arguments, covariant in each.
type ConstructorType struct {
	name string
	args Types
}

func NewConstructorType(name string, args ...Type) *ConstructorType {
	return &ConstructorType{name: name, args: args}
}

func (ct *ConstructorType) Name() string {
	return ct.name
}

func (ct *ConstructorType) Args() Types {
	return ct.args
}

func (ct *ConstructorType) Apply(subs Subs) Substitutable {
	args := make(Types, len(ct.args))
	for i, a := range ct.args {
		args[i] = a.Apply(subs).(Type)
	}
	return &ConstructorType{name: ct.name, args: args}
}

func (ct *ConstructorType) FreeTypeVar() TypeVarSet {
	result := NewTypeVarSet()
	for _, a := range ct.args {
		result = result.Union(a.FreeTypeVar())
	}
	return result
}

func (ct *ConstructorType) Eq(other Type) bool {
	ot, ok := other.(*ConstructorType)
	if !ok || ot.name != ct.name || len(ot.args) != len(ct.args) {
		return false
	}
	for i := range ct.args {
		if !ct.args[i].Eq(ot.args[i]) {
			return false
		}
	}
	return true
}

func (ct *ConstructorType) String() string {
	if len(ct.args) == 0 {
		return ct.name
	}
	args := make([]string, len(ct.args))
	for i, a := range ct.args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", ct.name, strings.Join(args, ", "))
}

// BottomType is the uninhabited type, assignable to every type.
type BottomType struct{}

// Bottom is the only BottomType value.
var Bottom Type = BottomType{}

func (BottomType) Name() string               { return "never" }
func (b BottomType) Apply(Subs) Substitutable { return b }
func (BottomType) FreeTypeVar() TypeVarSet    { return NewTypeVarSet() }
func (BottomType) Eq(other Type) bool         { _, ok := other.(BottomType); return ok }
func (BottomType) String() string             { return "never" }

// AnyType is the dynamic type: assignable to and from every type.
type AnyType struct{}

// Any is the only AnyType value.
var Any Type = AnyType{}

func (AnyType) Name() string               { return "any" }
func (a AnyType) Apply(Subs) Substitutable { return a }
func (AnyType) FreeTypeVar() TypeVarSet    { return NewTypeVarSet() }
func (AnyType) Eq(other Type) bool         { _, ok := other.(AnyType); return ok }
func (AnyType) String() string             { return "any" }

// Types represents a slice of types
type Types []Type
