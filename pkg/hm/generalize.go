package hm

// Instantiate replaces the bound variables of a polymorphic type with fresh
// unification variables.
func Instantiate(fresher Fresher, scheme *ForallType) Type {
	if len(scheme.tvs) == 0 {
		return scheme.t
	}

	subs := NewSubs()
	for _, tv := range scheme.tvs {
		subs.Add(tv, fresher.Fresh())
	}

	return scheme.t.Apply(subs).(Type)
}

// InstantiateWith replaces the bound variables of a polymorphic type with
// the given types, in order.
func InstantiateWith(scheme *ForallType, args ...Type) Type {
	subs := NewSubs()
	for i, tv := range scheme.tvs {
		subs.Add(tv, args[i])
	}
	return scheme.t.Apply(subs).(Type)
}

// Skolemize replaces the bound variables of a polymorphic type with fresh
// rigid constants, returning the constants alongside the body.
func Skolemize(fresher Fresher, scheme *ForallType) ([]TypeConst, Type) {
	subs := NewSubs()
	skolems := make([]TypeConst, len(scheme.tvs))
	for i, tv := range scheme.tvs {
		skolems[i] = fresher.Skolem(scheme.names[i])
		subs.Add(tv, skolems[i])
	}
	return skolems, scheme.t.Apply(subs).(Type)
}

// Abstract replaces each constant in consts with its variable, the inverse
// of Skolemize.
func Abstract(t Type, consts map[TypeConst]TypeVariable) Type {
	switch t := t.(type) {
	case TypeConst:
		if tv, ok := consts[t]; ok {
			return tv
		}
		return t
	case *FunctionType:
		result := &FunctionType{ret: Abstract(t.ret, consts)}
		if t.arg != nil {
			result.arg = Abstract(t.arg, consts)
		}
		return result
	case *ConstructorType:
		args := make(Types, len(t.args))
		for i, a := range t.args {
			args[i] = Abstract(a, consts)
		}
		return &ConstructorType{name: t.name, args: args}
	case *ForallType:
		return &ForallType{names: t.names, tvs: t.tvs, t: Abstract(t.t, consts)}
	}
	return t
}

// Mentions reports whether the constant c occurs in t.
func Mentions(t Type, c TypeConst) bool {
	switch t := t.(type) {
	case TypeConst:
		return t == c
	case *FunctionType:
		return (t.arg != nil && Mentions(t.arg, c)) || Mentions(t.ret, c)
	case *ConstructorType:
		for _, a := range t.args {
			if Mentions(a, c) {
				return true
			}
		}
	case *ForallType:
		return Mentions(t.t, c)
	}
	return false
}

// Fresher interface for generating fresh type variables and constants
type Fresher interface {
	Fresh() TypeVariable
	Skolem(name string) TypeConst
}

// SimpleFresher is a simple implementation of Fresher
type SimpleFresher struct {
	counter int
}

// NewSimpleFresher creates a new SimpleFresher
func NewSimpleFresher() *SimpleFresher {
	return &SimpleFresher{counter: 0}
}

// Fresh generates a fresh type variable
func (f *SimpleFresher) Fresh() TypeVariable {
	f.counter++
	return TypeVariable(f.counter)
}

// Skolem generates a fresh rigid constant printed as name
func (f *SimpleFresher) Skolem(name string) TypeConst {
	f.counter++
	return NewTypeConst(name, f.counter)
}
