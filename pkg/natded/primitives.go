package natded

import (
	"github.com/vito/natded/pkg/tsast"
)

// PrimitiveKind classifies library declarations.
type PrimitiveKind int

const (
	// TypeDecl declares the encoding of a connective. Type declarations are
	// always emitted.
	TypeDecl PrimitiveKind = iota
	// Axiom is an inference rule trusted by its signature.
	Axiom
	// Derived is an inference rule whose body is checked like any proof.
	Derived
	// Alias is another name for a primitive.
	Alias
)

func (k PrimitiveKind) String() string {
	switch k {
	case TypeDecl:
		return "type"
	case Axiom:
		return "axiom"
	case Derived:
		return "derived"
	case Alias:
		return "alias"
	}
	return "unknown"
}

// Primitive is one declaration of the primitive library.
type Primitive struct {
	Name string
	Kind PrimitiveKind
	// Requires lists primitives the declaration refers to.
	Requires []string
	// SystemF marks declarations only emitted in System F mode.
	SystemF bool
	// Warning, if set, is reported every time the primitive is used.
	Warning string

	decl func() tsast.Stmt
}

// Decl builds a fresh copy of the declaration.
func (p *Primitive) Decl() tsast.Stmt {
	return p.decl()
}

var (
	tA     = tsast.Ref("A")
	tB     = tsast.Ref("B")
	tC     = tsast.Ref("C")
	tP     = tsast.Ref("P")
	tTrue  = tsast.Ref("True")
	tFalse = tsast.Ref("False")
)

func param(name string, t tsast.Type) tsast.Param {
	return tsast.Param{Name: name, Type: t}
}

func params(name string, t tsast.Type) []tsast.Param {
	return []tsast.Param{param(name, t)}
}

func and(a, b tsast.Type) tsast.Type  { return tsast.Ref("And", a, b) }
func or(a, b tsast.Type) tsast.Type   { return tsast.Ref("Or", a, b) }
func impl(a, b tsast.Type) tsast.Type { return tsast.Ref("Impl", a, b) }
func not(a tsast.Type) tsast.Type     { return tsast.Ref("Not", a) }

func call(fn string, args ...tsast.Expr) *tsast.Call {
	return &tsast.Call{Fn: tsast.Id(fn), Args: args}
}

func typeAlias(name string, tps []string, t tsast.Type) func() tsast.Stmt {
	return func() tsast.Stmt {
		return &tsast.TypeAlias{Name: name, TypeParams: tps, Type: t}
	}
}

func axiom(name string, sig tsast.Type, value func() tsast.Expr) func() tsast.Stmt {
	return func() tsast.Stmt {
		return &tsast.Const{Name: name, Value: value(), Axiom: true, Signature: sig}
	}
}

func derived(name string, value func() tsast.Expr) func() tsast.Stmt {
	return func() tsast.Stmt {
		return &tsast.Const{Name: name, Value: value()}
	}
}

func alias(name, target string) *Primitive {
	return &Primitive{
		Name:     name,
		Kind:     Alias,
		Requires: []string{target},
		decl: func() tsast.Stmt {
			return &tsast.Const{Name: name, Value: tsast.Id(target)}
		},
	}
}

// Library lists every primitive in emission order.
var Library = []*Primitive{
	{Name: "True", Kind: TypeDecl, decl: typeAlias("True", nil, &tsast.StringLitType{Value: "true_"})},
	{Name: "False", Kind: TypeDecl, decl: typeAlias("False", nil, &tsast.KeywordType{Keyword: "never"})},
	{Name: "And", Kind: TypeDecl, decl: typeAlias("And", []string{"A", "B"}, &tsast.TupleType{Elems: []tsast.Type{tA, tB}})},
	{Name: "Or", Kind: TypeDecl, decl: typeAlias("Or", []string{"A", "B"}, &tsast.UnionType{Members: []tsast.Type{
		&tsast.ObjectType{Props: []tsast.PropSig{
			{Name: "_isLeft", Type: &tsast.BoolLitType{Value: true}},
			{Name: "left", Type: tA},
		}},
		&tsast.ObjectType{Props: []tsast.PropSig{
			{Name: "_isLeft", Type: &tsast.BoolLitType{Value: false}},
			{Name: "right", Type: tB},
		}},
	}})},
	{Name: "Impl", Kind: TypeDecl, decl: typeAlias("Impl", []string{"A", "B"}, &tsast.FuncType{Params: params("_", tA), Ret: tB})},
	{Name: "Not", Kind: TypeDecl, decl: typeAlias("Not", []string{"P"}, impl(tP, tFalse))},
	{Name: "Apply", Kind: TypeDecl, SystemF: true, decl: typeAlias("Apply", []string{"P", "A"}, &tsast.TupleType{Elems: []tsast.Type{
		&tsast.StringLitType{Value: "apply"}, tP, tA,
	}})},

	{Name: "trueIntro", Kind: Axiom, decl: func() tsast.Stmt {
		return &tsast.Const{
			Name:      "trueIntro",
			Type:      tTrue,
			Value:     &tsast.StringLit{Value: "true_"},
			Axiom:     true,
			Signature: tTrue,
		}
	}},
	{Name: "falseElim", Kind: Axiom, decl: axiom("falseElim",
		&tsast.FuncType{TypeParams: []string{"P"}, Params: params("_", tFalse), Ret: tP},
		func() tsast.Expr {
			return &tsast.Arrow{
				TypeParams: []string{"P"},
				Params:     params("_", tFalse),
				Body:       &tsast.As{Expr: &tsast.StringLit{Value: "never"}, Type: tP},
			}
		})},
	{Name: "andIntro", Kind: Axiom, decl: axiom("andIntro",
		&tsast.FuncType{TypeParams: []string{"A"}, Params: params("left", tA), Ret: &tsast.FuncType{
			TypeParams: []string{"B"}, Params: params("right", tB), Ret: and(tA, tB),
		}},
		func() tsast.Expr {
			return &tsast.Arrow{
				TypeParams: []string{"A"},
				Params:     params("left", tA),
				Body: &tsast.Arrow{
					TypeParams: []string{"B"},
					Params:     params("right", tB),
					Ret:        and(tA, tB),
					Body:       &tsast.ArrayLit{Elems: []tsast.Expr{tsast.Id("left"), tsast.Id("right")}},
				},
			}
		})},
	{Name: "andElimLeft", Kind: Axiom, decl: axiom("andElimLeft",
		&tsast.FuncType{TypeParams: []string{"A", "B"}, Params: params("and", and(tA, tB)), Ret: tA},
		func() tsast.Expr {
			return &tsast.Arrow{
				TypeParams: []string{"A", "B"},
				Params:     params("and", and(tA, tB)),
				Ret:        tA,
				Body:       &tsast.ElementAccess{Expr: tsast.Id("and"), Index: 0},
			}
		})},
	{Name: "andElimRight", Kind: Axiom, decl: axiom("andElimRight",
		&tsast.FuncType{TypeParams: []string{"A", "B"}, Params: params("and", and(tA, tB)), Ret: tB},
		func() tsast.Expr {
			return &tsast.Arrow{
				TypeParams: []string{"A", "B"},
				Params:     params("and", and(tA, tB)),
				Ret:        tB,
				Body:       &tsast.ElementAccess{Expr: tsast.Id("and"), Index: 1},
			}
		})},
	// orIntroLeft and orIntroRight are named for the side that is supplied.
	{Name: "orIntroLeft", Kind: Axiom, decl: axiom("orIntroLeft",
		&tsast.FuncType{TypeParams: []string{"A", "B"}, Params: params("right", tB), Ret: or(tA, tB)},
		func() tsast.Expr {
			return &tsast.Arrow{
				TypeParams: []string{"A", "B"},
				Params:     params("right", tB),
				Ret:        or(tA, tB),
				Body: &tsast.ObjectLit{Props: []tsast.Prop{
					{Name: "_isLeft", Value: &tsast.BoolLit{Value: false}},
					{Name: "right", Shorthand: true},
				}},
			}
		})},
	{Name: "orIntroRight", Kind: Axiom, decl: axiom("orIntroRight",
		&tsast.FuncType{TypeParams: []string{"A", "B"}, Params: params("left", tA), Ret: or(tA, tB)},
		func() tsast.Expr {
			return &tsast.Arrow{
				TypeParams: []string{"A", "B"},
				Params:     params("left", tA),
				Ret:        or(tA, tB),
				Body: &tsast.ObjectLit{Props: []tsast.Prop{
					{Name: "_isLeft", Value: &tsast.BoolLit{Value: true}},
					{Name: "left", Shorthand: true},
				}},
			}
		})},
	{Name: "implElim", Kind: Axiom, decl: axiom("implElim",
		&tsast.FuncType{TypeParams: []string{"A", "B"}, Params: params("aToB", impl(tA, tB)), Ret: &tsast.FuncType{
			Params: params("a", tA), Ret: tB,
		}},
		func() tsast.Expr {
			return &tsast.Arrow{
				TypeParams: []string{"A", "B"},
				Params:     params("aToB", impl(tA, tB)),
				Body: &tsast.Arrow{
					Params: params("a", tA),
					Ret:    tB,
					Body:   call("aToB", tsast.Id("a")),
				},
			}
		})},
	{Name: "orElim", Kind: Axiom, decl: axiom("orElim",
		&tsast.FuncType{TypeParams: []string{"A", "B"}, Params: params("or", or(tA, tB)), Ret: &tsast.FuncType{
			TypeParams: []string{"C"}, Params: params("aToC", impl(tA, tC)), Ret: &tsast.FuncType{
				Params: params("bToC", impl(tB, tC)), Ret: tC,
			},
		}},
		func() tsast.Expr {
			return &tsast.Arrow{
				TypeParams: []string{"A", "B"},
				Params:     params("or", or(tA, tB)),
				Body: &tsast.Arrow{
					TypeParams: []string{"C"},
					Params:     params("aToC", impl(tA, tC)),
					Body: &tsast.Arrow{
						Params: params("bToC", impl(tB, tC)),
						Ret:    tC,
						Body: &tsast.Conditional{
							Cond: &tsast.PropAccess{Expr: tsast.Id("or"), Name: "_isLeft"},
							Then: call("aToC", &tsast.PropAccess{Expr: tsast.Id("or"), Name: "left"}),
							Else: call("bToC", &tsast.PropAccess{Expr: tsast.Id("or"), Name: "right"}),
						},
					},
				},
			}
		})},
	{Name: "id", Kind: Axiom, decl: axiom("id",
		&tsast.FuncType{TypeParams: []string{"A"}, Params: params("a", tA), Ret: tA},
		func() tsast.Expr {
			return &tsast.Arrow{
				TypeParams: []string{"A"},
				Params:     params("a", tA),
				Ret:        tA,
				Body:       tsast.Id("a"),
			}
		})},
	{Name: "sorry", Kind: Axiom, Warning: "proof uses sorry", decl: func() tsast.Stmt {
		anyType := &tsast.KeywordType{Keyword: "any"}
		return &tsast.Const{Name: "sorry", Type: anyType, Declare: true, Axiom: true, Signature: anyType}
	}},

	// modusTollens only unfolds Not into Impl and applies functions.
	{Name: "modusTollens", Kind: Derived, decl: derived("modusTollens", func() tsast.Expr {
		return &tsast.Arrow{
			TypeParams: []string{"A", "B"},
			Params:     params("aToB", impl(tA, tB)),
			Body: &tsast.Arrow{
				Params: params("notB", not(tB)),
				Ret:    not(tA),
				Body: &tsast.Arrow{
					Params: params("a", tA),
					Body:   call("notB", call("aToB", tsast.Id("a"))),
				},
			},
		}
	})},
	{Name: "notElim", Kind: Derived, Requires: []string{"implElim"}, decl: derived("notElim", func() tsast.Expr {
		return &tsast.Arrow{
			TypeParams: []string{"P"},
			Params:     params("p", tP),
			Body: &tsast.Arrow{
				Params: params("notP", not(tP)),
				Ret:    tFalse,
				Body:   tsast.Apply(call("implElim", tsast.Id("notP")), tsast.Id("p")),
			},
		}
	})},

	alias("true_", "trueIntro"),
	alias("exFalso", "falseElim"),
	alias("absurd", "falseElim"),
	alias("modusPonens", "implElim"),
	alias("exact", "id"),
}

var libraryIndex = func() map[string]*Primitive {
	idx := make(map[string]*Primitive, len(Library))
	for _, p := range Library {
		idx[p.Name] = p
	}
	return idx
}()

// LookupPrimitive finds a library value declaration by name. Type
// declarations are not values and are never returned.
func LookupPrimitive(name string) (*Primitive, bool) {
	p, ok := libraryIndex[name]
	if !ok || p.Kind == TypeDecl {
		return nil, false
	}
	return p, true
}

// SelectPrimitives returns the declarations to emit for the given used
// primitives: every type declaration, plus the used values and everything
// they transitively require, in library order.
func SelectPrimitives(used map[string]bool, systemF bool) []*Primitive {
	keep := map[string]bool{}
	var visit func(string)
	visit = func(name string) {
		if keep[name] {
			return
		}
		p, ok := libraryIndex[name]
		if !ok {
			return
		}
		keep[name] = true
		for _, req := range p.Requires {
			visit(req)
		}
	}
	for name := range used {
		visit(name)
	}

	var out []*Primitive
	for _, p := range Library {
		if p.SystemF && !systemF {
			continue
		}
		if p.Kind == TypeDecl || keep[p.Name] {
			out = append(out, p)
		}
	}
	return out
}
