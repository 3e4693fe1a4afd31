package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/vito/natded/pkg/hm"
	"github.com/vito/natded/pkg/tsast"
)

// Builtin checks programs in-process. It understands the subset of
// TypeScript the compiler emits: arrows, calls and the primitive type
// aliases. Axiom declarations are trusted at their signatures.
type Builtin struct {
	Logger *slog.Logger
}

var _ Oracle = (*Builtin)(nil)

func (b *Builtin) Name() string {
	return "builtin"
}

func (b *Builtin) Check(ctx context.Context, prog *tsast.Program) (*Report, error) {
	log := b.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	fresher := hm.NewSimpleFresher()
	c := &checker{
		prog:    prog,
		fresher: fresher,
		unifier: hm.NewUnifier(fresher),
		aliases: map[string]bool{},
	}
	top := &scope{
		env:      hm.NewSimpleEnv(),
		types:    map[string]hm.Type{},
		declared: map[string]bool{},
	}
	for _, s := range prog.File.Stmts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.topLevel(top, s)
	}

	log.Debug("builtin check done", "statements", len(prog.File.Stmts), "diagnostics", len(c.diags))
	return &Report{Diagnostics: c.diags}, nil
}

// Diagnostic codes follow tsc's where an equivalent exists.
const (
	codeCannotFindName     = "TS2304"
	codeNotGeneric         = "TS2315"
	codeTypeArgCount       = "TS2314"
	codeNotAssignable      = "TS2322"
	codeArgNotAssignable   = "TS2345"
	codeNotCallable        = "TS2349"
	codeMustReturn         = "TS2355"
	codeRedeclared         = "TS2451"
	codeArgCount           = "TS2554"
	codeCallTypeArgCount   = "TS2558"
	codeUnsupportedFeature = "ND1000"
)

// primitiveAliases are the type aliases the checker interprets, with their
// arity.
var primitiveAliases = map[string]int{
	"True":  0,
	"False": 0,
	"And":   2,
	"Or":    2,
	"Impl":  2,
	"Not":   1,
	"Apply": 2,
}

var trueType = hm.NewTypeConst("True", 0)

type checker struct {
	prog    *tsast.Program
	fresher *hm.SimpleFresher
	unifier *hm.Unifier
	aliases map[string]bool
	diags   []Diagnostic
}

type scope struct {
	env      hm.Env
	types    map[string]hm.Type
	declared map[string]bool
}

func (sc *scope) extend(names []string, types []hm.Type) *scope {
	child := &scope{
		env:      sc.env.Extend(),
		types:    maps.Clone(sc.types),
		declared: map[string]bool{},
	}
	for i, name := range names {
		child.types[name] = types[i]
	}
	return child
}

// errorf records a diagnostic positioned at n and returns any, so checking
// continues past the error.
func (c *checker) errorf(n tsast.Node, code, format string, args ...any) hm.Type {
	offset := -1
	if pos, ok := c.prog.PositionOf(n); ok {
		offset = pos.Offset
	}
	d := diagnosticAt(c.prog, offset, code, fmt.Sprintf(format, args...))
	if o := tsast.OriginOf(n); o != nil {
		d.Origin = o
	}
	c.diags = append(c.diags, d)
	return hm.Any
}

func (c *checker) topLevel(sc *scope, s tsast.Stmt) {
	if alias, ok := s.(*tsast.TypeAlias); ok {
		if _, known := primitiveAliases[alias.Name]; !known {
			c.errorf(alias, codeUnsupportedFeature, "Unsupported type alias '%s'.", alias.Name)
			return
		}
		c.aliases[alias.Name] = true
		return
	}
	c.stmt(sc, s)
}

func (c *checker) stmt(sc *scope, s tsast.Stmt) {
	switch s := s.(type) {
	case *tsast.Const:
		t := c.constType(sc, s)
		if sc.declared[s.Name] {
			c.errorf(s, codeRedeclared, "Cannot redeclare block-scoped variable '%s'.", s.Name)
		}
		sc.declared[s.Name] = true
		sc.env.Add(s.Name, t)
	case *tsast.ExprStmt:
		c.infer(sc, s.Expr)
	default:
		c.errorf(s, codeUnsupportedFeature, "Unsupported statement.")
	}
}

func (c *checker) constType(sc *scope, s *tsast.Const) hm.Type {
	switch {
	case s.Axiom && s.Signature != nil:
		return c.toType(s, s.Signature, sc.types)
	case s.Declare:
		return c.toType(s, s.Type, sc.types)
	case s.Type != nil:
		t := c.toType(s, s.Type, sc.types)
		c.check(sc, s.Value, t)
		return t
	default:
		return c.unifier.Resolve(c.infer(sc, s.Value))
	}
}

func (c *checker) check(sc *scope, e tsast.Expr, expected hm.Type) {
	t := c.infer(sc, e)
	if err := c.unifier.Assign(t, expected); err != nil {
		c.errorf(e, codeNotAssignable, "%s", err)
	}
}

func (c *checker) infer(sc *scope, e tsast.Expr) hm.Type {
	switch e := e.(type) {
	case *tsast.Ident:
		t, ok := sc.env.TypeOf(e.Name)
		if !ok {
			return c.errorf(e, codeCannotFindName, "Cannot find name '%s'.", e.Name)
		}
		return t
	case *tsast.Paren:
		return c.infer(sc, e.Expr)
	case *tsast.Arrow:
		return c.arrow(sc, e)
	case *tsast.Call:
		return c.call(sc, e)
	}
	return c.errorf(e, codeUnsupportedFeature, "Unsupported expression '%s'.", tsast.ExprString(e))
}

func (c *checker) arrow(sc *scope, e *tsast.Arrow) hm.Type {
	vars := make([]hm.TypeVariable, len(e.TypeParams))
	skolems := make([]hm.Type, len(e.TypeParams))
	abstract := make(map[hm.TypeConst]hm.TypeVariable, len(e.TypeParams))
	for i, name := range e.TypeParams {
		vars[i] = c.fresher.Fresh()
		sk := c.fresher.Skolem(name)
		skolems[i] = sk
		abstract[sk] = vars[i]
	}
	inner := sc.extend(e.TypeParams, skolems)

	if len(e.Params) > 1 {
		return c.errorf(e, codeUnsupportedFeature, "Unsupported arrow with %d parameters.", len(e.Params))
	}
	var arg hm.Type
	if len(e.Params) == 1 {
		param := e.Params[0]
		arg = c.toType(e, param.Type, inner.types)
		inner.env.Add(param.Name, arg)
		inner.declared[param.Name] = true
	}

	var ret hm.Type
	if e.Ret != nil {
		ret = c.toType(e, e.Ret, inner.types)
		c.body(inner, e, ret)
	} else {
		ret = c.body(inner, e, nil)
	}

	fn := c.unifier.Resolve(hm.NewFnType(arg, ret))
	if len(vars) == 0 {
		return fn
	}
	return hm.NewForallType(e.TypeParams, vars, hm.Abstract(fn, abstract))
}

// body checks an arrow body against expected, or infers its type when
// expected is nil.
func (c *checker) body(sc *scope, e *tsast.Arrow, expected hm.Type) hm.Type {
	switch b := e.Body.(type) {
	case *tsast.Block:
		blk := sc.extend(nil, nil)
		for _, s := range b.Stmts {
			ret, ok := s.(*tsast.Return)
			if !ok {
				c.stmt(blk, s)
				continue
			}
			if expected != nil {
				c.check(blk, ret.Expr, expected)
				return expected
			}
			return c.infer(blk, ret.Expr)
		}
		if expected != nil {
			return c.errorf(e, codeMustReturn, "A function whose declared type is neither 'undefined', 'void', nor 'any' must return a value.")
		}
		return hm.NewConstructorType("void")
	case tsast.Expr:
		if expected != nil {
			c.check(sc, b, expected)
			return expected
		}
		return c.infer(sc, b)
	}
	return c.errorf(e, codeUnsupportedFeature, "Unsupported arrow body.")
}

func (c *checker) call(sc *scope, e *tsast.Call) hm.Type {
	fnType := c.unifier.Resolve(c.infer(sc, e.Fn))

	if len(e.TypeArgs) > 0 && !fnType.Eq(hm.Any) {
		fa, ok := fnType.(*hm.ForallType)
		if !ok || len(fa.TypeVars()) != len(e.TypeArgs) {
			want := 0
			if ok {
				want = len(fa.TypeVars())
			}
			c.errorf(e, codeCallTypeArgCount, "Expected %d type arguments, but got %d.", want, len(e.TypeArgs))
			fnType = hm.Any
		} else {
			args := make([]hm.Type, len(e.TypeArgs))
			for i, t := range e.TypeArgs {
				args[i] = c.toType(e, t, sc.types)
			}
			fnType = hm.InstantiateWith(fa, args...)
		}
	}

	for {
		fa, ok := fnType.(*hm.ForallType)
		if !ok {
			break
		}
		fnType = hm.Instantiate(c.fresher, fa)
	}

	var ft *hm.FunctionType
	switch t := fnType.(type) {
	case hm.AnyType:
		for _, a := range e.Args {
			c.infer(sc, a)
		}
		return hm.Any
	case hm.TypeVariable:
		var arg hm.Type
		if len(e.Args) > 0 {
			arg = c.fresher.Fresh()
		}
		ft = hm.NewFnType(arg, c.fresher.Fresh())
		if err := c.unifier.Assign(t, ft); err != nil {
			return c.errorf(e, codeNotCallable, "This expression is not callable.")
		}
	case *hm.FunctionType:
		ft = t
	default:
		return c.errorf(e, codeNotCallable, "This expression is not callable.\n  Type '%s' has no call signatures.", fnType)
	}

	want := 0
	if ft.Arg() != nil {
		want = 1
	}
	if len(e.Args) != want {
		for _, a := range e.Args {
			c.infer(sc, a)
		}
		return c.errorf(e, codeArgCount, "Expected %d arguments, but got %d.", want, len(e.Args))
	}
	if want == 1 {
		arg := e.Args[0]
		argType := c.infer(sc, arg)
		if err := c.unifier.Assign(argType, ft.Arg()); err != nil {
			var ue hm.UnificationError
			if errors.As(err, &ue) && ue.Src != nil {
				c.errorf(arg, codeArgNotAssignable, "Argument of type '%s' is not assignable to parameter of type '%s'.",
					c.unifier.Resolve(argType), c.unifier.Resolve(ft.Arg()))
			} else {
				c.errorf(arg, codeArgNotAssignable, "%s", err)
			}
		}
	}
	return c.unifier.Resolve(ft.Ret())
}

// toType converts a type annotation. at positions any diagnostic.
func (c *checker) toType(at tsast.Node, t tsast.Type, types map[string]hm.Type) hm.Type {
	switch t := t.(type) {
	case *tsast.TypeRef:
		if ty, ok := types[t.Name]; ok {
			if len(t.Args) > 0 {
				return c.errorf(at, codeNotGeneric, "Type '%s' is not generic.", t.Name)
			}
			return ty
		}
		arity, known := primitiveAliases[t.Name]
		if !known || !c.aliases[t.Name] {
			return c.errorf(at, codeCannotFindName, "Cannot find name '%s'.", t.Name)
		}
		if len(t.Args) != arity {
			return c.errorf(at, codeTypeArgCount, "Generic type '%s' requires %d type argument(s).", t.Name, arity)
		}
		args := make([]hm.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = c.toType(at, a, types)
		}
		switch t.Name {
		case "True":
			return trueType
		case "False":
			return hm.Bottom
		case "Impl":
			return hm.NewFnType(args[0], args[1])
		case "Not":
			return hm.NewFnType(args[0], hm.Bottom)
		}
		return hm.NewConstructorType(t.Name, args...)
	case *tsast.FuncType:
		return c.funcType(at, t, types)
	case *tsast.KeywordType:
		switch t.Keyword {
		case "never":
			return hm.Bottom
		case "any":
			return hm.Any
		}
	}
	return c.errorf(at, codeUnsupportedFeature, "Unsupported type '%s'.", tsast.TypeString(t))
}

func (c *checker) funcType(at tsast.Node, t *tsast.FuncType, types map[string]hm.Type) hm.Type {
	if len(t.Params) > 1 {
		return c.errorf(at, codeUnsupportedFeature, "Unsupported function type with %d parameters.", len(t.Params))
	}
	vars := make([]hm.TypeVariable, len(t.TypeParams))
	inner := maps.Clone(types)
	if inner == nil {
		inner = map[string]hm.Type{}
	}
	for i, name := range t.TypeParams {
		vars[i] = c.fresher.Fresh()
		inner[name] = vars[i]
	}
	var arg hm.Type
	if len(t.Params) == 1 {
		arg = c.toType(at, t.Params[0].Type, inner)
	}
	fn := hm.NewFnType(arg, c.toType(at, t.Ret, inner))
	if len(vars) == 0 {
		return fn
	}
	return hm.NewForallType(t.TypeParams, vars, fn)
}
