package natded

import (
	"fmt"
	"log/slog"

	"github.com/vito/natded/pkg/tsast"
)

// forallElim instantiates a quantified fact at a proposition in System F
// mode: "forallElim E, h" compiles to h<E>().
const forallElim = "forallElim"

// Options configures a compilation.
type Options struct {
	// SystemF enables quantified propositions, generalizations and
	// predicate application.
	SystemF bool
	// Logger receives warnings and debug output. Nil discards.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Result is the output of Transform.
type Result struct {
	// Decls has one declaration per theorem, in source order.
	Decls []tsast.Stmt
	// Used names the primitives referenced by the proofs.
	Used map[string]bool
	// Warnings lists non-fatal problems in source order of discovery.
	Warnings []Warning
}

// Transform generates one declaration per theorem of doc.
func Transform(doc *Document, opts Options) (*Result, error) {
	t := &transformer{
		opts:     opts,
		log:      opts.logger(),
		used:     map[string]bool{},
		warned:   map[Warning]bool{},
		theorems: map[string]bool{},
		thunks:   map[string]bool{},
	}
	for _, thm := range doc.Theorems {
		if thm.Claim.Name != "" {
			t.theorems[EscapeIdent(thm.Claim.Name)] = true
		}
	}

	t.pushScope()
	res := &Result{Used: t.used}
	for _, thm := range doc.Theorems {
		decl, err := t.theorem(thm)
		if err != nil {
			return nil, err
		}
		res.Decls = append(res.Decls, decl)
		if t.frames.Depth() != 0 {
			panic(fmt.Sprintf("natded: %d frames left open after theorem", t.frames.Depth()))
		}
	}
	res.Warnings = t.warnings
	return res, nil
}

type transformer struct {
	opts   Options
	log    *slog.Logger
	frames Frames

	// scopes holds the value bindings of each enclosing function; scopes[0]
	// holds the theorems declared so far.
	scopes []map[string]Location

	// theorems names every theorem in the document.
	theorems map[string]bool
	// thunks names the theorems declared in implication form, which take no
	// value parameters and are called where they are referenced.
	thunks map[string]bool

	used     map[string]bool
	warnings []Warning
	warned   map[Warning]bool
}

func origin(loc Location) *tsast.Origin {
	return &tsast.Origin{Line: loc.Line, Column: loc.Column}
}

func (t *transformer) warn(loc Location, msg string) {
	w := Warning{Location: loc, Message: msg}
	if t.warned[w] {
		return
	}
	t.warned[w] = true
	t.warnings = append(t.warnings, w)
	t.log.Warn(msg, "line", loc.Line, "column", loc.Column)
}

func (t *transformer) pushScope() {
	t.scopes = append(t.scopes, map[string]Location{})
}

func (t *transformer) popScope() {
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// declare binds name in the innermost scope. Rebinding a name within one
// scope is an error; inner scopes may shadow outer ones.
func (t *transformer) declare(name string, loc Location) error {
	top := t.scopes[len(t.scopes)-1]
	if prev, ok := top[name]; ok {
		return &TransformError{
			Location: loc,
			Message:  fmt.Sprintf("%s is already declared (first at line %d, column %d)", name, prev.Line, prev.Column),
		}
	}
	top[name] = loc
	return nil
}

// scopeOf returns the index of the innermost scope binding name, or -1.
func (t *transformer) scopeOf(name string) int {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if _, ok := t.scopes[i][name]; ok {
			return i
		}
	}
	return -1
}

// ref resolves a reference to a binding, theorem or primitive.
func (t *transformer) ref(name string, loc Location) (tsast.Expr, error) {
	name = EscapeIdent(name)
	switch t.scopeOf(name) {
	case 0:
		id := &tsast.Ident{Name: name, Origin: origin(loc)}
		if t.thunks[name] {
			return &tsast.Call{Fn: id, Origin: origin(loc)}, nil
		}
		return id, nil
	case -1:
		if t.theorems[name] {
			return nil, &TransformError{
				Location: loc,
				Message:  fmt.Sprintf("theorem %s is used before it is proved", name),
			}
		}
		if p, ok := LookupPrimitive(name); ok {
			t.used[p.Name] = true
			if p.Warning != "" {
				t.warn(loc, p.Warning)
			}
			t.log.Debug("primitive referenced", "name", p.Name, "kind", p.Kind)
		}
	}
	return &tsast.Ident{Name: name, Origin: origin(loc)}, nil
}

func escapeTypeVars(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = EscapeTypeVar(n)
	}
	return out
}

func (t *transformer) theorem(thm *Theorem) (tsast.Stmt, error) {
	var name string
	if thm.Claim.Name != "" {
		name = EscapeIdent(thm.Claim.Name)
		if _, ok := LookupPrimitive(name); ok {
			return nil, &TransformError{
				Location: thm.Claim.Loc,
				Message:  fmt.Sprintf("theorem %s has the same name as a primitive", name),
			}
		}
		if prev, ok := t.scopes[0][name]; ok {
			return nil, &TransformError{
				Location: thm.Claim.Loc,
				Message:  fmt.Sprintf("theorem %s is already declared (first at line %d, column %d)", name, prev.Line, prev.Column),
			}
		}
	}

	t.pushScope()
	var (
		arrow *tsast.Arrow
		err   error
	)
	a := sequentHypotheses(thm)
	if a != nil {
		arrow, err = t.sequent(thm, a)
	} else {
		arrow, err = t.implication(thm)
	}
	t.popScope()
	if err != nil {
		return nil, err
	}

	if name == "" {
		return &tsast.ExprStmt{Expr: &tsast.Paren{Expr: arrow}, Origin: origin(thm.Loc)}, nil
	}
	if err := t.declare(name, thm.Claim.Loc); err != nil {
		return nil, err
	}
	if a == nil {
		t.thunks[name] = true
	}
	return &tsast.Const{Name: name, Value: arrow, Origin: origin(thm.Loc)}, nil
}

// sequentHypotheses returns the theorem's assumption block when the theorem
// is stated as a sequent: its whole proof is one assume block and its
// proposition is not itself an implication.
func sequentHypotheses(thm *Theorem) *Assumption {
	switch thm.Claim.Expr.(type) {
	case *Implication, *Negation:
		return nil
	}
	if len(thm.Proof.Statements) != 0 {
		return nil
	}
	a, _ := thm.Proof.Final.(*Assumption)
	return a
}

// implication emits <tvs>(): T => body.
func (t *transformer) implication(thm *Theorem) (*tsast.Arrow, error) {
	t.frames.Enter()
	ty := t.typeOf(thm.Claim.Expr)
	body, _, err := t.proof(thm.Proof, ty)
	if err != nil {
		return nil, err
	}
	return &tsast.Arrow{
		TypeParams: escapeTypeVars(t.frames.Exit()),
		Ret:        ty,
		Body:       body,
		Origin:     origin(thm.Loc),
	}, nil
}

// sequent emits the hypotheses of a as curried parameters with the theorem's
// proposition as the innermost return type.
func (t *transformer) sequent(thm *Theorem, a *Assumption) (*tsast.Arrow, error) {
	arrows, err := t.hypotheses(a)
	if err != nil {
		return nil, err
	}
	ty := t.typeOf(thm.Claim.Expr)
	body, _, err := t.proof(a.Proof, ty)
	if err != nil {
		return nil, err
	}
	innermost := arrows[len(arrows)-1]
	innermost.Ret = ty
	innermost.Body = body
	return t.closeHypotheses(arrows), nil
}

// hypotheses opens one frame per hypothesis of a and declares its binding.
// Each returned arrow still needs its body and type parameters.
func (t *transformer) hypotheses(a *Assumption) ([]*tsast.Arrow, error) {
	arrows := make([]*tsast.Arrow, len(a.Hypotheses))
	for i, h := range a.Hypotheses {
		t.frames.Enter()
		ty := t.typeOf(h.Expr)
		name := SynthesizeName(h.Expr)
		if h.Name != "" {
			name = EscapeIdent(h.Name)
		}
		if err := t.declare(name, h.Loc); err != nil {
			return nil, err
		}
		arrows[i] = &tsast.Arrow{
			Params: []tsast.Param{{Name: name, Type: ty}},
			Origin: origin(h.Loc),
		}
	}
	return arrows, nil
}

// closeHypotheses exits the hypothesis frames innermost first and nests the
// arrows.
func (t *transformer) closeHypotheses(arrows []*tsast.Arrow) *tsast.Arrow {
	for i := len(arrows) - 1; i >= 0; i-- {
		arrows[i].TypeParams = escapeTypeVars(t.frames.Exit())
		if i > 0 {
			arrows[i-1].Body = arrows[i]
		}
	}
	return arrows[0]
}

// proof compiles a proof to a function body. declared is the return type of
// the enclosing arrow, if it has one. The returned type is the final step's
// claim when the enclosing arrow should adopt it as its return type.
func (t *transformer) proof(p *Proof, declared tsast.Type) (tsast.Body, tsast.Type, error) {
	t.preregister(p)

	var stmts []tsast.Stmt
	for _, s := range p.Statements {
		stmt, err := t.statement(s)
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, stmt)
	}

	var (
		value tsast.Expr
		ret   tsast.Type
		err   error
	)
	switch f := p.Final.(type) {
	case *Conclusion:
		value, err = t.justification(f.Justification)
	case *Assumption:
		value, err = t.assumption(f)
	case *Generalization:
		value, err = t.generalization(f)
	case *Step:
		if f.Claim.IsHole() {
			value, err = t.justification(f.Justification)
			break
		}
		if declared == nil {
			ret = t.typeOf(f.Claim.Expr)
			value, err = t.justification(f.Justification)
			break
		}
		// The enclosing arrow already has a return type, so the claim is
		// checked through a binding.
		var decl *tsast.Const
		decl, err = t.step(f)
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, decl)
		value = &tsast.Ident{Name: decl.Name, Origin: origin(f.Loc)}
	default:
		panic(fmt.Sprintf("natded: unknown final step %T", p.Final))
	}
	if err != nil {
		return nil, nil, err
	}

	if len(stmts) == 0 {
		return value, ret, nil
	}
	stmts = append(stmts, &tsast.Return{Expr: value})
	return &tsast.Block{Stmts: stmts}, ret, nil
}

// preregister records the atoms mentioned at p's own level in the current
// frame before any nested binder is generated, so nested binders capture
// them instead of declaring them again.
func (t *transformer) preregister(p *Proof) {
	visit := func(f FinalStep) {
		var j Justification
		switch f := f.(type) {
		case *Step:
			if !f.Claim.IsHole() {
				t.typeOf(f.Claim.Expr)
			}
			j = f.Justification
		case *Conclusion:
			j = f.Justification
		}
		if app, ok := j.(*Application); ok {
			for _, arg := range app.Args {
				if e, ok := arg.(Expr); ok {
					t.typeOf(e)
				}
			}
		}
	}
	for _, s := range p.Statements {
		visit(s)
	}
	visit(p.Final)
}

func (t *transformer) statement(s Statement) (tsast.Stmt, error) {
	switch s := s.(type) {
	case *Step:
		return t.step(s)
	case *Assumption:
		e, err := t.assumption(s)
		if err != nil {
			return nil, err
		}
		return &tsast.ExprStmt{Expr: &tsast.Paren{Expr: e}, Origin: origin(s.Loc)}, nil
	case *Generalization:
		e, err := t.generalization(s)
		if err != nil {
			return nil, err
		}
		return &tsast.ExprStmt{Expr: &tsast.Paren{Expr: e}, Origin: origin(s.Loc)}, nil
	}
	panic(fmt.Sprintf("natded: unknown statement %T", s))
}

// step emits const name: T = value;
func (t *transformer) step(s *Step) (*tsast.Const, error) {
	var (
		name string
		ty   tsast.Type
	)
	switch {
	case s.Claim.Name != "":
		name = EscapeIdent(s.Claim.Name)
	case s.Claim.IsHole():
		return nil, &TransformError{
			Location: s.Claim.Loc,
			Message:  "a step with no proposition must be named unless it ends the proof",
		}
	default:
		name = SynthesizeName(s.Claim.Expr)
	}
	if !s.Claim.IsHole() {
		ty = t.typeOf(s.Claim.Expr)
	}
	value, err := t.justification(s.Justification)
	if err != nil {
		return nil, err
	}
	if err := t.declare(name, s.Claim.Loc); err != nil {
		return nil, err
	}
	return &tsast.Const{Name: name, Type: ty, Value: value, Origin: origin(s.Loc)}, nil
}

func (t *transformer) justification(j Justification) (tsast.Expr, error) {
	switch j := j.(type) {
	case *Application:
		return t.application(j)
	case *Assumption:
		return t.assumption(j)
	case *Generalization:
		return t.generalization(j)
	}
	panic(fmt.Sprintf("natded: unknown justification %T", j))
}

// assumption emits <tvsA>(a: A) => <tvsB>(b: B) => body.
func (t *transformer) assumption(a *Assumption) (tsast.Expr, error) {
	t.pushScope()
	defer t.popScope()

	arrows, err := t.hypotheses(a)
	if err != nil {
		return nil, err
	}
	body, ret, err := t.proof(a.Proof, nil)
	if err != nil {
		return nil, err
	}
	innermost := arrows[len(arrows)-1]
	innermost.Body = body
	innermost.Ret = ret
	return t.closeHypotheses(arrows), nil
}

// generalization emits <X>() => <Y>() => body.
func (t *transformer) generalization(g *Generalization) (tsast.Expr, error) {
	t.pushScope()
	defer t.popScope()

	t.frames.Bind(g.Vars...)
	body, ret, err := t.proof(g.Proof, nil)
	t.frames.Unbind(len(g.Vars))
	if err != nil {
		return nil, err
	}

	arrow := &tsast.Arrow{
		TypeParams: []string{EscapeTypeVar(g.Vars[len(g.Vars)-1])},
		Ret:        ret,
		Body:       body,
		Origin:     origin(g.Loc),
	}
	for i := len(g.Vars) - 2; i >= 0; i-- {
		arrow = &tsast.Arrow{
			TypeParams: []string{EscapeTypeVar(g.Vars[i])},
			Body:       arrow,
			Origin:     origin(g.Loc),
		}
	}
	return arrow, nil
}

// application emits rule(a1)(a2)...(an).
func (t *transformer) application(app *Application) (tsast.Expr, error) {
	if t.opts.SystemF && app.Rule == forallElim {
		return t.instantiate(app)
	}

	fn, err := t.ref(app.Rule, app.Loc)
	if err != nil {
		return nil, err
	}
	var result tsast.Expr = fn
	for _, arg := range app.Args {
		x, err := t.argument(arg)
		if err != nil {
			return nil, err
		}
		result = &tsast.Call{Fn: result, Args: []tsast.Expr{x}, Origin: origin(arg.GetLocation())}
	}
	return result, nil
}

// argument compiles an identifier to a reference and a proposition to the
// name of the anonymous step or hypothesis proving it.
func (t *transformer) argument(arg Argument) (tsast.Expr, error) {
	switch arg := arg.(type) {
	case *Identifier:
		return t.ref(arg.Name, arg.Loc)
	case Expr:
		t.typeOf(arg)
		return &tsast.Ident{Name: SynthesizeName(arg), Origin: origin(arg.GetLocation())}, nil
	}
	panic(fmt.Sprintf("natded: unknown argument %T", arg))
}

// instantiate emits h<E>() for forallElim E, h.
func (t *transformer) instantiate(app *Application) (tsast.Expr, error) {
	if len(app.Args) != 2 {
		return nil, &TransformError{
			Location: app.Loc,
			Message:  fmt.Sprintf("bad forallElim call: expected 2 arguments, got %d", len(app.Args)),
		}
	}
	prop, isExpr := app.Args[0].(Expr)
	fact, isIdent := app.Args[1].(*Identifier)
	if !isExpr || !isIdent {
		return nil, &TransformError{
			Location: app.Loc,
			Message:  "bad forallElim call: expected a proposition and an identifier",
		}
	}
	fn, err := t.ref(fact.Name, fact.Loc)
	if err != nil {
		return nil, err
	}
	return &tsast.Call{
		Fn:       fn,
		TypeArgs: []tsast.Type{t.typeOf(prop)},
		Origin:   origin(app.Loc),
	}, nil
}

// typeOf encodes a proposition as a type, recording its free atoms in the
// current frame.
func (t *transformer) typeOf(e Expr) tsast.Type {
	switch e := e.(type) {
	case *TypeVar:
		t.frames.Add(e.Name)
		if len(e.Args) == 0 {
			return tsast.Ref(EscapeTypeVar(e.Name))
		}
		if len(e.Args) > 1 {
			t.warn(e.Loc, fmt.Sprintf("predicate %s has %d arguments; only the first is used", e.Name, len(e.Args)))
		}
		t.frames.Add(e.Args[0])
		return tsast.Ref("Apply", tsast.Ref(EscapeTypeVar(e.Name)), tsast.Ref(EscapeTypeVar(e.Args[0])))
	case *Negation:
		return tsast.Ref("Not", t.typeOf(e.Value))
	case *Conjunction:
		return tsast.Ref("And", t.typeOf(e.Left), t.typeOf(e.Right))
	case *Disjunction:
		return tsast.Ref("Or", t.typeOf(e.Left), t.typeOf(e.Right))
	case *Implication:
		return tsast.Ref("Impl", t.typeOf(e.Left), t.typeOf(e.Right))
	case *Quantified:
		t.frames.Bind(e.Vars...)
		var ty tsast.Type = t.typeOf(e.Body)
		t.frames.Unbind(len(e.Vars))
		for i := len(e.Vars) - 1; i >= 0; i-- {
			ty = &tsast.FuncType{TypeParams: []string{EscapeTypeVar(e.Vars[i])}, Ret: ty}
		}
		return ty
	}
	panic(fmt.Sprintf("natded: unknown expression %T", e))
}
