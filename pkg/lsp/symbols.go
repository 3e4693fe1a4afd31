package lsp

import (
	"github.com/vito/natded/pkg/natded"
)

// BindingKind classifies a name introduced by a proof script.
type BindingKind int

const (
	TheoremBinding BindingKind = iota
	HypothesisBinding
	StepBinding
)

func (k BindingKind) String() string {
	switch k {
	case TheoremBinding:
		return "theorem"
	case HypothesisBinding:
		return "hypothesis"
	case StepBinding:
		return "step"
	}
	return "binding"
}

// Binding is a named theorem, hypothesis or step.
type Binding struct {
	Name  string
	Kind  BindingKind
	Claim natded.Expr
	Range Range
	// Theorem is the enclosing theorem's name, empty for theorems.
	Theorem string
}

// Reference is a use of a name as a rule or an argument. At most one of
// Binding and Primitive is set; neither is set for unknown names.
type Reference struct {
	Name      string
	Range     Range
	Binding   *Binding
	Primitive *natded.Primitive
}

// SymbolTable records every binding and reference in a document, resolved
// with the same scoping the compiler uses: hypotheses and steps are visible
// for the rest of their enclosing proof, theorems for the rest of the
// document, and inner names shadow outer ones.
type SymbolTable struct {
	Bindings   []*Binding
	References []*Reference
}

// BuildSymbolTable indexes doc.
func BuildSymbolTable(doc *natded.Document) *SymbolTable {
	b := &symbolBuilder{st: &SymbolTable{}}
	b.push()
	for _, thm := range doc.Theorems {
		b.theorem = thm.Claim.Name
		b.proof(thm.Proof)
		b.theorem = ""
		if thm.Claim.Name != "" {
			b.bind(thm.Claim, TheoremBinding)
		}
	}
	return b.st
}

// At returns the reference or binding whose name covers pos.
func (st *SymbolTable) At(pos Position) (*Reference, *Binding) {
	for _, ref := range st.References {
		if ref.Range.Contains(pos) {
			return ref, nil
		}
	}
	for _, b := range st.Bindings {
		if b.Range.Contains(pos) {
			return nil, b
		}
	}
	return nil, nil
}

type symbolBuilder struct {
	st      *SymbolTable
	scopes  []map[string]*Binding
	theorem string
}

func (b *symbolBuilder) push() {
	b.scopes = append(b.scopes, map[string]*Binding{})
}

func (b *symbolBuilder) pop() {
	b.scopes = b.scopes[:len(b.scopes)-1]
}

func (b *symbolBuilder) bind(n *natded.NamedExpr, kind BindingKind) {
	binding := &Binding{
		Name:  n.Name,
		Kind:  kind,
		Claim: n.Expr,
		Range: nameRange(n.Loc, n.Name),
	}
	if kind != TheoremBinding {
		binding.Theorem = b.theorem
	}
	b.st.Bindings = append(b.st.Bindings, binding)
	b.scopes[len(b.scopes)-1][n.Name] = binding
}

func (b *symbolBuilder) refer(name string, loc natded.Location) {
	ref := &Reference{Name: name, Range: nameRange(loc, name)}
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if binding, ok := b.scopes[i][name]; ok {
			ref.Binding = binding
			break
		}
	}
	if ref.Binding == nil {
		ref.Primitive, _ = natded.LookupPrimitive(name)
	}
	b.st.References = append(b.st.References, ref)
}

func (b *symbolBuilder) proof(p *natded.Proof) {
	b.push()
	defer b.pop()
	for _, stmt := range p.Statements {
		b.final(stmt)
	}
	b.final(p.Final)
}

func (b *symbolBuilder) final(f natded.FinalStep) {
	switch f := f.(type) {
	case *natded.Step:
		b.justification(f.Justification)
		if f.Claim.Name != "" {
			b.bind(f.Claim, StepBinding)
		}
	case *natded.Conclusion:
		b.justification(f.Justification)
	case natded.Justification:
		b.justification(f)
	}
}

func (b *symbolBuilder) justification(j natded.Justification) {
	switch j := j.(type) {
	case *natded.Application:
		b.refer(j.Rule, j.Loc)
		for _, arg := range j.Args {
			if id, ok := arg.(*natded.Identifier); ok {
				b.refer(id.Name, id.Loc)
			}
		}
	case *natded.Assumption:
		b.push()
		defer b.pop()
		for _, h := range j.Hypotheses {
			if h.Name != "" {
				b.bind(h, HypothesisBinding)
			}
		}
		b.proof(j.Proof)
	case *natded.Generalization:
		b.proof(j.Proof)
	}
}

// nameRange converts a 1-based source location into the 0-based range
// covering name.
func nameRange(loc natded.Location, name string) Range {
	start := toPosition(loc)
	return Range{
		Start: start,
		End:   Position{Line: start.Line, Character: start.Character + max(len(name), 1)},
	}
}

func toPosition(loc natded.Location) Position {
	return Position{Line: max(loc.Line-1, 0), Character: max(loc.Column-1, 0)}
}
