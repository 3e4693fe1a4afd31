package natded

import (
	"fmt"
	"strings"
)

// FormatSource parses and re-prints src in canonical style.
func FormatSource(src string, opts ParseOptions) (string, error) {
	doc, err := Parse(src, opts)
	if err != nil {
		return "", err
	}
	return Format(doc), nil
}

// Format prints doc in canonical style. Parsing the output yields the same
// tree up to locations.
func Format(doc *Document) string {
	f := &formatter{}
	for i, thm := range doc.Theorems {
		if i > 0 {
			f.sb.WriteString("\n")
		}
		f.theorem(thm)
	}
	return f.sb.String()
}

// FormatExpr prints a proposition with the fewest parentheses that preserve
// its structure.
func FormatExpr(e Expr) string {
	f := &formatter{}
	f.expr(e, precQuantified)
	return f.sb.String()
}

type formatter struct {
	sb strings.Builder
}

func (f *formatter) indent(depth int) {
	f.sb.WriteString(strings.Repeat("    ", depth))
}

func (f *formatter) theorem(thm *Theorem) {
	f.sb.WriteString("theorem ")
	f.named(thm.Claim)
	f.sb.WriteString("\n")
	f.proof(thm.Proof, 0)
}

func (f *formatter) named(n *NamedExpr) {
	if n.Name != "" {
		f.sb.WriteString(n.Name)
		f.sb.WriteString(" : ")
	}
	if n.IsHole() {
		f.sb.WriteString("_")
		return
	}
	f.expr(n.Expr, precQuantified)
}

func (f *formatter) proof(p *Proof, depth int) {
	for _, s := range p.Statements {
		f.line(s, depth)
	}
	f.line(p.Final, depth)
}

func (f *formatter) line(s FinalStep, depth int) {
	f.indent(depth)
	var j Justification
	switch s := s.(type) {
	case *Step:
		f.sb.WriteString("have ")
		f.named(s.Claim)
		f.sb.WriteString(" by ")
		f.justification(s.Justification, depth)
		j = s.Justification
	case *Conclusion:
		f.sb.WriteString("by ")
		f.justification(s.Justification, depth)
		j = s.Justification
	case *Assumption:
		f.assumption(s, depth)
	case *Generalization:
		f.generalization(s, depth)
	default:
		panic(fmt.Sprintf("natded: unknown final step %T", s))
	}
	if _, ok := j.(*Application); ok {
		f.sb.WriteString(";")
	}
	f.sb.WriteString("\n")
}

func (f *formatter) justification(j Justification, depth int) {
	switch j := j.(type) {
	case *Application:
		f.sb.WriteString(j.Rule)
		for i, arg := range j.Args {
			if i == 0 {
				f.sb.WriteString(" ")
			} else {
				f.sb.WriteString(", ")
			}
			switch arg := arg.(type) {
			case *Identifier:
				f.sb.WriteString(arg.Name)
			case Expr:
				f.expr(arg, precQuantified)
			}
		}
	case *Assumption:
		f.assumption(j, depth)
	case *Generalization:
		f.generalization(j, depth)
	}
}

func (f *formatter) assumption(a *Assumption, depth int) {
	f.sb.WriteString("assume ")
	for i, h := range a.Hypotheses {
		if i > 0 {
			f.sb.WriteString(", ")
		}
		f.named(h)
	}
	f.block(a.Proof, depth)
}

func (f *formatter) generalization(g *Generalization, depth int) {
	f.sb.WriteString("forall ")
	f.sb.WriteString(strings.Join(g.Vars, ", "))
	f.block(g.Proof, depth)
}

func (f *formatter) block(p *Proof, depth int) {
	f.sb.WriteString(" {\n")
	f.proof(p, depth+1)
	f.indent(depth)
	f.sb.WriteString("}")
}

const (
	precQuantified = iota
	precImplication
	precDisjunction
	precConjunction
	precNegation
	precAtom
)

func precedence(e Expr) int {
	switch e.(type) {
	case *Quantified:
		return precQuantified
	case *Implication:
		return precImplication
	case *Disjunction:
		return precDisjunction
	case *Conjunction:
		return precConjunction
	case *Negation:
		return precNegation
	}
	return precAtom
}

func (f *formatter) expr(e Expr, min int) {
	if precedence(e) < min {
		f.sb.WriteString("(")
		defer f.sb.WriteString(")")
	}
	switch e := e.(type) {
	case *TypeVar:
		f.sb.WriteString(e.Name)
		if len(e.Args) > 0 {
			f.sb.WriteString("[")
			f.sb.WriteString(strings.Join(e.Args, ", "))
			f.sb.WriteString("]")
		}
	case *Negation:
		f.sb.WriteString("~")
		f.expr(e.Value, precNegation)
	case *Conjunction:
		f.expr(e.Left, precConjunction)
		f.sb.WriteString(" & ")
		f.expr(e.Right, precNegation)
	case *Disjunction:
		f.expr(e.Left, precDisjunction)
		f.sb.WriteString(" | ")
		f.expr(e.Right, precConjunction)
	case *Implication:
		f.expr(e.Left, precDisjunction)
		f.sb.WriteString(" => ")
		f.expr(e.Right, precImplication)
	case *Quantified:
		f.sb.WriteString("forall ")
		f.sb.WriteString(strings.Join(e.Vars, ", "))
		f.sb.WriteString(" . ")
		f.expr(e.Body, precImplication)
	}
}
