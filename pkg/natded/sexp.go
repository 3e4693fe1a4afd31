package natded

import (
	"strings"
)

// SExp renders doc as an indented S-expression, one node per line.
func SExp(doc *Document) string {
	var sb strings.Builder
	sexpDocument(doc).write(&sb, 0)
	sb.WriteString("\n")
	return sb.String()
}

type sexp struct {
	head     []string
	children []sexp
}

func node(head ...string) sexp {
	return sexp{head: head}
}

func (s sexp) with(children ...sexp) sexp {
	s.children = append(s.children, children...)
	return s
}

func (s sexp) write(sb *strings.Builder, depth int) {
	sb.WriteString("(")
	sb.WriteString(strings.Join(s.head, " "))
	for _, c := range s.children {
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("    ", depth+1))
		c.write(sb, depth+1)
	}
	sb.WriteString(")")
}

func named(head string, name string) sexp {
	if name == "" {
		return node(head)
	}
	return node(head, name)
}

func sexpDocument(doc *Document) sexp {
	s := node("Document")
	for _, thm := range doc.Theorems {
		s = s.with(named("Theorem", thm.Claim.Name).with(
			sexpExpr(thm.Claim.Expr),
			sexpProof(thm.Proof),
		))
	}
	return s
}

func sexpProof(p *Proof) sexp {
	s := node("Proof")
	for _, stmt := range p.Statements {
		s = s.with(sexpFinal(stmt))
	}
	return s.with(sexpFinal(p.Final))
}

func sexpFinal(f FinalStep) sexp {
	switch f := f.(type) {
	case *Step:
		return named("Step", f.Claim.Name).with(
			sexpExpr(f.Claim.Expr),
			sexpJustification(f.Justification),
		)
	case *Conclusion:
		return node("By").with(sexpJustification(f.Justification))
	case Justification:
		return sexpJustification(f)
	}
	return node("?")
}

func sexpJustification(j Justification) sexp {
	switch j := j.(type) {
	case *Application:
		s := node("Application", j.Rule)
		for _, arg := range j.Args {
			switch arg := arg.(type) {
			case *Identifier:
				s = s.with(node("Identifier", arg.Name))
			case Expr:
				s = s.with(sexpExpr(arg))
			}
		}
		return s
	case *Assumption:
		s := node("Assumption")
		for _, h := range j.Hypotheses {
			s = s.with(named("Hypothesis", h.Name).with(sexpExpr(h.Expr)))
		}
		return s.with(sexpProof(j.Proof))
	case *Generalization:
		return node(append([]string{"Generalization"}, j.Vars...)...).with(sexpProof(j.Proof))
	}
	return node("?")
}

func sexpExpr(e Expr) sexp {
	switch e := e.(type) {
	case nil:
		return node("Hole")
	case *TypeVar:
		return node(append([]string{"Proposition", e.Name}, e.Args...)...)
	case *Negation:
		return node("Negation").with(sexpExpr(e.Value))
	case *Conjunction:
		return node("Conjunction").with(sexpExpr(e.Left), sexpExpr(e.Right))
	case *Disjunction:
		return node("Disjunction").with(sexpExpr(e.Left), sexpExpr(e.Right))
	case *Implication:
		return node("Implication").with(sexpExpr(e.Left), sexpExpr(e.Right))
	case *Quantified:
		return node(append([]string{"Quantified"}, e.Vars...)...).with(sexpExpr(e.Body))
	}
	return node("?")
}
