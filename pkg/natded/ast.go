package natded

// Node is any syntax tree node.
type Node interface {
	GetLocation() Location
}

// Document is a parsed proof script: one or more theorems in source order.
type Document struct {
	Theorems []*Theorem
	Loc      Location
}

// Theorem proves Claim by Proof. Claim.Name is the theorem's name, if any.
type Theorem struct {
	Claim *NamedExpr
	Proof *Proof
	Loc   Location
}

// NamedExpr is a proposition with an optional binding name. A nil Expr is a
// hole: the claim is left for the checker to infer.
type NamedExpr struct {
	Name string
	Expr Expr
	Loc  Location
}

// IsHole reports whether the claim has no declared proposition.
func (n *NamedExpr) IsHole() bool {
	return n.Expr == nil
}

// Proof is a list of statements closed by a final step.
type Proof struct {
	Statements []Statement
	Final      FinalStep
	Loc        Location
}

// Statement is one of *Assumption, *Generalization or *Step.
type Statement interface {
	Node
	FinalStep
	statement()
}

// Justification is one of *Application, *Assumption or *Generalization.
type Justification interface {
	Node
	justification()
}

// FinalStep closes a proof: either a Statement promoted to the final position
// or a *Conclusion introduced by "by".
type FinalStep interface {
	Node
	finalStep()
}

// Argument is an *Identifier or an Expr.
type Argument interface {
	Node
	argument()
}

// Expr is a proposition: *TypeVar, *Negation, *Conjunction, *Disjunction,
// *Implication or *Quantified.
type Expr interface {
	Node
	Argument
	expr()
}

// Assumption introduces hypotheses for the duration of its subproof.
type Assumption struct {
	Hypotheses []*NamedExpr
	Proof      *Proof
	Loc        Location
}

// Generalization binds type variables for the duration of its subproof.
type Generalization struct {
	Vars  []string
	Proof *Proof
	Loc   Location
}

// Step claims a proposition and justifies it.
type Step struct {
	Claim         *NamedExpr
	Justification Justification
	Loc           Location
}

// Conclusion is an explicit final justification: "by j".
type Conclusion struct {
	Justification Justification
	Loc           Location
}

// Application applies a rule to arguments.
type Application struct {
	Rule string
	Args []Argument
	Loc  Location
}

// Identifier refers to a hypothesis, step or theorem by name.
type Identifier struct {
	Name string
	Loc  Location
}

// TypeVar is an atomic proposition. Args is the predicate argument list in
// System F mode.
type TypeVar struct {
	Name string
	Args []string
	Loc  Location
}

type Negation struct {
	Value Expr
	Loc   Location
}

type Conjunction struct {
	Left, Right Expr
	Loc         Location
}

type Disjunction struct {
	Left, Right Expr
	Loc         Location
}

type Implication struct {
	Left, Right Expr
	Loc         Location
}

// Quantified is forall Vars . Body.
type Quantified struct {
	Vars []string
	Body Expr
	Loc  Location
}

func (n *Document) GetLocation() Location       { return n.Loc }
func (n *Theorem) GetLocation() Location        { return n.Loc }
func (n *NamedExpr) GetLocation() Location      { return n.Loc }
func (n *Proof) GetLocation() Location          { return n.Loc }
func (n *Assumption) GetLocation() Location     { return n.Loc }
func (n *Generalization) GetLocation() Location { return n.Loc }
func (n *Step) GetLocation() Location           { return n.Loc }
func (n *Conclusion) GetLocation() Location     { return n.Loc }
func (n *Application) GetLocation() Location    { return n.Loc }
func (n *Identifier) GetLocation() Location     { return n.Loc }
func (n *TypeVar) GetLocation() Location        { return n.Loc }
func (n *Negation) GetLocation() Location       { return n.Loc }
func (n *Conjunction) GetLocation() Location    { return n.Loc }
func (n *Disjunction) GetLocation() Location    { return n.Loc }
func (n *Implication) GetLocation() Location    { return n.Loc }
func (n *Quantified) GetLocation() Location     { return n.Loc }

func (*Assumption) statement()     {}
func (*Generalization) statement() {}
func (*Step) statement()           {}

func (*Assumption) finalStep()     {}
func (*Generalization) finalStep() {}
func (*Step) finalStep()           {}
func (*Conclusion) finalStep()     {}

func (*Application) justification()    {}
func (*Assumption) justification()     {}
func (*Generalization) justification() {}

func (*Identifier) argument()  {}
func (*TypeVar) argument()     {}
func (*Negation) argument()    {}
func (*Conjunction) argument() {}
func (*Disjunction) argument() {}
func (*Implication) argument() {}
func (*Quantified) argument()  {}

func (*TypeVar) expr()     {}
func (*Negation) expr()    {}
func (*Conjunction) expr() {}
func (*Disjunction) expr() {}
func (*Implication) expr() {}
func (*Quantified) expr()  {}

// Walk calls fn for every expression node in e, outermost first.
func Walk(e Expr, fn func(Expr)) {
	if e == nil {
		return
	}
	fn(e)
	switch e := e.(type) {
	case *Negation:
		Walk(e.Value, fn)
	case *Conjunction:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *Disjunction:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *Implication:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *Quantified:
		Walk(e.Body, fn)
	}
}
