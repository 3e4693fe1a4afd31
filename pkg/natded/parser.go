package natded

// ParseOptions controls which grammar extensions the parser accepts.
type ParseOptions struct {
	// SystemF enables generalizations, quantified propositions and predicate
	// application.
	SystemF bool
}

// Parse parses a whole proof script.
func Parse(src string, opts ParseOptions) (*Document, error) {
	p := &parser{s: NewScanner(src), opts: opts}
	return p.document()
}

type parser struct {
	s    *Scanner
	opts ParseOptions
}

func (p *parser) peek() (Token, error) {
	return p.s.Peek()
}

func (p *parser) expect(kinds ...TokenKind) (Token, error) {
	tok, err := p.s.Next()
	if err != nil {
		return Token{}, err
	}
	for _, k := range kinds {
		if tok.Kind == k {
			return tok, nil
		}
	}
	return Token{}, &ParseError{Location: tok.Location, Expected: kinds, Got: tok.Kind}
}

// accept consumes the next token if it has the given kind.
func (p *parser) accept(kind TokenKind) (bool, error) {
	tok, err := p.peek()
	if err != nil {
		return false, err
	}
	if tok.Kind != kind {
		return false, nil
	}
	_, err = p.s.Next()
	return true, err
}

func (p *parser) requireSystemF(tok Token, what string) error {
	if p.opts.SystemF {
		return nil
	}
	return &ParseError{
		Location: tok.Location,
		Got:      tok.Kind,
		Message:  what + " requires System F mode",
	}
}

func (p *parser) document() (*Document, error) {
	first, err := p.peek()
	if err != nil {
		return nil, err
	}
	doc := &Document{Loc: first.Location}
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != TheoremKeyword {
			break
		}
		thm, err := p.theorem()
		if err != nil {
			return nil, err
		}
		doc.Theorems = append(doc.Theorems, thm)
	}
	if len(doc.Theorems) == 0 {
		_, err := p.expect(TheoremKeyword)
		return nil, err
	}
	if _, err := p.expect(TheoremKeyword, EOF); err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *parser) theorem() (*Theorem, error) {
	tok, err := p.expect(TheoremKeyword)
	if err != nil {
		return nil, err
	}
	claim, err := p.namedExpr()
	if err != nil {
		return nil, err
	}
	proof, err := p.proof(TheoremKeyword, EOF)
	if err != nil {
		return nil, err
	}
	return &Theorem{Claim: claim, Proof: proof, Loc: tok.Location}, nil
}

// proof parses statements until one of the terminator kinds, which is left
// unconsumed.
func (p *parser) proof(end ...TokenKind) (*Proof, error) {
	start, err := p.peek()
	if err != nil {
		return nil, err
	}
	proof := &Proof{Loc: start.Location}
	isEnd := func(k TokenKind) bool {
		for _, e := range end {
			if k == e {
				return true
			}
		}
		return false
	}

	for proof.Final == nil {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if isEnd(tok.Kind) {
			break
		}

		var stmt Statement
		switch tok.Kind {
		case AssumeKeyword:
			stmt, err = p.assumption()
		case HaveKeyword:
			stmt, err = p.step()
		case ForallKeyword:
			if err := p.requireSystemF(tok, "generalization"); err != nil {
				return nil, err
			}
			stmt, err = p.generalization()
		case ByKeyword:
			proof.Final, err = p.conclusion()
		default:
			expected := []TokenKind{AssumeKeyword, HaveKeyword, ByKeyword}
			if p.opts.SystemF {
				expected = append(expected, ForallKeyword)
			}
			return nil, &ParseError{Location: tok.Location, Expected: append(expected, end...), Got: tok.Kind}
		}
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			proof.Statements = append(proof.Statements, stmt)
		}
		if _, err := p.accept(Semi); err != nil {
			return nil, err
		}
	}

	if proof.Final != nil {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if !isEnd(tok.Kind) {
			return nil, &ParseError{Location: tok.Location, Expected: end, Got: tok.Kind}
		}
		return proof, nil
	}

	if len(proof.Statements) == 0 {
		return nil, &ParseError{Location: start.Location, Got: start.Kind, Message: "Empty Proof"}
	}
	last := len(proof.Statements) - 1
	proof.Final = proof.Statements[last]
	proof.Statements = proof.Statements[:last]
	return proof, nil
}

func (p *parser) conclusion() (*Conclusion, error) {
	tok, err := p.expect(ByKeyword)
	if err != nil {
		return nil, err
	}
	j, err := p.justification()
	if err != nil {
		return nil, err
	}
	return &Conclusion{Justification: j, Loc: tok.Location}, nil
}

func (p *parser) step() (*Step, error) {
	tok, err := p.expect(HaveKeyword)
	if err != nil {
		return nil, err
	}
	claim, err := p.claim()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ByKeyword); err != nil {
		return nil, err
	}
	j, err := p.justification()
	if err != nil {
		return nil, err
	}
	return &Step{Claim: claim, Justification: j, Loc: tok.Location}, nil
}

// claim is a NamedExpr whose proposition may be the hole "_".
func (p *parser) claim() (*NamedExpr, error) {
	start, err := p.peek()
	if err != nil {
		return nil, err
	}
	named := &NamedExpr{Loc: start.Location}
	if err := p.name(named); err != nil {
		return nil, err
	}
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == IdentifierToken && tok.Value == "_" {
		_, err := p.s.Next()
		return named, err
	}
	named.Expr, err = p.expr()
	if err != nil {
		return nil, err
	}
	return named, nil
}

func (p *parser) namedExpr() (*NamedExpr, error) {
	start, err := p.peek()
	if err != nil {
		return nil, err
	}
	named := &NamedExpr{Loc: start.Location}
	if err := p.name(named); err != nil {
		return nil, err
	}
	named.Expr, err = p.expr()
	if err != nil {
		return nil, err
	}
	return named, nil
}

// name consumes an optional "ident :" prefix.
func (p *parser) name(named *NamedExpr) error {
	tok, err := p.peek()
	if err != nil {
		return err
	}
	if tok.Kind != IdentifierToken {
		return nil
	}
	next, err := p.s.PeekN(1)
	if err != nil {
		return err
	}
	if next.Kind != Colon {
		return nil
	}
	named.Name = tok.Value
	if _, err := p.s.Next(); err != nil {
		return err
	}
	_, err = p.s.Next()
	return err
}

func (p *parser) justification() (Justification, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case IdentifierToken:
		return p.application()
	case AssumeKeyword:
		return p.assumption()
	case ForallKeyword:
		if err := p.requireSystemF(tok, "generalization"); err != nil {
			return nil, err
		}
		return p.generalization()
	}
	expected := []TokenKind{IdentifierToken, AssumeKeyword}
	if p.opts.SystemF {
		expected = append(expected, ForallKeyword)
	}
	return nil, &ParseError{Location: tok.Location, Expected: expected, Got: tok.Kind}
}

func (p *parser) application() (*Application, error) {
	tok, err := p.expect(IdentifierToken)
	if err != nil {
		return nil, err
	}
	app := &Application{Rule: tok.Value, Loc: tok.Location}

	next, err := p.peek()
	if err != nil {
		return nil, err
	}
	starts, err := p.startsArgument(next.Kind)
	if err != nil {
		return nil, err
	}
	if !starts {
		return app, nil
	}
	for {
		arg, err := p.argument()
		if err != nil {
			return nil, err
		}
		app.Args = append(app.Args, arg)
		more, err := p.accept(Comma)
		if err != nil {
			return nil, err
		}
		if !more {
			return app, nil
		}
	}
}

func (p *parser) startsArgument(k TokenKind) (bool, error) {
	switch k {
	case IdentifierToken, TypeVarToken, LParen, Not:
		return true, nil
	case ForallKeyword:
		if !p.opts.SystemF {
			return false, nil
		}
		return p.quantifierAhead()
	}
	return false, nil
}

// quantifierAhead reports whether the upcoming forall opens a quantified
// proposition (forall X, Y . P) rather than a generalization
// (forall X, Y { ... }).
func (p *parser) quantifierAhead() (bool, error) {
	n := 1
	for {
		tok, err := p.s.PeekN(n)
		if err != nil {
			return false, err
		}
		if tok.Kind != TypeVarToken {
			// malformed either way; let the expression parser report it
			return true, nil
		}
		sep, err := p.s.PeekN(n + 1)
		if err != nil {
			return false, err
		}
		switch sep.Kind {
		case Comma:
			n += 2
		case LBrace:
			return false, nil
		default:
			return true, nil
		}
	}
}

func (p *parser) argument() (Argument, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == IdentifierToken {
		if _, err := p.s.Next(); err != nil {
			return nil, err
		}
		return &Identifier{Name: tok.Value, Loc: tok.Location}, nil
	}
	return p.expr()
}

func (p *parser) assumption() (*Assumption, error) {
	tok, err := p.expect(AssumeKeyword)
	if err != nil {
		return nil, err
	}
	a := &Assumption{Loc: tok.Location}
	for {
		hyp, err := p.namedExpr()
		if err != nil {
			return nil, err
		}
		a.Hypotheses = append(a.Hypotheses, hyp)
		more, err := p.accept(Comma)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	a.Proof, err = p.block()
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (p *parser) generalization() (*Generalization, error) {
	tok, err := p.expect(ForallKeyword)
	if err != nil {
		return nil, err
	}
	vars, err := p.typeVarList()
	if err != nil {
		return nil, err
	}
	proof, err := p.block()
	if err != nil {
		return nil, err
	}
	return &Generalization{Vars: vars, Proof: proof, Loc: tok.Location}, nil
}

func (p *parser) block() (*Proof, error) {
	if _, err := p.expect(LBrace); err != nil {
		return nil, err
	}
	proof, err := p.proof(RBrace)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RBrace); err != nil {
		return nil, err
	}
	return proof, nil
}

func (p *parser) typeVarList() ([]string, error) {
	var vars []string
	for {
		tok, err := p.expect(TypeVarToken)
		if err != nil {
			return nil, err
		}
		vars = append(vars, tok.Value)
		more, err := p.accept(Comma)
		if err != nil {
			return nil, err
		}
		if !more {
			return vars, nil
		}
	}
}

func (p *parser) expr() (Expr, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind != ForallKeyword {
		return p.implication()
	}
	if err := p.requireSystemF(tok, "quantified proposition"); err != nil {
		return nil, err
	}
	if _, err := p.s.Next(); err != nil {
		return nil, err
	}
	vars, err := p.typeVarList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(Dot); err != nil {
		return nil, err
	}
	body, err := p.implication()
	if err != nil {
		return nil, err
	}
	return &Quantified{Vars: vars, Body: body, Loc: tok.Location}, nil
}

func (p *parser) implication() (Expr, error) {
	left, err := p.disjunction()
	if err != nil {
		return nil, err
	}
	ok, err := p.accept(Implies)
	if err != nil || !ok {
		return left, err
	}
	right, err := p.implication()
	if err != nil {
		return nil, err
	}
	return &Implication{Left: left, Right: right, Loc: left.GetLocation()}, nil
}

func (p *parser) disjunction() (Expr, error) {
	left, err := p.conjunction()
	if err != nil {
		return nil, err
	}
	for {
		ok, err := p.accept(Or)
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}
		right, err := p.conjunction()
		if err != nil {
			return nil, err
		}
		left = &Disjunction{Left: left, Right: right, Loc: left.GetLocation()}
	}
}

func (p *parser) conjunction() (Expr, error) {
	left, err := p.negation()
	if err != nil {
		return nil, err
	}
	for {
		ok, err := p.accept(And)
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}
		right, err := p.negation()
		if err != nil {
			return nil, err
		}
		left = &Conjunction{Left: left, Right: right, Loc: left.GetLocation()}
	}
}

func (p *parser) negation() (Expr, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind != Not {
		return p.atom()
	}
	if _, err := p.s.Next(); err != nil {
		return nil, err
	}
	value, err := p.negation()
	if err != nil {
		return nil, err
	}
	return &Negation{Value: value, Loc: tok.Location}, nil
}

func (p *parser) atom() (Expr, error) {
	tok, err := p.expect(TypeVarToken, LParen)
	if err != nil {
		return nil, err
	}
	if tok.Kind == LParen {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RParen); err != nil {
			return nil, err
		}
		return e, nil
	}

	tv := &TypeVar{Name: tok.Value, Loc: tok.Location}
	next, err := p.peek()
	if err != nil {
		return nil, err
	}
	if next.Kind != LBracket {
		return tv, nil
	}
	if err := p.requireSystemF(next, "predicate application"); err != nil {
		return nil, err
	}
	if _, err := p.s.Next(); err != nil {
		return nil, err
	}
	tv.Args, err = p.typeVarList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RBracket); err != nil {
		return nil, err
	}
	return tv, nil
}
