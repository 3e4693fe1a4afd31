package natded

// Scanner produces tokens on demand from proof-script source text.
type Scanner struct {
	src    string
	offset int
	loc    Location

	// lookahead buffer, filled by Peek and PeekN
	buf []Token
}

// NewScanner returns a Scanner positioned at the start of src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src, loc: Location{Line: 1, Column: 1}}
}

// Next consumes and returns the next token.
func (s *Scanner) Next() (Token, error) {
	if len(s.buf) > 0 {
		tok := s.buf[0]
		s.buf = s.buf[1:]
		return tok, nil
	}
	return s.scan()
}

// Peek returns the next token without consuming it.
func (s *Scanner) Peek() (Token, error) {
	return s.PeekN(0)
}

// PeekN returns the token n positions past the next one without consuming
// anything. PeekN(0) is Peek.
func (s *Scanner) PeekN(n int) (Token, error) {
	for len(s.buf) <= n {
		tok, err := s.scan()
		if err != nil {
			return Token{}, err
		}
		s.buf = append(s.buf, tok)
	}
	return s.buf[n], nil
}

// Tokenize scans all of src, including the trailing EOF token.
func Tokenize(src string) ([]Token, error) {
	s := NewScanner(src)
	var toks []Token
	for {
		tok, err := s.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}

func (s *Scanner) scan() (Token, error) {
	s.skipTrivia()

	start := s.loc
	if s.offset >= len(s.src) {
		return Token{Kind: EOF, Location: start}, nil
	}

	c := s.src[s.offset]
	switch {
	case c == '=' && s.peekByte(1) == '>':
		s.advance(2)
		return Token{Kind: Implies, Location: start}, nil
	case symbols[c] != EOF:
		s.advance(1)
		return Token{Kind: symbols[c], Location: start}, nil
	case isUpper(c):
		word := s.word()
		return Token{Kind: TypeVarToken, Value: word, Location: start}, nil
	case isLower(c) || c == '_':
		word := s.word()
		if kind, ok := keywords[word]; ok {
			return Token{Kind: kind, Location: start}, nil
		}
		return Token{Kind: IdentifierToken, Value: word, Location: start}, nil
	}

	return Token{}, &LexError{
		Location: start,
		Char:     s.runeAt(),
	}
}

func (s *Scanner) skipTrivia() {
	for s.offset < len(s.src) {
		c := s.src[s.offset]
		switch {
		case c == '\r':
			s.offset++
			if s.offset < len(s.src) && s.src[s.offset] == '\n' {
				s.offset++
			}
			s.newline()
		case c == '\n':
			s.offset++
			s.newline()
		case c == ' ' || c == '\t' || c == '\f' || c == '\v':
			s.advance(1)
		case c == '/' && s.peekByte(1) == '/':
			for s.offset < len(s.src) && s.src[s.offset] != '\n' && s.src[s.offset] != '\r' {
				s.advance(1)
			}
		default:
			return
		}
	}
}

func (s *Scanner) word() string {
	start := s.offset
	for s.offset < len(s.src) && isWordByte(s.src[s.offset]) {
		s.advance(1)
	}
	return s.src[start:s.offset]
}

func (s *Scanner) advance(n int) {
	s.offset += n
	s.loc.Column += n
}

func (s *Scanner) newline() {
	s.loc.Line++
	s.loc.Column = 1
}

func (s *Scanner) peekByte(n int) byte {
	if s.offset+n < len(s.src) {
		return s.src[s.offset+n]
	}
	return 0
}

func (s *Scanner) runeAt() rune {
	for _, r := range s.src[s.offset:] {
		return r
	}
	return 0
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordByte(c byte) bool {
	return isUpper(c) || isLower(c) || isDigit(c) || c == '_'
}
