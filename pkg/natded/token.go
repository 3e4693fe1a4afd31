package natded

import "fmt"

// TokenKind identifies the lexical class of a Token.
type TokenKind int

const (
	EOF TokenKind = iota
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Implies
	Colon
	Comma
	Semi
	Dot
	And
	Or
	Not
	AssumeKeyword
	ByKeyword
	HaveKeyword
	TheoremKeyword
	ForallKeyword
	TypeVarToken
	IdentifierToken
)

var tokenKindNames = map[TokenKind]string{
	EOF:             "EOF",
	LParen:          "LParen",
	RParen:          "RParen",
	LBracket:        "LBracket",
	RBracket:        "RBracket",
	LBrace:          "LBrace",
	RBrace:          "RBrace",
	Implies:         "Implies",
	Colon:           "Colon",
	Comma:           "Comma",
	Semi:            "Semi",
	Dot:             "Dot",
	And:             "And",
	Or:              "Or",
	Not:             "Not",
	AssumeKeyword:   "AssumeKeyword",
	ByKeyword:       "ByKeyword",
	HaveKeyword:     "HaveKeyword",
	TheoremKeyword:  "TheoremKeyword",
	ForallKeyword:   "ForallKeyword",
	TypeVarToken:    "TypeVar",
	IdentifierToken: "Identifier",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

var keywords = map[string]TokenKind{
	"assume":  AssumeKeyword,
	"by":      ByKeyword,
	"have":    HaveKeyword,
	"theorem": TheoremKeyword,
	"forall":  ForallKeyword,
}

var symbols = map[byte]TokenKind{
	'(': LParen,
	')': RParen,
	'[': LBracket,
	']': RBracket,
	'{': LBrace,
	'}': RBrace,
	':': Colon,
	',': Comma,
	';': Semi,
	'.': Dot,
	'&': And,
	'|': Or,
	'~': Not,
}

// Token is a single lexeme. Value is set for TypeVar and Identifier tokens.
type Token struct {
	Kind     TokenKind
	Value    string
	Location Location
}

func (t Token) String() string {
	if t.Value != "" {
		return fmt.Sprintf("%s(%s) %s", t.Kind, t.Value, t.Location)
	}
	return fmt.Sprintf("%s %s", t.Kind, t.Location)
}
