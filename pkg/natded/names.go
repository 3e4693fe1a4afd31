package natded

import "strings"

// connectiveTags prefix the synthesized names of compound propositions. An
// atom whose encoding equals a tag gets a trailing "$".
var connectiveTags = map[string]bool{
	"impl":   true,
	"and":    true,
	"or":     true,
	"not":    true,
	"apply":  true,
	"forall": true,
}

// reservedWords cannot be used as binding names in the emitted program.
var reservedWords = map[string]bool{
	"arguments": true, "await": true, "break": true, "case": true,
	"catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "eval": true, "export": true,
	"extends": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "implements": true, "import": true,
	"in": true, "instanceof": true, "interface": true, "let": true,
	"new": true, "null": true, "package": true, "private": true,
	"protected": true, "public": true, "return": true, "static": true,
	"super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "undefined": true,
	"var": true, "void": true, "while": true, "with": true,
	"yield": true,
}

// primitiveTypeNames are declared by the primitive library; type variables
// spelled the same way are renamed.
var primitiveTypeNames = map[string]bool{
	"And":   true,
	"Or":    true,
	"Impl":  true,
	"Not":   true,
	"Apply": true,
}

// EscapeIdent makes a proof-script identifier safe to use as a binding name.
func EscapeIdent(name string) string {
	if reservedWords[name] {
		return name + "_"
	}
	return name
}

// EscapeTypeVar makes an atom name safe to use as a type parameter.
func EscapeTypeVar(name string) string {
	if primitiveTypeNames[name] {
		return name + "$"
	}
	return name
}

// encodeAtom maps an atom name to a lower-case word containing no "_".
// Distinct atom names always encode to distinct words.
func encodeAtom(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case i == 0 && r >= 'A' && r <= 'Z':
			sb.WriteRune(r - 'A' + 'a')
		case r >= 'A' && r <= 'Z':
			sb.WriteByte('$')
			sb.WriteRune(r - 'A' + 'a')
		case r == '_':
			sb.WriteString("$$")
		default:
			sb.WriteRune(r)
		}
	}
	word := sb.String()
	if connectiveTags[word] {
		word += "$"
	}
	return word
}

// SynthesizeName derives the binding name used for an unnamed step or
// hypothesis from the shape of its proposition.
//
// Every name is a tag or atom word followed by its operands, each operand
// closed by "_". Words never contain "_", so a name can be decoded back into
// its proposition and distinct propositions never share a name.
func SynthesizeName(e Expr) string {
	var sb strings.Builder
	writeName(&sb, e)
	return sb.String()
}

func writeName(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *TypeVar:
		if len(e.Args) == 0 {
			sb.WriteString(encodeAtom(e.Name))
			sb.WriteString("_")
			return
		}
		sb.WriteString("apply_")
		sb.WriteString(encodeAtom(e.Name))
		sb.WriteString("_")
		sb.WriteString(encodeAtom(e.Args[0]))
		sb.WriteString("_")
	case *Negation:
		sb.WriteString("not_")
		writeName(sb, e.Value)
		sb.WriteString("_")
	case *Conjunction:
		writeBinary(sb, "and", e.Left, e.Right)
	case *Disjunction:
		writeBinary(sb, "or", e.Left, e.Right)
	case *Implication:
		writeBinary(sb, "impl", e.Left, e.Right)
	case *Quantified:
		sb.WriteString("forall_")
		for _, v := range e.Vars {
			sb.WriteString(encodeAtom(v))
			sb.WriteString("_")
		}
		sb.WriteString("_")
		writeName(sb, e.Body)
		sb.WriteString("_")
	}
}

func writeBinary(sb *strings.Builder, tag string, left, right Expr) {
	sb.WriteString(tag)
	sb.WriteString("_")
	writeName(sb, left)
	sb.WriteString("_")
	writeName(sb, right)
	sb.WriteString("_")
}
