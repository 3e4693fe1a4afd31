package tsast

import (
	"fmt"
	"strconv"
	"strings"
)

const indentString = "    "

// Position is a location in printed program text. Offset is 0-based; Line
// and Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Span records the printed extent of one expression or statement.
type Span struct {
	Node  Node
	Start Position
	End   Position
}

// Program is a printed File together with its span table.
type Program struct {
	File  *File
	Text  string
	Spans []Span

	index map[Node]int
}

// Print renders a File. The output only depends on the tree, so printing the
// same tree twice yields identical text.
func Print(f *File) *Program {
	p := &printer{pos: Position{Line: 1, Column: 1}}
	for _, s := range f.Stmts {
		p.stmt(s, 0)
		p.write("\n")
	}
	prog := &Program{
		File:  f,
		Text:  p.buf.String(),
		Spans: p.spans,
		index: make(map[Node]int, len(p.spans)),
	}
	for i, sp := range p.spans {
		prog.index[sp.Node] = i
	}
	return prog
}

// PositionOf returns where n starts in the printed text.
func (prog *Program) PositionOf(n Node) (Position, bool) {
	i, ok := prog.index[n]
	if !ok {
		return Position{}, false
	}
	return prog.Spans[i].Start, true
}

// Locate converts a byte offset into a line/column position.
func (prog *Program) Locate(offset int) Position {
	offset = max(0, min(offset, len(prog.Text)))
	pos := Position{Offset: offset, Line: 1, Column: 1}
	for _, r := range prog.Text[:offset] {
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}

// OffsetOf converts a 1-based line/column into a byte offset, or -1 if the
// position lies outside the text.
func (prog *Program) OffsetOf(line, column int) int {
	if line < 1 || column < 1 {
		return -1
	}
	off := 0
	for l := 1; l < line; l++ {
		nl := strings.IndexByte(prog.Text[off:], '\n')
		if nl < 0 {
			return -1
		}
		off += nl + 1
	}
	off += column - 1
	if off > len(prog.Text) {
		return -1
	}
	return off
}

// OriginAt finds the innermost node enclosing offset that was generated from
// a known proof-script location.
func (prog *Program) OriginAt(offset int) *Origin {
	var best *Origin
	bestLen := -1
	for _, sp := range prog.Spans {
		o := OriginOf(sp.Node)
		if o == nil {
			continue
		}
		if offset < sp.Start.Offset || offset >= sp.End.Offset {
			continue
		}
		l := sp.End.Offset - sp.Start.Offset
		if bestLen < 0 || l <= bestLen {
			best, bestLen = o, l
		}
	}
	return best
}

// OriginOf returns the origin recorded on n, if any.
func OriginOf(n Node) *Origin {
	switch x := n.(type) {
	case *Ident:
		return x.Origin
	case *Call:
		return x.Origin
	case *Arrow:
		return x.Origin
	case *Const:
		return x.Origin
	case *ExprStmt:
		return x.Origin
	}
	return nil
}

type printer struct {
	buf   strings.Builder
	pos   Position
	spans []Span
}

func (p *printer) write(s string) {
	p.buf.WriteString(s)
	for _, r := range s {
		if r == '\n' {
			p.pos.Line++
			p.pos.Column = 1
		} else {
			p.pos.Column++
		}
	}
	p.pos.Offset += len(s)
}

func (p *printer) track(n Node, fn func()) {
	i := len(p.spans)
	p.spans = append(p.spans, Span{Node: n, Start: p.pos})
	fn()
	p.spans[i].End = p.pos
}

func (p *printer) indent(depth int) {
	p.write(strings.Repeat(indentString, depth))
}

func (p *printer) stmt(s Stmt, depth int) {
	p.track(s, func() {
		switch s := s.(type) {
		case *TypeAlias:
			p.write("type " + s.Name)
			p.typeParams(s.TypeParams)
			p.write(" = ")
			p.typ(s.Type)
			p.write(";")
		case *Const:
			if s.Declare {
				p.write("declare ")
			}
			p.write("const " + s.Name)
			if s.Type != nil {
				p.write(": ")
				p.typ(s.Type)
			}
			if !s.Declare {
				p.write(" = ")
				p.expr(s.Value, depth)
			}
			p.write(";")
		case *ExprStmt:
			p.expr(s.Expr, depth)
			p.write(";")
		case *Return:
			p.write("return ")
			p.expr(s.Expr, depth)
			p.write(";")
		default:
			panic(fmt.Sprintf("tsast: unknown statement %T", s))
		}
	})
}

func (p *printer) block(b *Block, depth int) {
	p.write("{\n")
	for _, s := range b.Stmts {
		p.indent(depth + 1)
		p.stmt(s, depth+1)
		p.write("\n")
	}
	p.indent(depth)
	p.write("}")
}

func (p *printer) typeParams(names []string) {
	if len(names) == 0 {
		return
	}
	p.write("<" + strings.Join(names, ", ") + ">")
}

func (p *printer) params(params []Param) {
	p.write("(")
	for i, param := range params {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Name + ": ")
		p.typ(param.Type)
	}
	p.write(")")
}

func (p *printer) expr(e Expr, depth int) {
	p.track(e, func() {
		switch e := e.(type) {
		case *Ident:
			p.write(e.Name)
		case *Call:
			if _, ok := e.Fn.(*Arrow); ok {
				p.write("(")
				p.expr(e.Fn, depth)
				p.write(")")
			} else {
				p.expr(e.Fn, depth)
			}
			if len(e.TypeArgs) > 0 {
				p.write("<")
				for i, t := range e.TypeArgs {
					if i > 0 {
						p.write(", ")
					}
					p.nestedType(t)
				}
				p.write(">")
			}
			p.write("(")
			for i, a := range e.Args {
				if i > 0 {
					p.write(", ")
				}
				p.expr(a, depth)
			}
			p.write(")")
		case *Arrow:
			p.typeParams(e.TypeParams)
			p.params(e.Params)
			if e.Ret != nil {
				p.write(": ")
				p.typ(e.Ret)
			}
			p.write(" => ")
			switch body := e.Body.(type) {
			case *Block:
				p.block(body, depth)
			case *ObjectLit:
				p.write("(")
				p.expr(body, depth)
				p.write(")")
			case Expr:
				p.expr(body, depth)
			default:
				panic(fmt.Sprintf("tsast: unknown arrow body %T", body))
			}
		case *StringLit:
			p.write(strconv.Quote(e.Value))
		case *BoolLit:
			p.write(strconv.FormatBool(e.Value))
		case *ArrayLit:
			p.write("[")
			for i, x := range e.Elems {
				if i > 0 {
					p.write(", ")
				}
				p.expr(x, depth)
			}
			p.write("]")
		case *ObjectLit:
			if len(e.Props) == 0 {
				p.write("{}")
				return
			}
			p.write("{ ")
			for i, prop := range e.Props {
				if i > 0 {
					p.write(", ")
				}
				if prop.Shorthand {
					p.write(prop.Name)
					continue
				}
				p.write(prop.Name + ": ")
				p.expr(prop.Value, depth)
			}
			p.write(" }")
		case *ElementAccess:
			p.expr(e.Expr, depth)
			p.write("[" + strconv.Itoa(e.Index) + "]")
		case *PropAccess:
			p.expr(e.Expr, depth)
			p.write("." + e.Name)
		case *Conditional:
			p.expr(e.Cond, depth)
			p.write(" ? ")
			p.expr(e.Then, depth)
			p.write(" : ")
			p.expr(e.Else, depth)
		case *As:
			p.expr(e.Expr, depth)
			p.write(" as ")
			p.typ(e.Type)
		case *Paren:
			p.write("(")
			p.expr(e.Expr, depth)
			p.write(")")
		default:
			panic(fmt.Sprintf("tsast: unknown expression %T", e))
		}
	})
}

// nestedType prints a type in a position where a bare function type would
// be ambiguous (type arguments, union members).
func (p *printer) nestedType(t Type) {
	if _, ok := t.(*FuncType); ok {
		p.write("(")
		p.typ(t)
		p.write(")")
		return
	}
	p.typ(t)
}

func (p *printer) typ(t Type) {
	switch t := t.(type) {
	case *TypeRef:
		p.write(t.Name)
		if len(t.Args) > 0 {
			p.write("<")
			for i, a := range t.Args {
				if i > 0 {
					p.write(", ")
				}
				p.nestedType(a)
			}
			p.write(">")
		}
	case *FuncType:
		p.typeParams(t.TypeParams)
		p.params(t.Params)
		p.write(" => ")
		p.typ(t.Ret)
	case *TupleType:
		p.write("[")
		for i, e := range t.Elems {
			if i > 0 {
				p.write(", ")
			}
			p.typ(e)
		}
		p.write("]")
	case *UnionType:
		for i, m := range t.Members {
			if i > 0 {
				p.write(" | ")
			}
			p.nestedType(m)
		}
	case *ObjectType:
		p.write("{ ")
		for _, prop := range t.Props {
			p.write(prop.Name + ": ")
			p.typ(prop.Type)
			p.write("; ")
		}
		p.write("}")
	case *StringLitType:
		p.write(strconv.Quote(t.Value))
	case *BoolLitType:
		p.write(strconv.FormatBool(t.Value))
	case *KeywordType:
		p.write(t.Keyword)
	default:
		panic(fmt.Sprintf("tsast: unknown type %T", t))
	}
}

// TypeString renders a single type, for messages.
func TypeString(t Type) string {
	p := &printer{pos: Position{Line: 1, Column: 1}}
	p.typ(t)
	return p.buf.String()
}

// ExprString renders a single expression.
func ExprString(e Expr) string {
	p := &printer{pos: Position{Line: 1, Column: 1}}
	p.expr(e, 0)
	return p.buf.String()
}
