package lsp

import (
	"context"
	"fmt"
	"strings"

	"github.com/creachadair/jrpc2"

	"github.com/vito/natded/pkg/natded"
	"github.com/vito/natded/pkg/tsast"
)

func (h *Handler) handleTextDocumentHover(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params HoverParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f := h.file(params.TextDocument.URI)
	if f == nil || f.Symbols == nil {
		return nil, nil
	}

	ref, binding := f.Symbols.At(params.Position)
	var (
		content string
		rng     Range
	)
	switch {
	case ref != nil && ref.Binding != nil:
		content, rng = bindingHover(ref.Binding), ref.Range
	case ref != nil && ref.Primitive != nil:
		content, rng = primitiveHover(ref.Primitive), ref.Range
	case binding != nil:
		content, rng = bindingHover(binding), binding.Range
	default:
		return nil, nil
	}

	return &Hover{
		Contents: MarkupContent{Kind: "markdown", Value: content},
		Range:    &rng,
	}, nil
}

func bindingHover(b *Binding) string {
	claim := "_"
	if b.Claim != nil {
		claim = natded.FormatExpr(b.Claim)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "```natded\n%s %s : %s\n```", b.Kind, b.Name, claim)
	if b.Theorem != "" {
		fmt.Fprintf(&sb, "\n\nin theorem `%s`", b.Theorem)
	}
	return sb.String()
}

// primitiveHover shows the library declaration a rule compiles to.
func primitiveHover(p *natded.Primitive) string {
	decl := tsast.Print(&tsast.File{Stmts: []tsast.Stmt{p.Decl()}}).Text
	return fmt.Sprintf("%s `%s`\n\n```typescript\n%s```", p.Kind, p.Name, decl)
}
