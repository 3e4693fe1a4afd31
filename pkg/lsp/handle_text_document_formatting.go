package lsp

import (
	"context"
	"strings"

	"github.com/creachadair/jrpc2"

	"github.com/vito/natded/pkg/natded"
)

func (h *Handler) handleTextDocumentFormatting(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DocumentFormattingParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f := h.file(params.TextDocument.URI)
	if f == nil {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "document not found: %v", params.TextDocument.URI)
	}

	formatted, err := natded.FormatSource(f.Text, natded.ParseOptions{SystemF: f.SystemF})
	if err != nil {
		// The parse error is already published as a diagnostic.
		return []TextEdit{}, nil
	}

	if formatted == f.Text {
		return []TextEdit{}, nil
	}

	return []TextEdit{
		{
			Range:   Range{End: endOf(f.Text)},
			NewText: formatted,
		},
	}, nil
}

// endOf returns the position just past the last character of text.
func endOf(text string) Position {
	line := strings.Count(text, "\n")
	last := text[strings.LastIndex(text, "\n")+1:]
	return Position{Line: line, Character: len(last)}
}
