package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

// handleTextDocumentDidSave rechecks the document, since a natded.toml next
// to it may have changed since the last edit.
func (h *Handler) handleTextDocumentDidSave(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DidSaveTextDocumentParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f := h.file(params.TextDocument.URI)
	if f == nil {
		return nil, nil
	}
	text := f.Text
	if params.Text != nil {
		text = *params.Text
	}
	return nil, h.updateFile(ctx, params.TextDocument.URI, text, nil)
}
