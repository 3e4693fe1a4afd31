package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleTextDocumentDefinition(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DocumentDefinitionParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f := h.file(params.TextDocument.URI)
	if f == nil || f.Symbols == nil {
		return nil, nil
	}

	ref, binding := f.Symbols.At(params.Position)
	if ref != nil {
		binding = ref.Binding
	}
	if binding == nil {
		return nil, nil
	}

	return &Location{
		URI:   params.TextDocument.URI,
		Range: binding.Range,
	}, nil
}
