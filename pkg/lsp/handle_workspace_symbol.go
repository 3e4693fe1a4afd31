package lsp

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleWorkspaceSymbol(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params WorkspaceSymbolParams
	if req.HasParams() {
		if err := req.UnmarshalParams(&params); err != nil {
			return nil, err
		}
	}

	slog.InfoContext(ctx, "workspace symbol request", "query", params.Query)

	h.mu.Lock()
	files := maps.Clone(h.files)
	h.mu.Unlock()
	uris := slices.Collect(maps.Keys(files))
	slices.Sort(uris)

	// Only theorems are visible across files.
	query := strings.ToLower(params.Query)
	symbols := []SymbolInformation{}
	for _, uri := range uris {
		f := files[uri]
		if f.Symbols == nil {
			continue
		}
		for _, b := range f.Symbols.Bindings {
			if b.Kind != TheoremBinding {
				continue
			}
			if query == "" || strings.Contains(strings.ToLower(b.Name), query) {
				symbols = append(symbols, SymbolInformation{
					Name:     b.Name,
					Kind:     SymbolFunction,
					Location: Location{URI: uri, Range: b.Range},
				})
			}
		}
	}

	slog.InfoContext(ctx, "workspace symbol results", "query", params.Query, "total", len(symbols))

	return symbols, nil
}

func (h *Handler) handleTextDocumentDocumentSymbol(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DocumentSymbolParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f := h.file(params.TextDocument.URI)
	symbols := []SymbolInformation{}
	if f == nil || f.Symbols == nil {
		return symbols, nil
	}
	for _, b := range f.Symbols.Bindings {
		kind := SymbolVariable
		if b.Kind == TheoremBinding {
			kind = SymbolFunction
		}
		symbols = append(symbols, SymbolInformation{
			Name:          b.Name,
			Kind:          kind,
			Location:      Location{URI: params.TextDocument.URI, Range: b.Range},
			ContainerName: b.Theorem,
		})
	}
	return symbols, nil
}
