package lsp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"slices"
	"sync"
	"unicode"

	"github.com/creachadair/jrpc2"

	"github.com/vito/natded/pkg/natded"
	"github.com/vito/natded/pkg/oracle"
)

// Handler serves one language client. It implements jrpc2.Assigner.
type Handler struct {
	mu       sync.Mutex
	files    map[DocumentURI]*File
	srv      *jrpc2.Server
	rootPath string
	folders  []string

	// newOracle picks the checker for a document given its project
	// settings.
	newOracle func(oracle.Config) (oracle.Oracle, error)
}

// File is an open document and everything derived from its latest text.
type File struct {
	LanguageID  string
	Text        string
	Version     int
	Diagnostics []Diagnostic
	Document    *natded.Document
	Symbols     *SymbolTable
	SystemF     bool
}

// NewHandler creates a handler that checks documents with the oracle their
// natded.toml selects, or the builtin oracle when none is configured.
func NewHandler() *Handler {
	return &Handler{
		files:     make(map[DocumentURI]*File),
		newOracle: oracle.New,
	}
}

// SetServer gives the handler the server to push notifications through.
func (h *Handler) SetServer(srv *jrpc2.Server) {
	h.srv = srv
}

func (h *Handler) Assign(ctx context.Context, method string) jrpc2.Handler {
	slog.DebugContext(ctx, "assign", "method", method)

	switch method {
	case "initialize":
		return h.handleInitialize
	case "initialized", "exit", "$/cancelRequest", "$/setTrace":
		return func(context.Context, *jrpc2.Request) (any, error) { return nil, nil }
	case "shutdown":
		return h.handleShutdown
	case "textDocument/didOpen":
		return h.handleTextDocumentDidOpen
	case "textDocument/didChange":
		return h.handleTextDocumentDidChange
	case "textDocument/didSave":
		return h.handleTextDocumentDidSave
	case "textDocument/didClose":
		return h.handleTextDocumentDidClose
	case "textDocument/definition":
		return h.handleTextDocumentDefinition
	case "textDocument/hover":
		return h.handleTextDocumentHover
	case "textDocument/formatting":
		return h.handleTextDocumentFormatting
	case "textDocument/documentSymbol":
		return h.handleTextDocumentDocumentSymbol
	case "workspace/symbol":
		return h.handleWorkspaceSymbol
	}
	return nil
}

func isWindowsDrivePath(path string) bool {
	if len(path) < 4 {
		return false
	}
	return unicode.IsLetter(rune(path[0])) && path[1] == ':'
}

func isWindowsDriveURI(uri string) bool {
	if len(uri) < 4 {
		return false
	}
	return uri[0] == '/' && unicode.IsLetter(rune(uri[1])) && uri[2] == ':'
}

func fromURI(uri DocumentURI) (string, error) {
	u, err := url.ParseRequestURI(string(uri))
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("only file URIs are supported, got %v", u.Scheme)
	}
	if isWindowsDriveURI(u.Path) {
		u.Path = u.Path[1:]
	}
	return u.Path, nil
}

func toURI(path string) DocumentURI {
	if isWindowsDrivePath(path) {
		path = "/" + path
	}
	return DocumentURI((&url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(path),
	}).String())
}

func (h *Handler) notify(ctx context.Context, method string, params any) {
	if h.srv == nil {
		return
	}
	if err := h.srv.Notify(ctx, method, params); err != nil {
		slog.ErrorContext(ctx, "failed to notify", "method", method, "error", err)
	}
}

func (h *Handler) logMessage(ctx context.Context, typ MessageType, message string) {
	h.notify(ctx, "window/logMessage", &LogMessageParams{
		Type:    typ,
		Message: message,
	})
}

func (h *Handler) file(uri DocumentURI) *File {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.files[uri]
}

func (h *Handler) closeFile(uri DocumentURI) {
	h.mu.Lock()
	delete(h.files, uri)
	h.mu.Unlock()
}

func (h *Handler) openFile(uri DocumentURI, languageID string, version int) {
	h.mu.Lock()
	h.files[uri] = &File{
		LanguageID: languageID,
		Version:    version,
	}
	h.mu.Unlock()
}

// updateFile recompiles and rechecks the document, then publishes its
// diagnostics.
func (h *Handler) updateFile(ctx context.Context, uri DocumentURI, text string, version *int) error {
	h.mu.Lock()
	f, ok := h.files[uri]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("document not found: %v", uri)
	}

	fp, err := fromURI(uri)
	if err != nil {
		return fmt.Errorf("file path from URI: %w", err)
	}

	slog.InfoContext(ctx, "file updated", "path", fp)

	next := &File{
		LanguageID: f.LanguageID,
		Text:       text,
		Version:    f.Version,
	}
	if version != nil {
		next.Version = *version
	}
	next.Diagnostics = h.analyze(ctx, fp, next)

	h.mu.Lock()
	cur, ok := h.files[uri]
	current := ok && cur.Version <= next.Version
	if current {
		h.files[uri] = next
	}
	h.mu.Unlock()
	if !current {
		slog.DebugContext(ctx, "dropping superseded diagnostics", "path", fp, "version", next.Version)
		return nil
	}

	h.notify(ctx, "textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Version:     next.Version,
		Diagnostics: next.Diagnostics,
	})
	return nil
}

// analyze fills in f's syntax tree and symbols and returns its diagnostics:
// a compile error, or warnings plus whatever the oracle reports.
func (h *Handler) analyze(ctx context.Context, path string, f *File) []Diagnostic {
	diagnostics := []Diagnostic{}

	cfg := oracle.Config{Kind: oracle.KindBuiltin}
	_, project, err := natded.FindProjectConfig(filepath.Dir(path))
	if err != nil {
		return append(diagnostics, errorDiagnostic(err))
	}
	if project != nil {
		f.SystemF = project.SystemF
		if project.Oracle != "" {
			cfg.Kind = project.Oracle
		}
		cfg.TSCPath = project.TSC.Path
		cfg.TSCVersion = project.TSC.Version
		cfg.TSCArgs = project.TSC.Args
	}

	// Parse separately so definitions and hovers keep working when only
	// the transformation fails.
	doc, err := natded.Parse(f.Text, natded.ParseOptions{SystemF: f.SystemF})
	if err != nil {
		return append(diagnostics, errorDiagnostic(err))
	}
	f.Document = doc
	f.Symbols = BuildSymbolTable(doc)

	c, err := natded.Compile(f.Text, natded.Options{
		SystemF: f.SystemF,
		Logger:  slog.Default().With("path", path),
	})
	if err != nil {
		return append(diagnostics, errorDiagnostic(err))
	}
	for _, w := range c.Warnings() {
		diagnostics = append(diagnostics, Diagnostic{
			Range:    nameRange(w.Location, ""),
			Severity: SeverityWarning,
			Source:   "natded",
			Message:  w.Message,
		})
	}

	o, err := h.newOracle(cfg)
	if err != nil {
		return append(diagnostics, errorDiagnostic(err))
	}
	report, err := natded.Check(ctx, c, o)
	if err != nil {
		h.logMessage(ctx, MessageError, err.Error())
		return append(diagnostics, errorDiagnostic(err))
	}
	for _, d := range report.Diagnostics {
		diag := Diagnostic{
			Severity: SeverityError,
			Code:     d.Code,
			Source:   o.Name(),
			Message:  d.Message,
		}
		if d.Origin != nil {
			diag.Range = nameRange(natded.Location{Line: d.Origin.Line, Column: d.Origin.Column}, "")
		} else {
			diag.Range = nameRange(natded.Location{Line: 1, Column: 1}, "")
		}
		diagnostics = append(diagnostics, diag)
	}
	return diagnostics
}

// errorDiagnostic positions err at its source location, or at the start of
// the document when it has none.
func errorDiagnostic(err error) Diagnostic {
	loc := natded.Location{Line: 1, Column: 1}
	var located natded.Located
	if errors.As(err, &located) {
		loc = located.SourceLocation()
	}
	return Diagnostic{
		Range:    nameRange(loc, ""),
		Severity: SeverityError,
		Source:   "natded",
		Message:  err.Error(),
	}
}

func (h *Handler) addFolder(folder string) {
	folder = filepath.Clean(folder)
	if !slices.Contains(h.folders, folder) {
		h.folders = append(h.folders, folder)
	}
}
