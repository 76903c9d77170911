// Package langserver adapts the fixture-language pipeline (parse, lower,
// structural passes) to the Language Server Protocol over stdio, so an
// editor can open a fixture source and see its diagnostics live.
package langserver

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"waveling/internal/diag"
	"waveling/internal/fixturelang"
	"waveling/internal/passes"
)

// SemanticTokenTypes is the legend advertised in Initialize's capabilities.
var SemanticTokenTypes = []string{
	"namespace",
	"type",
	"function",
	"variable",
	"keyword",
	"number",
	"operator",
}

// SemanticTokenModifiers is the legend advertised in Initialize's capabilities.
var SemanticTokenModifiers = []string{
	"declaration",
	"readonly",
}

// Handler implements the LSP server methods for fixture-language sources.
type Handler struct {
	mu      sync.RWMutex
	sources map[string]string
	files   map[string]*fixturelang.File
}

// NewHandler returns an empty Handler.
func NewHandler() *Handler {
	return &Handler{
		sources: make(map[string]string),
		files:   make(map[string]*fixturelang.File),
	}
}

// Initialize advertises sync, on full-document text change, plus full-document
// semantic tokens.
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("waveling-lsp: initialize")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

// Initialized is a no-op beyond logging; there is no further handshake state.
func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("waveling-lsp: initialized")
	return nil
}

// Shutdown is a no-op; Handler holds no resources beyond in-memory maps.
func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("waveling-lsp: shutdown")
	return nil
}

// TextDocumentDidOpen parses and checks the newly opened document.
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.refresh(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidChange re-parses and re-checks the document against its
// latest full-document text (the server only advertised full sync).
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change, ok := params.ContentChanges[len(params.ContentChanges)-1].(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return errors.New("langserver: expected a whole-document change event")
	}
	return h.refresh(ctx, params.TextDocument.URI, change.Text)
}

// TextDocumentDidClose drops the document's cached source and AST.
func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(string(params.TextDocument.URI))
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.sources, path)
	delete(h.files, path)
	h.mu.Unlock()
	return nil
}

// TextDocumentSemanticTokensFull returns the cached document's semantic
// tokens, or an empty token set if it failed to parse.
func (h *Handler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	path, err := uriToPath(string(params.TextDocument.URI))
	if err != nil {
		return nil, err
	}

	h.mu.RLock()
	file, ok := h.files[path]
	h.mu.RUnlock()
	if !ok {
		return &protocol.SemanticTokens{}, nil
	}

	return &protocol.SemanticTokens{Data: encodeSemanticTokens(collectSemanticTokens(file))}, nil
}

// refresh parses and type-checks text, caches the result keyed by uri's
// path, and publishes whatever diagnostics resulted (an empty slice clears
// any diagnostics the client is currently showing).
func (h *Handler) refresh(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(string(uri))
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.sources[path] = text
	h.mu.Unlock()

	diagnostics := h.check(path, text)
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	return nil
}

// check runs the fixturelang.Parse -> fixturelang.Lower -> passes pipeline,
// caching the parsed AST on success for TextDocumentSemanticTokensFull.
func (h *Handler) check(path, source string) []protocol.Diagnostic {
	file, err := fixturelang.Parse(path, source)
	if err != nil {
		h.mu.Lock()
		delete(h.files, path)
		h.mu.Unlock()
		return []protocol.Diagnostic{parseErrorDiagnostic(err)}
	}

	h.mu.Lock()
	h.files[path] = file
	h.mu.Unlock()

	prog, lowerDiags := fixturelang.Lower(file)
	if lowerDiags != nil {
		return diagnosticsFrom(lowerDiags)
	}

	if err := passes.InsertStartFinalEdges(prog); err != nil {
		return []protocol.Diagnostic{errorDiagnostic(err)}
	}
	if _, err := passes.InferTypes(prog); err != nil {
		return []protocol.Diagnostic{errorDiagnostic(err)}
	}
	return nil
}

func diagnosticsFrom(ds []diag.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, len(ds))
	for i, d := range ds {
		out[i] = protocol.Diagnostic{
			Range:    wholeLineRange(0),
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("waveling"),
			Message:  d.Message,
		}
	}
	return out
}

func errorDiagnostic(err error) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range:    wholeLineRange(0),
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("waveling"),
		Message:  err.Error(),
	}
}

// parseErrorDiagnostic extracts a caret position from a participle parse
// error when one is available, falling back to the document's first
// character.
func parseErrorDiagnostic(err error) protocol.Diagnostic {
	line, col := 1, 1
	var pe participle.Error
	if errors.As(err, &pe) {
		pos := pe.Position()
		line, col = pos.Line, pos.Column
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(line - 1), Character: uint32(col - 1)},
			End:   protocol.Position{Line: uint32(line - 1), Character: uint32(col)},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("fixturelang"),
		Message:  err.Error(),
	}
}

func wholeLineRange(line uint32) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: 0},
		End:   protocol.Position{Line: line, Character: 1},
	}
}

// uriToPath converts a file:// URI to a platform-local path, the same way
// the distilled surface grammar's own handler does.
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("langserver: invalid URI %s: %w", rawURI, err)
	}

	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }

func ptrString(s string) *string { return &s }
