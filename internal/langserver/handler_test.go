package langserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const testURI = "file:///test.fx"

func TestCheckAcceptsWellFormedSource(t *testing.T) {
	h := NewHandler()
	diags := h.check("/test.fx", `
input in: f32x1;
output out: f32x1;
stage {
	write out = read in;
}
`)
	assert.Empty(t, diags)

	h.mu.RLock()
	_, ok := h.files["/test.fx"]
	h.mu.RUnlock()
	assert.True(t, ok)
}

func TestCheckReportsParseErrors(t *testing.T) {
	h := NewHandler()
	diags := h.check("/test.fx", `output out f32x1;`)
	require.Len(t, diags, 1)
	assert.Equal(t, protocol.DiagnosticSeverityError, *diags[0].Severity)
}

func TestCheckReportsLowerDiagnostics(t *testing.T) {
	h := NewHandler()
	diags := h.check("/test.fx", `
output out: f32x1;
stage {
	write out = read missing;
}
`)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "missing")
}

func TestCheckReportsTypeErrors(t *testing.T) {
	h := NewHandler()
	diags := h.check("/test.fx", `
output out: f32x1;
stage {
	write out = cast<i64>(1);
}
`)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "type mismatch")
}

func TestSemanticTokensFullOnParsedFile(t *testing.T) {
	h := NewHandler()
	diags := h.check("/test.fx", `
input in: f32x1;
output out: f32x1;
stage {
	write out = read in;
}
`)
	require.Empty(t, diags)

	toks, err := h.TextDocumentSemanticTokensFull(nil, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	require.NotNil(t, toks)
	assert.NotEmpty(t, toks.Data)
	assert.Zero(t, len(toks.Data)%5)
}

func TestSemanticTokensFullOnUnknownDocument(t *testing.T) {
	h := NewHandler()
	toks, err := h.TextDocumentSemanticTokensFull(nil, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.fx"},
	})
	require.NoError(t, err)
	assert.Empty(t, toks.Data)
}
