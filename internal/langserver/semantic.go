package langserver

import "waveling/internal/fixturelang"

// token type/modifier indices, matching the order of SemanticTokenTypes and
// SemanticTokenModifiers.
const (
	tokenTypeKeyword = 4
	tokenTypeVariable = 3
	tokenTypeNumber   = 5
)

const modifierDeclaration = 1 << 0

// SemanticToken is a pre-delta-encoding token: an absolute line and column,
// plus length, type and modifier bits.
type SemanticToken struct {
	Line      int
	StartChar int
	Length    int
	Type      int
	Modifiers int
}

// collectSemanticTokens walks a fixturelang.File's declarations and stage
// statements, emitting one token per declared name and per statement target
// (write and let); names referenced inside expressions get no token. Unlike a full AST with
// per-identifier positions, fixturelang's grammar only captures a Pos per
// production, not per identifier, so every token's column is the start of
// its enclosing declaration or expression rather than the identifier itself.
func collectSemanticTokens(f *fixturelang.File) []SemanticToken {
	var tokens []SemanticToken
	for _, d := range f.Decls {
		switch {
		case d.Input != nil:
			tokens = append(tokens, declToken(d.Input.Pos.Line, d.Input.Pos.Column, d.Input.Name))
		case d.Output != nil:
			tokens = append(tokens, declToken(d.Output.Pos.Line, d.Output.Pos.Column, d.Output.Name))
		case d.Property != nil:
			tokens = append(tokens, declToken(d.Property.Pos.Line, d.Property.Pos.Column, d.Property.Name))
		case d.State != nil:
			tokens = append(tokens, declToken(d.State.Pos.Line, d.State.Pos.Column, d.State.Name))
		}
	}

	if f.Stage != nil {
		for _, s := range f.Stage.Stmts {
			switch {
			case s.Write != nil:
				tokens = append(tokens, SemanticToken{
					Line:      s.Write.Pos.Line - 1,
					StartChar: s.Write.Pos.Column - 1,
					Length:    len(s.Write.Output),
					Type:      tokenTypeVariable,
				})
			case s.StateWrite != nil:
				tokens = append(tokens, SemanticToken{
					Line:      s.StateWrite.Pos.Line - 1,
					StartChar: s.StateWrite.Pos.Column - 1,
					Length:    len(s.StateWrite.State),
					Type:      tokenTypeVariable,
				})
			}
		}
	}

	return tokens
}

func declToken(line, col int, name string) SemanticToken {
	return SemanticToken{
		Line:      line - 1,
		StartChar: col - 1,
		Length:    len(name),
		Type:      tokenTypeKeyword,
		Modifiers: modifierDeclaration,
	}
}

// encodeSemanticTokens delta-encodes tokens into the LSP wire format: each
// token is (deltaLine, deltaStartChar, length, tokenType, tokenModifiers),
// with deltaStartChar relative to the previous token's start only when on
// the same line.
func encodeSemanticTokens(tokens []SemanticToken) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)
	prevLine, prevChar := 0, 0
	for _, tok := range tokens {
		deltaLine := tok.Line - prevLine
		deltaChar := tok.StartChar
		if deltaLine == 0 {
			deltaChar = tok.StartChar - prevChar
		}
		data = append(data, uint32(deltaLine), uint32(deltaChar), uint32(tok.Length), uint32(tok.Type), uint32(tok.Modifiers))
		prevLine, prevChar = tok.Line, tok.StartChar
	}
	return data
}
