package fixturelang

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes fixture-language source. Keywords (input, output, state,
// stage, read, write, let, clock, sr, cast, true, false) are not their own
// token kind; they are matched as literal values against Ident tokens by
// the grammar, the same way the distilled surface grammar this is scoped
// down from matches "module", "fun", "public" and similar against Ident.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Number", `[0-9]+(\.[0-9]+)?`, nil},
		{"Operator", `[+\-*/~=]`, nil},
		{"Punctuation", `[:;,\[\]{}()<>]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
