package fixturelang

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
)

var parser = participle.MustBuild[File](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// Parse parses named source text into a File. On a syntax error it also
// prints a caret-style rendering of the offending line to standard output, the same
// style the distilled surface grammar's own parser uses.
func Parse(filename, source string) (*File, error) {
	file, err := parser.ParseString(filename, source)
	if err != nil {
		reportParseError(source, err)
		return nil, fmt.Errorf("fixturelang: parse %s: %w", filename, err)
	}
	return file, nil
}

func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("fixturelang: unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("fixturelang: syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("fixturelang: syntax error at line %d, column %d:", pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("  %s\n", pe.Message())
}
