package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Reporter renders Diagnostic values against a named source, in the same
// caret-underline style as a Rust-like compiler frontend: a "-->" line
// naming file:line:col, the offending source line behind a bare "|" gutter
// (no line numbers), and a colored marker beneath it.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter builds a Reporter for a named source file.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{filename: filename, lines: strings.Split(source, "\n")}
}

// Render writes a human-readable rendering of d to w.
func (r *Reporter) Render(w io.Writer, d Diagnostic) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s: %s\n", red("error"), d.Message)

	if d.Loc != nil {
		r.renderLocation(w, d.Loc, dim, bold)
	}

	for _, ref := range d.Refs {
		fmt.Fprintf(w, "  %s %s (node #%d)\n", dim("note:"), ref.Reason, ref.NodeID)
		if ref.Loc != nil {
			r.renderLocation(w, ref.Loc, dim, bold)
		}
	}
	fmt.Fprintln(w)
}

// RenderAll renders every diagnostic in a collection in order.
func (r *Reporter) RenderAll(w io.Writer, c *Collection) {
	for _, d := range c.All() {
		r.Render(w, d)
	}
}

func (r *Reporter) renderLocation(w io.Writer, loc *SourceLocation, dim, bold func(...any) string) {
	// Frames are outermost-first; indent deeper frames further so the
	// immediate cause reads at the bottom, like a reversed backtrace.
	for depth, f := range loc.Frames {
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(w, "%s%s %s:%d:%d", indent, dim("-->"), f.File, f.Line, f.Column)
		if f.Function != "" {
			fmt.Fprintf(w, " in %s", f.Function)
		}
		fmt.Fprintln(w)

		line := f.Source
		if line == "" && f.Line > 0 && f.Line <= len(r.lines) {
			line = r.lines[f.Line-1]
		}
		if line != "" {
			fmt.Fprintf(w, "%s %s %s\n", indent, dim("|"), line)
			marker := strings.Repeat(" ", max0(f.Column-1)) + bold("^")
			fmt.Fprintf(w, "%s %s %s\n", indent, dim("|"), marker)
		}
	}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
