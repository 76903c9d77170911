package diag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHasDiagnostics is the sentinel wrapped by Collection.Err when the
// collection is non-empty. Passes return this (via %w) rather than bailing
// on the first diagnostic: every pass accumulates across the whole program
// and fails once, so independent problems are reported together.
var ErrHasDiagnostics = errors.New("diag: one or more diagnostics were reported")

// Collection accumulates diagnostics in the order they were pushed.
type Collection struct {
	items []Diagnostic
}

// Push appends a diagnostic.
func (c *Collection) Push(d Diagnostic) {
	c.items = append(c.items, d)
}

// Pushf is a convenience wrapper around Push(New(...)).
func (c *Collection) Pushf(format string, args ...any) {
	c.Push(New(format, args...))
}

// Len returns the number of accumulated diagnostics.
func (c *Collection) Len() int {
	return len(c.items)
}

// Empty reports whether no diagnostics were accumulated.
func (c *Collection) Empty() bool {
	return len(c.items) == 0
}

// All returns the accumulated diagnostics in push order. The returned slice
// must not be mutated by callers.
func (c *Collection) All() []Diagnostic {
	return c.items
}

// Err returns nil if the collection is empty, otherwise a single error
// wrapping ErrHasDiagnostics whose message lists every accumulated
// diagnostic.
func (c *Collection) Err() error {
	if c.Empty() {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d diagnostic(s):", len(c.items))
	for _, d := range c.items {
		b.WriteString("\n  - ")
		b.WriteString(d.Message)
	}
	return fmt.Errorf("%s: %w", b.String(), ErrHasDiagnostics)
}
