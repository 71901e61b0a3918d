// Package diag carries the ordered, human-readable warnings produced while
// matching samples and assembling count tables. A Collector is owned by a
// single unit of work (one series or one group-pair) and is not safe for
// concurrent use; independent units each get their own and are merged by the
// caller.
package diag

import (
	"fmt"
	"strings"
)

// Diagnostic is one warning, tagged with where it came from.
type Diagnostic struct {
	Series  string
	Pair    int // 1-based index of the group-pair within its series, 0 if not pair-specific
	Message string
}

func (d Diagnostic) String() string {
	var tag []string
	if d.Series != "" {
		tag = append(tag, d.Series)
	}
	if d.Pair > 0 {
		tag = append(tag, fmt.Sprintf("pair %d", d.Pair))
	}
	if len(tag) == 0 {
		return d.Message
	}

	return fmt.Sprintf("[%s] %s", strings.Join(tag, "/"), d.Message)
}

// Collector accumulates diagnostics in emission order. A silent collector
// drops everything; the code paths that emit are still taken.
type Collector struct {
	Silent bool
	series string
	pair   int
	items  *[]Diagnostic
}

// New returns a collector whose diagnostics are tagged with series.
func New(series string, silent bool) *Collector {
	return &Collector{
		Silent: silent,
		series: series,
		items:  &[]Diagnostic{},
	}
}

// ForPair returns a collector sharing the same backing list, whose diagnostics
// are additionally tagged with the 1-based pair index.
func (c *Collector) ForPair(pair int) *Collector {
	if c == nil {
		return nil
	}

	return &Collector{
		Silent: c.Silent,
		series: c.series,
		pair:   pair,
		items:  c.items,
	}
}

// Warnf records a formatted diagnostic. Calling Warnf on a nil Collector is a
// no-op, so callers that do not care may pass nil.
func (c *Collector) Warnf(format string, args ...interface{}) {
	if c == nil || c.Silent {
		return
	}

	*c.items = append(*c.items, Diagnostic{
		Series:  c.series,
		Pair:    c.pair,
		Message: fmt.Sprintf(format, args...),
	})
}

// Items returns the diagnostics recorded so far, in order.
func (c *Collector) Items() []Diagnostic {
	if c == nil {
		return nil
	}

	return append([]Diagnostic(nil), (*c.items)...)
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}

	return len(*c.items)
}

// Messages returns only the message text of each diagnostic.
func (c *Collector) Messages() []string {
	items := c.Items()
	out := make([]string, 0, len(items))
	for _, v := range items {
		out = append(out, v.Message)
	}

	return out
}

// Append copies the diagnostics of other onto the end of c, keeping their tags.
func (c *Collector) Append(other *Collector) {
	if c == nil || other == nil || c.items == other.items {
		return
	}

	*c.items = append(*c.items, other.Items()...)
}
