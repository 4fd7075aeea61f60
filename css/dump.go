package css

import (
	"fmt"
	"strconv"
	"strings"
)

// treeWriter produces indented text for manual inspection of parsed css.
type treeWriter struct {
	w strings.Builder
}

func (tw *treeWriter) line(depth int, format string, args ...any) {
	for range depth {
		tw.w.WriteString("  ")
	}
	fmt.Fprintf(&tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// DumpRules returns readable tree of parsed rules with every declaration in
// source order, before any reduction happens. It exists solely for debugging.
func DumpRules(rules []Rule) string {
	var tw treeWriter
	for i, r := range rules {
		tw.line(0, "rule[%d] selector=%s declarations=%d", i, strconv.Quote(r.Selector), len(r.Declarations))
		for j, d := range r.Declarations {
			if d.Important {
				tw.line(1, "[%d] %s: %s (important)", j, d.Name, strconv.Quote(d.Value))
				continue
			}
			tw.line(1, "[%d] %s: %s", j, d.Name, strconv.Quote(d.Value))
		}
	}
	return tw.w.String()
}
