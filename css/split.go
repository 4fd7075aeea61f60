package css

import (
	"slices"
	"strings"
)

// SplitSelectors expands grouped selectors, e.g. "a, b {}" becomes "a {}"
// and "b {}". Every produced rule gets its own copy of declarations.
// Expanded rules are inserted in place of the original one.
func SplitSelectors(rules []Rule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if !r.HasGroupedSelector() {
			out = append(out, r)
			continue
		}
		for s := range strings.SplitSeq(r.Selector, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			out = append(out, Rule{
				Selector:     s,
				Declarations: slices.Clone(r.Declarations),
			})
		}
	}
	return out
}
