package css

import (
	"fmt"
	"io"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// WriteTo writes rule set as CSS text to w in source order, implementing
// io.WriterTo. Properties are written in order of their first appearance.
func (rs *RuleSet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, b := range rs.Blocks {
		n, err := writeBlock(w, b)
		total += int64(n)
		if err != nil {
			return total, err
		}

		// Add blank line between blocks (except after last)
		if i < len(rs.Blocks)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// String returns the CSS text of the rule set.
func (rs *RuleSet) String() string {
	var sb strings.Builder
	rs.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeBlock(w io.Writer, b Block) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s {\n", b.Selector)
	total += n
	if err != nil {
		return total, err
	}
	if b.Properties != nil {
		for name, d := range b.Properties.AllFromFront() {
			n, err = fmt.Fprintf(w, "  %s: %s;\n", name, d.ValueText())
			total += n
			if err != nil {
				return total, err
			}
		}
	}
	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}

// MarshalYAML produces sequence of blocks keeping property order, plain maps
// would be sorted by encoder.
func (rs *RuleSet) MarshalYAML() (any, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, b := range rs.Blocks {
		props := &yaml.Node{Kind: yaml.MappingNode}
		if b.Properties != nil {
			for name, d := range b.Properties.AllFromFront() {
				val := &yaml.Node{}
				if err := val.Encode(d); err != nil {
					return nil, fmt.Errorf("unable to encode property %q: %w", name, err)
				}
				props.Content = append(props.Content, strNode(name), val)
			}
		}
		seq.Content = append(seq.Content, &yaml.Node{
			Kind: yaml.MappingNode,
			Content: []*yaml.Node{
				strNode("selector"), strNode(b.Selector),
				strNode("properties"), props,
			},
		})
	}
	return seq, nil
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
