package css

import (
	"strings"

	"github.com/elliotchance/orderedmap/v3"
)

// importantMarker is the textual form of the importance flag. It only exists
// at the parse and render edges, everywhere else Declaration.Important is used.
const importantMarker = "!important"

// Declaration represents a single "name: value" pair from a rule body.
type Declaration struct {
	Name      string `yaml:"-"`
	Value     string `yaml:"value"`     // value text without importance marker
	Important bool   `yaml:"important"` // true if declaration was marked with !important
}

// ValueText returns the value with importance marker re-applied if necessary.
func (d Declaration) ValueText() string {
	if d.Important {
		return d.Value + importantMarker
	}
	return d.Value
}

// String returns the CSS representation of the declaration.
func (d Declaration) String() string {
	return d.Name + ":" + d.ValueText()
}

// NewDeclaration decodes importance marker from the value text.
func NewDeclaration(name, value string) Declaration {
	value, important := splitImportant(value)
	return Declaration{Name: strings.TrimSpace(name), Value: value, Important: important}
}

// splitImportant removes trailing "!important" markers (case insensitive,
// whitespace is allowed between "!" and the keyword) from the value. Repeated
// markers are all removed.
func splitImportant(value string) (string, bool) {
	v, important := strings.TrimSpace(value), false
	for {
		rest, ok := trimImportant(v)
		if !ok {
			return v, important
		}
		v, important = rest, true
	}
}

func trimImportant(v string) (string, bool) {
	const keyword = "important"

	if len(v) < len(keyword) || !strings.EqualFold(v[len(v)-len(keyword):], keyword) {
		return v, false
	}
	rest := strings.TrimSpace(v[:len(v)-len(keyword)])
	if !strings.HasSuffix(rest, "!") {
		return v, false
	}
	return strings.TrimSpace(rest[:len(rest)-1]), true
}

// Rule is a parsed selector with its declarations before reduction. The same
// property name may appear multiple times, declarations are in source order.
type Rule struct {
	Selector     string
	Declarations []Declaration
}

// HasGroupedSelector returns true if selector is a comma separated list.
func (r Rule) HasGroupedSelector() bool {
	return strings.Contains(r.Selector, ",")
}

// Block is a selector with reduced properties: property names are unique and
// kept in order of their first appearance in the source.
type Block struct {
	Selector   string
	Properties *orderedmap.OrderedMap[string, Declaration]
}

// NewBlock creates an empty block for the selector.
func NewBlock(selector string) Block {
	return Block{
		Selector:   selector,
		Properties: orderedmap.NewOrderedMap[string, Declaration](),
	}
}

// GetProperty returns the reduced declaration for a property name.
func (b Block) GetProperty(name string) (Declaration, bool) {
	if b.Properties == nil {
		return Declaration{}, false
	}
	return b.Properties.Get(name)
}

// Len returns number of properties in the block.
func (b Block) Len() int {
	if b.Properties == nil {
		return 0
	}
	return b.Properties.Len()
}

// MapValues returns a copy of the block with fn applied to every property
// value. Importance and order are preserved.
func (b Block) MapValues(fn func(string) string) Block {
	nb := NewBlock(b.Selector)
	if b.Properties == nil {
		return nb
	}
	for name, d := range b.Properties.AllFromFront() {
		d.Value = fn(d.Value)
		nb.Properties.Set(name, d)
	}
	return nb
}

// RuleSet is the final result of processing: reduced blocks in source order.
type RuleSet struct {
	Blocks []Block
}

// BlocksBySelector returns all blocks with the given selector.
func (rs *RuleSet) BlocksBySelector(selector string) []Block {
	var matches []Block
	for _, b := range rs.Blocks {
		if b.Selector == selector {
			matches = append(matches, b)
		}
	}
	return matches
}
