package css

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v3"
)

// Property accumulates declarations of a single property name and selects
// the one in effect.
type Property struct {
	name    string
	history []Declaration
}

// NewProperty creates property with empty declaration history.
func NewProperty(name string) *Property {
	return &Property{name: name}
}

// Name returns property name.
func (p *Property) Name() string {
	return p.name
}

// Len returns number of collected declarations.
func (p *Property) Len() int {
	return len(p.history)
}

// Append adds declaration to the end of history.
func (p *Property) Append(d Declaration) {
	p.history = append(p.history, d)
}

// Parse decodes importance marker from value text and appends the result.
func (p *Property) Parse(name, value string) {
	p.Append(NewDeclaration(name, value))
}

// Reduce returns declaration which wins in the cascade within a single
// block. Later declarations win, except that once an important declaration
// has been seen only another important declaration can replace it.
func (p *Property) Reduce() (Declaration, error) {
	if len(p.history) == 0 {
		return Declaration{}, &EmptyHistoryError{Name: p.name}
	}

	var (
		importantSeen bool
		winner        int
	)
	for i, d := range p.history {
		if importantSeen && !d.Important {
			continue
		}
		if d.Important {
			importantSeen = true
		}
		winner = i
	}
	return p.history[winner], nil
}

// Merge reduces other property and appends its result to p. Importance is
// carried through the textual marker, the same way it arrives from source.
func (p *Property) Merge(other *Property) error {
	d, err := other.Reduce()
	if err != nil {
		return fmt.Errorf("unable to merge property: %w", err)
	}
	p.Parse(d.Name, d.ValueText())
	return nil
}

// ReduceRule groups rule declarations by property name and reduces every
// group. Properties keep order of their first appearance.
func ReduceRule(r Rule) (Block, error) {
	groups := orderedmap.NewOrderedMap[string, *Property]()
	for _, d := range r.Declarations {
		prop, ok := groups.Get(d.Name)
		if !ok {
			prop = NewProperty(d.Name)
			groups.Set(d.Name, prop)
		}
		prop.Append(d)
	}

	b := NewBlock(r.Selector)
	for name, prop := range groups.AllFromFront() {
		d, err := prop.Reduce()
		if err != nil {
			return Block{}, fmt.Errorf("unable to reduce rule %q: %w", r.Selector, err)
		}
		b.Properties.Set(name, d)
	}
	return b, nil
}
