package pipeline

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"cssreduce/minify"
)

// Options controls processing. Names used by SetOption are the yaml keys.
type Options struct {
	SplitSelectors    bool `yaml:"split_selectors"`
	ShortenDimensions bool `yaml:"shorten_dimensions"`
	ShortenColors     bool `yaml:"shorten_colors"`

	// forwarded to minifier as is
	RemoveComments    bool `yaml:"remove_comments"`
	RemoveWhitespaces bool `yaml:"remove_whitespaces"`
	RemoveTabs        bool `yaml:"remove_tabs"`
	RemoveNewlines    bool `yaml:"remove_newlines"`
}

// NOTE: must match yaml field names above
var optionFields = map[string]func(*Options) *bool{
	"split_selectors":    func(o *Options) *bool { return &o.SplitSelectors },
	"shorten_dimensions": func(o *Options) *bool { return &o.ShortenDimensions },
	"shorten_colors":     func(o *Options) *bool { return &o.ShortenColors },
	"remove_comments":    func(o *Options) *bool { return &o.RemoveComments },
	"remove_whitespaces": func(o *Options) *bool { return &o.RemoveWhitespaces },
	"remove_tabs":        func(o *Options) *bool { return &o.RemoveTabs },
	"remove_newlines":    func(o *Options) *bool { return &o.RemoveNewlines },
}

// UnknownOptionError is returned when option name is not recognized.
type UnknownOptionError struct {
	Name  string
	Valid []string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("option %q does not exist, the following options are allowed: %s", e.Name, strings.Join(e.Valid, ", "))
}

// DefaultOptions returns options with all minification enabled.
func DefaultOptions() Options {
	return Options{
		RemoveComments:    true,
		RemoveWhitespaces: true,
		RemoveTabs:        true,
		RemoveNewlines:    true,
	}
}

// OptionNames returns sorted list of recognized option names.
func OptionNames() []string {
	return slices.Sorted(maps.Keys(optionFields))
}

// SetOption sets option by name. Options are left unchanged on error.
func (o *Options) SetOption(name string, value bool) error {
	field, ok := optionFields[name]
	if !ok {
		return &UnknownOptionError{Name: name, Valid: OptionNames()}
	}
	*field(o) = value
	return nil
}

// SetOptions sets several options at once. All names are checked before
// anything is changed.
func (o *Options) SetOptions(values map[string]bool) error {
	names := slices.Sorted(maps.Keys(values))
	for _, name := range names {
		if _, ok := optionFields[name]; !ok {
			return &UnknownOptionError{Name: name, Valid: OptionNames()}
		}
	}
	for _, name := range names {
		*optionFields[name](o) = values[name]
	}
	return nil
}

// GetOption returns option value by name.
func (o *Options) GetOption(name string) (bool, error) {
	field, ok := optionFields[name]
	if !ok {
		return false, &UnknownOptionError{Name: name, Valid: OptionNames()}
	}
	return *field(o), nil
}

// Minify returns options for minifier.
func (o Options) Minify() minify.Options {
	return minify.Options{
		RemoveComments:    o.RemoveComments,
		RemoveWhitespaces: o.RemoveWhitespaces,
		RemoveTabs:        o.RemoveTabs,
		RemoveNewlines:    o.RemoveNewlines,
	}
}
