package css

import "fmt"

// ParseError is returned when the text does not contain a single rule block.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return "unable to parse css: " + e.Msg
}

// EmptyHistoryError is returned when reduction is requested for a property
// which has not collected any declarations. Well formed parser output never
// leads to it.
type EmptyHistoryError struct {
	Name string
}

func (e *EmptyHistoryError) Error() string {
	return fmt.Sprintf("property %q has no declarations to reduce", e.Name)
}
