package css

import "testing"

func TestDumpRules(t *testing.T) {
	rules := []Rule{
		{Selector: "a", Declarations: []Declaration{
			{Name: "color", Value: "red"},
			{Name: "color", Value: "blue", Important: true},
		}},
		{Selector: "b"},
	}

	want := `rule[0] selector="a" declarations=2
  [0] color: "red"
  [1] color: "blue" (important)
rule[1] selector="b" declarations=0
`
	if got := DumpRules(rules); got != want {
		t.Errorf("DumpRules() = %q, want %q", got, want)
	}
}

func TestDumpRules_Empty(t *testing.T) {
	if got := DumpRules(nil); got != "" {
		t.Errorf("DumpRules(nil) = %q, want empty", got)
	}
}
