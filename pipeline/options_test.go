package pipeline_test

import (
	"errors"
	"slices"
	"testing"

	"cssreduce/pipeline"
)

func TestOptions_SetOption(t *testing.T) {
	var opts pipeline.Options

	for _, name := range pipeline.OptionNames() {
		if err := opts.SetOption(name, true); err != nil {
			t.Fatalf("SetOption(%q) error = %v", name, err)
		}
		v, err := opts.GetOption(name)
		if err != nil || !v {
			t.Errorf("GetOption(%q) = %v, %v", name, v, err)
		}
	}

	all := pipeline.Options{
		SplitSelectors: true, ShortenDimensions: true, ShortenColors: true,
		RemoveComments: true, RemoveWhitespaces: true, RemoveTabs: true, RemoveNewlines: true,
	}
	if opts != all {
		t.Errorf("expected every option to be set, got %+v", opts)
	}
}

func TestOptions_UnknownOption(t *testing.T) {
	opts := pipeline.DefaultOptions()
	if err := opts.SetOption("split_selectors", true); err != nil {
		t.Fatalf("SetOption() error = %v", err)
	}
	before := opts

	err := opts.SetOption("bogus", true)
	var uerr *pipeline.UnknownOptionError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnknownOptionError, got %v", err)
	}
	if uerr.Name != "bogus" {
		t.Errorf("UnknownOptionError.Name = %q", uerr.Name)
	}
	if !slices.Equal(uerr.Valid, pipeline.OptionNames()) {
		t.Errorf("UnknownOptionError.Valid = %v", uerr.Valid)
	}
	if opts != before {
		t.Errorf("options changed after failed SetOption: %+v", opts)
	}

	if _, err := opts.GetOption("bogus"); !errors.As(err, &uerr) {
		t.Errorf("GetOption() expected UnknownOptionError, got %v", err)
	}
}

func TestOptions_SetOptions(t *testing.T) {
	var opts pipeline.Options

	err := opts.SetOptions(map[string]bool{"split_selectors": true, "nope": true})
	var uerr *pipeline.UnknownOptionError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnknownOptionError, got %v", err)
	}
	if opts.SplitSelectors {
		t.Error("valid options must not be applied when any name is unknown")
	}

	if err := opts.SetOptions(map[string]bool{"split_selectors": true, "remove_tabs": true}); err != nil {
		t.Fatalf("SetOptions() error = %v", err)
	}
	if !opts.SplitSelectors || !opts.RemoveTabs {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestOptions_Defaults(t *testing.T) {
	opts := pipeline.DefaultOptions()
	if opts.SplitSelectors || opts.ShortenDimensions || opts.ShortenColors {
		t.Errorf("processing options must be off by default: %+v", opts)
	}
	m := opts.Minify()
	if !m.RemoveComments || !m.RemoveWhitespaces || !m.RemoveTabs || !m.RemoveNewlines {
		t.Errorf("minification must be on by default: %+v", m)
	}
}
