package reduce

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	yaml "gopkg.in/yaml.v3"

	"cssreduce/config"
	"cssreduce/css"
	"cssreduce/pipeline"
	"cssreduce/state"
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	env.Cfg = cfg
	return ctx, env
}

// runCommand executes reduce command with arguments and returns produced output.
func runCommand(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "out")
	cmd := &cli.Command{Name: "reduce", Flags: Flags(), Action: Run}
	err := cmd.Run(ctx, append([]string{"reduce", "--output", out}, args...))
	if err != nil {
		return "", err
	}
	data, rerr := os.ReadFile(out)
	if rerr != nil {
		t.Fatalf("read output: %v", rerr)
	}
	return string(data), nil
}

func TestRun_CSS(t *testing.T) {
	ctx, _ := setupTestEnv(t)

	got, err := runCommand(t, ctx, "a { color: red; color: blue !important; color: green }")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := "a {\n  color: blue!important;\n}\n"
	if got != want {
		t.Errorf("Run() output = %q, want %q", got, want)
	}
}

func TestRun_ShortcutFlags(t *testing.T) {
	ctx, _ := setupTestEnv(t)

	got, err := runCommand(t, ctx, "--split-selectors", "--shorten-colors", "--shorten-dimensions",
		"h1, h2 { margin: 0px; color: #FFAA00 }")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := "h1 {\n  margin: 0;\n  color: #fa0;\n}\n\nh2 {\n  margin: 0;\n  color: #fa0;\n}\n"
	if got != want {
		t.Errorf("Run() output = %q, want %q", got, want)
	}
}

func TestRun_OptionFlag(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Cfg.Reducer.SplitSelectors = true

	// explicit option overrides configuration
	got, err := runCommand(t, ctx, "--option", "split_selectors=false", "a, b { top: 1px }")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "a,b {\n  top: 1px;\n}\n" {
		t.Errorf("Run() output = %q", got)
	}

	// bare name means true
	got, err = runCommand(t, ctx, "-O", "shorten_colors", "a { color: #112233 }")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(got, "#123") {
		t.Errorf("Run() output = %q, expected shortened color", got)
	}
}

func TestRun_YAML(t *testing.T) {
	ctx, _ := setupTestEnv(t)

	got, err := runCommand(t, ctx, "--format", "yaml", "a { top: 1px; left: 2px !important }")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var blocks []struct {
		Selector   string `yaml:"selector"`
		Properties map[string]struct {
			Value     string `yaml:"value"`
			Important bool   `yaml:"important"`
		} `yaml:"properties"`
	}
	if err := yaml.Unmarshal([]byte(got), &blocks); err != nil {
		t.Fatalf("output is not valid yaml: %v\n%s", err, got)
	}
	if len(blocks) != 1 || blocks[0].Selector != "a" {
		t.Fatalf("unexpected blocks: %+v", blocks)
	}
	if p := blocks[0].Properties["left"]; p.Value != "2px" || !p.Important {
		t.Errorf("left = %+v", p)
	}
	if strings.Index(got, "top") > strings.Index(got, "left") {
		t.Errorf("property order is not preserved:\n%s", got)
	}
}

func TestRun_Remote(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Cfg.Source.UserAgent = "reduce-test"
	env.Cfg.Source.Authorization = "Bearer xyz"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "reduce-test" || r.Header.Get("Authorization") != "Bearer xyz" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte("p { margin: 1px; margin: 2px }"))
	}))
	defer srv.Close()

	got, err := runCommand(t, ctx, srv.URL+"/site.css")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "p {\n  margin: 2px;\n}\n" {
		t.Errorf("Run() output = %q", got)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no sources", nil},
		{"unknown option", []string{"--option", "bogus=true", "a { top: 0 }"}},
		{"malformed option value", []string{"--option", "split_selectors=maybe", "a { top: 0 }"}},
		{"malformed option", []string{"--option", "=true", "a { top: 0 }"}},
		{"unknown format", []string{"--format", "json", "a { top: 0 }"}},
		{"no rules", []string{"/* only comment */ {"}},
		{"missing file", []string{"/nonexistent/style.css"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupTestEnv(t)
			if _, err := runCommand(t, ctx, tt.args...); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	if _, err := runCommand(t, ctx, "a { top: 0 }"); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestParseOption(t *testing.T) {
	tests := []struct {
		spec    string
		name    string
		value   bool
		wantErr bool
	}{
		{spec: "split_selectors=true", name: "split_selectors", value: true},
		{spec: "shorten_colors = 0", name: "shorten_colors", value: false},
		{spec: "remove_tabs", name: "remove_tabs", value: true},
		{spec: "remove_tabs=yes", wantErr: true},
		{spec: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			name, value, err := parseOption(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseOption(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if name != tt.name || value != tt.value {
				t.Errorf("parseOption(%q) = %q, %v", tt.spec, name, value)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	rs, err := pipeline.New(pipeline.DefaultOptions(), nil, nil, nil).ProcessText("a { top: 0 }")
	if err != nil {
		t.Fatalf("ProcessText() error = %v", err)
	}

	var buf bytes.Buffer
	if err := write(&buf, rs, config.OutputFormatCss); err != nil {
		t.Fatalf("write() error = %v", err)
	}
	if buf.String() != rs.String() {
		t.Errorf("write() = %q, want %q", buf.String(), rs.String())
	}

	if err := write(&buf, &css.RuleSet{}, config.OutputFormat(42)); err == nil {
		t.Error("Expected error for unsupported format")
	}
}
