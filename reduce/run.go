// Package reduce implements "reduce" command: loads css sources, reduces them
// into a single rule set and writes result.
package reduce

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"cssreduce/config"
	"cssreduce/css"
	"cssreduce/pipeline"
	"cssreduce/source"
	"cssreduce/state"
)

// shortcut flags and options they control
var optionFlags = []struct {
	flag, option, usage string
}{
	{"split-selectors", "split_selectors", "expand grouped selectors into independent rules"},
	{"shorten-dimensions", "shorten_dimensions", "rewrite zero dimensions and fractional em values into shortest form"},
	{"shorten-colors", "shorten_colors", "shorten six digit hex colors"},
}

// Flags returns command line flags "reduce" command understands.
func Flags() []cli.Flag {
	flags := make([]cli.Flag, 0, len(optionFlags)+3)
	for _, of := range optionFlags {
		flags = append(flags, &cli.BoolFlag{Name: of.flag, Usage: of.usage + " (overwrites configuration)"})
	}
	return append(flags,
		&cli.StringSliceFlag{Name: "option", Aliases: []string{"O"},
			Usage: "set processing option as `NAME=BOOL` (supported options: " + strings.Join(pipeline.OptionNames(), ", ") + ")"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"},
			Usage: "output `TYPE` (supported types: " + strings.Join(config.OutputFormatNames(), ", ") + "), overwrites configuration"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write result to `FILE` instead of STDOUT"},
	)
}

// request is everything needed to perform reduction, independent of cli.
type request struct {
	sources []string
	opts    pipeline.Options
	format  config.OutputFormat
	output  string
}

func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("reduce")

	req := request{
		sources: cmd.Args().Slice(),
		opts:    env.Cfg.Reducer,
		format:  env.Cfg.Output.Format,
		output:  cmd.String("output"),
	}
	if len(req.sources) == 0 {
		return errors.New("no css sources have been specified")
	}

	for _, of := range optionFlags {
		if !cmd.IsSet(of.flag) {
			continue
		}
		if err := req.opts.SetOption(of.option, cmd.Bool(of.flag)); err != nil {
			return err
		}
	}
	for _, spec := range cmd.StringSlice("option") {
		name, value, err := parseOption(spec)
		if err != nil {
			return err
		}
		if err := req.opts.SetOption(name, value); err != nil {
			return err
		}
	}

	if cmd.IsSet("format") {
		format, err := config.ParseOutputFormat(strings.ToLower(cmd.String("format")))
		if err != nil {
			return fmt.Errorf("unable to use requested output format: %w", err)
		}
		req.format = format
	}

	log.Info("Processing starting", zap.Strings("sources", req.sources), zap.Stringer("format", req.format), zap.Any("options", req.opts))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, env, req, log)
}

// parseOption splits "name=value" option specification. Name alone means true.
func parseOption(spec string) (string, bool, error) {
	name, value, found := strings.Cut(spec, "=")
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return "", false, fmt.Errorf("malformed option specification %q", spec)
	}
	if !found {
		return name, true, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return "", false, fmt.Errorf("malformed value for option %q: %w", name, err)
	}
	return name, b, nil
}

func process(ctx context.Context, env *state.LocalEnv, req request, log *zap.Logger) (err error) {
	loader := source.NewLoader(env.Log,
		source.WithTimeout(env.Cfg.Source.Timeout),
		source.WithUserAgent(env.Cfg.Source.UserAgent),
		source.WithAuthorization(string(env.Cfg.Source.Authorization)),
	)

	rs, err := pipeline.New(req.opts, env.Log, loader, nil).Process(ctx, req.sources...)
	if err != nil {
		return err
	}
	log.Debug("Reduced", zap.Int("blocks", len(rs.Blocks)))

	var out io.Writer = os.Stdout
	if len(req.output) > 0 {
		f, ferr := os.Create(req.output)
		if ferr != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", req.output, ferr)
		}
		defer func() {
			err = multierr.Append(err, f.Close())
		}()
		out = f
	}
	return write(out, rs, req.format)
}

func write(w io.Writer, rs *css.RuleSet, format config.OutputFormat) error {
	switch format {
	case config.OutputFormatCss:
		if _, err := rs.WriteTo(w); err != nil {
			return fmt.Errorf("unable to write css: %w", err)
		}
	case config.OutputFormatYaml:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rs); err != nil {
			return fmt.Errorf("unable to write yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("unable to write yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	return nil
}
