// Package pipeline glues loading, minification, parsing and reduction of CSS
// together.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"cssreduce/css"
	"cssreduce/minify"
	"cssreduce/source"
)

// Loader resolves single source reference into CSS text.
type Loader interface {
	Load(ctx context.Context, ref string) (string, error)
}

// Minifier is an opaque text to text transformation applied before parsing.
type Minifier interface {
	Minify(text string, opts minify.Options) string
}

// Reducer runs the processing pipeline. It keeps no state between calls.
type Reducer struct {
	opts   Options
	log    *zap.Logger
	loader Loader
	mini   Minifier
	parser *css.Parser
}

// New creates Reducer. Nil loader and minifier are replaced with default
// implementations.
func New(opts Options, log *zap.Logger, loader Loader, minifier Minifier) *Reducer {
	if log == nil {
		log = zap.NewNop()
	}
	if loader == nil {
		loader = source.NewLoader(log)
	}
	if minifier == nil {
		minifier = minify.New(log)
	}
	return &Reducer{
		opts:   opts,
		log:    log.Named("pipeline"),
		loader: loader,
		mini:   minifier,
		parser: css.NewParser(log),
	}
}

// Options returns options in effect.
func (r *Reducer) Options() Options {
	return r.opts
}

// Process loads all inputs in order, concatenates them and reduces result.
// Any failure invalidates the whole result.
func (r *Reducer) Process(ctx context.Context, inputs ...string) (*css.RuleSet, error) {
	if len(inputs) == 0 {
		return nil, errors.New("no css sources specified")
	}

	var sb strings.Builder
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := r.loader.Load(ctx, in)
		if err != nil {
			return nil, err
		}
		sb.WriteString(text)
	}
	return r.ProcessText(sb.String())
}

// ProcessText reduces CSS text.
func (r *Reducer) ProcessText(text string) (*css.RuleSet, error) {
	defer func(start time.Time) {
		r.log.Debug("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	text = r.mini.Minify(text, r.opts.Minify())

	rules, err := r.parser.Parse(text)
	if err != nil {
		return nil, err
	}
	if ce := r.log.Check(zap.DebugLevel, "Parsed CSS"); ce != nil {
		ce.Write(zap.Int("rules", len(rules)), zap.String("tree", css.DumpRules(rules)))
	}
	if r.opts.SplitSelectors {
		before := len(rules)
		rules = css.SplitSelectors(rules)
		r.log.Debug("Split grouped selectors", zap.Int("before", before), zap.Int("after", len(rules)))
	}

	rs := &css.RuleSet{Blocks: make([]css.Block, 0, len(rules))}
	var declarations, properties int
	for _, rule := range rules {
		b, err := css.ReduceRule(rule)
		if err != nil {
			return nil, fmt.Errorf("unable to reduce css: %w", err)
		}
		if r.opts.ShortenDimensions {
			b = b.MapValues(css.ShortenDimension)
		}
		if r.opts.ShortenColors {
			b = b.MapValues(css.ShortenHexColor)
		}
		declarations += len(rule.Declarations)
		properties += b.Len()
		rs.Blocks = append(rs.Blocks, b)
	}

	r.log.Debug("Reduced CSS",
		zap.Int("blocks", len(rs.Blocks)),
		zap.Int("declarations", declarations),
		zap.Int("properties", properties))
	return rs, nil
}
