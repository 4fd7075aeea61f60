// Package minify strips comments and insignificant whitespace from CSS text
// before it is parsed.
package minify

import (
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Options selects what is removed. All removals are token aware: nothing
// inside strings or url() is touched.
type Options struct {
	RemoveComments    bool
	RemoveWhitespaces bool
	RemoveTabs        bool
	RemoveNewlines    bool
}

// Minifier is a text to text CSS transformation. Minify is idempotent.
type Minifier struct {
	log *zap.Logger
}

// New creates minifier.
func New(log *zap.Logger) *Minifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Minifier{log: log.Named("minify")}
}

type token struct {
	tt   css.TokenType
	data string
}

// Minify returns text with requested constructs removed.
func (m *Minifier) Minify(text string, opts Options) string {
	tokens := m.tokenize(text, opts.RemoveComments)

	var sb strings.Builder
	sb.Grow(len(text))
	for i, t := range tokens {
		if t.tt != css.WhitespaceToken {
			sb.WriteString(t.data)
			continue
		}

		var prev, next *token
		if i > 0 {
			prev = &tokens[i-1]
		}
		if i < len(tokens)-1 {
			next = &tokens[i+1]
		}
		sb.WriteString(whitespace(t.data, prev, next, opts))
	}

	out := sb.String()
	if len(out) != len(text) {
		m.log.Debug("Minified CSS", zap.Int("before", len(text)), zap.Int("after", len(out)))
	}
	return out
}

// tokenize lexes text, optionally dropping comments. Whitespace left around a
// dropped comment is merged into a single token, a comment directly between
// two tokens is replaced with a space.
func (m *Minifier) tokenize(text string, dropComments bool) []token {
	lex := css.NewLexer(parse.NewInput(strings.NewReader(text)))

	var (
		tokens []token
		gap    bool // dropped comment was the only thing keeping tokens apart
	)
	for {
		tt, data := lex.Next()
		if tt == css.ErrorToken {
			if err := lex.Err(); err != nil && !errors.Is(err, io.EOF) {
				m.log.Debug("CSS lexer error", zap.Error(err))
			}
			return tokens
		}
		if tt == css.CommentToken && dropComments {
			if n := len(tokens); n > 0 && tokens[n-1].tt != css.WhitespaceToken && !separator(tokens[n-1].tt, true) {
				gap = true
			}
			continue
		}
		if gap && tt != css.WhitespaceToken && !separator(tt, false) {
			tokens = append(tokens, token{tt: css.WhitespaceToken, data: " "})
		}
		gap = false
		if tt == css.WhitespaceToken && len(tokens) > 0 && tokens[len(tokens)-1].tt == css.WhitespaceToken {
			tokens[len(tokens)-1].data += string(data)
			continue
		}
		tokens = append(tokens, token{tt: tt, data: string(data)})
	}
}

// whitespace returns replacement for a whitespace run between prev and next
// (either could be nil at the text boundaries).
func whitespace(ws string, prev, next *token, opts Options) string {
	if opts.RemoveWhitespaces {
		if prev == nil || next == nil || separator(prev.tt, true) || separator(next.tt, false) {
			return ""
		}
		return " "
	}

	if opts.RemoveTabs {
		ws = strings.ReplaceAll(ws, "\t", " ")
	}
	if opts.RemoveNewlines {
		ws = strings.NewReplacer("\r\n", "", "\n", "", "\r", "", "\f", "").Replace(ws)
		if ws == "" && prev != nil && next != nil && !separator(prev.tt, true) && !separator(next.tt, false) {
			// keep tokens apart
			ws = " "
		}
	}
	return ws
}

// separator reports whether whitespace next to the token is insignificant.
// Space before a colon is kept since in selectors "a :hover" differs from
// "a:hover".
func separator(tt css.TokenType, before bool) bool {
	switch tt {
	case css.LeftBraceToken, css.RightBraceToken, css.SemicolonToken, css.CommaToken:
		return true
	case css.ColonToken:
		return before
	}
	return false
}
