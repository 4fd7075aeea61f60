package css

import (
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser splits CSS text into rules. It does not support nesting: a "{"
// inside an open block is kept as declaration text and the first "}" always
// closes the block.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

type token struct {
	tt   css.TokenType
	data string
}

// Parse parses CSS text into rules in source order. Declarations are not
// reduced. If no rule could be found ParseError is returned.
func (p *Parser) Parse(text string) ([]Rule, error) {
	lex := css.NewLexer(parse.NewInput(strings.NewReader(text)))

	var (
		rules    []Rule
		selector strings.Builder
		body     []token
		inBlock  bool
	)

	for {
		tt, data := lex.Next()
		if tt == css.ErrorToken {
			if err := lex.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.log.Debug("CSS lexer error", zap.Error(err))
			}
			break
		}
		if tt == css.CommentToken {
			continue
		}

		if !inBlock {
			switch tt {
			case css.LeftBraceToken:
				inBlock = true
				body = body[:0]
			case css.RightBraceToken:
				// stray closing brace, whatever was collected is not a selector
				p.log.Debug("Ignoring unbalanced closing brace", zap.String("text", selector.String()))
				selector.Reset()
			default:
				selector.Write(data)
			}
			continue
		}

		if tt == css.RightBraceToken {
			rule := Rule{
				Selector:     strings.TrimSpace(selector.String()),
				Declarations: p.parseDeclarations(body),
			}
			if strings.HasPrefix(rule.Selector, "@") {
				p.log.Debug("At-rules are not supported, treating as plain rule", zap.String("selector", rule.Selector))
			}
			rules = append(rules, rule)
			selector.Reset()
			inBlock = false
			continue
		}
		body = append(body, token{tt: tt, data: string(data)})
	}

	if inBlock {
		p.log.Warn("Dropping unterminated rule", zap.String("selector", strings.TrimSpace(selector.String())))
	} else if rest := strings.TrimSpace(selector.String()); rest != "" {
		p.log.Debug("Ignoring trailing text", zap.String("text", rest))
	}

	if len(rules) == 0 {
		return nil, &ParseError{Msg: "no rules found"}
	}
	p.log.Debug("Parsed CSS", zap.Int("bytes", len(text)), zap.Int("rules", len(rules)))
	return rules, nil
}

// parseDeclarations splits block tokens into declarations on ";" which are
// not enclosed in parentheses or brackets.
func (p *Parser) parseDeclarations(body []token) []Declaration {
	var (
		decls []Declaration
		start int
		depth int
	)
	for i, t := range body {
		switch t.tt {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		case css.SemicolonToken:
			if depth == 0 {
				if d, ok := p.parseDeclaration(body[start:i]); ok {
					decls = append(decls, d)
				}
				start = i + 1
			}
		}
	}
	if d, ok := p.parseDeclaration(body[start:]); ok {
		decls = append(decls, d)
	}
	return decls
}

// parseDeclaration splits a segment on its first colon.
func (p *Parser) parseDeclaration(segment []token) (Declaration, bool) {
	colon := -1
	for i, t := range segment {
		if t.tt == css.ColonToken {
			colon = i
			break
		}
	}

	if colon < 0 {
		if text := strings.TrimSpace(joinTokens(segment)); text != "" {
			p.log.Debug("Skipping declaration without colon", zap.String("text", text))
		}
		return Declaration{}, false
	}

	name := strings.TrimSpace(joinTokens(segment[:colon]))
	if name == "" || strings.ContainsAny(name, " \t\r\n\f{}") {
		p.log.Debug("Skipping declaration with malformed name", zap.String("name", name))
		return Declaration{}, false
	}
	return NewDeclaration(name, joinTokens(segment[colon+1:])), true
}

func joinTokens(tokens []token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.data)
	}
	return sb.String()
}
