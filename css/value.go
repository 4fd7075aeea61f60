package css

import (
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// units for which zero magnitude could be written without unit
var shortenableUnits = map[string]bool{
	"%": true, "cm": true, "em": true, "ex": true, "in": true,
	"mm": true, "pc": true, "pt": true, "px": true,
}

// ShortenDimension rewrites the leading dimension of a value into its shortest
// form: "0px" becomes "0" and "0.9em" becomes ".9em". Only the first token is
// considered, anything else is returned unchanged.
func ShortenDimension(value string) string {
	lex := css.NewLexer(parse.NewInput(strings.NewReader(value)))
	tt, data := lex.Next()
	if tt != css.DimensionToken && tt != css.PercentageToken {
		return value
	}

	tok := string(data)
	num, unit := splitDimension(tok)
	if !shortenableUnits[strings.ToLower(unit)] || !isMagnitude(num) {
		return value
	}

	rest := value[len(tok):]
	switch {
	case strings.Trim(num, "0.") == "":
		return "0" + rest
	case strings.EqualFold(unit, "em") && strings.HasPrefix(num, "0."):
		return num[1:] + unit + rest
	}
	return value
}

// splitDimension separates numeric part from unit.
func splitDimension(s string) (string, string) {
	end := 0
	for i, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '+' {
			end = i + 1
		} else {
			break
		}
	}
	return s[:end], s[end:]
}

// isMagnitude reports whether s is an unsigned integer or decimal number.
func isMagnitude(s string) bool {
	var digits, dots int
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1 && !strings.HasSuffix(s, ".")
}

// ShortenHexColor lowercases six digit hex colors and shortens them to three
// digits when possible: "#FFCC00" becomes "#fc0".
func ShortenHexColor(value string) string {
	if len(value) != 7 || value[0] != '#' {
		return value
	}
	hex := strings.ToLower(value[1:])
	for _, r := range hex {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return value
		}
	}
	if hex[0] == hex[1] && hex[2] == hex[3] && hex[4] == hex[5] {
		return "#" + string([]byte{hex[0], hex[2], hex[4]})
	}
	return "#" + hex
}
