package rules

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// combiningAccents maps combining marks to the TeX accent command applied to
// the preceding base character.
var combiningAccents = map[rune]string{
	0x0300: "`",  // grave
	0x0301: "'",  // acute
	0x0302: "^",  // circumflex
	0x0303: "~",  // tilde
	0x0304: "=",  // macron
	0x0306: "u",  // breve
	0x0307: ".",  // dot above
	0x0308: "\"", // diaeresis
	0x030A: "r",  // ring above
	0x030B: "H",  // double acute
	0x030C: "v",  // caron
	0x0327: "c",  // cedilla
	0x0328: "k",  // ogonek
}

// specialLetters maps characters that have a dedicated TeX command rather
// than a base-plus-accent decomposition.
var specialLetters = map[rune]string{
	'ß': `{\ss}`,
	'æ': `{\ae}`,
	'Æ': `{\AE}`,
	'œ': `{\oe}`,
	'Œ': `{\OE}`,
	'ø': `{\o}`,
	'Ø': `{\O}`,
	'ł': `{\l}`,
	'Ł': `{\L}`,
	'ı': `{\i}`,
	'đ': `{\dj}`,
	'Đ': `{\DJ}`,
	'ð': `{\dh}`,
	'Ð': `{\DH}`,
	'þ': `{\th}`,
	'Þ': `{\TH}`,
	'¡': "{!`}",
	'¿': "{?`}",
}

// escapeTeX rewrites non-ASCII characters as TeX escape sequences via NFD
// decomposition. ok is false when any character has no known escape, in
// which case no partial rewrite is offered.
func escapeTeX(s string) (string, bool) {
	var sb strings.Builder
	for _, r := range s {
		if r < 128 {
			sb.WriteRune(r)
			continue
		}
		if esc, ok := specialLetters[r]; ok {
			sb.WriteString(esc)
			continue
		}
		esc, ok := decomposeAccent(r)
		if !ok {
			return "", false
		}
		sb.WriteString(esc)
	}
	return sb.String(), true
}

// decomposeAccent handles the base-plus-combining-mark shape, e.g.
// 'é' (U+00E9) decomposes to 'e' + U+0301 and renders as {\'e}.
func decomposeAccent(r rune) (string, bool) {
	d := []rune(norm.NFD.String(string(r)))
	if len(d) != 2 {
		return "", false
	}
	base, mark := d[0], d[1]
	if base > 127 || !unicode.IsLetter(base) {
		return "", false
	}
	cmd, ok := combiningAccents[mark]
	if !ok {
		return "", false
	}
	baseStr := string(base)
	// Dotted i and j take the dotless form under an accent.
	if base == 'i' {
		baseStr = `\i `
	} else if base == 'j' {
		baseStr = `\j `
	}
	if cmd[0] >= 'a' && cmd[0] <= 'z' || cmd[0] >= 'A' && cmd[0] <= 'Z' {
		// Letter commands need a separating space: {\v c}.
		return `{\` + cmd + ` ` + strings.TrimSuffix(baseStr, " ") + `}`, true
	}
	return `{\` + cmd + baseStr + `}`, true
}
