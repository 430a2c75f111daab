package pattern

import (
	"regexp"
	"strings"

	"github.com/wayfind-dev/wayfind/pkg/convert"
)

// CompileRegexp compiles a raw regular expression as a pattern.
//
// Named groups become named captures and unnamed groups positional
// captures; both carry the identity conversion, so captured values are
// strings. Matching is anchored at the start of the remaining path; a
// leading "^" or \A is accepted and redundant.
//
// A raw pattern is reversible only when the text outside its capture
// groups is purely literal. Anything else (alternation, repetition,
// character classes, non-capturing groups, nested groups) still
// matches normally but cannot be formatted back into a path; the
// reverse resolver skips such candidates.
func CompileRegexp(reg *convert.Registry, expr string) (*Pattern, error) {
	if reg == nil {
		reg = convert.Default()
	}
	reg.Freeze()

	anchored := expr
	switch {
	case strings.HasPrefix(anchored, `\A`):
		anchored = "^" + anchored[2:]
	case !strings.HasPrefix(anchored, "^"):
		anchored = "^" + anchored
	}

	re, err := regexp.Compile(anchored)
	if err != nil {
		return nil, &Error{Source: expr, Pos: -1, Reason: "does not compile", Err: err}
	}

	p := &Pattern{source: expr, raw: true, re: re}
	for _, name := range re.SubexpNames()[1:] {
		if name != "" {
			p.named = true
		}
	}

	segments, captures, ok := scanRawPattern(anchored[1:])
	if ok && len(captures) == re.NumSubexp() {
		// Rebind names from the compiled expression; the scan and the
		// regexp engine agree on group order for patterns this simple.
		names := re.SubexpNames()
		for i, c := range captures {
			c.Name = names[i+1]
		}
		p.segments = segments
		p.captures = captures
		p.reversible = true
		return p, nil
	}

	// Not reversible: captures come from the compiled expression so
	// that matching still attributes groups correctly.
	for _, name := range re.SubexpNames()[1:] {
		p.captures = append(p.captures, &Capture{Name: name, converter: rawConverter})
	}
	return p, nil
}

// scanRawPattern walks a raw expression (leading anchor removed) and
// reconstructs a literal/capture segment list. ok is false when the
// expression uses any construct that cannot be reproduced verbatim by
// the reverse formatter.
func scanRawPattern(expr string) ([]Segment, []*Capture, bool) {
	// A trailing unescaped "$" or \z only asserts end-of-input; drop it.
	expr = strings.TrimSuffix(expr, `\z`)
	if strings.HasSuffix(expr, "$") && !strings.HasSuffix(expr, `\$`) {
		expr = expr[:len(expr)-1]
	}

	var segments []Segment
	var captures []*Capture
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, Segment{Literal: literal.String()})
			literal.Reset()
		}
	}

	i := 0
	for i < len(expr) {
		c := expr[i]
		switch c {
		case '\\':
			if i+1 >= len(expr) {
				return nil, nil, false
			}
			next := expr[i+1]
			if isWordByte(next) {
				// \d, \w, \b and friends match variable text.
				return nil, nil, false
			}
			literal.WriteByte(next)
			i += 2
		case '(':
			inner, width, ok := groupAt(expr[i:])
			if !ok {
				return nil, nil, false
			}
			name, body, isCapture := splitGroup(inner)
			if !isCapture {
				return nil, nil, false
			}
			if strings.ContainsRune(body, '(') {
				// Nested groups would desynchronize group numbering.
				return nil, nil, false
			}
			valueRe, err := regexp.Compile("^(?:" + body + ")$")
			if err != nil {
				return nil, nil, false
			}
			flush()
			cap := &Capture{Name: name, converter: rawConverter, valueRe: valueRe}
			captures = append(captures, cap)
			segments = append(segments, Segment{Capture: cap})
			i += width
		case '*', '+', '?', '{', '|', '[', '.', '^', '$', ')':
			return nil, nil, false
		default:
			literal.WriteByte(c)
			i++
		}
	}
	flush()
	return segments, captures, true
}

// groupAt parses a parenthesized group starting at expr[0] == '('. It
// returns the group's inner text and the total width including both
// parentheses.
func groupAt(expr string) (inner string, width int, ok bool) {
	depth := 0
	inClass := false
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '\\':
			i++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '(':
			if !inClass {
				depth++
			}
		case ')':
			if !inClass {
				depth--
				if depth == 0 {
					return expr[1:i], i + 1, true
				}
			}
		}
	}
	return "", 0, false
}

// splitGroup classifies a group's inner text. For capture groups it
// returns the group name ("" for unnamed) and the group body.
func splitGroup(inner string) (name, body string, isCapture bool) {
	if !strings.HasPrefix(inner, "?") {
		return "", inner, true
	}
	if strings.HasPrefix(inner, "?P<") {
		end := strings.IndexByte(inner, '>')
		if end == -1 {
			return "", "", false
		}
		return inner[3:end], inner[end+1:], true
	}
	// (?:...), (?i)... and other flag/assertion groups.
	return "", "", false
}

// isWordByte reports whether b is an ASCII letter or digit.
func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
