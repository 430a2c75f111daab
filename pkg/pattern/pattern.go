// Package pattern compiles path templates and raw regular expressions
// into matchers usable for both forward resolution and reverse path
// construction.
//
// # Templates
//
// A template is literal text interleaved with placeholders:
//
//	articles/<int:year>/<slug:title>/
//
// A placeholder is <name> or <converter:name>. The converter defaults
// to "str", which matches one or more characters excluding "/". The
// converter decides what text the capture consumes, how the matched
// text becomes a typed value, and how a value is rendered back into a
// path during reverse resolution.
//
// # Raw patterns
//
// CompileRegexp accepts an arbitrary regular expression for advanced
// use. Named groups become named captures; unnamed groups become
// positional captures. When a raw pattern mixes both, the positional
// captures are dropped from results; existing route tables rely on
// that asymmetry and it is preserved exactly.
package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wayfind-dev/wayfind/pkg/convert"
)

// Capture is one placeholder in a compiled pattern.
type Capture struct {
	// Name is the capture name, or "" for a positional capture from an
	// unnamed group in a raw pattern.
	Name string

	// ConverterName is the converter the placeholder named, "" in raw
	// mode.
	ConverterName string

	converter convert.Converter
	valueRe   *regexp.Regexp // anchored fragment, validates formatted values
}

// Converter returns the conversion rule bound to this capture.
func (c *Capture) Converter() convert.Converter { return c.converter }

// ValidValue reports whether a formatted value would have been
// accepted by this capture's fragment. Captures without a usable
// fragment (some raw-pattern captures) accept everything.
func (c *Capture) ValidValue(s string) bool {
	if c.valueRe == nil {
		return true
	}
	return c.valueRe.MatchString(s)
}

// Segment is one piece of a compiled pattern: literal text when
// Capture is nil, a capture otherwise.
type Segment struct {
	Literal string
	Capture *Capture
}

// Pattern is a compiled path template or raw pattern.
type Pattern struct {
	source   string
	raw      bool
	re       *regexp.Regexp
	segments []Segment
	captures []*Capture // in group order
	named    bool       // at least one named capture

	// reversible is false for raw patterns whose text outside capture
	// groups is not purely literal; such patterns can match but cannot
	// be formatted back into a path.
	reversible bool
}

// String returns the original template or raw expression.
func (p *Pattern) String() string { return p.source }

// Raw reports whether the pattern was compiled from a raw regular
// expression rather than a template.
func (p *Pattern) Raw() bool { return p.raw }

// Named reports whether the pattern has at least one named capture.
func (p *Pattern) Named() bool { return p.named }

// Reversible reports whether the pattern can be formatted back into a
// path by the reverse resolver.
func (p *Pattern) Reversible() bool { return p.reversible }

// Segments returns the ordered literal/capture segments. Nil for
// non-reversible raw patterns.
func (p *Pattern) Segments() []Segment { return p.segments }

// Captures returns the pattern's captures in group order.
func (p *Pattern) Captures() []*Capture { return p.captures }

// CaptureNames returns the names of the named captures in group order.
func (p *Pattern) CaptureNames() []string {
	var names []string
	for _, c := range p.captures {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return names
}

// Error describes a malformed template or raw pattern.
type Error struct {
	// Source is the offending template or expression.
	Source string

	// Pos is the byte offset where the problem was found, or -1.
	Pos int

	// Reason describes the problem.
	Reason string

	// Err is the underlying regexp compile error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("pattern %q: %s at offset %d", e.Source, e.Reason, e.Pos)
	}
	return fmt.Sprintf("pattern %q: %s", e.Source, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Compile turns a path template into a Pattern. Compiling freezes the
// registry: converters registered afterwards are not visible to any
// pattern.
func Compile(reg *convert.Registry, template string) (*Pattern, error) {
	if reg == nil {
		reg = convert.Default()
	}
	reg.Freeze()

	p := &Pattern{source: template, reversible: true}
	seen := make(map[string]bool)

	var expr strings.Builder
	expr.WriteString("^")

	rest := template
	offset := 0
	for {
		open := strings.IndexByte(rest, '<')
		closing := strings.IndexByte(rest, '>')
		if open == -1 && closing == -1 {
			if rest != "" {
				p.segments = append(p.segments, Segment{Literal: rest})
				expr.WriteString(regexp.QuoteMeta(rest))
			}
			break
		}
		if open == -1 || (closing != -1 && closing < open) {
			return nil, &Error{Source: template, Pos: offset + closing, Reason: "unbalanced '>'"}
		}
		if closing == -1 {
			return nil, &Error{Source: template, Pos: offset + open, Reason: "unbalanced '<'"}
		}

		if open > 0 {
			lit := rest[:open]
			p.segments = append(p.segments, Segment{Literal: lit})
			expr.WriteString(regexp.QuoteMeta(lit))
		}

		placeholder := rest[open+1 : closing]
		if strings.ContainsAny(placeholder, "<") {
			return nil, &Error{Source: template, Pos: offset + open, Reason: "nested '<' in placeholder"}
		}

		convName, capName := convert.NameStr, placeholder
		if i := strings.IndexByte(placeholder, ':'); i != -1 {
			convName, capName = placeholder[:i], placeholder[i+1:]
			if convName == "" {
				return nil, &Error{Source: template, Pos: offset + open, Reason: "empty converter name"}
			}
		}
		if !isIdentifier(capName) {
			return nil, &Error{Source: template, Pos: offset + open,
				Reason: fmt.Sprintf("invalid capture name %q", capName)}
		}
		if seen[capName] {
			return nil, &Error{Source: template, Pos: offset + open,
				Reason: fmt.Sprintf("duplicate capture name %q", capName)}
		}
		seen[capName] = true

		conv, ok := reg.Lookup(convName)
		if !ok {
			return nil, &Error{Source: template, Pos: offset + open,
				Reason: fmt.Sprintf("unknown converter %q", convName)}
		}

		cap := &Capture{
			Name:          capName,
			ConverterName: convName,
			converter:     conv,
			valueRe:       regexp.MustCompile("^(?:" + conv.Regexp + ")$"),
		}
		p.captures = append(p.captures, cap)
		p.named = true
		p.segments = append(p.segments, Segment{Capture: cap})
		fmt.Fprintf(&expr, "(?P<%s>%s)", capName, conv.Regexp)

		rest = rest[closing+1:]
		offset += closing + 1
	}

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, &Error{Source: template, Pos: -1, Reason: "does not compile", Err: err}
	}
	p.re = re
	return p, nil
}

// Match is the result of matching a pattern against the front of a
// path. Exactly one of Args and Kwargs carries the captures: Kwargs
// when the pattern has named captures, Args otherwise.
type Match struct {
	// Consumed is the number of bytes of the input covered.
	Consumed int

	Args   []any
	Kwargs map[string]any
}

// MatchPrefix matches the pattern against the start of path. A
// converter rejecting a matched substring counts as no match; the
// caller moves on to the next candidate.
func (p *Pattern) MatchPrefix(path string) (Match, bool) {
	loc := p.re.FindStringSubmatchIndex(path)
	if loc == nil {
		return Match{}, false
	}

	m := Match{Consumed: loc[1]}
	names := p.re.SubexpNames()
	for i := 1; i <= p.re.NumSubexp(); i++ {
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			continue // group did not participate
		}
		text := path[start:end]

		if p.named {
			if names[i] == "" {
				continue // unnamed groups are dropped when any group is named
			}
			value, err := p.captureFor(names[i], i).converter.Parse(text)
			if err != nil {
				return Match{}, false
			}
			if m.Kwargs == nil {
				m.Kwargs = make(map[string]any)
			}
			m.Kwargs[names[i]] = value
			continue
		}

		value, err := p.captureAt(i).converter.Parse(text)
		if err != nil {
			return Match{}, false
		}
		m.Args = append(m.Args, value)
	}
	return m, true
}

// captureFor finds the capture for a named group; i is the group index
// used as a fast path when captures align one-to-one with groups.
func (p *Pattern) captureFor(name string, i int) *Capture {
	if i-1 < len(p.captures) && p.captures[i-1].Name == name {
		return p.captures[i-1]
	}
	for _, c := range p.captures {
		if c.Name == name {
			return c
		}
	}
	return &rawCapture
}

func (p *Pattern) captureAt(i int) *Capture {
	if i-1 < len(p.captures) {
		return p.captures[i-1]
	}
	return &rawCapture
}

// rawCapture is the identity conversion applied to raw-pattern groups
// that the source scan could not attribute a fragment to.
var rawCapture = Capture{converter: rawConverter}

// rawConverter passes matched text through unchanged. The group's own
// subpattern already constrained what it matches.
var rawConverter = convert.Converter{
	Parse: func(s string) (any, error) { return s, nil },
	Format: func(v any) (string, error) {
		switch s := v.(type) {
		case string:
			return s, nil
		case fmt.Stringer:
			return s.String(), nil
		default:
			return fmt.Sprint(v), nil
		}
	},
}

// isIdentifier reports whether s is a valid capture name: a letter or
// underscore followed by letters, digits and underscores.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
