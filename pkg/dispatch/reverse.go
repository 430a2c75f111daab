package dispatch

import (
	"fmt"
	"strings"

	"github.com/wayfind-dev/wayfind/pkg/pattern"
)

// ReverseOption configures a reverse resolution request.
type ReverseOption func(*reverseRequest)

type reverseRequest struct {
	args    []any
	kwargs  map[string]any
	current []string
}

// Args supplies positional values for the route's captures, in
// pattern order.
func Args(args ...any) ReverseOption {
	return func(r *reverseRequest) { r.args = args }
}

// Kwargs supplies named values for the route's captures. The name set
// must match the candidate's capture names exactly.
func Kwargs(kwargs map[string]any) ReverseOption {
	return func(r *reverseRequest) { r.kwargs = kwargs }
}

// Current declares the instance namespace path the caller is currently
// inside, enabling same-instance continuity when an application
// namespace has several instances.
func Current(namespaces ...string) ReverseOption {
	return func(r *reverseRequest) { r.current = namespaces }
}

// Reverse reconstructs the path for a named route.
//
// The name may be qualified with namespace segments separated by ":".
// Each segment is resolved as an application namespace when one is
// registered under it: the current instance wins if the caller is
// already inside one (Current), otherwise an instance named like the
// application itself, otherwise the last-declared instance. A segment
// that is no application namespace is taken literally as an instance
// namespace.
//
// Among the candidates carrying the final view name, the first one in
// declaration order whose capture shape matches the supplied arguments
// and whose converters format successfully wins. Exhausting the
// candidates is a *NoReverseError; it is always surfaced, never
// swallowed.
func (t *Table) Reverse(name string, opts ...ReverseOption) (string, error) {
	ct, err := t.ensure()
	if err != nil {
		return "", err
	}

	var req reverseRequest
	for _, opt := range opts {
		opt(&req)
	}
	if len(req.args) > 0 && len(req.kwargs) > 0 {
		return "", fmt.Errorf("reverse of %q: positional and keyword arguments cannot be mixed", name)
	}

	parts := strings.Split(name, ":")
	view := parts[len(parts)-1]
	nsPath := parts[:len(parts)-1]

	cur := ct
	prefix := chainPrefix{reversible: true}
	current := req.current

	for _, ns := range nsPath {
		var currentNS string
		if len(current) > 0 {
			currentNS, current = current[0], current[1:]
		}

		chosen := ns
		if instances, ok := cur.index.apps[ns]; ok {
			switch {
			case currentNS != "" && containsString(instances, currentNS):
				chosen = currentNS
			case containsString(instances, ns):
				chosen = ns
			default:
				// No default instance: declaration-order precedence,
				// last registered wins.
				chosen = instances[len(instances)-1]
			}
		}

		entry, ok := cur.index.instances[chosen]
		if !ok {
			return "", &NoReverseError{Name: name,
				Reason: fmt.Sprintf("%q is not a registered namespace", ns)}
		}
		prefix = chainPrefix{
			segments:   append(append([]pattern.Segment{}, prefix.segments...), entry.prefix.segments...),
			captures:   append(append([]*pattern.Capture{}, prefix.captures...), entry.prefix.captures...),
			reversible: prefix.reversible && entry.prefix.reversible,
			source:     prefix.source + entry.prefix.source,
		}
		cur = entry.table
	}

	candidates := cur.index.views[view]
	var tried []string
	for _, c := range candidates {
		if path, ok := formatCandidate(prefix, c, req.args, req.kwargs); ok {
			return "/" + path, nil
		}
		tried = append(tried, prefix.source+c.pattern)
	}
	return "", &NoReverseError{Name: name, Args: req.args, Kwargs: req.kwargs, Tried: tried}
}

// formatCandidate renders one candidate, or reports that the supplied
// arguments do not fit it. Converter format failures and values that
// would not have matched the capture's fragment both disqualify the
// candidate so resolution can move on to the next one.
func formatCandidate(nsPrefix chainPrefix, c *candidate, args []any, kwargs map[string]any) (string, bool) {
	if !nsPrefix.reversible || !c.reversible {
		return "", false
	}

	captures := make([]*pattern.Capture, 0, len(nsPrefix.captures)+len(c.prefix.captures)+len(c.captures))
	captures = append(captures, nsPrefix.captures...)
	captures = append(captures, c.prefix.captures...)
	captures = append(captures, c.captures...)

	values := make(map[*pattern.Capture]any, len(captures))
	if len(kwargs) > 0 {
		names := make(map[string]*pattern.Capture, len(captures))
		for _, cp := range captures {
			if cp.Name == "" {
				// Positional captures cannot be addressed by keyword.
				return "", false
			}
			names[cp.Name] = cp
		}
		if len(kwargs) != len(names) {
			return "", false
		}
		for k, v := range kwargs {
			cp, ok := names[k]
			if !ok {
				return "", false
			}
			values[cp] = v
		}
	} else {
		if len(args) != len(captures) {
			return "", false
		}
		for i, cp := range captures {
			values[cp] = args[i]
		}
	}

	var b strings.Builder
	emit := func(segments []pattern.Segment) bool {
		for _, seg := range segments {
			if seg.Capture == nil {
				b.WriteString(seg.Literal)
				continue
			}
			text, err := seg.Capture.Converter().Format(values[seg.Capture])
			if err != nil {
				return false
			}
			if !seg.Capture.ValidValue(text) {
				return false
			}
			b.WriteString(text)
		}
		return true
	}

	if !emit(nsPrefix.segments) || !emit(c.prefix.segments) || !emit(c.segments) {
		return "", false
	}
	return b.String(), true
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
