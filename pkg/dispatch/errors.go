package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is the sentinel wrapped by every NoMatchError. Check it
// with errors.Is or the IsNotFound helper; a not-found result is the
// expected negative outcome of resolution, not a fault.
var ErrNotFound = errors.New("no route matched")

// NoMatchError reports that no route in the table matched a path.
type NoMatchError struct {
	// Path is the input that failed to match.
	Path string

	// Tried lists the full pattern chains attempted, in declaration
	// order.
	Tried []string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no route matched %q (tried %d patterns)", e.Path, len(e.Tried))
}

func (e *NoMatchError) Unwrap() error { return ErrNotFound }

// IsNotFound reports whether err is a negative resolution result as
// opposed to a configuration fault.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ConfigError is a fatal route-table configuration fault: a malformed
// pattern, a capture-name collision across an include chain, an
// include cycle, an ambiguous namespace declaration, or an
// unresolvable handler reference. It is never folded into a not-found
// result.
type ConfigError struct {
	// Template is the declaration the fault was found in, if any.
	Template string

	// Reason describes the fault.
	Reason string

	// Err is the underlying error (for example a pattern.Error).
	Err error
}

func (e *ConfigError) Error() string {
	msg := "route table: " + e.Reason
	if e.Template != "" {
		msg = fmt.Sprintf("route table: %s: %s", e.Template, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NoReverseError reports that no named route candidate satisfied the
// requested name, argument shape and formatting. It usually indicates
// a programming mistake in the caller, and is always surfaced.
type NoReverseError struct {
	// Name is the qualified name that was requested.
	Name string

	// Args and Kwargs echo the argument shape that was offered.
	Args   []any
	Kwargs map[string]any

	// Tried lists the patterns of the candidates that were considered.
	Tried []string

	// Reason is set when resolution failed before candidate matching,
	// for example on an unregistered namespace.
	Reason string
}

func (e *NoReverseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("reverse of %q failed: %s", e.Name, e.Reason)
	}
	shape := describeShape(e.Args, e.Kwargs)
	if len(e.Tried) == 0 {
		return fmt.Sprintf("reverse of %q failed: no route by that name", e.Name)
	}
	return fmt.Sprintf("reverse of %q with %s failed: no candidate of %d matched",
		e.Name, shape, len(e.Tried))
}

func describeShape(args []any, kwargs map[string]any) string {
	if len(kwargs) > 0 {
		names := make([]string, 0, len(kwargs))
		for k := range kwargs {
			names = append(names, k)
		}
		return "keyword arguments (" + strings.Join(names, ", ") + ")"
	}
	return fmt.Sprintf("%d positional arguments", len(args))
}
