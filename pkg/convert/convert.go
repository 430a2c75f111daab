// Package convert defines the path converter vocabulary used by the
// pattern compiler and the reverse resolver.
//
// A converter pairs a regular-expression fragment with a two-way
// string/value conversion. During matching, the fragment decides how
// much of a path segment a capture consumes and Parse turns the
// matched text into a typed value. During reverse resolution, Format
// turns a value back into its path form.
//
// Converters live in a Registry. The registry is additive only and
// must be fully populated before the first route table is compiled
// against it; the first compilation freezes the registry and any
// later Register call fails.
package convert

import (
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
)

// Converter is one pluggable string/value conversion rule.
type Converter struct {
	// Regexp is the pattern fragment a capture using this converter
	// matches. It must not contain capturing groups; the compiler
	// wraps it in its own named group.
	Regexp string

	// Parse converts a matched substring into a typed value.
	// A non-nil error means the candidate route does not match; the
	// resolver treats it as a local non-match, not a failure.
	Parse func(s string) (any, error)

	// Format renders a value back into its path form for reverse
	// resolution. A non-nil error disqualifies the candidate route.
	Format func(v any) (string, error)
}

// Registry maps converter names to converters.
//
// Reads are lock-free once the registry is frozen. Registration
// concurrent with active resolution is not supported; populate the
// registry during startup, before any table compiles against it.
type Registry struct {
	frozen atomic.Bool

	mu sync.Mutex
	m  map[string]Converter
}

// NewRegistry returns a registry pre-populated with the builtin
// converters (str, int, slug, uuid, path).
func NewRegistry() *Registry {
	r := &Registry{m: make(map[string]Converter)}
	for name, c := range builtins() {
		r.m[name] = c
	}
	return r
}

// defaultRegistry is the process-wide registry used by tables that do
// not supply their own.
var defaultRegistry = NewRegistry()

// Default returns the process-wide converter registry.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a converter under the given name. It replaces an
// existing converter with the same name, including builtins.
//
// Register fails once the registry has been frozen by a table
// compilation, and it fails up front when the converter's fragment
// does not compile or contains capturing groups.
func (r *Registry) Register(name string, c Converter) error {
	if name == "" {
		return fmt.Errorf("convert: empty converter name")
	}
	if c.Parse == nil || c.Format == nil {
		return fmt.Errorf("convert: converter %q must define Parse and Format", name)
	}
	re, err := regexp.Compile(c.Regexp)
	if err != nil {
		return fmt.Errorf("convert: converter %q: invalid fragment: %w", name, err)
	}
	if re.NumSubexp() > 0 {
		return fmt.Errorf("convert: converter %q: fragment %q contains capturing groups", name, c.Regexp)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return fmt.Errorf("convert: registry is frozen, cannot register %q after first table compilation", name)
	}
	r.m[name] = c
	return nil
}

// Lookup returns the converter registered under name.
func (r *Registry) Lookup(name string) (Converter, bool) {
	if r.frozen.Load() {
		c, ok := r.m[name]
		return c, ok
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.m[name]
	return c, ok
}

// Names returns the registered converter names in unspecified order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.m))
	for name := range r.m {
		names = append(names, name)
	}
	return names
}

// Freeze closes the registry for writes. The pattern compiler calls
// this on first use; calling it again is a no-op.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen.Store(true)
	r.mu.Unlock()
}

// Frozen reports whether the registry has been closed for writes.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}
