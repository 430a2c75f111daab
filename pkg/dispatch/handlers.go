package dispatch

import "sync"

// Ref names a handler to be looked up in a Handlers registry. Using a
// Ref instead of a handler value defers binding until the route first
// matches, so constructing a table does not force every handler (and
// its dependencies) to be loaded up front.
type Ref string

// Handlers maps reference names to handler values.
//
// Registration and lookup are safe for concurrent use, but the usual
// arrangement is to populate the registry at startup, before serving.
type Handlers struct {
	mu sync.RWMutex
	m  map[string]any
}

// NewHandlers returns an empty handler registry.
func NewHandlers() *Handlers {
	return &Handlers{m: make(map[string]any)}
}

// Register binds a handler value to a reference name, replacing any
// previous binding.
func (h *Handlers) Register(name string, handler any) {
	h.mu.Lock()
	h.m[name] = handler
	h.mu.Unlock()
}

// Lookup returns the handler bound to name.
func (h *Handlers) Lookup(name string) (any, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.m[name]
	return v, ok
}

// Names returns the registered reference names in unspecified order.
func (h *Handlers) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.m))
	for name := range h.m {
		names = append(names, name)
	}
	return names
}
