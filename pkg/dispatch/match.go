package dispatch

import "strings"

// Match is the positive result of resolving a path: the handler to
// invoke and the arguments extracted along the way.
type Match struct {
	// Handler is the handler value the matched route was declared
	// with. Declarations made with a Ref have been bound through the
	// table's Handlers registry; when the table has no registry the
	// Ref itself is returned and binding is the caller's concern.
	Handler any

	// Args are the positional captures, present only when the full
	// capture chain of the matched route has no named captures.
	Args []any

	// Kwargs are the named captures of the whole chain flattened into
	// one mapping, with extra arguments merged over them.
	Kwargs map[string]any

	// Name is the route's declared name, "" when anonymous.
	Name string

	// Namespaces is the instance-namespace path walked to reach the
	// route.
	Namespaces []string

	// Apps is the application-namespace path walked to reach the
	// route.
	Apps []string

	// Pattern is the concatenated pattern chain that matched, for
	// logging and diagnostics.
	Pattern string
}

// ViewName returns the fully qualified route name: the instance
// namespace path and the route name joined with ":".
func (m *Match) ViewName() string {
	if len(m.Namespaces) == 0 {
		return m.Name
	}
	return strings.Join(m.Namespaces, ":") + ":" + m.Name
}
