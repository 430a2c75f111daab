package dispatch

import (
	"fmt"
	"strings"
	"sync"

	"github.com/wayfind-dev/wayfind/pkg/convert"
	"github.com/wayfind-dev/wayfind/pkg/pattern"
)

// maxIncludeDepth bounds include nesting. Authored tables sit well
// under this; hitting the ceiling means the table is pathological and
// compilation fails closed instead of recursing without bound.
const maxIncludeDepth = 64

// Table is an ordered route table, possibly nesting sub-tables through
// Include declarations.
//
// A table compiles lazily, exactly once, on first Resolve or Reverse.
// Compilation failure is sticky: every later access reports the same
// ConfigError. After compilation the table is immutable and safe for
// unsynchronized concurrent resolution.
type Table struct {
	decls      []Decl
	converters *convert.Registry
	handlers   *Handlers

	once       sync.Once
	compiled   *compiledTable
	compileErr error
}

// New builds a table from declarations. Declaration order is
// significant: resolution tries entries first to last and the first
// match wins.
func New(decls ...Decl) *Table {
	t := &Table{decls: make([]Decl, len(decls))}
	copy(t.decls, decls)
	return t
}

// WithConverters sets the converter registry the table compiles
// against, instead of convert.Default(). Must be called before the
// table is first used.
func (t *Table) WithConverters(reg *convert.Registry) *Table {
	t.converters = reg
	return t
}

// WithHandlers sets the registry that Ref handlers are bound through.
// Must be called before the table is first used. Included tables
// inherit the enclosing table's registry unless they set their own.
func (t *Table) WithHandlers(h *Handlers) *Table {
	t.handlers = h
	return t
}

// Compile forces compilation now instead of at first resolution.
// Calling it again, or resolving afterwards, reuses the result.
func (t *Table) Compile() error {
	_, err := t.ensure()
	return err
}

func (t *Table) ensure() (*compiledTable, error) {
	t.once.Do(func() {
		reg := t.converters
		if reg == nil {
			reg = convert.Default()
		}
		ct, err := buildTable(t, reg, t.handlers, []*Table{t}, nil, 0)
		if err == nil {
			err = buildIndex(ct, chainPrefix{reversible: true})
		}
		t.compiled, t.compileErr = ct, err
	})
	return t.compiled, t.compileErr
}

// compiledTable is the immutable compiled form of a table.
type compiledTable struct {
	nodes []*compiledNode
	index *nameIndex
}

// compiledNode is one compiled entry: a terminal route when child is
// nil, an include otherwise.
type compiledNode struct {
	pat      *pattern.Pattern
	decl     *Decl
	child    *compiledTable
	instance string // effective instance namespace, "" when unnamespaced

	// terminal routes only: registry and one-time handler binding
	handlers *Handlers
	bindOnce sync.Once
	bound    any
	bindErr  error
}

// buildTable compiles one table level. chain carries the tables on the
// current include path for cycle detection; seen carries the capture
// names already claimed by ancestor patterns.
func buildTable(t *Table, reg *convert.Registry, handlers *Handlers, chain []*Table, seen map[string]bool, depth int) (*compiledTable, error) {
	if depth > maxIncludeDepth {
		return nil, &ConfigError{Reason: fmt.Sprintf("include nesting exceeds %d levels", maxIncludeDepth)}
	}

	ct := &compiledTable{nodes: make([]*compiledNode, 0, len(t.decls))}
	for i := range t.decls {
		d := &t.decls[i]

		var pat *pattern.Pattern
		var err error
		if d.raw {
			pat, err = pattern.CompileRegexp(reg, d.template)
		} else {
			pat, err = pattern.Compile(reg, d.template)
		}
		if err != nil {
			return nil, &ConfigError{Template: d.template, Reason: "invalid pattern", Err: err}
		}

		for _, name := range pat.CaptureNames() {
			if seen[name] {
				return nil, &ConfigError{Template: d.template,
					Reason: fmt.Sprintf("capture %q is already bound by an enclosing prefix", name)}
			}
		}

		node := &compiledNode{pat: pat, decl: d}

		if d.leaf() {
			if d.app != "" || d.instance != "" {
				return nil, &ConfigError{Template: d.template,
					Reason: "namespace options are only valid on includes"}
			}
			node.handlers = handlers
			ct.nodes = append(ct.nodes, node)
			continue
		}

		// Include.
		if d.name != "" {
			return nil, &ConfigError{Template: d.template,
				Reason: "Name is only valid on terminal routes"}
		}
		if d.instance != "" && d.app == "" {
			return nil, &ConfigError{Template: d.template,
				Reason: "instance namespace requires an application namespace"}
		}
		node.instance = d.instance
		if node.instance == "" {
			node.instance = d.app
		}
		for _, ancestor := range chain {
			if ancestor == d.child {
				return nil, &ConfigError{Template: d.template,
					Reason: "table includes itself (include cycle)"}
			}
		}

		childSeen := make(map[string]bool, len(seen)+len(pat.CaptureNames()))
		for name := range seen {
			childSeen[name] = true
		}
		for _, name := range pat.CaptureNames() {
			childSeen[name] = true
		}
		childHandlers := handlers
		if d.child.handlers != nil {
			childHandlers = d.child.handlers
		}
		childReg := reg
		if d.child.converters != nil {
			childReg = d.child.converters
		}

		child, err := buildTable(d.child, childReg, childHandlers, append(chain, d.child), childSeen, depth+1)
		if err != nil {
			return nil, err
		}
		node.child = child
		ct.nodes = append(ct.nodes, node)
	}
	return ct, nil
}

// bind resolves the node's handler. Ref handlers go through the
// registry once and the binding is cached; without a registry the Ref
// itself is returned and binding stays with the caller.
func (n *compiledNode) bind() (any, error) {
	ref, ok := n.decl.handler.(Ref)
	if !ok {
		return n.decl.handler, nil
	}
	if n.handlers == nil {
		return ref, nil
	}
	n.bindOnce.Do(func() {
		v, ok := n.handlers.Lookup(string(ref))
		if !ok {
			n.bindErr = &ConfigError{Template: n.decl.template,
				Reason: fmt.Sprintf("handler %q is not registered", string(ref))}
			return
		}
		n.bound = v
	})
	return n.bound, n.bindErr
}

// RouteInfo describes one terminal route of a compiled table, for
// listing and diagnostics.
type RouteInfo struct {
	// Pattern is the full concatenated pattern chain.
	Pattern string

	// Name is the declared route name, "" when anonymous.
	Name string

	// ViewName is the qualified name including the instance namespace
	// path.
	ViewName string

	// HandlerRef is the reference name when the handler was declared
	// as a Ref, "" otherwise.
	HandlerRef string

	// Handler is the declared handler value (unbound).
	Handler any
}

// Routes returns every terminal route in declaration order, compiling
// the table if needed.
func (t *Table) Routes() ([]RouteInfo, error) {
	ct, err := t.ensure()
	if err != nil {
		return nil, err
	}
	var infos []RouteInfo
	collectRoutes(ct, "", nil, &infos)
	return infos, nil
}

func collectRoutes(ct *compiledTable, prefix string, namespaces []string, infos *[]RouteInfo) {
	for _, n := range ct.nodes {
		if n.child != nil {
			ns := namespaces
			if n.instance != "" {
				ns = append(append([]string{}, namespaces...), n.instance)
			}
			collectRoutes(n.child, prefix+n.pat.String(), ns, infos)
			continue
		}
		info := RouteInfo{
			Pattern: prefix + n.pat.String(),
			Name:    n.decl.name,
			Handler: n.decl.handler,
		}
		if ref, ok := n.decl.handler.(Ref); ok {
			info.HandlerRef = string(ref)
		}
		if info.Name != "" {
			parts := append(append([]string{}, namespaces...), info.Name)
			info.ViewName = strings.Join(parts, ":")
		}
		*infos = append(*infos, info)
	}
}
