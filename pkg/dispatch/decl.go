package dispatch

// Decl is one route-table entry: a terminal route bound to a handler,
// or the inclusion of a nested table under a path prefix. Decls are
// built with Route, RegexpRoute, Include and RegexpInclude and are
// plain values; compose tables by appending them in order. Order is
// load-bearing: the first declaration that matches wins.
type Decl struct {
	template string
	raw      bool

	// leaf fields
	handler any
	name    string

	// include fields
	child    *Table
	app      string
	instance string

	extra map[string]any
}

// Option configures a declaration.
type Option func(*Decl)

// Name names a route so it can be reverse-resolved. Valid on terminal
// routes only.
func Name(name string) Option {
	return func(d *Decl) { d.name = name }
}

// Extra attaches static arguments merged into the match's keyword
// arguments. Extra arguments win over captured values on key
// collision.
func Extra(extra map[string]any) Option {
	return func(d *Decl) { d.extra = extra }
}

// App sets the application namespace of an included table: the
// identifier shared by every deployed instance of that table.
func App(app string) Option {
	return func(d *Decl) { d.app = app }
}

// Namespace sets the instance namespace of an included table: the
// identifier unique to this deployment of it. Requires App; an
// application namespace without Namespace defaults the instance
// namespace to the application namespace.
func Namespace(instance string) Option {
	return func(d *Decl) { d.instance = instance }
}

// Route declares a terminal route: template syntax, full match
// required, handler invoked with the captured arguments.
//
// The handler is opaque to the dispatcher. Pass a Ref to defer binding
// to a Handlers registry until first use.
func Route(template string, handler any, opts ...Option) Decl {
	d := Decl{template: template, handler: handler}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// RegexpRoute declares a terminal route from a raw regular expression.
func RegexpRoute(expr string, handler any, opts ...Option) Decl {
	d := Decl{template: expr, raw: true, handler: handler}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Include delegates every path that starts with prefix to a nested
// table. The prefix uses template syntax and may capture values, which
// merge into the keyword arguments of whatever the nested table
// matches.
func Include(prefix string, child *Table, opts ...Option) Decl {
	d := Decl{template: prefix, child: child}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// RegexpInclude is Include with a raw regular expression prefix.
func RegexpInclude(expr string, child *Table, opts ...Option) Decl {
	d := Decl{template: expr, raw: true, child: child}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// leaf reports whether the declaration is a terminal route.
func (d *Decl) leaf() bool { return d.child == nil }
