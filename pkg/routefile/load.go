// Package routefile loads declarative route tables from HCL files.
//
// A route file declares named tables and a single root:
//
//	table "blog" {
//	  route "" {
//	    handler = "blog.index"
//	    name    = "index"
//	  }
//	  route "<int:year>/" {
//	    handler = "blog.year_archive"
//	    name    = "year-archive"
//	    extra   = { page = 1 }
//	  }
//	}
//
//	root {
//	  include "<username>/blog/" {
//	    table     = "blog"
//	    app       = "blog"
//	    namespace = "blog"
//	  }
//	}
//
// Handlers are referenced by name and bound lazily through a
// dispatch.Handlers registry, so loading a route file never forces
// handler code to load. Block order is preserved: the first declared
// route wins, exactly as with tables built in Go.
package routefile

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	interrors "github.com/wayfind-dev/wayfind/internal/errors"
	"github.com/wayfind-dev/wayfind/pkg/convert"
	"github.com/wayfind-dev/wayfind/pkg/dispatch"
)

// Loader turns route files into a compiled dispatch table.
type Loader struct {
	logger     *slog.Logger
	handlers   *dispatch.Handlers
	converters *convert.Registry
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// WithHandlers sets the registry that handler references resolve
// through at first use.
func WithHandlers(h *dispatch.Handlers) LoaderOption {
	return func(l *Loader) { l.handlers = h }
}

// WithConverters sets the converter registry the loaded tables compile
// against.
func WithConverters(reg *convert.Registry) LoaderOption {
	return func(l *Loader) { l.converters = reg }
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses the given route files, assembles the root table, and
// compiles it. Errors carry route-file locations where one exists.
func (l *Loader) Load(paths ...string) (*dispatch.Table, error) {
	if len(paths) == 0 {
		return nil, interrors.New("W040")
	}
	parser := hclparse.NewParser()
	var files []*parsedFile
	for _, path := range paths {
		f, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, wrapDiags("W025", diags)
		}
		pf, err := parseFile(path, f)
		if err != nil {
			return nil, err
		}
		files = append(files, pf)
	}
	return l.assemble(files)
}

// LoadBytes is Load for in-memory source, used by tests and tooling.
func (l *Loader) LoadBytes(filename string, src []byte) (*dispatch.Table, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, wrapDiags("W025", diags)
	}
	pf, err := parseFile(filename, f)
	if err != nil {
		return nil, err
	}
	return l.assemble([]*parsedFile{pf})
}

// parsedFile is the raw block structure of one route file, order
// preserved.
type parsedFile struct {
	path   string
	tables []*tableDef
	root   *tableDef // entries of the root block, nil if absent
}

// tableDef is one table block (or the root block).
type tableDef struct {
	name     string
	defRange hcl.Range
	entries  []*entryDef
}

// entryDef is one route or include block.
type entryDef struct {
	include  bool
	pattern  string // block label: template or raw expression
	defRange hcl.Range

	handler string // route only
	name    string // route only

	table     string // include only
	app       string // include only
	namespace string // include only

	regexp bool
	extra  map[string]any
}

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "table", LabelNames: []string{"name"}},
		{Type: "root"},
	},
}

var entriesSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "route", LabelNames: []string{"pattern"}},
		{Type: "include", LabelNames: []string{"prefix"}},
	},
}

var routeSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "handler", Required: true},
		{Name: "name"},
		{Name: "regexp"},
		{Name: "extra"},
	},
}

var includeSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "table", Required: true},
		{Name: "app"},
		{Name: "namespace"},
		{Name: "regexp"},
		{Name: "extra"},
	},
}

func parseFile(path string, f *hcl.File) (*parsedFile, error) {
	content, diags := f.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, wrapDiags("W025", diags)
	}

	pf := &parsedFile{path: path}
	for _, block := range content.Blocks {
		entries, err := parseEntries(block.Body)
		if err != nil {
			return nil, err
		}
		def := &tableDef{defRange: block.DefRange, entries: entries}
		switch block.Type {
		case "table":
			def.name = block.Labels[0]
			pf.tables = append(pf.tables, def)
		case "root":
			if pf.root != nil {
				return nil, locate(interrors.Newf(interrors.CategoryConfig,
					"Duplicate root block"), block.DefRange)
			}
			pf.root = def
		}
	}
	return pf, nil
}

func parseEntries(body hcl.Body) ([]*entryDef, error) {
	content, diags := body.Content(entriesSchema)
	if diags.HasErrors() {
		return nil, wrapDiags("W024", diags)
	}

	var entries []*entryDef
	for _, block := range content.Blocks {
		e := &entryDef{
			include:  block.Type == "include",
			pattern:  block.Labels[0],
			defRange: block.DefRange,
		}

		schema := routeSchema
		if e.include {
			schema = includeSchema
		}
		attrs, diags := block.Body.Content(schema)
		if diags.HasErrors() {
			return nil, wrapDiags("W024", diags)
		}

		for name, attr := range attrs.Attributes {
			v, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, wrapDiags("W024", diags)
			}
			if err := e.set(name, v, attr.Range); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// assemble resolves table references and builds the dispatch tree.
func (l *Loader) assemble(files []*parsedFile) (*dispatch.Table, error) {
	named := make(map[string]*tableDef)
	var root *tableDef
	for _, pf := range files {
		for _, def := range pf.tables {
			if prev, dup := named[def.name]; dup {
				return nil, locate(interrors.New("W021").
					WithDetail(fmt.Sprintf("table %q is also declared at %s", def.name, prev.defRange)),
					def.defRange)
			}
			named[def.name] = def
		}
		if pf.root != nil {
			if root != nil {
				return nil, locate(interrors.Newf(interrors.CategoryConfig,
					"Duplicate root block"), pf.root.defRange)
			}
			root = pf.root
		}
	}
	if root == nil {
		return nil, interrors.New("W022")
	}

	b := &builder{named: named, built: make(map[string]*dispatch.Table), building: make(map[string]bool)}
	table, err := b.build(root)
	if err != nil {
		return nil, err
	}
	if l.converters != nil {
		table.WithConverters(l.converters)
	}
	if l.handlers != nil {
		table.WithHandlers(l.handlers)
	}
	if err := table.Compile(); err != nil {
		return nil, interrors.New("W026").Wrap(err)
	}

	l.logger.Debug("route files loaded",
		"tables", len(named),
		"files", len(files))
	return table, nil
}

type builder struct {
	named    map[string]*tableDef
	built    map[string]*dispatch.Table
	building map[string]bool
}

func (b *builder) build(def *tableDef) (*dispatch.Table, error) {
	var decls []dispatch.Decl
	for _, e := range def.entries {
		if !e.include {
			opts := declOptions(e)
			if e.regexp {
				decls = append(decls, dispatch.RegexpRoute(e.pattern, dispatch.Ref(e.handler), opts...))
			} else {
				decls = append(decls, dispatch.Route(e.pattern, dispatch.Ref(e.handler), opts...))
			}
			continue
		}

		child, err := b.buildNamed(e.table, e.defRange)
		if err != nil {
			return nil, err
		}
		opts := declOptions(e)
		if e.regexp {
			decls = append(decls, dispatch.RegexpInclude(e.pattern, child, opts...))
		} else {
			decls = append(decls, dispatch.Include(e.pattern, child, opts...))
		}
	}
	return dispatch.New(decls...), nil
}

func (b *builder) buildNamed(name string, at hcl.Range) (*dispatch.Table, error) {
	if t, ok := b.built[name]; ok {
		return t, nil
	}
	if b.building[name] {
		return nil, locate(interrors.New("W023").
			WithDetail(fmt.Sprintf("table %q includes itself", name)), at)
	}
	def, ok := b.named[name]
	if !ok {
		return nil, locate(interrors.New("W020").
			WithDetail(fmt.Sprintf("no table named %q", name)), at)
	}

	b.building[name] = true
	t, err := b.build(def)
	delete(b.building, name)
	if err != nil {
		return nil, err
	}
	b.built[name] = t
	return t, nil
}

func declOptions(e *entryDef) []dispatch.Option {
	var opts []dispatch.Option
	if e.name != "" {
		opts = append(opts, dispatch.Name(e.name))
	}
	if e.extra != nil {
		opts = append(opts, dispatch.Extra(e.extra))
	}
	if e.app != "" {
		opts = append(opts, dispatch.App(e.app))
	}
	if e.namespace != "" {
		opts = append(opts, dispatch.Namespace(e.namespace))
	}
	return opts
}

// wrapDiags converts HCL diagnostics into a structured error at the
// first diagnostic's location.
func wrapDiags(code string, diags hcl.Diagnostics) error {
	err := interrors.New(code).Wrap(diags)
	for _, d := range diags {
		if d.Subject != nil {
			return locate(err, *d.Subject)
		}
	}
	return err
}

func locate(err *interrors.Error, r hcl.Range) error {
	return err.WithLocation(r.Filename, r.Start.Line, r.Start.Column)
}
