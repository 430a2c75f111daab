package dispatch

import (
	"fmt"

	"github.com/wayfind-dev/wayfind/pkg/pattern"
)

// nameIndex is the per-table reverse-resolution index. It is built
// once, during compilation, by a full traversal of the compiled tree,
// and is read-only afterwards.
//
// Candidates for a view name are flattened through unnamespaced
// includes; a namespaced include is a boundary and contributes an
// instance entry holding its own table's index instead.
type nameIndex struct {
	// views maps a view name to its candidates in declaration order.
	views map[string][]*candidate

	// instances maps an instance namespace to the entry for descending
	// into it.
	instances map[string]*instanceEntry

	// apps maps an application namespace to the instance namespaces
	// registered under it, in declaration order.
	apps map[string][]string
}

// candidate is one reversible view of a named terminal route: the full
// pattern chain from this index's table down to the leaf.
type candidate struct {
	prefix chainPrefix

	// leaf pattern pieces, appended after prefix
	segments []pattern.Segment
	captures []*pattern.Capture

	reversible bool
	pattern    string // concatenated source, for error messages
}

// instanceEntry points at a namespaced sub-table together with the
// pattern prefix accumulated on the way to it.
type instanceEntry struct {
	app    string
	prefix chainPrefix
	table  *compiledTable
}

// chainPrefix is the pattern material accumulated across include
// prefixes: the segments to format, the captures they require, and
// whether every pattern on the way was reversible.
type chainPrefix struct {
	segments   []pattern.Segment
	captures   []*pattern.Capture
	reversible bool
	source     string
}

func (p chainPrefix) extend(pat *pattern.Pattern) chainPrefix {
	out := chainPrefix{
		segments:   append(append([]pattern.Segment{}, p.segments...), pat.Segments()...),
		captures:   append(append([]*pattern.Capture{}, p.captures...), pat.Captures()...),
		reversible: p.reversible && pat.Reversible(),
		source:     p.source + pat.String(),
	}
	return out
}

// buildIndex populates the name index of ct and, recursively, of every
// namespaced sub-table. Ambiguous namespace declarations are a
// configuration fault: two instances may not share an instance
// namespace at the same level.
func buildIndex(ct *compiledTable, prefix chainPrefix) error {
	ct.index = &nameIndex{
		views:     make(map[string][]*candidate),
		instances: make(map[string]*instanceEntry),
		apps:      make(map[string][]string),
	}
	return collectIndex(ct, ct.index, prefix)
}

func collectIndex(ct *compiledTable, idx *nameIndex, prefix chainPrefix) error {
	for _, n := range ct.nodes {
		if n.child == nil {
			if n.decl.name == "" {
				continue
			}
			c := &candidate{
				prefix:     prefix,
				segments:   n.pat.Segments(),
				captures:   n.pat.Captures(),
				reversible: prefix.reversible && n.pat.Reversible(),
				pattern:    prefix.source + n.pat.String(),
			}
			idx.views[n.decl.name] = append(idx.views[n.decl.name], c)
			continue
		}

		if n.instance == "" {
			// Unnamespaced include: its routes belong to this index.
			if err := collectIndex(n.child, idx, prefix.extend(n.pat)); err != nil {
				return err
			}
			continue
		}

		if _, dup := idx.instances[n.instance]; dup {
			return &ConfigError{Template: n.decl.template,
				Reason: fmt.Sprintf("instance namespace %q is declared twice at the same level", n.instance)}
		}
		idx.instances[n.instance] = &instanceEntry{
			app:    n.decl.app,
			prefix: prefix.extend(n.pat),
			table:  n.child,
		}
		idx.apps[n.decl.app] = append(idx.apps[n.decl.app], n.instance)

		// The namespaced table gets its own index, rooted at itself.
		if err := buildIndex(n.child, chainPrefix{reversible: true}); err != nil {
			return err
		}
	}
	return nil
}
