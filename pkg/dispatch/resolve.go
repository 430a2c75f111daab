package dispatch

import "strings"

// Resolve walks the table against path, in declaration order, and
// returns the first match.
//
// The path is the request path with host and query string already
// stripped by the transport layer; a single leading "/" is tolerated.
// A nil *Match comes with either a *NoMatchError (the normal negative
// result, see IsNotFound) or a *ConfigError (a fatal table fault,
// surfaced on first access and never converted into not-found).
func (t *Table) Resolve(path string) (*Match, error) {
	ct, err := t.ensure()
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimPrefix(path, "/")

	var tried []string
	m, err := ct.resolve(trimmed, resolveState{}, &tried)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &NoMatchError{Path: path, Tried: tried}
	}
	return m, nil
}

// resolveState is the context threaded through include recursion: the
// captures and extra arguments accumulated on the prefix chain.
type resolveState struct {
	args       []any
	kwargs     map[string]any
	hasNamed   bool
	apps       []string
	namespaces []string
	prefix     string // concatenated pattern sources, for diagnostics
}

// resolve tries each node in order against the remaining path. A nil
// match with a nil error means nothing here matched and the caller
// should continue with its next sibling.
func (ct *compiledTable) resolve(path string, st resolveState, tried *[]string) (*Match, error) {
	for _, n := range ct.nodes {
		pm, ok := n.pat.MatchPrefix(path)

		if n.child == nil {
			// Terminal route must consume the entire remaining path.
			if !ok || pm.Consumed != len(path) {
				*tried = append(*tried, st.prefix+n.pat.String())
				continue
			}
			handler, err := n.bind()
			if err != nil {
				return nil, err
			}
			hasNamed := st.hasNamed || n.pat.Named()
			m := &Match{
				Handler:    handler,
				Kwargs:     mergeKwargs(st.kwargs, pm.Kwargs, n.decl.extra),
				Name:       n.decl.name,
				Apps:       st.apps,
				Namespaces: st.namespaces,
				Pattern:    st.prefix + n.pat.String(),
			}
			if !hasNamed {
				m.Args = concatArgs(st.args, pm.Args)
			}
			return m, nil
		}

		// Include: a prefix match is enough; the child table sees the
		// residual path. A child miss cascades to the next sibling.
		if !ok {
			*tried = append(*tried, st.prefix+n.pat.String())
			continue
		}
		sub := resolveState{
			kwargs:     mergeKwargs(st.kwargs, pm.Kwargs, n.decl.extra),
			hasNamed:   st.hasNamed || n.pat.Named(),
			apps:       st.apps,
			namespaces: st.namespaces,
			prefix:     st.prefix + n.pat.String(),
		}
		if !sub.hasNamed {
			sub.args = concatArgs(st.args, pm.Args)
		}
		if n.instance != "" {
			sub.apps = appendCopy(st.apps, n.decl.app)
			sub.namespaces = appendCopy(st.namespaces, n.instance)
		}
		m, err := n.child.resolve(path[pm.Consumed:], sub, tried)
		if err != nil {
			return nil, err
		}
		if m != nil {
			return m, nil
		}
	}
	return nil, nil
}

// mergeKwargs flattens the accumulated keyword arguments with a
// pattern's captures and a declaration's extra arguments. Extra
// arguments win on key collision; capture-name collisions across the
// chain were rejected at compile time.
func mergeKwargs(acc, captured, extra map[string]any) map[string]any {
	if len(acc) == 0 && len(captured) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(acc)+len(captured)+len(extra))
	for k, v := range acc {
		out[k] = v
	}
	for k, v := range captured {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func concatArgs(a, b []any) []any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]any, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func appendCopy(s []string, v string) []string {
	out := make([]string, 0, len(s)+1)
	out = append(out, s...)
	return append(out, v)
}
