// Package dispatch maps request paths to handlers and back.
//
// A route table is an ordered list of declarations, each either a
// terminal route or the inclusion of a nested table under a prefix:
//
//	blog := dispatch.New(
//		dispatch.Route("", blogIndex, dispatch.Name("index")),
//		dispatch.Route("archive/", blogArchive, dispatch.Name("archive")),
//		dispatch.Route("<int:year>/", yearArchive, dispatch.Name("year")),
//	)
//
//	root := dispatch.New(
//		dispatch.Route("about/", aboutPage, dispatch.Name("about")),
//		dispatch.Include("<username>/blog/", blog, dispatch.App("blog")),
//	)
//
// # Forward resolution
//
//	m, err := root.Resolve("/alice/blog/2024/")
//	// m.Handler == yearArchive
//	// m.Kwargs  == map[string]any{"username": "alice", "year": 2024}
//
// Resolution walks declarations first to last and the first match
// wins, at every nesting level. An include consumes a prefix and hands
// the residual path to its table; if nothing inside matches, the walk
// cascades to the include's next sibling. A miss is reported as a
// *NoMatchError (check IsNotFound); table faults are *ConfigError and
// are never folded into not-found.
//
// # Reverse resolution
//
//	path, err := root.Reverse("blog:year", dispatch.Kwargs(map[string]any{
//		"username": "alice", "year": 2024,
//	}))
//	// path == "/alice/blog/2024/"
//
// Names qualify through namespaces with ":". Application namespaces
// group the instances of a reusable table; instance selection prefers
// the caller's current instance, then a default instance named after
// the application, then the last-declared instance.
//
// # Compilation
//
// A table compiles lazily exactly once, on first use, and is immutable
// and safe for concurrent resolution afterwards. Compile-time checks
// reject malformed patterns, capture names reused across an include
// chain, include cycles and ambiguous namespace declarations. Register
// custom converters with the convert package before the first table
// compiles against the registry.
package dispatch
