package routefile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interrors "github.com/wayfind-dev/wayfind/internal/errors"
	"github.com/wayfind-dev/wayfind/pkg/dispatch"
)

const blogRoutes = `
	table "blog" {
	  route "" {
	    handler = "blog.index"
	    name    = "index"
	  }
	  route "<int:year>/" {
	    handler = "blog.year_archive"
	    name    = "year-archive"
	    extra   = { page = 1 }
	  }
	}

	root {
	  route "about/" {
	    handler = "site.about"
	    name    = "about"
	  }
	  include "<username>/blog/" {
	    table = "blog"
	  }
	}
`

func TestLoadBytes(t *testing.T) {
	table, err := NewLoader().LoadBytes("routes.hcl", []byte(blogRoutes))
	require.NoError(t, err)

	m, err := table.Resolve("about/")
	require.NoError(t, err)
	assert.Equal(t, dispatch.Ref("site.about"), m.Handler)
	assert.Equal(t, "about", m.Name)

	m, err = table.Resolve("john/blog/2003/")
	require.NoError(t, err)
	assert.Equal(t, dispatch.Ref("blog.year_archive"), m.Handler)
	want := map[string]any{"username": "john", "year": 2003, "page": 1}
	if diff := cmp.Diff(want, m.Kwargs); diff != "" {
		t.Errorf("Kwargs mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadBytesReverse(t *testing.T) {
	table, err := NewLoader().LoadBytes("routes.hcl", []byte(blogRoutes))
	require.NoError(t, err)

	got, err := table.Reverse("year-archive",
		dispatch.Kwargs(map[string]any{"username": "john", "year": 2003}))
	require.NoError(t, err)
	assert.Equal(t, "/john/blog/2003/", got)
}

func TestLoadBytesOrderPreserved(t *testing.T) {
	src := `
		root {
		  route "articles/2003/" {
		    handler = "views.special"
		  }
		  route "articles/<int:year>/" {
		    handler = "views.year_archive"
		  }
		}
	`
	table, err := NewLoader().LoadBytes("routes.hcl", []byte(src))
	require.NoError(t, err)

	m, err := table.Resolve("articles/2003/")
	require.NoError(t, err)
	assert.Equal(t, dispatch.Ref("views.special"), m.Handler)
}

func TestLoadBytesWithHandlers(t *testing.T) {
	handlers := dispatch.NewHandlers()
	handlers.Register("site.about", "the-about-handler")

	table, err := NewLoader(WithHandlers(handlers)).LoadBytes("routes.hcl", []byte(`
		root {
		  route "about/" {
		    handler = "site.about"
		  }
		}
	`))
	require.NoError(t, err)

	m, err := table.Resolve("about/")
	require.NoError(t, err)
	assert.Equal(t, "the-about-handler", m.Handler)
}

func TestLoadBytesRegexpRoute(t *testing.T) {
	table, err := NewLoader().LoadBytes("routes.hcl", []byte(`
		root {
		  route "comments/(?P<page>[0-9]+)/" {
		    handler = "views.comments"
		    regexp  = true
		  }
		}
	`))
	require.NoError(t, err)

	m, err := table.Resolve("comments/42/")
	require.NoError(t, err)
	assert.Equal(t, "42", m.Kwargs["page"])
}

func TestLoadBytesNamespaces(t *testing.T) {
	table, err := NewLoader().LoadBytes("routes.hcl", []byte(`
		table "polls" {
		  route "" {
		    handler = "polls.index"
		    name    = "index"
		  }
		}

		root {
		  include "author-polls/" {
		    table     = "polls"
		    app       = "polls"
		    namespace = "author-polls"
		  }
		  include "polls/" {
		    table = "polls"
		    app   = "polls"
		  }
		}
	`))
	require.NoError(t, err)

	got, err := table.Reverse("polls:index")
	require.NoError(t, err)
	assert.Equal(t, "/polls/", got)

	got, err = table.Reverse("author-polls:index")
	require.NoError(t, err)
	assert.Equal(t, "/author-polls/", got)
}

func TestLoadFaults(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{
			"unknown table reference",
			`root {
			   include "blog/" { table = "blog" }
			 }`,
			"W020",
		},
		{
			"duplicate table name",
			`table "blog" {}
			 table "blog" {}
			 root {}`,
			"W021",
		},
		{
			"missing root",
			`table "blog" {}`,
			"W022",
		},
		{
			"include cycle",
			`table "a" {
			   include "b/" { table = "b" }
			 }
			 table "b" {
			   include "a/" { table = "a" }
			 }
			 root {
			   include "a/" { table = "a" }
			 }`,
			"W023",
		},
		{
			"missing handler attribute",
			`root {
			   route "about/" {}
			 }`,
			"W024",
		},
		{
			"wrong attribute type",
			`root {
			   route "about/" {
			     handler = "x"
			     regexp  = "yes"
			   }
			 }`,
			"W024",
		},
		{
			"not hcl",
			`root {{{`,
			"W025",
		},
		{
			"table does not compile",
			`root {
			   route "articles/<bogus:year>/" {
			     handler = "x"
			   }
			 }`,
			"W026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().LoadBytes("routes.hcl", []byte(tt.src))
			require.Error(t, err)

			var werr *interrors.Error
			require.True(t, errors.As(err, &werr), "error is %T", err)
			assert.Equal(t, tt.code, werr.Code)
		})
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()

	blog := filepath.Join(dir, "blog.hcl")
	require.NoError(t, os.WriteFile(blog, []byte(`
		table "blog" {
		  route "" {
		    handler = "blog.index"
		    name    = "index"
		  }
		}
	`), 0o644))

	root := filepath.Join(dir, "root.hcl")
	require.NoError(t, os.WriteFile(root, []byte(`
		root {
		  include "blog/" { table = "blog" }
		}
	`), 0o644))

	table, err := NewLoader().Load(blog, root)
	require.NoError(t, err)

	got, err := table.Reverse("index")
	require.NoError(t, err)
	assert.Equal(t, "/blog/", got)
}

func TestLoadNoFiles(t *testing.T) {
	_, err := NewLoader().Load()
	var werr *interrors.Error
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "W040", werr.Code)
}
