package dispatch

import (
	"errors"
	"reflect"
	"testing"

	"github.com/wayfind-dev/wayfind/pkg/convert"
)

func newsTable() *Table {
	return New(
		Route("articles/2003/", "views.special_case_2003"),
		Route("articles/<int:year>/", "views.year_archive"),
		Route("articles/<int:year>/<int:month>/", "views.month_archive"),
		Route("articles/<int:year>/<int:month>/<slug:slug>/", "views.article_detail"),
	)
}

func TestResolveFirstMatchWins(t *testing.T) {
	table := newsTable()

	// The literal route is declared first, so 2003 never reaches the
	// <int:year> route.
	m, err := table.Resolve("articles/2003/")
	if err != nil {
		t.Fatalf("Resolve = %v", err)
	}
	if m.Handler != "views.special_case_2003" {
		t.Errorf("Handler = %v, want views.special_case_2003", m.Handler)
	}
	if len(m.Kwargs) != 0 {
		t.Errorf("Kwargs = %v, want empty", m.Kwargs)
	}

	m, err = table.Resolve("articles/2005/")
	if err != nil {
		t.Fatalf("Resolve = %v", err)
	}
	if m.Handler != "views.year_archive" {
		t.Errorf("Handler = %v, want views.year_archive", m.Handler)
	}
	if !reflect.DeepEqual(m.Kwargs, map[string]any{"year": 2005}) {
		t.Errorf("Kwargs = %v, want year=2005", m.Kwargs)
	}
}

func TestResolveTypedCaptures(t *testing.T) {
	table := newsTable()

	m, err := table.Resolve("articles/2003/03/building-a-django-site/")
	if err != nil {
		t.Fatalf("Resolve = %v", err)
	}
	if m.Handler != "views.article_detail" {
		t.Errorf("Handler = %v, want views.article_detail", m.Handler)
	}
	want := map[string]any{"year": 2003, "month": 3, "slug": "building-a-django-site"}
	if !reflect.DeepEqual(m.Kwargs, want) {
		t.Errorf("Kwargs = %v, want %v", m.Kwargs, want)
	}
}

func TestResolveLeadingSlash(t *testing.T) {
	table := newsTable()

	m, err := table.Resolve("/articles/2005/")
	if err != nil {
		t.Fatalf("Resolve = %v", err)
	}
	if m.Handler != "views.year_archive" {
		t.Errorf("Handler = %v, want views.year_archive", m.Handler)
	}
}

func TestResolveRequiresFullConsumption(t *testing.T) {
	table := newsTable()

	// "articles/2005" without the trailing slash matches no route.
	_, err := table.Resolve("articles/2005")
	if !IsNotFound(err) {
		t.Fatalf("Resolve = %v, want not-found", err)
	}
}

func TestResolveNoMatchError(t *testing.T) {
	table := newsTable()

	_, err := table.Resolve("nothing/here/")
	if !IsNotFound(err) {
		t.Fatalf("Resolve = %v, want not-found", err)
	}
	var nm *NoMatchError
	if !errors.As(err, &nm) {
		t.Fatalf("error is %T, want *NoMatchError", err)
	}
	if nm.Path != "nothing/here/" {
		t.Errorf("Path = %q, want %q", nm.Path, "nothing/here/")
	}
	if len(nm.Tried) != 4 {
		t.Errorf("len(Tried) = %d, want 4", len(nm.Tried))
	}
}

func TestResolveExtraArguments(t *testing.T) {
	table := New(
		Route("blog/<int:year>/", "views.year_archive",
			Extra(map[string]any{"foo": "bar"})),
	)

	m, err := table.Resolve("blog/2005/")
	if err != nil {
		t.Fatalf("Resolve = %v", err)
	}
	want := map[string]any{"year": 2005, "foo": "bar"}
	if !reflect.DeepEqual(m.Kwargs, want) {
		t.Errorf("Kwargs = %v, want %v", m.Kwargs, want)
	}
}

func TestResolveExtraWinsOnCollision(t *testing.T) {
	table := New(
		Route("blog/<int:year>/", "views.year_archive",
			Extra(map[string]any{"year": 1999})),
	)

	m, err := table.Resolve("blog/2005/")
	if err != nil {
		t.Fatalf("Resolve = %v", err)
	}
	if m.Kwargs["year"] != 1999 {
		t.Errorf("year = %v, want extra argument to win", m.Kwargs["year"])
	}
}

func TestResolveIncludeMergesCaptures(t *testing.T) {
	inner := New(
		Route("archive/", "views.blog_archive"),
		Route("tag/<slug:tag>/", "views.blog_tag"),
	)
	table := New(
		Include("<username>/blog/", inner),
	)

	m, err := table.Resolve("john/blog/tag/python/")
	if err != nil {
		t.Fatalf("Resolve = %v", err)
	}
	if m.Handler != "views.blog_tag" {
		t.Errorf("Handler = %v, want views.blog_tag", m.Handler)
	}
	want := map[string]any{"username": "john", "tag": "python"}
	if !reflect.DeepEqual(m.Kwargs, want) {
		t.Errorf("Kwargs = %v, want %v", m.Kwargs, want)
	}
}

func TestResolveIncludeMissCascades(t *testing.T) {
	inner := New(
		Route("archive/", "views.blog_archive"),
	)
	table := New(
		Include("blog/", inner),
		Route("blog/about/", "views.blog_about"),
	)

	// The include's prefix matches but nothing inside it does, so the
	// sibling declared after the include still gets its turn.
	m, err := table.Resolve("blog/about/")
	if err != nil {
		t.Fatalf("Resolve = %v", err)
	}
	if m.Handler != "views.blog_about" {
		t.Errorf("Handler = %v, want views.blog_about", m.Handler)
	}
}

func TestResolveCustomConverter(t *testing.T) {
	reg := convert.NewRegistry()
	err := reg.Register("yyyy", convert.Converter{
		Regexp: `[0-9]{4}`,
		Parse: func(s string) (any, error) {
			c := convert.Int()
			return c.Parse(s)
		},
		Format: func(v any) (string, error) {
			c := convert.Int()
			return c.Format(v)
		},
	})
	if err != nil {
		t.Fatalf("Register = %v", err)
	}

	table := New(
		Route("articles/<yyyy:year>/", "views.year_archive"),
	).WithConverters(reg)

	m, err := table.Resolve("articles/2003/")
	if err != nil {
		t.Fatalf("Resolve = %v", err)
	}
	if m.Kwargs["year"] != 2003 {
		t.Errorf("year = %v, want 2003", m.Kwargs["year"])
	}

	// Five digits do not fit the converter's fragment.
	_, err = table.Resolve("articles/12345/")
	if !IsNotFound(err) {
		t.Errorf("Resolve(12345) = %v, want not-found", err)
	}
}

func TestResolvePositionalCaptures(t *testing.T) {
	table := New(
		RegexpRoute(`articles/([0-9]{4})/([0-9]{2})/`, "views.month_archive"),
	)

	m, err := table.Resolve("articles/2003/12/")
	if err != nil {
		t.Fatalf("Resolve = %v", err)
	}
	want := []any{"2003", "12"}
	if !reflect.DeepEqual(m.Args, want) {
		t.Errorf("Args = %v, want %v", m.Args, want)
	}
	if m.Kwargs != nil {
		t.Errorf("Kwargs = %v, want nil", m.Kwargs)
	}
}

func TestResolveNamedAnywhereSuppressesPositional(t *testing.T) {
	inner := New(
		RegexpRoute(`([0-9]{2})/`, "views.inner"),
	)
	table := New(
		Include("articles/<int:year>/", inner),
	)

	// The outer capture is named, so the inner positional capture is
	// dropped from the result.
	m, err := table.Resolve("articles/2003/12/")
	if err != nil {
		t.Fatalf("Resolve = %v", err)
	}
	if m.Args != nil {
		t.Errorf("Args = %v, want nil", m.Args)
	}
	if !reflect.DeepEqual(m.Kwargs, map[string]any{"year": 2003}) {
		t.Errorf("Kwargs = %v, want year=2003", m.Kwargs)
	}
}

func TestResolveExtraDoesNotSuppressPositional(t *testing.T) {
	table := New(
		RegexpRoute(`articles/([0-9]{4})/`, "views.year_archive",
			Extra(map[string]any{"foo": "bar"})),
	)

	m, err := table.Resolve("articles/2003/")
	if err != nil {
		t.Fatalf("Resolve = %v", err)
	}
	if !reflect.DeepEqual(m.Args, []any{"2003"}) {
		t.Errorf("Args = %v, want [2003]", m.Args)
	}
	if !reflect.DeepEqual(m.Kwargs, map[string]any{"foo": "bar"}) {
		t.Errorf("Kwargs = %v, want foo=bar", m.Kwargs)
	}
}

func TestMatchViewName(t *testing.T) {
	m := &Match{Name: "detail", Namespaces: []string{"admin", "polls"}}
	if got := m.ViewName(); got != "admin:polls:detail" {
		t.Errorf("ViewName = %q, want %q", got, "admin:polls:detail")
	}

	m = &Match{Name: "detail"}
	if got := m.ViewName(); got != "detail" {
		t.Errorf("ViewName = %q, want %q", got, "detail")
	}
}
