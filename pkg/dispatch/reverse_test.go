package dispatch

import (
	"errors"
	"strings"
	"testing"
)

func namedNewsTable() *Table {
	return New(
		Route("articles/2003/", "views.special_case_2003", Name("special-case-2003")),
		Route("articles/<int:year>/", "views.year_archive", Name("news-year-archive")),
		Route("articles/<int:year>/<int:month>/", "views.month_archive", Name("news-month-archive")),
	)
}

func TestReverseKwargs(t *testing.T) {
	table := namedNewsTable()

	got, err := table.Reverse("news-year-archive", Kwargs(map[string]any{"year": 2005}))
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/articles/2005/" {
		t.Errorf("Reverse = %q, want %q", got, "/articles/2005/")
	}
}

func TestReverseArgs(t *testing.T) {
	table := namedNewsTable()

	got, err := table.Reverse("news-month-archive", Args(2005, 12))
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/articles/2005/12/" {
		t.Errorf("Reverse = %q, want %q", got, "/articles/2005/12/")
	}
}

func TestReverseNoArguments(t *testing.T) {
	table := namedNewsTable()

	got, err := table.Reverse("special-case-2003")
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/articles/2003/" {
		t.Errorf("Reverse = %q, want %q", got, "/articles/2003/")
	}
}

func TestReverseMixedArgumentsRejected(t *testing.T) {
	table := namedNewsTable()

	_, err := table.Reverse("news-month-archive",
		Args(2005), Kwargs(map[string]any{"month": 12}))
	if err == nil || !strings.Contains(err.Error(), "cannot be mixed") {
		t.Errorf("Reverse = %v, want mixing error", err)
	}
}

func TestReverseShapeMismatch(t *testing.T) {
	table := namedNewsTable()

	tests := []struct {
		name string
		opts []ReverseOption
	}{
		{"too few args", []ReverseOption{}},
		{"too many args", []ReverseOption{Args(2005, 12)}},
		{"wrong kwarg name", []ReverseOption{Kwargs(map[string]any{"month": 12})}},
		{"extra kwarg", []ReverseOption{Kwargs(map[string]any{"year": 2005, "month": 12})}},
	}

	for _, tt := range tests {
		_, err := table.Reverse("news-year-archive", tt.opts...)
		var nr *NoReverseError
		if !errors.As(err, &nr) {
			t.Errorf("%s: Reverse = %v, want *NoReverseError", tt.name, err)
		}
	}
}

func TestReverseUnknownName(t *testing.T) {
	table := namedNewsTable()

	_, err := table.Reverse("no-such-view")
	var nr *NoReverseError
	if !errors.As(err, &nr) {
		t.Fatalf("Reverse = %v, want *NoReverseError", err)
	}
	if nr.Name != "no-such-view" {
		t.Errorf("Name = %q, want %q", nr.Name, "no-such-view")
	}
}

func TestReverseCandidateFallback(t *testing.T) {
	// Two routes share a name with different shapes; the first whose
	// shape fits the arguments wins.
	table := New(
		Route("archive/<int:year>/", "views.archive_year", Name("archive")),
		Route("archive/", "views.archive_index", Name("archive")),
	)

	got, err := table.Reverse("archive", Kwargs(map[string]any{"year": 2003}))
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/archive/2003/" {
		t.Errorf("Reverse = %q, want %q", got, "/archive/2003/")
	}

	got, err = table.Reverse("archive")
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/archive/" {
		t.Errorf("Reverse = %q, want %q", got, "/archive/")
	}
}

func TestReverseFormatFailureDisqualifies(t *testing.T) {
	table := New(
		Route("articles/<int:year>/", "views.year_archive", Name("year")),
	)

	// A negative value cannot be formatted as int, so the only
	// candidate is disqualified.
	_, err := table.Reverse("year", Kwargs(map[string]any{"year": -3}))
	var nr *NoReverseError
	if !errors.As(err, &nr) {
		t.Fatalf("Reverse = %v, want *NoReverseError", err)
	}
	if len(nr.Tried) != 1 {
		t.Errorf("len(Tried) = %d, want 1", len(nr.Tried))
	}
}

func TestReverseValueMustFitFragment(t *testing.T) {
	// "hello world" formats fine as a string but would never have been
	// matched by the slug fragment, so the candidate is disqualified.
	table := New(
		Route("tag/<slug:tag>/", "views.tag", Name("tag")),
	)

	_, err := table.Reverse("tag", Kwargs(map[string]any{"tag": "hello world"}))
	var nr *NoReverseError
	if !errors.As(err, &nr) {
		t.Fatalf("Reverse = %v, want *NoReverseError", err)
	}

	got, err := table.Reverse("tag", Kwargs(map[string]any{"tag": "hello-world"}))
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/tag/hello-world/" {
		t.Errorf("Reverse = %q, want %q", got, "/tag/hello-world/")
	}
}

func TestReverseRawPattern(t *testing.T) {
	table := New(
		RegexpRoute(`comments/(?P<page>[0-9]+)/`, "views.comments", Name("comments")),
	)

	got, err := table.Reverse("comments", Kwargs(map[string]any{"page": "7"}))
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/comments/7/" {
		t.Errorf("Reverse = %q, want %q", got, "/comments/7/")
	}
}

func TestReverseNonReversibleSkipped(t *testing.T) {
	// The raw candidate cannot be reversed; the template candidate
	// declared after it still serves the name.
	table := New(
		RegexpRoute(`articles/(?:a|b)/(?P<slug>[-a-z]+)/`, "views.detail", Name("detail")),
		Route("articles/<slug:slug>/", "views.detail", Name("detail")),
	)

	got, err := table.Reverse("detail", Kwargs(map[string]any{"slug": "hello"}))
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/articles/hello/" {
		t.Errorf("Reverse = %q, want %q", got, "/articles/hello/")
	}
}

func TestReversePositionalOnlyByArgs(t *testing.T) {
	table := New(
		RegexpRoute(`articles/([0-9]{4})/`, "views.year", Name("year")),
	)

	got, err := table.Reverse("year", Args("2003"))
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/articles/2003/" {
		t.Errorf("Reverse = %q, want %q", got, "/articles/2003/")
	}

	// Positional captures cannot be addressed by keyword.
	_, err = table.Reverse("year", Kwargs(map[string]any{"year": "2003"}))
	var nr *NoReverseError
	if !errors.As(err, &nr) {
		t.Errorf("Reverse = %v, want *NoReverseError", err)
	}
}

func TestReverseThroughInclude(t *testing.T) {
	inner := New(
		Route("tag/<slug:tag>/", "views.blog_tag", Name("blog-tag")),
	)
	table := New(
		Include("<username>/blog/", inner),
	)

	got, err := table.Reverse("blog-tag",
		Kwargs(map[string]any{"username": "john", "tag": "python"}))
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/john/blog/tag/python/" {
		t.Errorf("Reverse = %q, want %q", got, "/john/blog/tag/python/")
	}
}

func TestReverseResolveRoundTrip(t *testing.T) {
	table := namedNewsTable()

	path, err := table.Reverse("news-month-archive",
		Kwargs(map[string]any{"year": 2003, "month": 3}))
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}

	m, err := table.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve(%q) = %v", path, err)
	}
	if m.Name != "news-month-archive" {
		t.Errorf("Name = %q, want %q", m.Name, "news-month-archive")
	}
	if m.Kwargs["year"] != 2003 || m.Kwargs["month"] != 3 {
		t.Errorf("Kwargs = %v, want year=2003 month=3", m.Kwargs)
	}
}

func pollsTable() *Table {
	return New(
		Route("", "views.polls_index", Name("index")),
		Route("<int:question_id>/", "views.polls_detail", Name("detail")),
	)
}

func TestReverseNamespaceDefaultInstance(t *testing.T) {
	// The instance named like the application is the default.
	table := New(
		Include("author-polls/", pollsTable(), App("polls"), Namespace("author-polls")),
		Include("polls/", pollsTable(), App("polls")),
	)

	got, err := table.Reverse("polls:index")
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/polls/" {
		t.Errorf("Reverse = %q, want %q", got, "/polls/")
	}
}

func TestReverseNamespaceLastDeclaredWins(t *testing.T) {
	// No default instance: the last declared instance of the
	// application wins.
	table := New(
		Include("author-polls/", pollsTable(), App("polls"), Namespace("author-polls")),
		Include("publisher-polls/", pollsTable(), App("polls"), Namespace("publisher-polls")),
	)

	got, err := table.Reverse("polls:detail", Kwargs(map[string]any{"question_id": 5}))
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/publisher-polls/5/" {
		t.Errorf("Reverse = %q, want %q", got, "/publisher-polls/5/")
	}
}

func TestReverseNamespaceCurrentInstance(t *testing.T) {
	table := New(
		Include("author-polls/", pollsTable(), App("polls"), Namespace("author-polls")),
		Include("publisher-polls/", pollsTable(), App("polls"), Namespace("publisher-polls")),
	)

	got, err := table.Reverse("polls:index", Current("author-polls"))
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/author-polls/" {
		t.Errorf("Reverse = %q, want %q", got, "/author-polls/")
	}
}

func TestReverseInstanceNamespaceLiteral(t *testing.T) {
	table := New(
		Include("author-polls/", pollsTable(), App("polls"), Namespace("author-polls")),
		Include("publisher-polls/", pollsTable(), App("polls"), Namespace("publisher-polls")),
	)

	got, err := table.Reverse("author-polls:detail", Args(7))
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/author-polls/7/" {
		t.Errorf("Reverse = %q, want %q", got, "/author-polls/7/")
	}
}

func TestReverseUnknownNamespace(t *testing.T) {
	table := New(
		Include("polls/", pollsTable(), App("polls")),
	)

	_, err := table.Reverse("surveys:index")
	var nr *NoReverseError
	if !errors.As(err, &nr) {
		t.Fatalf("Reverse = %v, want *NoReverseError", err)
	}
	if !strings.Contains(nr.Error(), "not a registered namespace") {
		t.Errorf("Error = %q, want namespace message", nr.Error())
	}
}

func TestReverseNestedNamespaces(t *testing.T) {
	polls := pollsTable()
	admin := New(
		Include("polls/", polls, App("polls")),
	)
	table := New(
		Include("admin/", admin, App("admin")),
	)

	got, err := table.Reverse("admin:polls:detail", Kwargs(map[string]any{"question_id": 3}))
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/admin/polls/3/" {
		t.Errorf("Reverse = %q, want %q", got, "/admin/polls/3/")
	}
}

func TestReverseNamespacePrefixCaptures(t *testing.T) {
	blog := New(
		Route("post/<slug:slug>/", "views.post", Name("post")),
	)
	table := New(
		Include("<username>/", blog, App("blog")),
	)

	got, err := table.Reverse("blog:post",
		Kwargs(map[string]any{"username": "john", "slug": "first"}))
	if err != nil {
		t.Fatalf("Reverse = %v", err)
	}
	if got != "/john/post/first/" {
		t.Errorf("Reverse = %q, want %q", got, "/john/post/first/")
	}
}
