package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sun-exploit/cblog/blog/application"
	"github.com/sun-exploit/cblog/blog/domain"
)

func testOptions() Options {
	return Options{
		Title:      "My blog",
		URL:        "https://blog.example.org",
		Version:    "1.0.0",
		DateFormat: "%Y-%m-%d",
		Location:   time.UTC,
		Now:        time.Unix(1700000000, 0),
	}
}

func TestProject_Index(t *testing.T) {
	res := application.Result{
		Request: domain.Request{Kind: domain.KindIndex, Feed: domain.FeedHTML},
		Posts: []domain.PostSummary{
			{Slug: "second", Title: "Second", CTime: 1700000000, HTML: "<p>2</p>", Tags: []string{"go", "c"}, CommentCount: 2},
			{Slug: "first", Title: "First", CTime: 1600000000, HTML: "<p>1</p>"},
		},
		Tags:  []domain.TagCount{{Name: "c", Count: 1}, {Name: "go", Count: 1}},
		Page:  1,
		Pages: 1,
		Total: 2,
	}

	tree := Project(res, testOptions())

	tests := []struct {
		path string
		want string
	}{
		{"title", "My blog"},
		{"CBlog.version", "1.0.0"},
		{"CBlog.url", "https://blog.example.org"},
		{"Query.feed", ""},
		{"Query.kind", "index"},
		{"gendate", "2023-11-14"},
		{"page", "1"},
		{"nb_pages", "1"},
		{"total", "2"},
		{"err_msg", ""},
		{"Posts.0.filename", "second"},
		{"Posts.0.title", "Second"},
		{"Posts.0.date", "2023-11-14"},
		{"Posts.0.html", "<p>2</p>"},
		{"Posts.0.nb_comments", "2"},
		{"Posts.0.tags.0.name", "go"},
		{"Posts.0.tags.1.name", "c"},
		{"Posts.1.filename", "first"},
		{"Posts.1.nb_comments", "0"},
		{"Tags.0.name", "c"},
		{"Tags.1.count", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := tree.Get(tt.path)
			require.True(t, ok, "missing %s", tt.path)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, 2, tree.Len("Posts"))
	assert.Equal(t, 0, tree.Len("Posts.1.tags"))
}

func TestProject_EmptyResultKeepsLists(t *testing.T) {
	res := application.Result{
		Request:      domain.Request{Kind: domain.KindError},
		NotFound:     true,
		ErrorMessage: "Unknown request: /nope",
	}

	m := Project(res, testOptions()).Map()
	assert.Equal(t, []any{}, m["Posts"])
	assert.Equal(t, []any{}, m["Tags"])
	assert.Equal(t, []any{}, m["Comments"])
	assert.Equal(t, "Unknown request: /nope", m["err_msg"])
}

func TestProject_Comments(t *testing.T) {
	res := application.Result{
		Request: domain.Request{Kind: domain.KindPost, Target: "hello"},
		Posts:   []domain.PostSummary{{Slug: "hello", CommentCount: 1}},
		Comments: []domain.Comment{
			{Author: "alice", CTime: 1600000000, Body: "nice"},
		},
	}

	tree := Project(res, testOptions())
	author, _ := tree.Get("Comments.0.author")
	date, _ := tree.Get("Comments.0.date")
	body, _ := tree.Get("Comments.0.body")
	target, _ := tree.Get("Query.target")

	assert.Equal(t, "alice", author)
	assert.Equal(t, "2020-09-13", date)
	assert.Equal(t, "nice", body)
	assert.Equal(t, "hello", target)
}

func TestFormatDate(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}

	opts := Options{Location: paris}
	const ctime = 1700000000 // 2023-11-14 22:13:20 UTC

	tests := []struct {
		name   string
		feed   domain.Feed
		layout string
		want   string
	}{
		{name: "atom is utc", feed: domain.FeedAtom, want: "2023-11-14T22:13:20Z"},
		{name: "rss is rfc822 local", feed: domain.FeedRSS, want: "Tue, 14 Nov 2023 23:13:20 +0100"},
		{name: "html default layout", feed: domain.FeedHTML, want: "14/11/2023"},
		{name: "html custom layout", feed: domain.FeedHTML, layout: "%Y %H:%M", want: "2023 23:13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := opts
			o.DateFormat = tt.layout
			assert.Equal(t, tt.want, FormatDate(ctime, tt.feed, o))
		})
	}
}
