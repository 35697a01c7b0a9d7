package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sun-exploit/cblog/blog/domain"
)

type backendCase struct {
	name string
	opts Options
}

// fileBackends returns freshly created, empty cdb and sqlite repositories.
func fileBackends(t *testing.T) []backendCase {
	t.Helper()
	dir := t.TempDir()

	cases := []backendCase{
		{name: BackendCDB, opts: Options{Backend: BackendCDB, Path: filepath.Join(dir, "blog.cdb")}},
		{name: BackendSQLite, opts: Options{Backend: BackendSQLite, Path: filepath.Join(dir, "blog.db")}},
	}
	for _, c := range cases {
		require.NoError(t, Create(context.Background(), c.opts), "create %s", c.name)
	}
	return cases
}

type seedPost struct {
	post     domain.Post
	comments []domain.Comment
}

func openStore(t *testing.T, opts Options) domain.PostStore {
	t.Helper()

	store, err := OpenStore(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seed(t *testing.T, opts Options, posts []seedPost) {
	t.Helper()
	ctx := context.Background()

	store, err := OpenStore(ctx, opts)
	require.NoError(t, err)
	defer store.Close()

	for _, sp := range posts {
		p := sp.post
		require.NoError(t, store.SavePost(ctx, &p), "save %s", p.Slug)
		for _, c := range sp.comments {
			c := c
			require.NoError(t, store.AddComment(ctx, p.Slug, &c), "comment %s", p.Slug)
		}
	}
}

func openRepo(t *testing.T, opts Options) domain.PostRepository {
	t.Helper()

	repo, err := Open(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func samplePosts() []seedPost {
	return []seedPost{
		{
			post: domain.Post{Slug: "p1", Title: "First", CTime: 100, HTML: "<p>one</p>", Source: "one", Tags: []string{"Go", "rust"}},
			comments: []domain.Comment{
				{Author: "ann", CTime: 150, Body: "nice"},
				{Author: "bob", CTime: 160, Body: "line one\nline two"},
			},
		},
		{
			post: domain.Post{Slug: "p2", Title: "Second", CTime: 200, HTML: "<p>two</p>", Source: "two", Tags: []string{"go"}},
		},
		{
			post: domain.Post{Slug: "p3", Title: "Third", CTime: 300, HTML: "<p>three</p>", Source: "three", Tags: []string{"C"}},
		},
	}
}
