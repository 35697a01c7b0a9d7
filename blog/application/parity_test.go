package application

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sun-exploit/cblog/blog/domain"
	"github.com/sun-exploit/cblog/blog/persistence"
)

// Both file backends loaded with the same posts must answer identically.
func TestBackendParity(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	backends := []persistence.Options{
		{Backend: persistence.BackendCDB, Path: filepath.Join(dir, "blog.cdb")},
		{Backend: persistence.BackendSQLite, Path: filepath.Join(dir, "blog.db")},
	}

	tagSets := [][]string{{"Go", "rust"}, {"go"}, {"RUST", "c"}, {}, {"c", "Go"}}
	for _, opts := range backends {
		require.NoError(t, persistence.Create(ctx, opts))

		store, err := persistence.OpenStore(ctx, opts)
		require.NoError(t, err)
		for i := 0; i < 12; i++ {
			p := &domain.Post{
				Slug:   fmt.Sprintf("post-%02d", i),
				Title:  fmt.Sprintf("Post %d", i),
				CTime:  int64(1000 + (i%4)*100),
				HTML:   fmt.Sprintf("<p>%d</p>", i),
				Source: fmt.Sprint(i),
				Tags:   tagSets[i%len(tagSets)],
			}
			require.NoError(t, store.SavePost(ctx, p))
			if i%3 == 0 {
				require.NoError(t, store.AddComment(ctx, p.Slug, &domain.Comment{Author: "ann", CTime: 5, Body: "hi"}))
			}
		}
		require.NoError(t, store.Close())
	}

	criteria := []domain.Criterion{domain.All(), domain.ByTag("rust"), domain.ByTag("C")}
	if c, err := domain.ByTimeRange(1100, 1200); err == nil {
		criteria = append(criteria, c)
	}

	type answer struct {
		pages []IndexPage
		tags  []domain.TagCount
	}
	answers := make([]answer, 0, len(backends))

	for _, opts := range backends {
		repo, err := persistence.Open(ctx, opts)
		require.NoError(t, err)

		var a answer
		for _, c := range criteria {
			for page := 1; page <= 3; page++ {
				got, err := BuildIndex(ctx, repo, c, domain.NewPageWindow(page, 5, 10))
				require.NoError(t, err)
				a.pages = append(a.pages, got)
			}
		}
		a.tags, err = AggregateTags(ctx, repo)
		require.NoError(t, err)
		require.NoError(t, repo.Close())

		answers = append(answers, a)
	}

	assert.Equal(t, answers[0].pages, answers[1].pages)
	assert.Equal(t, answers[0].tags, answers[1].tags)
	assert.Equal(t, []domain.TagCount{
		{Name: "c", Count: 4},
		{Name: "Go", Count: 8},
		{Name: "rust", Count: 5},
	}, answers[0].tags)
}
