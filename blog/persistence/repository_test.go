package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sun-exploit/cblog/blog/domain"
)

func TestRepository_ReadContract(t *testing.T) {
	ctx := context.Background()

	for _, bc := range fileBackends(t) {
		t.Run(bc.name, func(t *testing.T) {
			seed(t, bc.opts, samplePosts())
			repo := openRepo(t, bc.opts)

			keys, err := repo.ListPostKeys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.PostKey{
				{Slug: "p1", CTime: 100},
				{Slug: "p2", CTime: 200},
				{Slug: "p3", CTime: 300},
			}, keys)

			fields, err := repo.GetPostFields(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, map[string]string{
				domain.FieldTitle:  "First",
				domain.FieldSource: "one",
				domain.FieldHTML:   "<p>one</p>",
				domain.FieldCTime:  "100",
				domain.FieldTags:   "Go, rust",
			}, fields)

			tags, err := repo.GetTagsFor(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, []string{"Go", "rust"}, tags)

			n, err := repo.CountComments(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			comments, err := repo.ListComments(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, []domain.Comment{
				{Author: "ann", CTime: 150, Body: "nice"},
				{Author: "bob", CTime: 160, Body: "line one\nline two"},
			}, comments)

			n, err = repo.CountComments(ctx, "p2")
			require.NoError(t, err)
			assert.Zero(t, n)

			freq, err := repo.TagFrequencies(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.TagCount{
				{Name: "Go", Count: 2},
				{Name: "rust", Count: 1},
				{Name: "C", Count: 1},
			}, freq)
		})
	}
}

func TestRepository_UnknownSlug(t *testing.T) {
	ctx := context.Background()

	for _, bc := range fileBackends(t) {
		t.Run(bc.name, func(t *testing.T) {
			seed(t, bc.opts, samplePosts())
			repo := openRepo(t, bc.opts)

			_, err := repo.GetPostFields(ctx, "nope")
			assert.True(t, errors.Is(err, domain.ErrNotFound), "GetPostFields error = %v", err)

			tags, err := repo.GetTagsFor(ctx, "nope")
			require.NoError(t, err)
			assert.Empty(t, tags)

			comments, err := repo.ListComments(ctx, "nope")
			require.NoError(t, err)
			assert.Empty(t, comments)
		})
	}
}

func TestRepository_EmptyStore(t *testing.T) {
	ctx := context.Background()

	for _, bc := range fileBackends(t) {
		t.Run(bc.name, func(t *testing.T) {
			repo := openRepo(t, bc.opts)

			keys, err := repo.ListPostKeys(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)

			freq, err := repo.TagFrequencies(ctx)
			require.NoError(t, err)
			assert.Empty(t, freq)
		})
	}
}

func TestStore_SavePostKeepsCreationTime(t *testing.T) {
	ctx := context.Background()

	for _, bc := range fileBackends(t) {
		t.Run(bc.name, func(t *testing.T) {
			store := openStore(t, bc.opts)

			require.NoError(t, store.SavePost(ctx, &domain.Post{Slug: "a", Title: "A", CTime: 10, Tags: []string{"x"}}))
			require.NoError(t, store.SavePost(ctx, &domain.Post{Slug: "a", Title: "A2", CTime: 99, Tags: []string{"y", "Y", "z"}}))

			keys, err := store.ListPostKeys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.PostKey{{Slug: "a", CTime: 10}}, keys)

			fields, err := store.GetPostFields(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "A2", fields[domain.FieldTitle])
			assert.Equal(t, "y, z", fields[domain.FieldTags])

			freq, err := store.TagFrequencies(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.TagCount{{Name: "y", Count: 1}, {Name: "z", Count: 1}}, freq)
		})
	}
}

func TestStore_SetField(t *testing.T) {
	ctx := context.Background()

	for _, bc := range fileBackends(t) {
		t.Run(bc.name, func(t *testing.T) {
			seed(t, bc.opts, samplePosts())
			store := openStore(t, bc.opts)

			require.NoError(t, store.SetField(ctx, "p2", domain.FieldTitle, "Renamed"))
			require.NoError(t, store.SetField(ctx, "p2", domain.FieldTags, " a ,b,, A"))

			fields, err := store.GetPostFields(ctx, "p2")
			require.NoError(t, err)
			assert.Equal(t, "Renamed", fields[domain.FieldTitle])
			assert.Equal(t, "a, b", fields[domain.FieldTags])
			assert.Equal(t, "200", fields[domain.FieldCTime])

			err = store.SetField(ctx, "p2", domain.FieldCTime, "5")
			assert.ErrorIs(t, err, ErrImmutableField)

			err = store.SetField(ctx, "p2", "color", "red")
			assert.ErrorIs(t, err, ErrUnknownField)

			err = store.SetField(ctx, "missing", domain.FieldTitle, "x")
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestStore_DeletePost(t *testing.T) {
	ctx := context.Background()

	for _, bc := range fileBackends(t) {
		t.Run(bc.name, func(t *testing.T) {
			seed(t, bc.opts, samplePosts())
			store := openStore(t, bc.opts)

			require.NoError(t, store.DeletePost(ctx, "p1"))

			keys, err := store.ListPostKeys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.PostKey{{Slug: "p2", CTime: 200}, {Slug: "p3", CTime: 300}}, keys)

			_, err = store.GetPostFields(ctx, "p1")
			assert.ErrorIs(t, err, domain.ErrNotFound)

			n, err := store.CountComments(ctx, "p1")
			require.NoError(t, err)
			assert.Zero(t, n)

			freq, err := store.TagFrequencies(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.TagCount{{Name: "go", Count: 1}, {Name: "C", Count: 1}}, freq)

			assert.ErrorIs(t, store.DeletePost(ctx, "p1"), domain.ErrNotFound)
		})
	}
}

func TestStore_AddCommentUnknownPost(t *testing.T) {
	ctx := context.Background()

	for _, bc := range fileBackends(t) {
		t.Run(bc.name, func(t *testing.T) {
			store := openStore(t, bc.opts)
			err := store.AddComment(ctx, "ghost", &domain.Comment{Author: "a", Body: "b"})
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestStore_RejectsBadSlug(t *testing.T) {
	ctx := context.Background()

	for _, bc := range fileBackends(t) {
		t.Run(bc.name, func(t *testing.T) {
			store := openStore(t, bc.opts)
			assert.Error(t, store.SavePost(ctx, &domain.Post{Slug: ""}))
			assert.Error(t, store.SavePost(ctx, &domain.Post{Slug: "a/b"}))
		})
	}
}
