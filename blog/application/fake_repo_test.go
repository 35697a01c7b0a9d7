package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sun-exploit/cblog/blog/domain"
	"github.com/sun-exploit/cblog/blog/persistence"
)

// memRepo is an in-memory domain.PostRepository that counts hydration calls.
type memRepo struct {
	posts    []domain.Post
	comments map[string][]domain.Comment

	fieldCalls int
	closed     bool
	failList   error
	failTags   error
}

func newMemRepo(posts ...domain.Post) *memRepo {
	return &memRepo{posts: posts, comments: make(map[string][]domain.Comment)}
}

func (r *memRepo) find(slug string) (domain.Post, bool) {
	for _, p := range r.posts {
		if p.Slug == slug {
			return p, true
		}
	}
	return domain.Post{}, false
}

func (r *memRepo) ListPostKeys(ctx context.Context) ([]domain.PostKey, error) {
	if r.failList != nil {
		return nil, r.failList
	}
	keys := make([]domain.PostKey, 0, len(r.posts))
	for _, p := range r.posts {
		keys = append(keys, domain.PostKey{Slug: p.Slug, CTime: p.CTime})
	}
	return keys, nil
}

func (r *memRepo) GetPostFields(ctx context.Context, slug string) (map[string]string, error) {
	r.fieldCalls++
	p, ok := r.find(slug)
	if !ok {
		return nil, fmt.Errorf("post %q: %w", slug, domain.ErrNotFound)
	}
	return map[string]string{
		domain.FieldTitle:  p.Title,
		domain.FieldSource: p.Source,
		domain.FieldHTML:   p.HTML,
		domain.FieldCTime:  strconv.FormatInt(p.CTime, 10),
		domain.FieldTags:   persistence.JoinTags(p.Tags),
	}, nil
}

func (r *memRepo) GetTagsFor(ctx context.Context, slug string) ([]string, error) {
	p, _ := r.find(slug)
	return append([]string{}, p.Tags...), nil
}

func (r *memRepo) CountComments(ctx context.Context, slug string) (int, error) {
	return len(r.comments[slug]), nil
}

func (r *memRepo) ListComments(ctx context.Context, slug string) ([]domain.Comment, error) {
	return append([]domain.Comment{}, r.comments[slug]...), nil
}

func (r *memRepo) TagFrequencies(ctx context.Context) ([]domain.TagCount, error) {
	if r.failTags != nil {
		return nil, r.failTags
	}
	index := map[string]int{}
	counts := []domain.TagCount{}
	for _, p := range r.posts {
		seen := map[string]bool{}
		for _, tag := range p.Tags {
			key := domain.FoldTag(tag)
			if seen[key] {
				continue
			}
			seen[key] = true
			if i, ok := index[key]; ok {
				counts[i].Count++
				continue
			}
			index[key] = len(counts)
			counts = append(counts, domain.TagCount{Name: tag, Count: 1})
		}
	}
	return counts, nil
}

func (r *memRepo) Close() error {
	r.closed = true
	return nil
}

var errBackend = errors.New("backend exploded")

// scenarioPosts is the three-post repository used across the tests.
func scenarioPosts() []domain.Post {
	return []domain.Post{
		{Slug: "P1", Title: "One", CTime: 100, Tags: []string{"a", "b"}},
		{Slug: "P2", Title: "Two", CTime: 200, Tags: []string{"b"}},
		{Slug: "P3", Title: "Three", CTime: 50, Tags: []string{"a"}},
	}
}

func slugsOf(posts []domain.PostSummary) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Slug)
	}
	return out
}
