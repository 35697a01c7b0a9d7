package application

import (
	"context"
	"sort"

	"github.com/sun-exploit/cblog/blog/domain"
)

// AggregateTags returns the tag cloud: every tag with the number of posts
// using it, sorted case-insensitively by name. It does not depend on any
// request criterion.
func AggregateTags(ctx context.Context, repo domain.PostRepository) ([]domain.TagCount, error) {
	tags, err := repo.TagFrequencies(ctx)
	if err != nil {
		return nil, domain.NewQueryError("tag frequencies", err)
	}

	sorted := make([]domain.TagCount, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return domain.FoldTag(sorted[i].Name) < domain.FoldTag(sorted[j].Name)
	})
	return sorted, nil
}
