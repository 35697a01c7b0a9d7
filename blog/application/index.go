package application

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sun-exploit/cblog/blog/domain"
)

// IndexPage is one page of the filtered, newest-first post sequence.
type IndexPage struct {
	Posts []domain.PostSummary
	// Total counts every post matching the criterion, on all pages.
	Total int
	Pages int
}

// BuildIndex selects the posts matching c, newest first, and hydrates the
// ones falling inside window. Posts with equal creation times keep their
// storage order.
func BuildIndex(ctx context.Context, repo domain.PostRepository, c domain.Criterion, window domain.PageWindow) (IndexPage, error) {
	keys, err := repo.ListPostKeys(ctx)
	if err != nil {
		return IndexPage{}, domain.NewQueryError("list posts", err)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].CTime > keys[j].CTime
	})

	matched, err := filterKeys(ctx, repo, keys, c)
	if err != nil {
		return IndexPage{}, err
	}

	page := IndexPage{
		Posts: make([]domain.PostSummary, 0, window.Size),
		Total: len(matched),
		Pages: domain.PageCount(len(matched), window.Size),
	}

	first := window.Offset()
	if first < 0 || first >= len(matched) {
		return page, nil
	}
	last := first + min(window.Size, len(matched)-first)

	for _, key := range matched[first:last] {
		summary, err := hydrate(ctx, repo, key)
		if err != nil {
			return IndexPage{}, err
		}
		page.Posts = append(page.Posts, summary)
	}
	return page, nil
}

func filterKeys(ctx context.Context, repo domain.PostRepository, keys []domain.PostKey, c domain.Criterion) ([]domain.PostKey, error) {
	switch c.Kind {
	case domain.CriterionAll:
		return keys, nil
	case domain.CriterionTimeRange:
		matched := make([]domain.PostKey, 0, len(keys))
		for _, key := range keys {
			if c.InRange(key.CTime) {
				matched = append(matched, key)
			}
		}
		return matched, nil
	case domain.CriterionTag:
		matched := make([]domain.PostKey, 0, len(keys))
		for _, key := range keys {
			tags, err := repo.GetTagsFor(ctx, key.Slug)
			if err != nil {
				return nil, domain.NewQueryError("get tags", err)
			}
			if c.HasTag(tags) {
				matched = append(matched, key)
			}
		}
		return matched, nil
	default:
		return nil, fmt.Errorf("unsupported criterion %s", c.Kind)
	}
}

// BuildPost hydrates a single post. Unknown slugs fail with domain.ErrNotFound.
func BuildPost(ctx context.Context, repo domain.PostRepository, slug string) (domain.PostSummary, error) {
	fields, err := repo.GetPostFields(ctx, slug)
	if err != nil {
		return domain.PostSummary{}, domain.NewQueryError("get post", err)
	}
	return summarize(ctx, repo, slug, fields, parseCTime(fields[domain.FieldCTime]))
}

func hydrate(ctx context.Context, repo domain.PostRepository, key domain.PostKey) (domain.PostSummary, error) {
	fields, err := repo.GetPostFields(ctx, key.Slug)
	if err != nil {
		return domain.PostSummary{}, domain.NewQueryError("get post", err)
	}
	return summarize(ctx, repo, key.Slug, fields, key.CTime)
}

func summarize(ctx context.Context, repo domain.PostRepository, slug string, fields map[string]string, ctime int64) (domain.PostSummary, error) {
	tags, err := repo.GetTagsFor(ctx, slug)
	if err != nil {
		return domain.PostSummary{}, domain.NewQueryError("get tags", err)
	}

	n, err := repo.CountComments(ctx, slug)
	if err != nil {
		return domain.PostSummary{}, domain.NewQueryError("count comments", err)
	}

	return domain.PostSummary{
		Slug:         slug,
		Title:        fields[domain.FieldTitle],
		CTime:        ctime,
		HTML:         fields[domain.FieldHTML],
		Source:       fields[domain.FieldSource],
		Tags:         tags,
		CommentCount: n,
	}, nil
}

func parseCTime(raw string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
