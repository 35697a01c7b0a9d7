package persistence

import (
	"strings"

	"github.com/sun-exploit/cblog/blog/domain"
)

// SplitTags tokenizes a comma separated tag field. Every token is trimmed and
// empty tokens are dropped; the last token does not need a trailing comma.
func SplitTags(raw string) []string {
	tags := make([]string, 0)

	start := 0
	for i := 0; i <= len(raw); i++ {
		if i < len(raw) && raw[i] != ',' {
			continue
		}
		if tag := strings.TrimSpace(raw[start:i]); tag != "" {
			tags = append(tags, tag)
		}
		start = i + 1
	}

	return tags
}

// JoinTags is the inverse of SplitTags.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// tagCounter accumulates tag frequencies post by post. Names are merged on
// their folded form and keep the first spelling seen.
type tagCounter struct {
	index  map[string]int
	counts []domain.TagCount
}

func newTagCounter() *tagCounter {
	return &tagCounter{
		index:  make(map[string]int),
		counts: make([]domain.TagCount, 0),
	}
}

// addPost counts each distinct tag of one post once.
func (c *tagCounter) addPost(tags []string) {
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		key := domain.FoldTag(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if i, ok := c.index[key]; ok {
			c.counts[i].Count++
			continue
		}
		c.index[key] = len(c.counts)
		c.counts = append(c.counts, domain.TagCount{Name: tag, Count: 1})
	}
}

func (c *tagCounter) result() []domain.TagCount {
	return c.counts
}

// normalizeTags prepares tags for storage: tokens are re-split and trimmed,
// and later case-insensitive duplicates are dropped.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range SplitTags(JoinTags(tags)) {
		key := domain.FoldTag(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}
