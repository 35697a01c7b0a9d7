package domain

import (
	"context"
)

// Field names shared by both repository backends.
const (
	FieldTitle    = "title"
	FieldSource   = "source"
	FieldHTML     = "html"
	FieldCTime    = "ctime"
	FieldTags     = "tags"
	FieldComments = "nb_comments"
)

// PostFields is the fixed set of stored fields, in storage order.
var PostFields = []string{FieldTitle, FieldSource, FieldHTML, FieldCTime, FieldTags}

// Post represents a blog post.
// The slug identifies the post for its whole life and CTime never changes
// once the post has been created.
type Post struct {
	Slug   string
	Title  string
	CTime  int64
	HTML   string
	Source string
	Tags   []string
}

// PostKey is one entry of a repository's post enumeration.
type PostKey struct {
	Slug  string
	CTime int64
}

// PostSummary is a post hydrated for display: its fields, its tag names and
// its comment count.
type PostSummary struct {
	Slug         string
	Title        string
	CTime        int64
	HTML         string
	Source       string
	Tags         []string
	CommentCount int
}

// Comment is a reader comment attached to a post.
type Comment struct {
	Author string
	CTime  int64
	Body   string
}

// TagCount is the number of posts referencing a tag.
type TagCount struct {
	Name  string
	Count int
}

// PostRepository is the read contract every storage backend satisfies.
type PostRepository interface {
	// ListPostKeys enumerates every post in storage order. Callers sort.
	ListPostKeys(ctx context.Context) ([]PostKey, error)

	// GetPostFields returns the raw stored fields of a post. Absent fields are
	// returned as empty strings. Unknown slugs fail with ErrNotFound.
	GetPostFields(ctx context.Context, slug string) (map[string]string, error)

	// GetTagsFor returns the trimmed tags of a post, possibly none.
	GetTagsFor(ctx context.Context, slug string) ([]string, error)

	CountComments(ctx context.Context, slug string) (int, error)
	ListComments(ctx context.Context, slug string) ([]Comment, error)

	// TagFrequencies counts posts per tag, merging names case-insensitively
	// under the first-seen spelling. The result is in first-seen order.
	TagFrequencies(ctx context.Context) ([]TagCount, error)

	Close() error
}

// PostStore is the write side used by the maintenance tool.
type PostStore interface {
	PostRepository

	// SavePost inserts a post or replaces an existing one, keeping the
	// original creation time.
	SavePost(ctx context.Context, p *Post) error
	DeletePost(ctx context.Context, slug string) error

	// SetField replaces one stored field. The creation time cannot be set.
	SetField(ctx context.Context, slug string, field string, value string) error

	// AddComment appends a comment to an existing post.
	AddComment(ctx context.Context, slug string, c *Comment) error
}
