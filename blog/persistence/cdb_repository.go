package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sun-exploit/cblog/blog/domain"
	"github.com/sun-exploit/cblog/shared/cdb"
)

// Packed store layout: one "posts" record per slug, one "{slug}_{field}"
// record per stored field and one "{slug}_comment" record per comment.
const (
	cdbPostsKey   = "posts"
	cdbCommentKey = "comment"
)

func cdbKey(slug, field string) []byte {
	return []byte(slug + "_" + field)
}

// CDBPostRepository reads posts from a constant database file.
type CDBPostRepository struct {
	path string
	db   *cdb.Reader

	// slugs caches the "posts" index for the lifetime of the handle.
	slugs []string
	known map[string]struct{}
}

var _ domain.PostRepository = (*CDBPostRepository)(nil)

// OpenCDB opens the packed store at path. Missing, unreadable or corrupt
// files fail with *domain.OpenError.
func OpenCDB(path string) (*CDBPostRepository, error) {
	r, err := cdb.Open(path)
	if err != nil {
		return nil, &domain.OpenError{Backend: BackendCDB, Location: path, Err: err}
	}
	return &CDBPostRepository{path: path, db: r}, nil
}

func (r *CDBPostRepository) Close() error {
	return r.db.Close()
}

func (r *CDBPostRepository) loadSlugs() error {
	if r.known != nil {
		return nil
	}

	values, err := r.db.FindAll([]byte(cdbPostsKey))
	if err != nil {
		return fmt.Errorf("failed to read post index: %w", err)
	}

	slugs := make([]string, 0, len(values))
	known := make(map[string]struct{}, len(values))
	for _, v := range values {
		slug := string(v)
		if _, dup := known[slug]; dup {
			continue
		}
		known[slug] = struct{}{}
		slugs = append(slugs, slug)
	}

	r.slugs, r.known = slugs, known
	return nil
}

func (r *CDBPostRepository) exists(slug string) (bool, error) {
	if err := r.loadSlugs(); err != nil {
		return false, err
	}
	_, ok := r.known[slug]
	return ok, nil
}

func (r *CDBPostRepository) getString(slug, field string) (string, error) {
	v, _, err := r.db.Get(cdbKey(slug, field))
	if err != nil {
		return "", fmt.Errorf("failed to read %s of %s: %w", field, slug, err)
	}
	return string(v), nil
}

// parseCTime maps a missing or malformed timestamp to 0.
func parseCTime(raw string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (r *CDBPostRepository) ListPostKeys(ctx context.Context) ([]domain.PostKey, error) {
	if err := r.loadSlugs(); err != nil {
		return nil, domain.NewQueryError("list posts", err)
	}

	keys := make([]domain.PostKey, 0, len(r.slugs))
	for _, slug := range r.slugs {
		raw, err := r.getString(slug, domain.FieldCTime)
		if err != nil {
			return nil, domain.NewQueryError("list posts", err)
		}
		keys = append(keys, domain.PostKey{Slug: slug, CTime: parseCTime(raw)})
	}
	return keys, nil
}

func (r *CDBPostRepository) GetPostFields(ctx context.Context, slug string) (map[string]string, error) {
	ok, err := r.exists(slug)
	if err != nil {
		return nil, domain.NewQueryError("get post", err)
	}
	if !ok {
		return nil, fmt.Errorf("post %q: %w", slug, domain.ErrNotFound)
	}

	fields := make(map[string]string, len(domain.PostFields))
	for _, field := range domain.PostFields {
		v, err := r.getString(slug, field)
		if err != nil {
			return nil, domain.NewQueryError("get post", err)
		}
		fields[field] = v
	}
	return fields, nil
}

func (r *CDBPostRepository) GetTagsFor(ctx context.Context, slug string) ([]string, error) {
	raw, err := r.getString(slug, domain.FieldTags)
	if err != nil {
		return nil, domain.NewQueryError("get tags", err)
	}
	return SplitTags(raw), nil
}

func (r *CDBPostRepository) CountComments(ctx context.Context, slug string) (int, error) {
	values, err := r.db.FindAll(cdbKey(slug, cdbCommentKey))
	if err != nil {
		return 0, domain.NewQueryError("count comments", err)
	}
	return len(values), nil
}

func (r *CDBPostRepository) ListComments(ctx context.Context, slug string) ([]domain.Comment, error) {
	values, err := r.db.FindAll(cdbKey(slug, cdbCommentKey))
	if err != nil {
		return nil, domain.NewQueryError("list comments", err)
	}

	comments := make([]domain.Comment, 0, len(values))
	for _, v := range values {
		comments = append(comments, decodeComment(string(v)))
	}
	return comments, nil
}

func (r *CDBPostRepository) TagFrequencies(ctx context.Context) ([]domain.TagCount, error) {
	if err := r.loadSlugs(); err != nil {
		return nil, domain.NewQueryError("tag frequencies", err)
	}

	counter := newTagCounter()
	for _, slug := range r.slugs {
		raw, err := r.getString(slug, domain.FieldTags)
		if err != nil {
			return nil, domain.NewQueryError("tag frequencies", err)
		}
		counter.addPost(SplitTags(raw))
	}
	return counter.result(), nil
}

// Comments are stored as "{ctime}\n{author}\n{body}".
func encodeComment(c *domain.Comment) string {
	return strconv.FormatInt(c.CTime, 10) + "\n" + c.Author + "\n" + c.Body
}

func decodeComment(v string) domain.Comment {
	parts := strings.SplitN(v, "\n", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return domain.Comment{
		CTime:  parseCTime(parts[0]),
		Author: parts[1],
		Body:   parts[2],
	}
}
