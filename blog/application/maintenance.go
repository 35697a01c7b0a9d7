package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sun-exploit/cblog/blog/domain"
	"github.com/sun-exploit/cblog/shared/slug"
)

// Maintenance implements the write operations of the maintenance tool.
type Maintenance struct {
	store    domain.PostStore
	markdown MarkdownRenderer
	now      func() time.Time
}

func NewMaintenance(store domain.PostStore, markdown MarkdownRenderer, now func() time.Time) *Maintenance {
	if now == nil {
		now = time.Now
	}
	return &Maintenance{
		store:    store,
		markdown: markdown,
		now:      now,
	}
}

// List returns every post, newest first.
func (m *Maintenance) List(ctx context.Context) ([]domain.PostKey, error) {
	keys, err := m.store.ListPostKeys(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].CTime > keys[j].CTime
	})
	return keys, nil
}

// Info returns a hydrated post.
func (m *Maintenance) Info(ctx context.Context, slug string) (domain.PostSummary, error) {
	return BuildPost(ctx, m.store, slug)
}

// Export returns a post in the file format accepted by Add.
func (m *Maintenance) Export(ctx context.Context, slug string) ([]byte, error) {
	fields, err := m.store.GetPostFields(ctx, slug)
	if err != nil {
		return nil, err
	}
	tags, err := m.store.GetTagsFor(ctx, slug)
	if err != nil {
		return nil, err
	}
	return FormatDocument(fields[domain.FieldTitle], tags, fields[domain.FieldSource]), nil
}

// Add renders a post file and stores it under the slug derived from name.
// New posts are stamped with the current time; existing ones keep theirs.
func (m *Maintenance) Add(ctx context.Context, name string, content []byte) (*domain.Post, error) {
	id := slug.FromFile(name)
	if id == "" {
		return nil, fmt.Errorf("cannot derive a post name from %q", name)
	}

	doc, err := m.markdown.Render(content)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		Slug:   id,
		Title:  doc.Title,
		CTime:  m.now().Unix(),
		HTML:   string(doc.HTML),
		Source: string(doc.Source),
		Tags:   doc.Tags,
	}
	if err := m.store.SavePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to save post %s: %w", id, err)
	}

	log.Info().Str("slug", id).Int("tags", len(post.Tags)).Msg("Post saved")
	return post, nil
}

// Delete removes a post with its tags links and comments.
func (m *Maintenance) Delete(ctx context.Context, slug string) error {
	if err := m.store.DeletePost(ctx, slug); err != nil {
		return err
	}
	log.Info().Str("slug", slug).Msg("Post deleted")
	return nil
}

// Set applies a "field=value" assignment to a post. Setting the source
// renders it again so the stored HTML follows.
func (m *Maintenance) Set(ctx context.Context, slug, assignment string) error {
	field, value, ok := strings.Cut(assignment, "=")
	if !ok || field == "" {
		return fmt.Errorf("invalid assignment %q, want field=value", assignment)
	}
	field = strings.TrimSpace(field)

	var html string
	if field == domain.FieldSource {
		doc, err := m.markdown.Render([]byte(value))
		if err != nil {
			return fmt.Errorf("failed to render source of %s: %w", slug, err)
		}
		html = string(doc.HTML)
	}

	if err := m.store.SetField(ctx, slug, field, value); err != nil {
		return err
	}
	if field == domain.FieldSource {
		if err := m.store.SetField(ctx, slug, domain.FieldHTML, html); err != nil {
			return err
		}
	}

	log.Info().Str("slug", slug).Str("field", field).Msg("Post field updated")
	return nil
}

// Comment attaches a comment to a post, stamped with the current time.
func (m *Maintenance) Comment(ctx context.Context, slug, author, body string) error {
	c := &domain.Comment{Author: author, CTime: m.now().Unix(), Body: body}
	return m.store.AddComment(ctx, slug, c)
}
