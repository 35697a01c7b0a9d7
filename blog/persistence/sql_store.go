package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sun-exploit/cblog/blog/domain"
	"github.com/sun-exploit/cblog/shared/db"
)

// SQLPostStore adds transactional writes to SQLPostRepository.
type SQLPostStore struct {
	*SQLPostRepository
}

var _ domain.PostStore = (*SQLPostStore)(nil)

func NewSQLPostStore(database db.Database) *SQLPostStore {
	return &SQLPostStore{SQLPostRepository: NewSQLPostRepository(database)}
}

const upsertPostQuery = `
	INSERT INTO posts (link, title, source, html, date)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(link) DO UPDATE SET
		title = excluded.title,
		source = excluded.source,
		html = excluded.html,
		date = COALESCE(posts.date, excluded.date)
`

const postIDQuery = `SELECT id FROM posts WHERE link = ?`

// SavePost upserts the post row and replaces its tag links in one transaction.
func (s *SQLPostStore) SavePost(ctx context.Context, p *domain.Post) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}
	if err := validateSlug(p.Slug); err != nil {
		return err
	}

	return db.RunInTransaction(ctx, s.database.DB(), func(txCtx context.Context) error {
		_, err := s.exec(txCtx).ExecContext(txCtx, s.rebind(upsertPostQuery),
			p.Slug,
			p.Title,
			p.Source,
			p.HTML,
			p.CTime,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert post: %w", err)
		}

		id, err := s.postID(txCtx, p.Slug)
		if err != nil {
			return err
		}
		return s.replaceTags(txCtx, id, normalizeTags(p.Tags))
	})
}

func (s *SQLPostStore) postID(ctx context.Context, slug string) (int64, error) {
	var id int64
	err := s.exec(ctx).QueryRowContext(ctx, s.rebind(postIDQuery), slug).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("post %q: %w", slug, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up post: %w", err)
	}
	return id, nil
}

const (
	deletePostTagsQuery = `DELETE FROM tags_posts WHERE post_id = ?`
	insertTagQuery      = `INSERT INTO tags (tag) VALUES (?) ON CONFLICT DO NOTHING`
	tagIDQuery          = `SELECT id FROM tags WHERE tag = ?`
	linkTagQuery        = `INSERT INTO tags_posts (tag_id, post_id, position) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`
	deleteOrphanTags    = `DELETE FROM tags WHERE id NOT IN (SELECT tag_id FROM tags_posts)`
)

func (s *SQLPostStore) replaceTags(ctx context.Context, postID int64, tags []string) error {
	ex := s.exec(ctx)

	if _, err := ex.ExecContext(ctx, s.rebind(deletePostTagsQuery), postID); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}

	for pos, tag := range tags {
		if _, err := ex.ExecContext(ctx, s.rebind(insertTagQuery), tag); err != nil {
			return fmt.Errorf("failed to insert tag %q: %w", tag, err)
		}

		var tagID int64
		if err := ex.QueryRowContext(ctx, s.rebind(tagIDQuery), tag).Scan(&tagID); err != nil {
			return fmt.Errorf("failed to look up tag %q: %w", tag, err)
		}

		if _, err := ex.ExecContext(ctx, s.rebind(linkTagQuery), tagID, postID, pos); err != nil {
			return fmt.Errorf("failed to link tag %q: %w", tag, err)
		}
	}

	if _, err := ex.ExecContext(ctx, deleteOrphanTags); err != nil {
		return fmt.Errorf("failed to remove unused tags: %w", err)
	}
	return nil
}

const (
	deletePostCommentsQuery = `DELETE FROM comments WHERE post_id = ?`
	deletePostQuery         = `DELETE FROM posts WHERE id = ?`
)

func (s *SQLPostStore) DeletePost(ctx context.Context, slug string) error {
	return db.RunInTransaction(ctx, s.database.DB(), func(txCtx context.Context) error {
		id, err := s.postID(txCtx, slug)
		if err != nil {
			return err
		}

		ex := s.exec(txCtx)
		for _, q := range []string{deletePostTagsQuery, deletePostCommentsQuery, deletePostQuery} {
			if _, err := ex.ExecContext(txCtx, s.rebind(q), id); err != nil {
				return fmt.Errorf("failed to delete post: %w", err)
			}
		}

		if _, err := ex.ExecContext(txCtx, deleteOrphanTags); err != nil {
			return fmt.Errorf("failed to remove unused tags: %w", err)
		}
		return nil
	})
}

// Columns SetField may write directly. Tags go through replaceTags.
var fieldColumns = map[string]string{
	domain.FieldTitle:  "title",
	domain.FieldSource: "source",
	domain.FieldHTML:   "html",
}

func (s *SQLPostStore) SetField(ctx context.Context, slug, field, value string) error {
	stored, err := settableValue(field, value)
	if err != nil {
		return err
	}

	return db.RunInTransaction(ctx, s.database.DB(), func(txCtx context.Context) error {
		id, err := s.postID(txCtx, slug)
		if err != nil {
			return err
		}

		if field == domain.FieldTags {
			return s.replaceTags(txCtx, id, SplitTags(stored))
		}

		query := fmt.Sprintf("UPDATE posts SET %s = ? WHERE id = ?", fieldColumns[field])
		if _, err := s.exec(txCtx).ExecContext(txCtx, s.rebind(query), stored, id); err != nil {
			return fmt.Errorf("failed to update %s: %w", field, err)
		}
		return nil
	})
}

const insertCommentQuery = `INSERT INTO comments (post_id, author, comment, date) VALUES (?, ?, ?, ?)`

func (s *SQLPostStore) AddComment(ctx context.Context, slug string, c *domain.Comment) error {
	return db.RunInTransaction(ctx, s.database.DB(), func(txCtx context.Context) error {
		id, err := s.postID(txCtx, slug)
		if err != nil {
			return err
		}

		_, err = s.exec(txCtx).ExecContext(txCtx, s.rebind(insertCommentQuery), id, c.Author, c.Body, c.CTime)
		if err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}
		return nil
	})
}
