package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/sun-exploit/cblog/blog/domain"
	"github.com/sun-exploit/cblog/shared/db"
)

var _ domain.PostRepository = (*SQLPostRepository)(nil)

// SQLPostRepository implements domain.PostRepository on the relational
// schema, for both SQLite and PostgreSQL.
type SQLPostRepository struct {
	database db.Database
	dialect  db.Dialect
}

// NewSQLPostRepository wraps a connected database. Closing the repository
// closes the database.
func NewSQLPostRepository(database db.Database) *SQLPostRepository {
	return &SQLPostRepository{
		database: database,
		dialect:  database.Dialect(),
	}
}

func (r *SQLPostRepository) Close() error {
	return r.database.Close()
}

func (r *SQLPostRepository) exec(ctx context.Context) db.Executor {
	return db.GetExecutor(ctx, r.database.DB())
}

func (r *SQLPostRepository) rebind(query string) string {
	return db.Rebind(r.dialect, query)
}

// probe checks that the schema is readable.
func (r *SQLPostRepository) probe(ctx context.Context) error {
	var n int
	if err := r.exec(ctx).QueryRowContext(ctx, countPostsQuery).Scan(&n); err != nil {
		return fmt.Errorf("failed to read posts table: %w", err)
	}
	return nil
}

const countPostsQuery = `SELECT COUNT(*) FROM posts`

const listPostKeysQuery = `
	SELECT link, date
	FROM posts
	ORDER BY id
`

func (r *SQLPostRepository) ListPostKeys(ctx context.Context) ([]domain.PostKey, error) {
	rows, err := r.exec(ctx).QueryContext(ctx, listPostKeysQuery)
	if err != nil {
		return nil, domain.NewQueryError("list posts", err)
	}
	defer rows.Close()

	keys := make([]domain.PostKey, 0)
	for rows.Next() {
		var (
			slug string
			date sql.NullInt64
		)
		if err := rows.Scan(&slug, &date); err != nil {
			return nil, domain.NewQueryError("list posts", err)
		}
		keys = append(keys, domain.PostKey{Slug: slug, CTime: date.Int64})
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewQueryError("list posts", err)
	}
	return keys, nil
}

const getPostQuery = `
	SELECT title, source, html, date
	FROM posts
	WHERE link = ?
`

// postRow holds the nullable columns of a posts row.
type postRow struct {
	Title  sql.NullString
	Source sql.NullString
	HTML   sql.NullString
	Date   sql.NullInt64
}

func (r *SQLPostRepository) GetPostFields(ctx context.Context, slug string) (map[string]string, error) {
	var row postRow
	err := r.exec(ctx).QueryRowContext(ctx, r.rebind(getPostQuery), slug).Scan(
		&row.Title,
		&row.Source,
		&row.HTML,
		&row.Date,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %q: %w", slug, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.NewQueryError("get post", err)
	}

	tags, err := r.GetTagsFor(ctx, slug)
	if err != nil {
		return nil, err
	}

	ctime := ""
	if row.Date.Valid {
		ctime = strconv.FormatInt(row.Date.Int64, 10)
	}

	return map[string]string{
		domain.FieldTitle:  row.Title.String,
		domain.FieldSource: row.Source.String,
		domain.FieldHTML:   row.HTML.String,
		domain.FieldCTime:  ctime,
		domain.FieldTags:   JoinTags(tags),
	}, nil
}

const getTagsQuery = `
	SELECT tags.tag
	FROM tags
	JOIN tags_posts ON tags_posts.tag_id = tags.id
	JOIN posts ON posts.id = tags_posts.post_id
	WHERE posts.link = ?
	ORDER BY tags_posts.position
`

func (r *SQLPostRepository) GetTagsFor(ctx context.Context, slug string) ([]string, error) {
	rows, err := r.exec(ctx).QueryContext(ctx, r.rebind(getTagsQuery), slug)
	if err != nil {
		return nil, domain.NewQueryError("get tags", err)
	}
	defer rows.Close()

	tags := make([]string, 0)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, domain.NewQueryError("get tags", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewQueryError("get tags", err)
	}
	return tags, nil
}

const countCommentsQuery = `
	SELECT COUNT(comments.id)
	FROM comments
	JOIN posts ON posts.id = comments.post_id
	WHERE posts.link = ?
`

func (r *SQLPostRepository) CountComments(ctx context.Context, slug string) (int, error) {
	var n int
	if err := r.exec(ctx).QueryRowContext(ctx, r.rebind(countCommentsQuery), slug).Scan(&n); err != nil {
		return 0, domain.NewQueryError("count comments", err)
	}
	return n, nil
}

const listCommentsQuery = `
	SELECT comments.author, comments.comment, comments.date
	FROM comments
	JOIN posts ON posts.id = comments.post_id
	WHERE posts.link = ?
	ORDER BY comments.id
`

type commentRow struct {
	Author  sql.NullString
	Comment sql.NullString
	Date    sql.NullInt64
}

func (row commentRow) toDomain() domain.Comment {
	return domain.Comment{
		Author: row.Author.String,
		Body:   row.Comment.String,
		CTime:  row.Date.Int64,
	}
}

func (r *SQLPostRepository) ListComments(ctx context.Context, slug string) ([]domain.Comment, error) {
	rows, err := r.exec(ctx).QueryContext(ctx, r.rebind(listCommentsQuery), slug)
	if err != nil {
		return nil, domain.NewQueryError("list comments", err)
	}
	defer rows.Close()

	comments := make([]domain.Comment, 0)
	for rows.Next() {
		var row commentRow
		if err := rows.Scan(&row.Author, &row.Comment, &row.Date); err != nil {
			return nil, domain.NewQueryError("list comments", err)
		}
		comments = append(comments, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewQueryError("list comments", err)
	}
	return comments, nil
}

const listAllTagsQuery = `
	SELECT tags_posts.post_id, tags.tag
	FROM tags_posts
	JOIN tags ON tags.id = tags_posts.tag_id
	ORDER BY tags_posts.post_id, tags_posts.position
`

func (r *SQLPostRepository) TagFrequencies(ctx context.Context) ([]domain.TagCount, error) {
	rows, err := r.exec(ctx).QueryContext(ctx, listAllTagsQuery)
	if err != nil {
		return nil, domain.NewQueryError("tag frequencies", err)
	}
	defer rows.Close()

	counter := newTagCounter()
	var (
		current int64 = -1
		tags    []string
	)
	for rows.Next() {
		var (
			postID int64
			tag    string
		)
		if err := rows.Scan(&postID, &tag); err != nil {
			return nil, domain.NewQueryError("tag frequencies", err)
		}
		if postID != current {
			counter.addPost(tags)
			current, tags = postID, tags[:0]
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewQueryError("tag frequencies", err)
	}
	counter.addPost(tags)

	return counter.result(), nil
}
