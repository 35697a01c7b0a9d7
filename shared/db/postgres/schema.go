package postgres

var schema = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id BIGSERIAL PRIMARY KEY,
		link TEXT NOT NULL UNIQUE,
		title TEXT,
		source TEXT,
		html TEXT,
		date BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id BIGSERIAL PRIMARY KEY,
		tag TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS tags_posts (
		tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (tag_id, post_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tags_posts_post ON tags_posts(post_id, position)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		author TEXT,
		comment TEXT,
		date BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id)`,
}
