package sqlite

// schema holds the blog tables. Tags keep their exact spelling; lookups fold
// case in Go so both repository backends agree.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		link TEXT NOT NULL UNIQUE,
		title TEXT,
		source TEXT,
		html TEXT,
		date INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tag TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS tags_posts (
		tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (tag_id, post_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tags_posts_post ON tags_posts(post_id, position)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		author TEXT,
		comment TEXT,
		date INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id)`,
}
