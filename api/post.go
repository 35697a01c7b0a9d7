package api

// Post is a post summary as served by the JSON API.
type Post struct {
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	CreatedAt    string    `json:"created_at"`
	HTML         string    `json:"html"`
	Source       string    `json:"source,omitempty"`
	Tags         []string  `json:"tags"`
	CommentCount int       `json:"nb_comments"`
	Comments     []Comment `json:"comments,omitempty"`
}

// PostList is one page of posts.
type PostList struct {
	Posts []Post `json:"posts"`
	Page  int    `json:"page"`
	Pages int    `json:"nb_pages"`
	Total int    `json:"total"`
}

type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Error struct {
	Error string `json:"error"`
}
