package model

import "time"

// Post is a blog post.
//
// The wire shape is deliberately flat: Author carries the author's username
// and Categories carries category names only. Serializing the full related
// records would leak fields (the author's password hash) and create
// post → comment → post cycles, so relationships are bounded to names here.
// AuthorID stays internal — handlers need it for the ownership check but the
// API never returns it.
type Post struct {
	ID         string    `json:"id"         db:"id"`
	Title      string    `json:"title"      db:"title"`
	Content    string    `json:"content"    db:"content"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	AuthorID   string    `json:"-"          db:"user_id"`
	Author     string    `json:"author"`
	Categories []string  `json:"categories"`
}

// PostPatch describes a partial update to a post. A nil field means "leave
// the current value alone"; a non-nil field replaces it. Categories, when
// present, fully replaces the post's category set (clear then re-add).
type PostPatch struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Categories *[]string `json:"categories"`
}
