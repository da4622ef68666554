package model

import "time"

// Comment belongs to one post and one author. Like Post, the wire shape is
// flattened: the post's title and the author's username, not the records.
type Comment struct {
	ID        string    `json:"id"         db:"id"`
	Content   string    `json:"content"    db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	AuthorID  string    `json:"-"          db:"user_id"`
	PostID    string    `json:"-"          db:"post_id"`
	PostTitle string    `json:"post_title"`
	Author    string    `json:"author"`
}
