package model

// Category is a post label shared across posts (many-to-many).
type Category struct {
	ID    string         `json:"id"   db:"id"`
	Name  string         `json:"name" db:"name"`
	Posts []CategoryPost `json:"posts"`
}

// CategoryPost is the bounded view of a post embedded in a category
// response: title and content only, no ids, no nested author.
type CategoryPost struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
