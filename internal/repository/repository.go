// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage is the only implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/mkamau/blogapi/internal/model"
)

type UserRepository interface {
	// CreateUser inserts the user, generating its ID. A uniqueness violation
	// on email or username is returned as apperror.ErrUnprocessable — the
	// pre-insert duplicate check belongs to the service layer.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserByEmail returns apperror.ErrNotFound when no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// DeleteUser removes the user and everything they own: their comments,
	// their posts (with those posts' comments and category links), and
	// their sessions, all inside one transaction.
	DeleteUser(ctx context.Context, id string) error
}

type PostRepository interface {
	// CreatePost inserts the post and links it to post.Categories, resolving
	// each name get-or-create, in one transaction. post.ID, CreatedAt and
	// Author are populated on return.
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	ListPosts(ctx context.Context) ([]model.Post, error)
	// UpdatePost writes title and content. When replaceCategories is true
	// the post's category links are cleared and rebuilt from
	// post.Categories with the same get-or-create rule.
	UpdatePost(ctx context.Context, post *model.Post, replaceCategories bool) error
	// DeletePost removes the post, its comments and its category links in
	// one transaction. Categories themselves are shared and stay.
	DeletePost(ctx context.Context, id string) error
}

type CategoryRepository interface {
	// CreateCategory is a plain insert: a duplicate name comes back as
	// apperror.ErrConflict, there is no get-or-create here.
	CreateCategory(ctx context.Context, category *model.Category) error
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	RevokeSession(ctx context.Context, id string) error
}
