package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mkamau/blogapi/internal/apperror"
	"github.com/mkamau/blogapi/internal/auth"
	"github.com/mkamau/blogapi/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================
//
// In-memory fakes for the repository interfaces. Using fakes (not a mock
// framework) keeps tests dependency-free and easy to read — each fake
// mirrors the real repository's contract, including which apperror class
// it returns.

type fakeUserRepo struct {
	users   map[string]*model.User // keyed by ID
	byEmail map[string]*model.User
	nextID  int
	// set to a non-nil error to simulate a database failure
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
		nextID:  1,
	}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[user.Email]; ok {
		return apperror.Unprocessable("email already taken")
	}
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	user.CreatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	f.byEmail[user.Email] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) DeleteUser(ctx context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.byEmail, u.Email)
	delete(f.users, id)
	return nil
}

type fakeSessionRepo struct {
	sessions map[string]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (f *fakeSessionRepo) CreateSession(ctx context.Context, session *model.Session) error {
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) GetSession(ctx context.Context, id string) (*model.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperror.NotFound("session", id)
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionRepo) RevokeSession(ctx context.Context, id string) error {
	if s, ok := f.sessions[id]; ok && s.RevokedAt == nil {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

type fakePostRepo struct {
	posts  map[string]*model.Post
	nextID int
	// set to a non-nil error to simulate a database failure
	createErr error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*model.Post), nextID: 1}
}

func (f *fakePostRepo) CreatePost(ctx context.Context, post *model.Post) error {
	if f.createErr != nil {
		return f.createErr
	}
	post.ID = fmt.Sprintf("post-%d", f.nextID)
	f.nextID++
	post.CreatedAt = time.Now()
	if post.Author == "" {
		post.Author = "author-of-" + post.AuthorID
	}
	copied := *post
	copied.Categories = append([]string(nil), post.Categories...)
	f.posts[post.ID] = &copied
	return nil
}

func (f *fakePostRepo) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	copied := *p
	copied.Categories = append([]string(nil), p.Categories...)
	return &copied, nil
}

func (f *fakePostRepo) ListPosts(ctx context.Context) ([]model.Post, error) {
	out := make([]model.Post, 0, len(f.posts))
	for _, p := range f.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePostRepo) UpdatePost(ctx context.Context, post *model.Post, replaceCategories bool) error {
	stored, ok := f.posts[post.ID]
	if !ok {
		return apperror.NotFound("post", post.ID)
	}
	stored.Title = post.Title
	stored.Content = post.Content
	if replaceCategories {
		stored.Categories = append([]string(nil), post.Categories...)
	}
	return nil
}

func (f *fakePostRepo) DeletePost(ctx context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return apperror.NotFound("post", id)
	}
	delete(f.posts, id)
	return nil
}

type fakeCommentRepo struct {
	comments map[string]*model.Comment
	nextID   int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*model.Comment), nextID: 1}
}

func (f *fakeCommentRepo) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = fmt.Sprintf("comment-%d", f.nextID)
	f.nextID++
	comment.CreatedAt = time.Now()
	copied := *comment
	f.comments[comment.ID] = &copied
	return nil
}

func (f *fakeCommentRepo) ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	out := []model.Comment{}
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) DeleteComment(ctx context.Context, id string) error {
	if _, ok := f.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(f.comments, id)
	return nil
}

type fakeCategoryRepo struct {
	categories map[string]*model.Category // keyed by name
	nextID     int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[string]*model.Category), nextID: 1}
}

func (f *fakeCategoryRepo) CreateCategory(ctx context.Context, category *model.Category) error {
	if _, ok := f.categories[category.Name]; ok {
		return apperror.Conflict(fmt.Sprintf("category %q already exists", category.Name))
	}
	category.ID = fmt.Sprintf("category-%d", f.nextID)
	f.nextID++
	copied := *category
	f.categories[category.Name] = &copied
	return nil
}

func (f *fakeCategoryRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	out := make([]model.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestAuthService wires an AuthService with fake storage. Bcrypt runs at
// minimum cost so the suite stays fast.
func newTestAuthService(t *testing.T, users *fakeUserRepo, sessions *fakeSessionRepo) *AuthService {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordService(4)

	return NewAuthService(users, sessions, passwords, tokens, time.Hour, testLogger())
}
