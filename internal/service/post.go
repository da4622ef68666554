package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkamau/blogapi/internal/apperror"
	"github.com/mkamau/blogapi/internal/model"
	"github.com/mkamau/blogapi/internal/repository"
)

// PostService handles business logic for blog posts, including the
// ownership rule: only a post's author may update or delete it.
type PostService struct {
	posts  repository.PostRepository
	logger *slog.Logger
}

func NewPostService(posts repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{posts: posts, logger: logger}
}

// Create validates and saves a new post for the given author. Category
// names are de-duplicated before they reach storage, so submitting
// ["tech","tech","life"] links exactly two categories.
func (s *PostService) Create(ctx context.Context, authorID, title, content string, categories []string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "missing title or content")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "missing title or content")
	}

	post := &model.Post{
		Title:      title,
		Content:    content,
		AuthorID:   authorID,
		Categories: dedupeNames(categories),
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("authorID", authorID),
	)
	return post, nil
}

// GetByID retrieves a post. Returns apperror.ErrNotFound if absent.
func (s *PostService) GetByID(ctx context.Context, id string) (*model.Post, error) {
	return s.posts.GetPostByID(ctx, id)
}

// List returns all posts.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// Update applies a partial update. Only the author may call it; everyone
// else gets forbidden regardless of what they submit. Nil patch fields keep
// their current values; a present Categories list fully replaces the
// post's category set.
func (s *PostService) Update(ctx context.Context, id, callerID string, patch model.PostPatch) (*model.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != callerID {
		return nil, apperror.Forbidden("you are not the author of this post")
	}

	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	replaceCategories := patch.Categories != nil
	if replaceCategories {
		post.Categories = dedupeNames(*patch.Categories)
	}

	if err := s.posts.UpdatePost(ctx, post, replaceCategories); err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}

	s.logger.Info("post updated", slog.String("id", id))

	// Re-read so the response reflects exactly what is stored, category
	// ordering included.
	return s.posts.GetPostByID(ctx, id)
}

// Delete removes a post. Author-only, same rule as Update; comments go with
// the post, shared categories stay.
func (s *PostService) Delete(ctx context.Context, id, callerID string) error {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != callerID {
		return apperror.Forbidden("you are not the author of this post")
	}

	if err := s.posts.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}

	s.logger.Info("post deleted", slog.String("id", id))
	return nil
}

// dedupeNames drops repeated category names, keeping first-seen order.
func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
