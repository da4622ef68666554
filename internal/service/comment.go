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

// CommentService handles business logic for comments.
//
// Deliberate asymmetry with posts: Delete performs no ownership check — any
// authenticated user may delete any comment. The original behaves this way
// and the contract preserves it rather than silently tightening it; see
// DESIGN.md.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	logger   *slog.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{comments: comments, posts: posts, logger: logger}
}

// Create validates and saves a comment on the given post. The post must
// exist; content must be present.
func (s *CommentService) Create(ctx context.Context, postID, authorID, content string) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "missing content")
	}

	// 404 before any insert when the post is gone.
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Content:  content,
		AuthorID: authorID,
		PostID:   postID,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("postID", postID),
	)
	return comment, nil
}

// ListByPost returns a post's comments. An unknown post id yields an empty
// list, not an error.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	comments, err := s.comments.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// Delete removes a comment by id. No ownership check, per the package doc.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return err
	}
	s.logger.Info("comment deleted", slog.String("id", id))
	return nil
}
