package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/mkamau/blogapi/internal/apperror"
	"github.com/mkamau/blogapi/internal/model"
	"github.com/mkamau/blogapi/internal/repository"
)

var _ repository.CommentRepository = (*DB)(nil)

// CreateComment inserts a comment and resolves the flattened post title and
// author username for the response body.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, content, created_at, user_id, post_id)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.Content,
		comment.CreatedAt,
		comment.AuthorID,
		comment.PostID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}

	err = db.conn.QueryRowContext(ctx,
		`SELECT p.title, u.username
		 FROM blog_posts p, users u
		 WHERE p.id = ? AND u.id = ?`,
		comment.PostID, comment.AuthorID,
	).Scan(&comment.PostTitle, &comment.Author)
	if err != nil {
		return fmt.Errorf("sqlite: resolving comment relations: %w", err)
	}

	return nil
}

// ListCommentsByPost returns a post's comments, oldest first.
func (db *DB) ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.content, c.created_at, c.user_id, c.post_id, p.title, u.username
		 FROM comments c
		 JOIN blog_posts p ON p.id = c.post_id
		 JOIN users u ON u.id = c.user_id
		 WHERE c.post_id = ?
		 ORDER BY c.created_at ASC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %s: %w", postID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID, &c.Content, &c.CreatedAt, &c.AuthorID, &c.PostID, &c.PostTitle, &c.Author,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment by ID. RowsAffected detects "not found",
// same pattern as the post delete.
func (db *DB) DeleteComment(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}
