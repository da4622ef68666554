package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/mkamau/blogapi/internal/apperror"
	"github.com/mkamau/blogapi/internal/model"
	"github.com/mkamau/blogapi/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user, generating its ID. A UNIQUE violation on email
// or username (a racing duplicate the service's pre-check missed) comes back
// as apperror.ErrUnprocessable.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users.email") || isUniqueViolation(err, "users.username") {
			return apperror.Unprocessable("user violates a uniqueness constraint")
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by ID. Returns apperror.ErrNotFound if absent.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByEmail retrieves a user by email. Returns apperror.ErrNotFound if
// absent — login treats that the same as a wrong password.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `WHERE email = ?`, email)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users `+where,
		arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}
	return &u, nil
}

// DeleteUser removes a user and everything they own. The deletion order matters:
// dependents go first so the foreign keys stay satisfied at every step.
//
//  1. comments written by the user (on any post)
//  2. comments on the user's posts (by anyone)
//  3. category links of the user's posts
//  4. the user's posts
//  5. the user's sessions
//  6. the user row
//
// Categories are shared, so they are never touched here.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning user delete: %w", err)
	}
	defer tx.Rollback()

	steps := []struct {
		desc  string
		query string
	}{
		{"deleting user's comments", `DELETE FROM comments WHERE user_id = ?`},
		{"deleting comments on user's posts",
			`DELETE FROM comments WHERE post_id IN (SELECT id FROM blog_posts WHERE user_id = ?)`},
		{"clearing category links",
			`DELETE FROM post_categories WHERE post_id IN (SELECT id FROM blog_posts WHERE user_id = ?)`},
		{"deleting user's posts", `DELETE FROM blog_posts WHERE user_id = ?`},
		{"deleting user's sessions", `DELETE FROM sessions WHERE user_id = ?`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, id); err != nil {
			return fmt.Errorf("sqlite: %s: %w", step.desc, err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing user delete: %w", err)
	}
	return nil
}
