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

var _ repository.PostRepository = (*DB)(nil)

// CreatePost inserts the post and links it to post.Categories in one
// transaction. Each category name is resolved get-or-create, so a name used
// by another post reuses that row rather than inserting a duplicate.
func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	post.CreatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning post create: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO blog_posts (id, title, content, created_at, user_id)
		 VALUES (?, ?, ?, ?, ?)`,
		post.ID,
		post.Title,
		post.Content,
		post.CreatedAt,
		post.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}

	if err := linkCategories(ctx, tx, post.ID, post.Categories); err != nil {
		return err
	}

	// Resolve the author username for the response body.
	err = tx.QueryRowContext(ctx,
		`SELECT username FROM users WHERE id = ?`, post.AuthorID,
	).Scan(&post.Author)
	if err != nil {
		return fmt.Errorf("sqlite: resolving post author: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing post create: %w", err)
	}
	return nil
}

// GetPostByID retrieves a post with its author username and category names.
// Returns apperror.ErrNotFound if absent.
func (db *DB) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := db.conn.QueryRowContext(ctx,
		`SELECT p.id, p.title, p.content, p.created_at, p.user_id, u.username
		 FROM blog_posts p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.id = ?`,
		id,
	).Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.AuthorID, &p.Author)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	p.Categories, err = db.categoryNames(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPosts returns all posts, newest first. No pagination by design.
func (db *DB) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.id, p.title, p.content, p.created_at, p.user_id, u.username
		 FROM blog_posts p
		 JOIN users u ON u.id = p.user_id
		 ORDER BY p.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.AuthorID, &p.Author); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	for i := range posts {
		posts[i].Categories, err = db.categoryNames(ctx, posts[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// UpdatePost writes title and content. When replaceCategories is true, the
// post's existing links are cleared and rebuilt from post.Categories under
// the same get-or-create rule as create.
func (db *DB) UpdatePost(ctx context.Context, post *model.Post, replaceCategories bool) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning post update: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE blog_posts SET title = ?, content = ? WHERE id = ?`,
		post.Title,
		post.Content,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", post.ID)
	}

	if replaceCategories {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM post_categories WHERE post_id = ?`, post.ID,
		); err != nil {
			return fmt.Errorf("sqlite: clearing category links: %w", err)
		}
		if err := linkCategories(ctx, tx, post.ID, post.Categories); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing post update: %w", err)
	}
	return nil
}

// DeletePost removes the post, its comments and its category links, in that
// order, in one transaction. Category rows are shared and survive.
func (db *DB) DeletePost(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning post delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM comments WHERE post_id = ?`, id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting post comments: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM post_categories WHERE post_id = ?`, id,
	); err != nil {
		return fmt.Errorf("sqlite: clearing category links: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing post delete: %w", err)
	}
	return nil
}

// linkCategories resolves each name get-or-create and inserts join rows.
// Callers pass de-duplicated names; the join table's composite key would
// reject repeats anyway.
func linkCategories(ctx context.Context, tx *sql.Tx, postID string, names []string) error {
	for _, name := range names {
		var categoryID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM categories WHERE name = ?`, name,
		).Scan(&categoryID)
		if err == sql.ErrNoRows {
			categoryID = xid.New().String()
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories (id, name) VALUES (?, ?)`, categoryID, name,
			); err != nil {
				return fmt.Errorf("sqlite: creating category %q: %w", name, err)
			}
		} else if err != nil {
			return fmt.Errorf("sqlite: looking up category %q: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_categories (post_id, category_id) VALUES (?, ?)`,
			postID, categoryID,
		); err != nil {
			return fmt.Errorf("sqlite: linking category %q: %w", name, err)
		}
	}
	return nil
}

func (db *DB) categoryNames(ctx context.Context, postID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.name
		 FROM categories c
		 JOIN post_categories pc ON pc.category_id = c.id
		 WHERE pc.post_id = ?
		 ORDER BY c.name`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading categories for post %s: %w", postID, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating category names: %w", err)
	}
	return names, nil
}
