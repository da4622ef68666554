package sqlite

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"github.com/mkamau/blogapi/internal/apperror"
	"github.com/mkamau/blogapi/internal/model"
	"github.com/mkamau/blogapi/internal/repository"
)

var _ repository.CategoryRepository = (*DB)(nil)

// CreateCategory inserts a category. Unlike the get-or-create path used when
// posts name their categories, this is a plain insert: a duplicate name
// surfaces as apperror.ErrConflict.
func (db *DB) CreateCategory(ctx context.Context, category *model.Category) error {
	category.ID = xid.New().String()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO categories (id, name) VALUES (?, ?)`,
		category.ID,
		category.Name,
	)
	if err != nil {
		if isUniqueViolation(err, "categories.name") {
			return apperror.Conflict(fmt.Sprintf("category %q already exists", category.Name))
		}
		return fmt.Errorf("sqlite: inserting category: %w", err)
	}
	if category.Posts == nil {
		category.Posts = []model.CategoryPost{}
	}
	return nil
}

// ListCategories returns all categories, each carrying the titles and
// contents of its posts.
func (db *DB) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating categories: %w", err)
	}

	for i := range categories {
		categories[i].Posts, err = db.categoryPosts(ctx, categories[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return categories, nil
}

func (db *DB) categoryPosts(ctx context.Context, categoryID string) ([]model.CategoryPost, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.title, p.content
		 FROM blog_posts p
		 JOIN post_categories pc ON pc.post_id = p.id
		 WHERE pc.category_id = ?
		 ORDER BY p.created_at DESC`,
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading posts for category %s: %w", categoryID, err)
	}
	defer rows.Close()

	posts := []model.CategoryPost{}
	for rows.Next() {
		var p model.CategoryPost
		if err := rows.Scan(&p.Title, &p.Content); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating category posts: %w", err)
	}
	return posts, nil
}
