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

// CategoryService handles the standalone category endpoints. Unlike the
// post-creation path there is no get-or-create here: Create is a plain
// insert and a duplicate name surfaces as a conflict from storage. The
// inconsistency is inherited deliberately; see DESIGN.md.
type CategoryService struct {
	categories repository.CategoryRepository
	logger     *slog.Logger
}

func NewCategoryService(categories repository.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

// Create validates and inserts a category.
func (s *CategoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "missing name")
	}

	category := &model.Category{Name: name}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category created",
		slog.String("id", category.ID),
		slog.String("name", name),
	)
	return category, nil
}

// List returns all categories with their posts' titles and contents.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}
