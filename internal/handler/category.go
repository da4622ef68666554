package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mkamau/blogapi/internal/apperror"
	"github.com/mkamau/blogapi/internal/service"
)

// CategoryHandler serves the standalone category routes.
type CategoryHandler struct {
	categories *service.CategoryService
	logger     *slog.Logger
}

func NewCategoryHandler(categories *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

// HandleList returns all categories, each with its posts' titles and
// contents.
//
// GET /categories
func (h *CategoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// HandleCreate creates a category. A duplicate name is a 409, unlike the
// get-or-create that runs when categories arrive attached to a post.
//
// POST /categories
// Body: {"name": "..."}
func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	category, err := h.categories.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}
