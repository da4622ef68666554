package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mkamau/blogapi/internal/apperror"
	"github.com/mkamau/blogapi/internal/auth"
	"github.com/mkamau/blogapi/internal/service"
)

// CommentHandler serves the comment routes nested under posts plus the
// top-level delete.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// HandleListByPost returns a post's comments, oldest first. An unknown post
// id yields an empty list.
//
// GET /posts/{id}/comments
func (h *CommentHandler) HandleListByPost(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByPost(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HandleCreate adds a comment by the logged-in user to the given post.
//
// POST /posts/{id}/comments
// Body: {"content": "..."}
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("you need to log in first"))
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	comment, err := h.comments.Create(r.Context(), r.PathValue("id"), userID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HandleDelete removes a comment. Open to every logged-in user, not just
// the comment's author.
//
// DELETE /comments/{id} → 204
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
