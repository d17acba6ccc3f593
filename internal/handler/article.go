package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tagmark/tagmark/internal/auth"
	"github.com/tagmark/tagmark/internal/handler/dto"
	"github.com/tagmark/tagmark/internal/service"
)

// ArticleHandler handles HTTP requests for article operations.
// All routes sit behind the auth middleware, so every request carries
// an identity and every operation is scoped to it.
type ArticleHandler struct {
	svc    *service.BookmarkService
	logger *slog.Logger
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(svc *service.BookmarkService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/articles.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing credentials")
		return
	}

	var req dto.CreateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.CreateArticleInput{
		URL:    req.URL,
		Title:  req.Title,
		Memo:   req.Memo,
		IsRead: req.IsRead,
		Tags:   req.Tags,
	}

	article, err := h.svc.CreateArticle(r.Context(), identity.UserID, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("article_created",
		"article_id", article.ID,
		"user_id", identity.UserID,
		"tag_count", len(article.Tags),
	)

	writeJSON(w, http.StatusCreated, dto.ToArticleResponse(article))
}

// Get handles GET /api/v1/articles/{id}.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing credentials")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Article ID is required")
		return
	}

	article, err := h.svc.GetArticle(r.Context(), id, identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToArticleResponse(article))
}

// List handles GET /api/v1/articles.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing credentials")
		return
	}

	articles, err := h.svc.ListArticles(r.Context(), identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToArticleListResponse(articles))
}

// Update handles PATCH /api/v1/articles/{id}.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing credentials")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Article ID is required")
		return
	}

	var req dto.UpdateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.UpdateArticleInput{
		URL:    req.URL,
		Title:  req.Title,
		Memo:   req.Memo,
		IsRead: req.IsRead,
		Tags:   req.Tags,
	}

	article, err := h.svc.UpdateArticle(r.Context(), id, identity.UserID, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("article_updated",
		"article_id", article.ID,
		"user_id", identity.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToArticleResponse(article))
}

// Delete handles DELETE /api/v1/articles/{id}.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing credentials")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Article ID is required")
		return
	}

	if err := h.svc.DeleteArticle(r.Context(), id, identity.UserID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("article_deleted",
		"article_id", id,
		"user_id", identity.UserID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps bookmark service errors to HTTP responses.
func (h *ArticleHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrArticleNotFound):
		h.writeError(w, http.StatusNotFound, "ARTICLE_NOT_FOUND", "Article not found")
	case errors.Is(err, service.ErrInvalidURL):
		h.writeError(w, http.StatusBadRequest, "INVALID_URL", "URL must be absolute http or https")
	case errors.Is(err, service.ErrURLTooLong):
		h.writeError(w, http.StatusBadRequest, "URL_TOO_LONG", "URL exceeds maximum length")
	case errors.Is(err, service.ErrTitleRequired):
		h.writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Title is required")
	case errors.Is(err, service.ErrTitleTooLong):
		h.writeError(w, http.StatusBadRequest, "TITLE_TOO_LONG", "Title exceeds maximum length")
	case errors.Is(err, service.ErrMemoTooLong):
		h.writeError(w, http.StatusBadRequest, "MEMO_TOO_LONG", "Memo exceeds maximum length")
	case errors.Is(err, service.ErrInvalidTagName):
		h.writeError(w, http.StatusBadRequest, "INVALID_TAG_NAME", "Invalid tag name")
	case errors.Is(err, service.ErrTooManyTags):
		h.writeError(w, http.StatusBadRequest, "TOO_MANY_TAGS", "Too many tags on one article")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *ArticleHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
