// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"umbradocs/internal/cache"
	"umbradocs/internal/middleware"
	"umbradocs/internal/models"
	"umbradocs/internal/slug"
	"umbradocs/internal/store"
)

// AdminArticles groups the admin article endpoints: listing, CRUD, and
// bulk operations.
type AdminArticles struct {
	articles   *store.ArticleStore
	categories *store.CategoryStore
	users      *store.UserStore
	respCache  *cache.ResponseCache
}

// NewAdminArticles creates a new AdminArticles handler group. respCache
// may be nil when the cache is not configured.
func NewAdminArticles(articles *store.ArticleStore, categories *store.CategoryStore, users *store.UserStore, respCache *cache.ResponseCache) *AdminArticles {
	return &AdminArticles{
		articles:   articles,
		categories: categories,
		users:      users,
		respCache:  respCache,
	}
}

// List returns a filtered, paginated article listing for the admin panel.
func (h *AdminArticles) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := store.ListFilter{
		Category: q.Get("category"),
		Search:   strings.TrimSpace(q.Get("search")),
		SortBy:   q.Get("sortBy"),
		SortDesc: q.Get("sortOrder") != "asc",
		Limit:    20,
	}

	if status := models.ArticleStatus(q.Get("status")); status.Valid() {
		f.Status = status
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= 100 {
		f.Limit = limit
	}
	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}
	f.Offset = (page - 1) * f.Limit

	articles, total, err := h.articles.List(r.Context(), f)
	if err != nil {
		slog.Error("list articles failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"articles": articles,
		"pagination": map[string]any{
			"page":  page,
			"limit": f.Limit,
			"total": total,
			"pages": (total + f.Limit - 1) / f.Limit,
		},
	})
}

// Get returns a single article by ID, any status.
func (h *AdminArticles) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	article, err := h.articles.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find article failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if article == nil {
		respondError(w, http.StatusNotFound, "article not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"article": article})
}

type articleRequest struct {
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Excerpt         *string  `json:"excerpt"`
	Tags            []string `json:"tags"`
	MetaTitle       *string  `json:"metaTitle"`
	MetaDescription *string  `json:"metaDescription"`
	Status          *string  `json:"status"`
	CategoryKey     string   `json:"categoryKey"`
	AuthorID        *string  `json:"authorId"`
}

// Create inserts a new article. The slug is derived from the title and
// suffixed until unique; a concurrent insert of the same slug is retried
// with the next candidate.
func (h *AdminArticles) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())

	var req articleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateArticle(req.Title, req.Content, req.CategoryKey, req.Excerpt, req.MetaTitle, req.MetaDescription); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	status := models.ArticleStatusDraft
	if req.Status != nil {
		status = models.ArticleStatus(*req.Status)
		if !status.Valid() {
			respondError(w, http.StatusBadRequest, "invalid status")
			return
		}
	}

	if ok, err := h.categoryExists(r.Context(), req.CategoryKey); err != nil {
		slog.Error("check category failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	} else if !ok {
		respondError(w, http.StatusBadRequest, "unknown category")
		return
	}

	authorID := actor.ID
	if req.AuthorID != nil {
		id, err := uuid.Parse(*req.AuthorID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid author id")
			return
		}
		authorID = id
	}

	base := slug.Generate(req.Title)
	if base == "" {
		respondError(w, http.StatusBadRequest, "title must contain at least one letter or digit")
		return
	}

	article := &models.Article{
		Title:           strings.TrimSpace(req.Title),
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		Tags:            req.Tags,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		CategoryKey:     req.CategoryKey,
		AuthorID:        authorID,
	}
	article.ApplyStatus(status, time.Now())

	created, err := h.createWithUniqueSlug(r.Context(), article, base, uuid.Nil)
	if err != nil {
		respondStoreError(w, err, "an article with this slug already exists")
		return
	}

	h.invalidate(r.Context())
	respondJSON(w, http.StatusCreated, map[string]any{"article": created})
}

// Update replaces an article's editable fields. The slug is regenerated
// only when the title changes; renames that land on a taken slug get a
// numeric suffix like creations do.
func (h *AdminArticles) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	existing, err := h.articles.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find article failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "article not found")
		return
	}

	var req articleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateArticle(req.Title, req.Content, req.CategoryKey, req.Excerpt, req.MetaTitle, req.MetaDescription); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	if ok, err := h.categoryExists(r.Context(), req.CategoryKey); err != nil {
		slog.Error("check category failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	} else if !ok {
		respondError(w, http.StatusBadRequest, "unknown category")
		return
	}

	titleChanged := strings.TrimSpace(req.Title) != existing.Title

	existing.Title = strings.TrimSpace(req.Title)
	existing.Content = req.Content
	existing.Excerpt = req.Excerpt
	existing.Tags = req.Tags
	existing.MetaTitle = req.MetaTitle
	existing.MetaDescription = req.MetaDescription
	existing.CategoryKey = req.CategoryKey

	// Authorship is fixed at creation; reassignment goes through the
	// bulk change_author action only.
	if req.Status != nil {
		status := models.ArticleStatus(*req.Status)
		if !status.Valid() {
			respondError(w, http.StatusBadRequest, "invalid status")
			return
		}
		existing.ApplyStatus(status, time.Now())
	}

	var updated *models.Article
	if titleChanged {
		base := slug.Generate(existing.Title)
		if base == "" {
			respondError(w, http.StatusBadRequest, "title must contain at least one letter or digit")
			return
		}
		updated, err = h.updateWithUniqueSlug(r.Context(), existing, base)
	} else {
		updated, err = h.articles.Update(r.Context(), existing)
	}
	if err != nil {
		respondStoreError(w, err, "an article with this slug already exists")
		return
	}

	h.invalidate(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{"article": updated})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves a single article through the publication state
// machine without touching its content.
func (h *AdminArticles) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status := models.ArticleStatus(req.Status)
	if !status.Valid() {
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	existing, err := h.articles.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find article failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "article not found")
		return
	}

	existing.ApplyStatus(status, time.Now())

	updated, err := h.articles.Update(r.Context(), existing)
	if err != nil {
		respondStoreError(w, err, "an article with this slug already exists")
		return
	}

	h.invalidate(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{"article": updated})
}

// Delete removes a single article and its comments and feedback.
func (h *AdminArticles) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	existing, err := h.articles.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find article failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "article not found")
		return
	}

	if err := h.articles.Delete(r.Context(), id); err != nil {
		slog.Error("delete article failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.invalidate(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{"message": "article deleted"})
}

// Bulk action names.
const (
	bulkPublish        = "publish"
	bulkDraft          = "draft"
	bulkArchive        = "archive"
	bulkDelete         = "delete"
	bulkChangeCategory = "change_category"
	bulkChangeAuthor   = "change_author"
)

type bulkRequest struct {
	Action      string   `json:"action"`
	ArticleIDs  []string `json:"articleIds"`
	CategoryKey *string  `json:"categoryKey"`
	AuthorID    *string  `json:"authorId"`
}

// maxBulkIDs caps how many articles one bulk request may touch.
const maxBulkIDs = 200

// Bulk applies one action to a set of articles. Status changes and
// reassignments report how many rows matched; delete is all-or-nothing
// and fails the whole request when any ID is missing.
func (h *AdminArticles) Bulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.ArticleIDs) == 0 {
		respondError(w, http.StatusBadRequest, "articleIds must not be empty")
		return
	}
	if len(req.ArticleIDs) > maxBulkIDs {
		respondError(w, http.StatusBadRequest, "too many articles in one request (max 200)")
		return
	}

	ids := make([]uuid.UUID, 0, len(req.ArticleIDs))
	seen := make(map[uuid.UUID]bool, len(req.ArticleIDs))
	for _, raw := range req.ArticleIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid article id: "+raw)
			return
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	ctx := r.Context()
	now := time.Now()

	var (
		affected int64
		err      error
	)

	switch req.Action {
	case bulkPublish:
		affected, err = h.articles.UpdateStatusAll(ctx, ids, models.ArticleStatusPublished, now)
	case bulkDraft:
		affected, err = h.articles.UpdateStatusAll(ctx, ids, models.ArticleStatusDraft, now)
	case bulkArchive:
		affected, err = h.articles.UpdateStatusAll(ctx, ids, models.ArticleStatusArchived, now)
	case bulkDelete:
		affected, err = h.articles.DeleteAll(ctx, ids)
	case bulkChangeCategory:
		if req.CategoryKey == nil || *req.CategoryKey == "" {
			respondError(w, http.StatusBadRequest, "categoryKey is required for change_category")
			return
		}
		var ok bool
		ok, err = h.categoryExists(ctx, *req.CategoryKey)
		if err == nil && !ok {
			respondError(w, http.StatusBadRequest, "unknown category")
			return
		}
		if err == nil {
			affected, err = h.articles.UpdateCategoryAll(ctx, ids, *req.CategoryKey)
		}
	case bulkChangeAuthor:
		if req.AuthorID == nil {
			respondError(w, http.StatusBadRequest, "authorId is required for change_author")
			return
		}
		authorID, parseErr := uuid.Parse(*req.AuthorID)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "invalid author id")
			return
		}
		var author *models.User
		author, err = h.users.FindByID(ctx, authorID)
		if err == nil && author == nil {
			respondError(w, http.StatusNotFound, "author not found")
			return
		}
		if err == nil {
			affected, err = h.articles.UpdateAuthorAll(ctx, ids, authorID)
		}
	default:
		respondError(w, http.StatusBadRequest, "unknown bulk action: "+req.Action)
		return
	}

	if err != nil {
		respondStoreError(w, err, "bulk operation conflict")
		return
	}

	h.invalidate(ctx)

	resp := map[string]any{
		"action":   req.Action,
		"affected": affected,
	}
	if req.Action != bulkDelete {
		articles, err := h.articles.ListByIDs(ctx, ids)
		if err != nil {
			slog.Error("list bulk articles failed", "error", err, "action", req.Action)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		resp["articles"] = articles
	}
	respondJSON(w, http.StatusOK, resp)
}

// createWithUniqueSlug resolves a free slug for base and inserts the
// article. A unique violation from a concurrent writer claiming the same
// slug is retried with a fresh resolution.
func (h *AdminArticles) createWithUniqueSlug(ctx context.Context, article *models.Article, base string, exclude uuid.UUID) (*models.Article, error) {
	var created *models.Article

	backoff := retry.WithMaxRetries(3, retry.NewConstant(25*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resolved, err := slug.Resolve(base, func(candidate string) (bool, error) {
			return h.articles.SlugTaken(ctx, candidate, exclude)
		})
		if err != nil {
			return err
		}
		article.Slug = resolved

		created, err = h.articles.Create(ctx, article)
		if errors.Is(err, store.ErrConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// updateWithUniqueSlug is the rename counterpart of createWithUniqueSlug.
// The article's own ID is excluded from the taken-probe so an unchanged
// normalization is not treated as a collision.
func (h *AdminArticles) updateWithUniqueSlug(ctx context.Context, article *models.Article, base string) (*models.Article, error) {
	var updated *models.Article

	backoff := retry.WithMaxRetries(3, retry.NewConstant(25*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resolved, err := slug.Resolve(base, func(candidate string) (bool, error) {
			return h.articles.SlugTaken(ctx, candidate, article.ID)
		})
		if err != nil {
			return err
		}
		article.Slug = resolved

		updated, err = h.articles.Update(ctx, article)
		if errors.Is(err, store.ErrConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (h *AdminArticles) categoryExists(ctx context.Context, key string) (bool, error) {
	c, err := h.categories.FindByKey(ctx, key)
	if err != nil {
		return false, err
	}
	return c != nil, nil
}

// invalidate drops cached public listings after any mutation.
func (h *AdminArticles) invalidate(ctx context.Context) {
	if h.respCache != nil {
		h.respCache.InvalidateAll(ctx)
	}
}
