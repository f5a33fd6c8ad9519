// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"umbradocs/internal/cache"
	"umbradocs/internal/markdown"
	"umbradocs/internal/middleware"
	"umbradocs/internal/models"
	"umbradocs/internal/store"
)

// Public groups the reader-facing endpoints: published article listings,
// single articles by slug, categories, comments, and feedback. Listing
// and article responses are served from the Valkey cache when possible.
type Public struct {
	articles   *store.ArticleStore
	categories *store.CategoryStore
	comments   *store.CommentStore
	feedback   *store.FeedbackStore
	analytics  *store.AnalyticsStore
	respCache  *cache.ResponseCache
}

// NewPublic creates a new Public handler group. respCache may be nil
// when the cache is not configured.
func NewPublic(articles *store.ArticleStore, categories *store.CategoryStore, comments *store.CommentStore, feedback *store.FeedbackStore, analytics *store.AnalyticsStore, respCache *cache.ResponseCache) *Public {
	return &Public{
		articles:   articles,
		categories: categories,
		comments:   comments,
		feedback:   feedback,
		analytics:  analytics,
		respCache:  respCache,
	}
}

// ListArticles returns published articles, optionally filtered by
// category, paginated.
func (p *Public) ListArticles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	category := q.Get("category")
	limit := 20
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	page := 1
	if pg, err := strconv.Atoi(q.Get("page")); err == nil && pg > 0 {
		page = pg
	}

	cacheKey := "list:" + category + ":" + strconv.Itoa(page) + ":" + strconv.Itoa(limit)
	if p.respCache != nil {
		if cached, ok := p.respCache.Get(ctx, cacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	articles, total, err := p.articles.List(ctx, store.ListFilter{
		Category: category,
		Status:   models.ArticleStatusPublished,
		SortBy:   "publishedAt",
		SortDesc: true,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		slog.Error("list published articles failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	body, err := json.Marshal(map[string]any{
		"articles": articles,
		"pagination": map[string]any{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": (total + limit - 1) / limit,
		},
	})
	if err != nil {
		slog.Error("encode response failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if p.respCache != nil {
		p.respCache.Set(ctx, cacheKey, body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// GetArticle returns one published article by slug, with rendered HTML,
// approved comments, and feedback stats. Each hit increments the view
// counter and records a page_view event.
func (p *Public) GetArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	article, err := p.articles.FindPublishedBySlug(ctx, slugParam)
	if err != nil {
		slog.Error("find article by slug failed", "error", err, "slug", slugParam)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if article == nil {
		respondError(w, http.StatusNotFound, "article not found")
		return
	}

	if views, err := p.articles.IncrementViewCount(ctx, article.ID); err != nil {
		slog.Error("increment view count failed", "error", err, "id", article.ID)
	} else {
		article.ViewCount = views
	}

	html, err := markdown.ToHTML(article.Content)
	if err != nil {
		slog.Error("render article failed", "error", err, "id", article.ID)
		html = ""
	}

	comments, err := p.comments.ListApprovedByArticle(ctx, article.ID)
	if err != nil {
		slog.Error("list comments failed", "error", err, "id", article.ID)
	}

	stats, err := p.feedback.Stats(ctx, &article.ID)
	if err != nil {
		slog.Error("feedback stats failed", "error", err, "id", article.ID)
	}

	var userID *uuid.UUID
	if actor := middleware.ActorFromCtx(ctx); actor != nil {
		userID = &actor.ID
	}
	data := `{"slug":` + strconv.Quote(article.Slug) + `}`
	trackEvent(p.analytics, r, "page_view", userID, &data)

	respondJSON(w, http.StatusOK, map[string]any{
		"article":  article,
		"html":     html,
		"comments": comments,
		"feedback": stats,
	})
}

// ListCategories returns active categories for the public navigation.
func (p *Public) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if p.respCache != nil {
		if cached, ok := p.respCache.Get(ctx, "categories"); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	all, err := p.categories.List(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	active := make([]models.Category, 0, len(all))
	for _, c := range all {
		if c.IsActive {
			active = append(active, c)
		}
	}

	body, err := json.Marshal(map[string]any{"categories": active})
	if err != nil {
		slog.Error("encode response failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if p.respCache != nil {
		p.respCache.Set(ctx, "categories", body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

type commentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}

// CreateComment submits a comment on a published article. Comments start
// in PENDING status and appear publicly only after moderation.
func (p *Public) CreateComment(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	slugParam := chi.URLParam(r, "slug")
	article, err := p.articles.FindPublishedBySlug(r.Context(), slugParam)
	if err != nil {
		slog.Error("find article by slug failed", "error", err, "slug", slugParam)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if article == nil {
		respondError(w, http.StatusNotFound, "article not found")
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(w, http.StatusBadRequest, "comment content is required")
		return
	}
	if len(content) > maxCommentLen {
		respondError(w, http.StatusBadRequest, "comment is too long (max 5,000 characters)")
		return
	}

	comment := &models.Comment{
		Content:   content,
		ArticleID: article.ID,
		AuthorID:  actor.ID,
	}
	if req.ParentID != nil {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid parent comment id")
			return
		}
		comment.ParentID = &parentID
	}

	created, err := p.comments.Create(r.Context(), comment)
	if err != nil {
		slog.Error("create comment failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"comment": created,
		"message": "Comment submitted for moderation.",
	})
}

type feedbackRequest struct {
	Type    string  `json:"type"`
	Rating  *int    `json:"rating"`
	Message *string `json:"message"`
}

// CreateFeedback records reader feedback on a published article.
// Feedback is accepted anonymously; the user is attached when signed in.
func (p *Public) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")
	article, err := p.articles.FindPublishedBySlug(r.Context(), slugParam)
	if err != nil {
		slog.Error("find article by slug failed", "error", err, "slug", slugParam)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if article == nil {
		respondError(w, http.StatusNotFound, "article not found")
		return
	}

	var req feedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ftype := models.FeedbackType(req.Type)
	if !ftype.Valid() {
		respondError(w, http.StatusBadRequest, "invalid feedback type")
		return
	}
	if ftype == models.FeedbackRating {
		if req.Rating == nil || *req.Rating < 1 || *req.Rating > 5 {
			respondError(w, http.StatusBadRequest, "rating must be between 1 and 5")
			return
		}
	} else if req.Rating != nil {
		respondError(w, http.StatusBadRequest, "rating is only valid for RATING feedback")
		return
	}
	if req.Message != nil && len(*req.Message) > maxMessageLen {
		respondError(w, http.StatusBadRequest, "message is too long (max 2,000 characters)")
		return
	}

	fb := &models.Feedback{
		ArticleID: article.ID,
		Type:      ftype,
		Rating:    req.Rating,
		Message:   req.Message,
	}
	if actor := middleware.ActorFromCtx(r.Context()); actor != nil {
		fb.UserID = &actor.ID
	}
	if ua := r.UserAgent(); ua != "" {
		fb.UserAgent = &ua
	}
	if ip := requestIP(r); ip != "" {
		fb.IPAddress = &ip
	}

	created, err := p.feedback.Create(r.Context(), fb)
	if err != nil {
		slog.Error("create feedback failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"feedback": created})
}

// FeedbackStats returns aggregated feedback for one article.
func (p *Public) FeedbackStats(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")
	article, err := p.articles.FindPublishedBySlug(r.Context(), slugParam)
	if err != nil {
		slog.Error("find article by slug failed", "error", err, "slug", slugParam)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if article == nil {
		respondError(w, http.StatusNotFound, "article not found")
		return
	}

	stats, err := p.feedback.Stats(r.Context(), &article.ID)
	if err != nil {
		slog.Error("feedback stats failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Search returns published articles matching the query and records the
// search for analytics.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondJSON(w, http.StatusOK, map[string]any{"results": []models.Article{}})
		return
	}

	limit := 8
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 50 {
		limit = l
	}

	results, err := p.articles.Search(r.Context(), query, limit)
	if err != nil {
		slog.Error("search failed", "error", err, "query", query)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	p.recordSearch(r, query, len(results))

	var userID *uuid.UUID
	if actor := middleware.ActorFromCtx(r.Context()); actor != nil {
		userID = &actor.ID
	}
	data := `{"query":` + strconv.Quote(query) + `}`
	trackEvent(p.analytics, r, "search", userID, &data)

	respondJSON(w, http.StatusOK, map[string]any{"results": results})
}

// recordSearch logs a search query in the background, fire-and-forget
// like event tracking.
func (p *Public) recordSearch(r *http.Request, query string, results int) {
	if p.analytics == nil {
		return
	}

	sq := &models.SearchQuery{Query: query, Results: results}
	if sid := sessionID(r); sid != "" {
		sq.SessionID = &sid
	}
	if ip := requestIP(r); ip != "" {
		sq.IPAddress = &ip
	}

	go func() {
		ctx, cancel := contextWithTrackTimeout()
		defer cancel()
		if err := p.analytics.InsertSearchQuery(ctx, sq); err != nil {
			slog.Error("record search failed", "error", err)
		}
	}()
}
