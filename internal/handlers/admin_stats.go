// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"umbradocs/internal/models"
	"umbradocs/internal/store"
)

// AdminStats serves the dashboard and analytics aggregates.
type AdminStats struct {
	articles  *store.ArticleStore
	users     *store.UserStore
	comments  *store.CommentStore
	feedback  *store.FeedbackStore
	analytics *store.AnalyticsStore
}

// NewAdminStats creates a new AdminStats handler group.
func NewAdminStats(articles *store.ArticleStore, users *store.UserStore, comments *store.CommentStore, feedback *store.FeedbackStore, analytics *store.AnalyticsStore) *AdminStats {
	return &AdminStats{
		articles:  articles,
		users:     users,
		comments:  comments,
		feedback:  feedback,
		analytics: analytics,
	}
}

// Dashboard returns the headline counters for the admin landing page.
// Individual failures degrade to zero rather than failing the whole
// response; only a total outage is reported as an error.
func (h *AdminStats) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	weekAgo := time.Now().AddDate(0, 0, -7)

	userCount, err := h.users.Count(ctx)
	if err != nil {
		slog.Error("dashboard stats failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	published, _ := h.articles.CountAll(ctx, models.ArticleStatusPublished)
	drafts, _ := h.articles.CountAll(ctx, models.ArticleStatusDraft)
	archived, _ := h.articles.CountAll(ctx, models.ArticleStatusArchived)
	newArticles, _ := h.articles.CountCreatedSince(ctx, weekAgo)
	totalViews, _ := h.articles.TotalViews(ctx)
	newUsers, _ := h.users.CountCreatedSince(ctx, weekAgo)
	commentCount, _ := h.comments.Count(ctx)
	feedbackCount, _ := h.feedback.Count(ctx)
	newFeedback, _ := h.feedback.CountCreatedSince(ctx, weekAgo)
	popular, _ := h.articles.Popular(ctx, 5)

	respondJSON(w, http.StatusOK, map[string]any{
		"users": map[string]any{
			"total":   userCount,
			"newWeek": newUsers,
		},
		"articles": map[string]any{
			"published": published,
			"drafts":    drafts,
			"archived":  archived,
			"newWeek":   newArticles,
			"views":     totalViews,
		},
		"engagement": map[string]any{
			"comments":        commentCount,
			"feedback":        feedbackCount,
			"feedbackNewWeek": newFeedback,
		},
		"popularArticles": popular,
	})
}

// Analytics returns traffic aggregates over a requested window
// (default 30 days).
func (h *AdminStats) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days := 30
	if d, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && d > 0 && d <= 365 {
		days = d
	}
	since := time.Now().AddDate(0, 0, -days)

	pageViews, err := h.analytics.CountSince(ctx, "page_view", since)
	if err != nil {
		slog.Error("analytics stats failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	uniqueUsers, _ := h.analytics.UniqueUsersSince(ctx, since)
	daily, _ := h.analytics.DailyCounts(ctx, "page_view", since)
	topEvents, _ := h.analytics.TopEvents(ctx, since, 10)
	searches, _ := h.analytics.CountSearchesSince(ctx, since)
	topQueries, _ := h.analytics.TopSearchQueries(ctx, since, 10)
	devices, _ := h.analytics.DeviceBreakdown(ctx, since)
	feedbackDist, _ := h.feedback.DistributionSince(ctx, since)

	respondJSON(w, http.StatusOK, map[string]any{
		"days":              days,
		"pageViews":         pageViews,
		"uniqueVisitors":    uniqueUsers,
		"dailyPageViews":    daily,
		"topEvents":         topEvents,
		"searches":          searches,
		"topSearchQueries":  topQueries,
		"devices":           devices,
		"feedbackBreakdown": feedbackDist,
	})
}
