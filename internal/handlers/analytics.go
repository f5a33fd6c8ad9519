// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"umbradocs/internal/middleware"
	"umbradocs/internal/models"
	"umbradocs/internal/store"
)

// trackTimeout bounds the background insert of a single event.
const trackTimeout = 5 * time.Second

func contextWithTrackTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), trackTimeout)
}

// trackEvent records an analytics event in the background. A failed
// insert is logged and never surfaces to the request that produced it.
func trackEvent(analytics *store.AnalyticsStore, r *http.Request, event string, userID *uuid.UUID, data *string) {
	if analytics == nil {
		return
	}

	e := &models.AnalyticsEvent{
		Event:  event,
		Data:   data,
		UserID: userID,
	}
	if ua := r.UserAgent(); ua != "" {
		e.UserAgent = &ua
	}
	if ip := requestIP(r); ip != "" {
		e.IPAddress = &ip
	}
	if ref := r.Referer(); ref != "" {
		e.Referer = &ref
	}
	if sid := sessionID(r); sid != "" {
		e.SessionID = &sid
	}

	go func() {
		ctx, cancel := contextWithTrackTimeout()
		defer cancel()
		if err := analytics.Insert(ctx, e); err != nil {
			slog.Error("track event failed", "error", err, "event", event)
		}
	}()
}

// requestIP extracts the client IP, honoring reverse proxy headers.
func requestIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

// sessionID reads the client-assigned session identifier header, used to
// correlate anonymous activity.
func sessionID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Session-Id"))
}

// Analytics exposes the event ingestion endpoint.
type Analytics struct {
	analytics *store.AnalyticsStore
}

// NewAnalytics creates a new Analytics handler group.
func NewAnalytics(analytics *store.AnalyticsStore) *Analytics {
	return &Analytics{analytics: analytics}
}

type trackRequest struct {
	Event string  `json:"event"`
	Data  *string `json:"data"`
}

// Track ingests a client-side event. The response does not wait for the
// insert; the endpoint acknowledges as soon as the payload is accepted.
func (h *Analytics) Track(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Event = strings.TrimSpace(req.Event)
	if req.Event == "" {
		respondError(w, http.StatusBadRequest, "event name is required")
		return
	}

	var userID *uuid.UUID
	if actor := middleware.ActorFromCtx(r.Context()); actor != nil {
		userID = &actor.ID
	}

	trackEvent(h.analytics, r, req.Event, userID, req.Data)
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
