package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalyticsEvent is a tracked product event (page view, search, login,
// registration). Writes are fire-and-forget: a failed insert must never
// abort the request that produced the event.
type AnalyticsEvent struct {
	ID        uuid.UUID  `json:"id"`
	Event     string     `json:"event"`
	Data      *string    `json:"data,omitempty"` // JSON payload, opaque to the server
	UserID    *uuid.UUID `json:"userId,omitempty"`
	SessionID *string    `json:"sessionId,omitempty"`
	UserAgent *string    `json:"userAgent,omitempty"`
	IPAddress *string    `json:"ipAddress,omitempty"`
	Referer   *string    `json:"referer,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// SearchQuery records a public search and how many results it returned.
type SearchQuery struct {
	ID        uuid.UUID `json:"id"`
	Query     string    `json:"query"`
	Results   int       `json:"results"`
	SessionID *string   `json:"sessionId,omitempty"`
	IPAddress *string   `json:"ipAddress,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventCount pairs an event name with its occurrence count.
type EventCount struct {
	Event string `json:"event"`
	Count int    `json:"count"`
}

// DailyCount is a per-day event total.
type DailyCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// QueryCount pairs a search query with its occurrence count.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// DeviceCount is a per-device-class event total, derived from stored
// user-agent strings.
type DeviceCount struct {
	Device string `json:"device"`
	Count  int    `json:"count"`
}
