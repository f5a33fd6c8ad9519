package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mileusna/useragent"

	"umbradocs/internal/models"
)

// AnalyticsStore handles event tracking writes and reporting queries.
// Event inserts are fire-and-forget at the call sites: failures are
// logged there and never abort the request that produced the event.
type AnalyticsStore struct {
	db *sql.DB
}

// NewAnalyticsStore creates a new AnalyticsStore with the given database connection.
func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

// Insert records an analytics event.
func (s *AnalyticsStore) Insert(ctx context.Context, e *models.AnalyticsEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analytics (event, data, user_id, session_id, user_agent, ip_address, referer)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.Event, e.Data, e.UserID, e.SessionID, e.UserAgent, e.IPAddress, e.Referer)
	if err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}

// InsertSearchQuery records a public search and its result count.
func (s *AnalyticsStore) InsertSearchQuery(ctx context.Context, q *models.SearchQuery) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_queries (query, results, session_id, ip_address)
		VALUES ($1, $2, $3, $4)
	`, q.Query, q.Results, q.SessionID, q.IPAddress)
	if err != nil {
		return fmt.Errorf("insert search query: %w", err)
	}
	return nil
}

// CountSince returns the number of events at or after t, optionally
// restricted to one event name.
func (s *AnalyticsStore) CountSince(ctx context.Context, event string, t time.Time) (int, error) {
	var (
		count int
		err   error
	)
	if event == "" {
		err = s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM analytics WHERE created_at >= $1", t).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM analytics WHERE created_at >= $1 AND event = $2", t, event).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count analytics: %w", err)
	}
	return count, nil
}

// UniqueUsersSince counts distinct (user, session, ip) tuples seen at or
// after t — the closest approximation of distinct visitors the raw
// events allow.
func (s *AnalyticsStore) UniqueUsersSince(ctx context.Context, t time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT (user_id, session_id, ip_address))
		FROM analytics WHERE created_at >= $1
	`, t).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("unique users: %w", err)
	}
	return count, nil
}

// DailyCounts returns per-day event totals at or after t, newest day
// first, optionally restricted to one event name.
func (s *AnalyticsStore) DailyCounts(ctx context.Context, event string, t time.Time) ([]models.DailyCount, error) {
	query := `
		SELECT DATE_TRUNC('day', created_at) AS day, COUNT(*)
		FROM analytics
		WHERE created_at >= $1`
	args := []any{t}
	if event != "" {
		query += " AND event = $2"
		args = append(args, event)
	}
	query += " GROUP BY day ORDER BY day DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	defer rows.Close()

	var items []models.DailyCount
	for rows.Next() {
		var d models.DailyCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// TopEvents returns the most frequent event names at or after t.
func (s *AnalyticsStore) TopEvents(ctx context.Context, t time.Time, limit int) ([]models.EventCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT event, COUNT(*) FROM analytics
		WHERE created_at >= $1
		GROUP BY event
		ORDER BY COUNT(*) DESC
		LIMIT $2
	`, t, limit)
	if err != nil {
		return nil, fmt.Errorf("top events: %w", err)
	}
	defer rows.Close()

	var items []models.EventCount
	for rows.Next() {
		var e models.EventCount
		if err := rows.Scan(&e.Event, &e.Count); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// TopSearchQueries returns the most frequent search queries at or after t.
func (s *AnalyticsStore) TopSearchQueries(ctx context.Context, t time.Time, limit int) ([]models.QueryCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT query, COUNT(*) FROM search_queries
		WHERE created_at >= $1
		GROUP BY query
		ORDER BY COUNT(*) DESC
		LIMIT $2
	`, t, limit)
	if err != nil {
		return nil, fmt.Errorf("top search queries: %w", err)
	}
	defer rows.Close()

	var items []models.QueryCount
	for rows.Next() {
		var q models.QueryCount
		if err := rows.Scan(&q.Query, &q.Count); err != nil {
			return nil, fmt.Errorf("scan query count: %w", err)
		}
		items = append(items, q)
	}
	return items, rows.Err()
}

// CountSearchesSince returns how many searches were recorded at or after t.
func (s *AnalyticsStore) CountSearchesSince(ctx context.Context, t time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM search_queries WHERE created_at >= $1", t).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count searches since: %w", err)
	}
	return count, nil
}

// DeviceBreakdown classifies the user agents of events at or after t
// into desktop, mobile, tablet, and bot buckets.
func (s *AnalyticsStore) DeviceBreakdown(ctx context.Context, t time.Time) ([]models.DeviceCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_agent, COUNT(*) FROM analytics
		WHERE created_at >= $1 AND user_agent IS NOT NULL
		GROUP BY user_agent
	`, t)
	if err != nil {
		return nil, fmt.Errorf("device breakdown: %w", err)
	}
	defer rows.Close()

	buckets := map[string]int{}
	for rows.Next() {
		var ua string
		var n int
		if err := rows.Scan(&ua, &n); err != nil {
			return nil, fmt.Errorf("scan user agent: %w", err)
		}
		buckets[ClassifyUserAgent(ua)] += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Stable bucket order for the response.
	var items []models.DeviceCount
	for _, device := range []string{"desktop", "mobile", "tablet", "bot", "other"} {
		if n, ok := buckets[device]; ok {
			items = append(items, models.DeviceCount{Device: device, Count: n})
		}
	}
	return items, nil
}

// ClassifyUserAgent buckets a raw user-agent string into a coarse device
// class.
func ClassifyUserAgent(raw string) string {
	ua := useragent.Parse(raw)
	switch {
	case ua.Bot:
		return "bot"
	case ua.Tablet:
		return "tablet"
	case ua.Mobile:
		return "mobile"
	case ua.Desktop:
		return "desktop"
	default:
		return "other"
	}
}
