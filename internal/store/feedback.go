package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"umbradocs/internal/models"
)

// FeedbackStore handles reader feedback writes and aggregation.
type FeedbackStore struct {
	db *sql.DB
}

// NewFeedbackStore creates a new FeedbackStore with the given database connection.
func NewFeedbackStore(db *sql.DB) *FeedbackStore {
	return &FeedbackStore{db: db}
}

// Create inserts a feedback record. Article existence is the caller's
// precondition.
func (s *FeedbackStore) Create(ctx context.Context, f *models.Feedback) (*models.Feedback, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO feedback (article_id, type, rating, message, user_id, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, f.ArticleID, f.Type, f.Rating, f.Message, f.UserID, f.UserAgent, f.IPAddress,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	return f, nil
}

// Stats aggregates feedback, optionally scoped to one article: per-type
// counts, the average rating, and (when scoped) the ten most recent
// feedback messages.
func (s *FeedbackStore) Stats(ctx context.Context, articleID *uuid.UUID) (*models.FeedbackStats, error) {
	stats := &models.FeedbackStats{Counts: make(map[models.FeedbackType]int)}

	countQuery := "SELECT type, COUNT(*) FROM feedback"
	var args []any
	if articleID != nil {
		countQuery += " WHERE article_id = $1"
		args = append(args, *articleID)
	}
	countQuery += " GROUP BY type"

	rows, err := s.db.QueryContext(ctx, countQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("feedback counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t models.FeedbackType
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scan feedback count: %w", err)
		}
		stats.Counts[t] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	avgQuery := "SELECT AVG(rating) FROM feedback WHERE type = 'RATING' AND rating IS NOT NULL"
	if articleID != nil {
		avgQuery += " AND article_id = $1"
	}
	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, avgQuery, args...).Scan(&avg); err != nil {
		return nil, fmt.Errorf("feedback average: %w", err)
	}
	if avg.Valid {
		stats.AverageRating = &avg.Float64
	}

	if articleID != nil {
		recent, err := s.recentWithMessage(ctx, *articleID, 10)
		if err != nil {
			return nil, err
		}
		stats.Recent = recent
	}
	return stats, nil
}

// recentWithMessage returns the latest feedback entries that carry a
// message, with the submitting user's name when attributed.
func (s *FeedbackStore) recentWithMessage(ctx context.Context, articleID uuid.UUID, limit int) ([]models.Feedback, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.article_id, f.type, f.rating, f.message, f.user_id, f.created_at, u.name
		FROM feedback f
		LEFT JOIN users u ON u.id = f.user_id
		WHERE f.article_id = $1 AND f.message IS NOT NULL
		ORDER BY f.created_at DESC
		LIMIT $2
	`, articleID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent feedback: %w", err)
	}
	defer rows.Close()

	var items []models.Feedback
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(
			&f.ID, &f.ArticleID, &f.Type, &f.Rating, &f.Message, &f.UserID, &f.CreatedAt, &f.UserName,
		); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

// Count returns the total number of feedback records.
func (s *FeedbackStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback").Scan(&count); err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return count, nil
}

// CountCreatedSince returns how many feedback records arrived at or after t.
func (s *FeedbackStore) CountCreatedSince(ctx context.Context, t time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM feedback WHERE created_at >= $1", t).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count feedback since: %w", err)
	}
	return count, nil
}

// DistributionSince returns per-type feedback counts at or after t.
func (s *FeedbackStore) DistributionSince(ctx context.Context, t time.Time) (map[models.FeedbackType]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, COUNT(*) FROM feedback WHERE created_at >= $1 GROUP BY type
	`, t)
	if err != nil {
		return nil, fmt.Errorf("feedback distribution: %w", err)
	}
	defer rows.Close()

	dist := make(map[models.FeedbackType]int)
	for rows.Next() {
		var ft models.FeedbackType
		var n int
		if err := rows.Scan(&ft, &n); err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		dist[ft] = n
	}
	return dist, rows.Err()
}
