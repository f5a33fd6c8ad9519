package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"umbradocs/internal/models"
)

// CommentStore handles comment reads for public article rendering and
// admin statistics.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// ListApprovedByArticle returns the approved top-level comments for an
// article, newest first, each with its replies attached.
func (s *CommentStore) ListApprovedByArticle(ctx context.Context, articleID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.content, c.status, c.article_id, c.author_id, c.parent_id, c.created_at,
		       u.id, u.name
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.article_id = $1 AND c.status = 'APPROVED'
		ORDER BY c.created_at DESC
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var all []models.Comment
	for rows.Next() {
		var c models.Comment
		c.Author = &models.UserRef{}
		if err := rows.Scan(
			&c.ID, &c.Content, &c.Status, &c.ArticleID, &c.AuthorID, &c.ParentID, &c.CreatedAt,
			&c.Author.ID, &c.Author.Name,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		all = append(all, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Attach replies to their parents; replies keep the query order.
	byID := make(map[uuid.UUID]*models.Comment)
	var top []models.Comment
	for i := range all {
		if all[i].ParentID == nil {
			top = append(top, all[i])
			byID[all[i].ID] = &top[len(top)-1]
		}
	}
	for i := range all {
		if all[i].ParentID == nil {
			continue
		}
		if parent, ok := byID[*all[i].ParentID]; ok {
			parent.Replies = append(parent.Replies, all[i])
		}
	}
	return top, nil
}

// Create inserts a comment. New comments start pending moderation unless
// a status is set explicitly.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	if c.Status == "" {
		c.Status = models.CommentStatusPending
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (content, status, article_id, author_id, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, c.Content, c.Status, c.ArticleID, c.AuthorID, c.ParentID).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// Count returns the total number of comments.
func (s *CommentStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}
