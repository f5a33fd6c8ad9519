package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"umbradocs/internal/models"
)

// ErrCategoryInUse is returned when deleting a category that still has
// member articles.
var ErrCategoryInUse = errors.New("store: category has articles")

// CategoryStore handles all category-related database operations.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore creates a new CategoryStore with the given database connection.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// List returns all categories in display order, each with its article count.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.key, c.name, c.description, c.sort_order, c.is_active,
		       c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM articles a WHERE a.category_key = c.key)
		FROM categories c
		ORDER BY c.sort_order ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(
			&c.ID, &c.Key, &c.Name, &c.Description, &c.Order, &c.IsActive,
			&c.CreatedAt, &c.UpdatedAt, &c.ArticleCount,
		); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByKey retrieves a category by its key. Returns nil if not found.
func (s *CategoryStore) FindByKey(ctx context.Context, key string) (*models.Category, error) {
	c := &models.Category{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, key, name, description, sort_order, is_active, created_at, updated_at
		FROM categories WHERE key = $1
	`, key).Scan(
		&c.ID, &c.Key, &c.Name, &c.Description, &c.Order, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by key: %w", err)
	}
	return c, nil
}

// Create inserts a new category. A key collision returns ErrConflict.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (key, name, description, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at, updated_at
	`, c.Key, c.Name, c.Description, c.Order).Scan(
		&c.ID, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Update modifies a category's display fields by ID.
func (s *CategoryStore) Update(ctx context.Context, id uuid.UUID, name string, description *string, order int, isActive bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE categories SET
			name = $1, description = $2, sort_order = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
	`, name, description, order, isActive, id)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category by ID, refusing with ErrCategoryInUse while
// any article references it.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete category begin: %w", err)
	}
	defer tx.Rollback()

	var inUse bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM articles a
			JOIN categories c ON c.key = a.category_key
			WHERE c.id = $1
		)
	`, id).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("delete category precheck: %w", err)
	}
	if inUse {
		return ErrCategoryInUse
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return tx.Commit()
}
