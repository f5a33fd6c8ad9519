// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"umbradocs/internal/models"
)

// ErrMissingArticles is returned by DeleteAll when at least one of the
// named articles does not exist. Nothing is deleted in that case.
var ErrMissingArticles = errors.New("store: some articles not found")

// ArticleStore handles all article-related database operations.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// articleColumns is the SELECT list shared by every article query,
// including the author join and comment/feedback counts.
const articleColumns = `
	a.id, a.slug, a.title, a.content, a.excerpt, a.tags,
	a.meta_title, a.meta_description, a.status, a.published_at,
	a.category_key, a.author_id, a.view_count, a.created_at, a.updated_at,
	u.id, u.name, u.email,
	(SELECT COUNT(*) FROM comments c WHERE c.article_id = a.id),
	(SELECT COUNT(*) FROM feedback f WHERE f.article_id = a.id)`

const articleFrom = ` FROM articles a JOIN users u ON u.id = a.author_id`

func scanArticle(row interface{ Scan(...any) error }) (*models.Article, error) {
	a := &models.Article{Author: &models.UserRef{}}
	var tags []byte
	if err := row.Scan(
		&a.ID, &a.Slug, &a.Title, &a.Content, &a.Excerpt, &tags,
		&a.MetaTitle, &a.MetaDescription, &a.Status, &a.PublishedAt,
		&a.CategoryKey, &a.AuthorID, &a.ViewCount, &a.CreatedAt, &a.UpdatedAt,
		&a.Author.ID, &a.Author.Name, &a.Author.Email,
		&a.CommentCount, &a.FeedbackCount,
	); err != nil {
		return nil, err
	}
	a.Tags = decodeTags(tags)
	return a, nil
}

func decodeTags(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return []string{}
	}
	return tags
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

// ListFilter narrows and pages article listings.
type ListFilter struct {
	Category  string
	Status    models.ArticleStatus
	Search    string // matches title, content, or excerpt, case-insensitive
	SortBy    string // whitelisted column; defaults to created_at
	SortDesc  bool
	Limit     int
	Offset    int
}

// sortColumns whitelists ORDER BY targets so request input never reaches
// SQL directly.
var sortColumns = map[string]string{
	"createdAt":   "a.created_at",
	"updatedAt":   "a.updated_at",
	"publishedAt": "a.published_at",
	"title":       "a.title",
	"viewCount":   "a.view_count",
}

// List returns articles matching the filter plus the total match count
// for pagination.
func (s *ArticleStore) List(ctx context.Context, f ListFilter) ([]models.Article, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Category != "" {
		where = append(where, "a.category_key = "+arg(f.Category))
	}
	if f.Status != "" {
		where = append(where, "a.status = "+arg(f.Status))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(a.title ILIKE %s OR a.content ILIKE %s OR a.excerpt ILIKE %s)", p, p, p))
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM articles a"+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	orderBy, ok := sortColumns[f.SortBy]
	if !ok {
		orderBy = "a.created_at"
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "SELECT" + articleColumns + articleFrom + cond +
		fmt.Sprintf(" ORDER BY %s %s NULLS LAST LIMIT %s OFFSET %s",
			orderBy, dir, arg(limit), arg(f.Offset))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, total, rows.Err()
}

// FindByID retrieves an article by its UUID. Returns nil if not found.
func (s *ArticleStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	a, err := scanArticle(s.db.QueryRowContext(ctx,
		"SELECT"+articleColumns+articleFrom+" WHERE a.id = $1", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// FindPublishedBySlug retrieves a published article by its slug. Used for
// public reads. Returns nil if not found or not published.
func (s *ArticleStore) FindPublishedBySlug(ctx context.Context, slug string) (*models.Article, error) {
	a, err := scanArticle(s.db.QueryRowContext(ctx,
		"SELECT"+articleColumns+articleFrom+" WHERE a.slug = $1 AND a.status = 'PUBLISHED'", slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by slug: %w", err)
	}
	return a, nil
}

// SlugTaken reports whether another article (excluding the one being
// renamed) already holds the slug. Pass uuid.Nil on creation.
func (s *ArticleStore) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1 AND id <> $2)",
		slug, exclude,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("slug taken: %w", err)
	}
	return exists, nil
}

// Create inserts a new article and returns the stored record with joined
// author fields. A slug collision returns ErrConflict.
func (s *ArticleStore) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	tags, err := encodeTags(a.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	var id uuid.UUID
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO articles (slug, title, content, excerpt, tags,
		                      meta_title, meta_description, status, published_at,
		                      category_key, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, a.Slug, a.Title, a.Content, a.Excerpt, tags,
		a.MetaTitle, a.MetaDescription, a.Status, a.PublishedAt,
		a.CategoryKey, a.AuthorID,
	).Scan(&id)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return s.FindByID(ctx, id)
}

// Update overwrites the mutable fields of an article and returns the
// stored record. A slug collision returns ErrConflict.
func (s *ArticleStore) Update(ctx context.Context, a *models.Article) (*models.Article, error) {
	tags, err := encodeTags(a.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE articles SET
			slug = $1, title = $2, content = $3, excerpt = $4, tags = $5,
			meta_title = $6, meta_description = $7, status = $8, published_at = $9,
			category_key = $10, author_id = $11, updated_at = NOW()
		WHERE id = $12
	`, a.Slug, a.Title, a.Content, a.Excerpt, tags,
		a.MetaTitle, a.MetaDescription, a.Status, a.PublishedAt,
		a.CategoryKey, a.AuthorID, a.ID,
	)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return s.FindByID(ctx, a.ID)
}

// Delete removes an article by ID. Comments and feedback cascade at the
// schema level.
func (s *ArticleStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// IncrementViewCount atomically bumps the view counter on the database
// side and returns the new value. Concurrent display reads never lose
// increments because the read-modify-write happens in one statement.
func (s *ArticleStore) IncrementViewCount(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		UPDATE articles SET view_count = view_count + 1 WHERE id = $1
		RETURNING view_count
	`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment view count: %w", err)
	}
	return count, nil
}

// idPlaceholders renders ($1, $2, …) starting at from and appends the
// ids to args.
func idPlaceholders(ids []uuid.UUID, args *[]any) string {
	ph := make([]string, len(ids))
	for i, id := range ids {
		*args = append(*args, id)
		ph[i] = fmt.Sprintf("$%d", len(*args))
	}
	return strings.Join(ph, ", ")
}

// ListByIDs returns the full records for the given ids, in no particular
// order. Missing ids are simply absent from the result.
func (s *ArticleStore) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var args []any
	query := "SELECT" + articleColumns + articleFrom + " WHERE a.id IN (" + idPlaceholders(ids, &args) + ")"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles by ids: %w", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// UpdateStatusAll transitions every named article to status and applies
// the publication timestamp rule per item: entering PUBLISHED stamps now
// only on articles not already published, leaving PUBLISHED clears the
// stamp. Returns the number of affected rows.
func (s *ArticleStore) UpdateStatusAll(ctx context.Context, ids []uuid.UUID, status models.ArticleStatus, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var args []any
	var stampExpr string
	if status == models.ArticleStatusPublished {
		// Already-published articles keep their original timestamp.
		args = append(args, now)
		stampExpr = "CASE WHEN status = 'PUBLISHED' THEN published_at ELSE $1 END"
	} else {
		stampExpr = "NULL"
	}
	args = append(args, status)
	statusPh := fmt.Sprintf("$%d", len(args))

	query := fmt.Sprintf(`
		UPDATE articles
		SET published_at = %s, status = %s, updated_at = NOW()
		WHERE id IN (%s)
	`, stampExpr, statusPh, idPlaceholders(ids, &args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk status update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk status update rows: %w", err)
	}
	return n, nil
}

// DeleteAll removes every named article, but only if all of them exist:
// the existence check and the delete run in one transaction, and a
// missing id aborts with ErrMissingArticles and nothing applied.
func (s *ArticleStore) DeleteAll(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("bulk delete begin: %w", err)
	}
	defer tx.Rollback()

	var args []any
	ph := idPlaceholders(ids, &args)

	var existing int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM articles WHERE id IN ("+ph+")", args...,
	).Scan(&existing); err != nil {
		return 0, fmt.Errorf("bulk delete precheck: %w", err)
	}
	if existing != len(ids) {
		return 0, ErrMissingArticles
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM articles WHERE id IN ("+ph+")", args...)
	if err != nil {
		return 0, fmt.Errorf("bulk delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk delete rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("bulk delete commit: %w", err)
	}
	return n, nil
}

// UpdateCategoryAll moves every named article into the category.
func (s *ArticleStore) UpdateCategoryAll(ctx context.Context, ids []uuid.UUID, categoryKey string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := []any{categoryKey}
	query := "UPDATE articles SET category_key = $1, updated_at = NOW() WHERE id IN (" +
		idPlaceholders(ids, &args) + ")"

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk category update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk category update rows: %w", err)
	}
	return n, nil
}

// UpdateAuthorAll reassigns every named article to the author. Author
// existence is the caller's precondition.
func (s *ArticleStore) UpdateAuthorAll(ctx context.Context, ids []uuid.UUID, authorID uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := []any{authorID}
	query := "UPDATE articles SET author_id = $1, updated_at = NOW() WHERE id IN (" +
		idPlaceholders(ids, &args) + ")"

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk author update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk author update rows: %w", err)
	}
	return n, nil
}

// Search returns published articles matching q in title, content, or
// excerpt, newest first, capped at limit. Used by the public search box.
func (s *ArticleStore) Search(ctx context.Context, q string, limit int) ([]models.Article, error) {
	if limit <= 0 {
		limit = 8
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT"+articleColumns+articleFrom+`
		WHERE a.status = 'PUBLISHED'
		  AND (a.title ILIKE $1 OR a.content ILIKE $1 OR a.excerpt ILIKE $1)
		ORDER BY a.published_at DESC NULLS LAST
		LIMIT $2
	`, "%"+q+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// CountAll returns the total number of articles, optionally filtered by status.
func (s *ArticleStore) CountAll(ctx context.Context, status models.ArticleStatus) (int, error) {
	var count int
	var err error
	if status == "" {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles WHERE status = $1", status).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

// CountCreatedSince returns how many articles were created at or after t.
func (s *ArticleStore) CountCreatedSince(ctx context.Context, t time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM articles WHERE created_at >= $1", t).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count articles since: %w", err)
	}
	return count, nil
}

// TotalViews returns the sum of all article view counters.
func (s *ArticleStore) TotalViews(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(view_count), 0) FROM articles").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total views: %w", err)
	}
	return total, nil
}

// Popular returns the most-viewed published articles.
func (s *ArticleStore) Popular(ctx context.Context, limit int) ([]models.Article, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT"+articleColumns+articleFrom+`
		WHERE a.status = 'PUBLISHED'
		ORDER BY a.view_count DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("popular articles: %w", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}
