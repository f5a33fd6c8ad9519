// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"umbradocs/internal/database"
	"umbradocs/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "umbradocs")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "umbradocs")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// seedUser inserts an approved user with a unique email and registers
// cleanup.
func seedUser(t *testing.T, db *sql.DB, role models.Role) *models.User {
	t.Helper()

	s := NewUserStore(db)
	u, err := s.Create(context.Background(), &models.User{
		Email:        "store-" + uuid.NewString()[:8] + "@test.local",
		Name:         "Store Tester",
		PasswordHash: "x",
		Role:         role,
		Status:       models.UserStatusApproved,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM users WHERE id = $1", u.ID)
	})
	return u
}

// seedCategory inserts a category with a unique key and registers
// cleanup.
func seedCategory(t *testing.T, db *sql.DB) *models.Category {
	t.Helper()

	s := NewCategoryStore(db)
	c, err := s.Create(context.Background(), &models.Category{
		Key:      "store-cat-" + uuid.NewString()[:8],
		Name:     "Store Category",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM categories WHERE id = $1", c.ID)
	})
	return c
}

// seedArticle inserts an article and registers cleanup.
func seedArticle(t *testing.T, db *sql.DB, author *models.User, categoryKey string, status models.ArticleStatus) *models.Article {
	t.Helper()

	s := NewArticleStore(db)
	a := &models.Article{
		Slug:        "store-art-" + uuid.NewString()[:8],
		Title:       "Store Test Article",
		Content:     "Content for store tests.",
		CategoryKey: categoryKey,
		AuthorID:    author.ID,
	}
	a.ApplyStatus(status, time.Now())

	created, err := s.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("seed article: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM articles WHERE id = $1", created.ID)
	})
	return created
}
