// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL is unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"umbradocs/internal/auth"
	"umbradocs/internal/database"
	"umbradocs/internal/middleware"
	"umbradocs/internal/models"
	"umbradocs/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "umbradocs")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "umbradocs")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv holds all dependencies for handler integration tests. The
// Valkey cache is left nil: handlers must work without it.
type testEnv struct {
	DB         *sql.DB
	Tokens     *auth.Tokens
	Users      *store.UserStore
	Articles   *store.ArticleStore
	Categories *store.CategoryStore
	Comments   *store.CommentStore
	Feedback   *store.FeedbackStore
	Analytics  *store.AnalyticsStore

	Auth            *Auth
	Public          *Public
	AdminArticles   *AdminArticles
	AdminUsers      *AdminUsers
	AdminCategories *AdminCategories
	AdminStats      *AdminStats
}

// newTestEnv creates a complete test environment.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)

	tokens := auth.NewTokens("handler-test-secret")
	users := store.NewUserStore(db)
	articles := store.NewArticleStore(db)
	categories := store.NewCategoryStore(db)
	comments := store.NewCommentStore(db)
	feedback := store.NewFeedbackStore(db)
	analytics := store.NewAnalyticsStore(db)

	return &testEnv{
		DB:         db,
		Tokens:     tokens,
		Users:      users,
		Articles:   articles,
		Categories: categories,
		Comments:   comments,
		Feedback:   feedback,
		Analytics:  analytics,

		Auth:            NewAuth(tokens, users, analytics, false),
		Public:          NewPublic(articles, categories, comments, feedback, analytics, nil),
		AdminArticles:   NewAdminArticles(articles, categories, users, nil),
		AdminUsers:      NewAdminUsers(users),
		AdminCategories: NewAdminCategories(categories, nil),
		AdminStats:      NewAdminStats(articles, users, comments, feedback, analytics),
	}
}

// createTestAdmin inserts an approved admin account and registers
// cleanup.
func (e *testEnv) createTestAdmin(t *testing.T) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("admin-pass1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	email := "admin-" + uuid.NewString()[:8] + "@test.local"
	admin, err := e.Users.Create(context.Background(), &models.User{
		Email:        email,
		Name:         "Test Admin",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Status:       models.UserStatusApproved,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}

	t.Cleanup(func() {
		e.DB.Exec("DELETE FROM users WHERE id = $1", admin.ID)
	})
	return admin
}

// createTestCategory inserts a category with a unique key and registers
// cleanup.
func (e *testEnv) createTestCategory(t *testing.T) *models.Category {
	t.Helper()

	key := "cat-" + uuid.NewString()[:8]
	c, err := e.Categories.Create(context.Background(), &models.Category{
		Key:      key,
		Name:     "Test Category",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	t.Cleanup(func() {
		e.DB.Exec("DELETE FROM categories WHERE id = $1", c.ID)
	})
	return c
}

// createTestArticle inserts an article owned by author in the given
// category and registers cleanup.
func (e *testEnv) createTestArticle(t *testing.T, author *models.User, categoryKey string, status models.ArticleStatus) *models.Article {
	t.Helper()

	a := &models.Article{
		Slug:        "article-" + uuid.NewString()[:8],
		Title:       "Test Article",
		Content:     "Test content.",
		CategoryKey: categoryKey,
		AuthorID:    author.ID,
	}
	a.ApplyStatus(status, time.Now())

	created, err := e.Articles.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	t.Cleanup(func() {
		e.DB.Exec("DELETE FROM articles WHERE id = $1", created.ID)
	})
	return created
}

// asActor attaches the actor to the request context the way LoadActor
// would.
func asActor(r *http.Request, actor *models.User) *http.Request {
	return r.WithContext(middleware.WithActor(r.Context(), actor))
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
