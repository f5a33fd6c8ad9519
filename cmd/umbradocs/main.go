// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Umbra Docs API server.
// It loads configuration, connects to services, sets up routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"umbradocs/internal/auth"
	"umbradocs/internal/cache"
	"umbradocs/internal/config"
	"umbradocs/internal/database"
	"umbradocs/internal/handlers"
	"umbradocs/internal/router"
	"umbradocs/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey. The cache is optional: when Valkey is down the
	// API still serves everything from PostgreSQL.
	var respCache *cache.ResponseCache
	valkeyClient, err := cache.Connect(cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey not available, response caching disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		respCache = cache.NewResponseCache(valkeyClient, cache.DefaultResponseTTL)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	articleStore := store.NewArticleStore(db)
	categoryStore := store.NewCategoryStore(db)
	commentStore := store.NewCommentStore(db)
	feedbackStore := store.NewFeedbackStore(db)
	analyticsStore := store.NewAnalyticsStore(db)

	tokens := auth.NewTokens(cfg.JWTSecret)
	secureCookies := !cfg.IsDev()

	// Create handler groups with their dependencies.
	deps := router.Deps{
		Tokens:          tokens,
		Users:           userStore,
		Auth:            handlers.NewAuth(tokens, userStore, analyticsStore, secureCookies),
		Public:          handlers.NewPublic(articleStore, categoryStore, commentStore, feedbackStore, analyticsStore, respCache),
		Analytics:       handlers.NewAnalytics(analyticsStore),
		AdminArticles:   handlers.NewAdminArticles(articleStore, categoryStore, userStore, respCache),
		AdminUsers:      handlers.NewAdminUsers(userStore),
		AdminCategories: handlers.NewAdminCategories(categoryStore, respCache),
		AdminStats:      handlers.NewAdminStats(articleStore, userStore, commentStore, feedbackStore, analyticsStore),
	}

	r := router.New(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
