// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Umbra Docs API. Routes are organized into public, authenticated, and
// admin groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"umbradocs/internal/auth"
	"umbradocs/internal/handlers"
	"umbradocs/internal/middleware"
)

// Deps carries the handler groups and auth services the router wires up.
type Deps struct {
	Tokens    *auth.Tokens
	Users     middleware.UserFinder
	Auth      *handlers.Auth
	Public    *handlers.Public
	Analytics *handlers.Analytics

	AdminArticles   *handlers.AdminArticles
	AdminUsers      *handlers.AdminUsers
	AdminCategories *handlers.AdminCategories
	AdminStats      *handlers.AdminStats
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadActor(d.Tokens, d.Users))

	// Health check, no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Auth endpoints. Login and register are rate-limited to slow
		// down guessing.
		r.Route("/auth", func(r chi.Router) {
			limiter := middleware.NewRateLimiter(10, time.Minute)
			r.Group(func(r chi.Router) {
				r.Use(limiter.Middleware)
				r.Post("/register", d.Auth.Register)
				r.Post("/login", d.Auth.Login)
			})
			r.Post("/logout", d.Auth.Logout)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", d.Auth.Me)
				r.Post("/change-password", d.Auth.ChangePassword)
			})
		})

		// Public reading surface.
		r.Get("/articles", d.Public.ListArticles)
		r.Get("/articles/{slug}", d.Public.GetArticle)
		r.Get("/articles/{slug}/feedback", d.Public.FeedbackStats)
		r.Post("/articles/{slug}/feedback", d.Public.CreateFeedback)
		r.Get("/categories", d.Public.ListCategories)
		r.Get("/search", d.Public.Search)
		r.Post("/analytics/track", d.Analytics.Track)

		// Comments require a signed-in reader.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/articles/{slug}/comments", d.Public.CreateComment)
		})

		// Admin panel. Everything below is ADMIN-only.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/stats", d.AdminStats.Dashboard)
			r.Get("/analytics", d.AdminStats.Analytics)

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", d.AdminArticles.List)
				r.Post("/", d.AdminArticles.Create)
				r.Post("/bulk", d.AdminArticles.Bulk)
				r.Get("/{id}", d.AdminArticles.Get)
				r.Put("/{id}", d.AdminArticles.Update)
				r.Patch("/{id}/status", d.AdminArticles.UpdateStatus)
				r.Delete("/{id}", d.AdminArticles.Delete)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", d.AdminUsers.List)
				r.Post("/{id}/approve", d.AdminUsers.Approve)
				r.Post("/{id}/reject", d.AdminUsers.Reject)
				r.Post("/{id}/block", d.AdminUsers.Block)
				r.Post("/{id}/unblock", d.AdminUsers.Unblock)
				r.Put("/{id}", d.AdminUsers.Update)
				r.Delete("/{id}", d.AdminUsers.Delete)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", d.AdminCategories.List)
				r.Post("/", d.AdminCategories.Create)
				r.Put("/", d.AdminCategories.Update)
				r.Delete("/{id}", d.AdminCategories.Delete)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
