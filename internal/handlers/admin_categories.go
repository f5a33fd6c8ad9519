// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"umbradocs/internal/cache"
	"umbradocs/internal/models"
	"umbradocs/internal/slug"
	"umbradocs/internal/store"
)

// AdminCategories groups the category management endpoints.
type AdminCategories struct {
	categories *store.CategoryStore
	respCache  *cache.ResponseCache
}

// NewAdminCategories creates a new AdminCategories handler group.
func NewAdminCategories(categories *store.CategoryStore, respCache *cache.ResponseCache) *AdminCategories {
	return &AdminCategories{categories: categories, respCache: respCache}
}

// List returns all categories with their article counts, ordered by
// sort order.
func (h *AdminCategories) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

type categoryCreateRequest struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
}

// Create inserts a new category. The key is normalized to slug form so
// it is safe in URLs.
func (h *AdminCategories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateCategory(req.Key, req.Name); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	key := slug.Generate(req.Key)
	if key == "" {
		respondError(w, http.StatusBadRequest, "key must contain at least one letter or digit")
		return
	}

	c := &models.Category{
		Key:         key,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsActive:    true,
	}
	if req.Order != nil {
		c.Order = *req.Order
	}

	created, err := h.categories.Create(r.Context(), c)
	if err != nil {
		respondStoreError(w, err, "a category with this key already exists")
		return
	}

	h.invalidate(r)
	respondJSON(w, http.StatusCreated, map[string]any{"category": created})
}

type categoryUpdate struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Order       int     `json:"order"`
	IsActive    bool    `json:"isActive"`
}

type categoriesUpdateRequest struct {
	Categories []categoryUpdate `json:"categories"`
}

// Update applies a batch of category edits, typically a reorder from the
// admin panel. Keys are immutable; only display fields change.
func (h *AdminCategories) Update(w http.ResponseWriter, r *http.Request) {
	var req categoriesUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Categories) == 0 {
		respondError(w, http.StatusBadRequest, "categories must not be empty")
		return
	}

	for _, c := range req.Categories {
		id, err := uuid.Parse(c.ID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid category id: "+c.ID)
			return
		}
		if strings.TrimSpace(c.Name) == "" {
			respondError(w, http.StatusBadRequest, "category name is required")
			return
		}
		if err := h.categories.Update(r.Context(), id, strings.TrimSpace(c.Name), c.Description, c.Order, c.IsActive); err != nil {
			slog.Error("update category failed", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	categories, err := h.categories.List(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.invalidate(r)
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// Delete removes a category. Categories still referenced by articles
// cannot be deleted.
func (h *AdminCategories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		respondStoreError(w, err, "category still has articles")
		return
	}

	h.invalidate(r)
	respondJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

func (h *AdminCategories) invalidate(r *http.Request) {
	if h.respCache != nil {
		h.respCache.InvalidateAll(r.Context())
	}
}
