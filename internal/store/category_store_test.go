// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"umbradocs/internal/models"
)

func TestCategoryStoreCreateConflict(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	cat := seedCategory(t, db)

	_, err := s.Create(ctx, &models.Category{Key: cat.Key, Name: "Duplicate"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate key: got %v, want ErrConflict", err)
	}
}

func TestCategoryStoreDeleteInUse(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	author := seedUser(t, db, models.RoleAdmin)
	cat := seedCategory(t, db)
	seedArticle(t, db, author, cat.Key, models.ArticleStatusDraft)

	if err := s.Delete(ctx, cat.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("delete in-use category: got %v, want ErrCategoryInUse", err)
	}

	// Still present.
	got, err := s.FindByKey(ctx, cat.Key)
	if err != nil {
		t.Fatalf("FindByKey: %v", err)
	}
	if got == nil {
		t.Error("in-use category was deleted")
	}
}

func TestCategoryStoreDeleteEmpty(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	cat := seedCategory(t, db)

	if err := s.Delete(ctx, cat.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := s.FindByKey(ctx, cat.Key)
	if err != nil {
		t.Fatalf("FindByKey: %v", err)
	}
	if got != nil {
		t.Error("deleted category still present")
	}
}

func TestCategoryStoreListCountsArticles(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	author := seedUser(t, db, models.RoleAdmin)
	cat := seedCategory(t, db)
	seedArticle(t, db, author, cat.Key, models.ArticleStatusPublished)
	seedArticle(t, db, author, cat.Key, models.ArticleStatusDraft)

	categories, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	var found bool
	for _, c := range categories {
		if c.ID == cat.ID {
			found = true
			if c.ArticleCount != 2 {
				t.Errorf("article count: got %d, want 2", c.ArticleCount)
			}
		}
	}
	if !found {
		t.Error("seeded category missing from list")
	}
}
