// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"umbradocs/internal/models"
)

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestFeedbackStoreStats(t *testing.T) {
	db := testDB(t)
	s := NewFeedbackStore(db)
	ctx := context.Background()

	author := seedUser(t, db, models.RoleAdmin)
	cat := seedCategory(t, db)
	article := seedArticle(t, db, author, cat.Key, models.ArticleStatusPublished)

	seed := []*models.Feedback{
		{ArticleID: article.ID, Type: models.FeedbackHelpful},
		{ArticleID: article.ID, Type: models.FeedbackHelpful},
		{ArticleID: article.ID, Type: models.FeedbackNotHelpful, Message: strPtr("confusing section")},
		{ArticleID: article.ID, Type: models.FeedbackRating, Rating: intPtr(4)},
		{ArticleID: article.ID, Type: models.FeedbackRating, Rating: intPtr(2)},
	}
	for _, f := range seed {
		if _, err := s.Create(ctx, f); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	stats, err := s.Stats(ctx, &article.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if got := stats.Counts[models.FeedbackHelpful]; got != 2 {
		t.Errorf("helpful count: got %d, want 2", got)
	}
	if got := stats.Counts[models.FeedbackNotHelpful]; got != 1 {
		t.Errorf("not-helpful count: got %d, want 1", got)
	}
	if got := stats.Counts[models.FeedbackRating]; got != 2 {
		t.Errorf("rating count: got %d, want 2", got)
	}
	if stats.AverageRating == nil || *stats.AverageRating != 3.0 {
		t.Errorf("average rating: got %v, want 3.0", stats.AverageRating)
	}

	// Only feedback with messages shows up in the recent list.
	if len(stats.Recent) != 1 {
		t.Fatalf("recent: got %d entries, want 1", len(stats.Recent))
	}
	if stats.Recent[0].Message == nil || *stats.Recent[0].Message != "confusing section" {
		t.Errorf("recent message: %+v", stats.Recent[0].Message)
	}
}

func TestCommentStoreModeration(t *testing.T) {
	db := testDB(t)
	s := NewCommentStore(db)
	ctx := context.Background()

	author := seedUser(t, db, models.RoleAdmin)
	reader := seedUser(t, db, models.RoleUser)
	cat := seedCategory(t, db)
	article := seedArticle(t, db, author, cat.Key, models.ArticleStatusPublished)

	created, err := s.Create(ctx, &models.Comment{
		Content:   "First!",
		ArticleID: article.ID,
		AuthorID:  reader.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != models.CommentStatusPending {
		t.Errorf("new comment status: got %q, want PENDING", created.Status)
	}

	// Pending comments are invisible publicly.
	comments, err := s.ListApprovedByArticle(ctx, article.ID)
	if err != nil {
		t.Fatalf("ListApprovedByArticle: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("pending comment visible: %+v", comments)
	}

	if _, err := db.Exec("UPDATE comments SET status = 'APPROVED' WHERE id = $1", created.ID); err != nil {
		t.Fatalf("approve comment: %v", err)
	}

	// Replies attach to their approved parent.
	reply, err := s.Create(ctx, &models.Comment{
		Content:   "Reply",
		ArticleID: article.ID,
		AuthorID:  reader.ID,
		ParentID:  &created.ID,
	})
	if err != nil {
		t.Fatalf("Create reply: %v", err)
	}
	if _, err := db.Exec("UPDATE comments SET status = 'APPROVED' WHERE id = $1", reply.ID); err != nil {
		t.Fatalf("approve reply: %v", err)
	}

	comments, err = s.ListApprovedByArticle(ctx, article.ID)
	if err != nil {
		t.Fatalf("ListApprovedByArticle: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("top-level comments: got %d, want 1", len(comments))
	}
	if len(comments[0].Replies) != 1 || comments[0].Replies[0].ID != reply.ID {
		t.Errorf("reply not attached to parent: %+v", comments[0].Replies)
	}
	if comments[0].Author == nil || comments[0].Author.ID != reader.ID {
		t.Errorf("comment author join missing: %+v", comments[0].Author)
	}
}
