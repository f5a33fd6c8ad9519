// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ArticleStatus represents the publication state of an article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "DRAFT"
	ArticleStatusPublished ArticleStatus = "PUBLISHED"
	ArticleStatusArchived  ArticleStatus = "ARCHIVED"
)

// Valid reports whether s is one of the known article statuses.
func (s ArticleStatus) Valid() bool {
	switch s {
	case ArticleStatusDraft, ArticleStatusPublished, ArticleStatusArchived:
		return true
	}
	return false
}

// Article represents a documentation article. The slug is the article's
// public identity: unique across all articles and regenerated only when
// the title changes.
type Article struct {
	ID              uuid.UUID     `json:"id"`
	Slug            string        `json:"slug"`
	Title           string        `json:"title"`
	Content         string        `json:"content"`
	Excerpt         *string       `json:"excerpt,omitempty"`
	Tags            []string      `json:"tags"`
	MetaTitle       *string       `json:"metaTitle,omitempty"`
	MetaDescription *string       `json:"metaDescription,omitempty"`
	Status          ArticleStatus `json:"status"`
	PublishedAt     *time.Time    `json:"publishedAt,omitempty"`
	CategoryKey     string        `json:"categoryKey"`
	AuthorID        uuid.UUID     `json:"authorId"`
	ViewCount       int           `json:"viewCount"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`

	// Populated on reads that join related rows.
	Author        *UserRef `json:"author,omitempty"`
	CommentCount  int      `json:"commentCount"`
	FeedbackCount int      `json:"feedbackCount"`
}

// IsPublished returns true if the article is in published status.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// ApplyStatus transitions the article to next and applies the
// published-timestamp side effect:
//
//   - entering PUBLISHED from another state stamps PublishedAt with now
//   - leaving PUBLISHED clears PublishedAt
//   - PUBLISHED to PUBLISHED leaves PublishedAt untouched
//
// All transitions between the three states are legal. The same rule is
// used for single updates, bulk operations, and creation (where the
// prior state is the zero value, so an explicit PUBLISHED on create
// stamps immediately).
func (a *Article) ApplyStatus(next ArticleStatus, now time.Time) {
	switch {
	case next == ArticleStatusPublished && a.Status != ArticleStatusPublished:
		t := now
		a.PublishedAt = &t
	case next != ArticleStatusPublished:
		a.PublishedAt = nil
	}
	a.Status = next
}
