package models

import (
	"time"

	"github.com/google/uuid"
)

// CommentStatus represents the moderation state of a comment. Only
// approved comments are included in public article responses.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "PENDING"
	CommentStatusApproved CommentStatus = "APPROVED"
	CommentStatusRejected CommentStatus = "REJECTED"
)

// Comment is a reader comment on an article. Comments support a single
// level of replies via ParentID.
type Comment struct {
	ID        uuid.UUID     `json:"id"`
	Content   string        `json:"content"`
	Status    CommentStatus `json:"status"`
	ArticleID uuid.UUID     `json:"articleId"`
	AuthorID  uuid.UUID     `json:"authorId"`
	ParentID  *uuid.UUID    `json:"parentId,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`

	Author  *UserRef  `json:"author,omitempty"`
	Replies []Comment `json:"replies,omitempty"`
}
