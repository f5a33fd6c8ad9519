package models

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackType classifies a reader's feedback on an article.
type FeedbackType string

const (
	FeedbackHelpful    FeedbackType = "HELPFUL"
	FeedbackNotHelpful FeedbackType = "NOT_HELPFUL"
	FeedbackRating     FeedbackType = "RATING"
)

// Valid reports whether t is one of the known feedback types.
func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackHelpful, FeedbackNotHelpful, FeedbackRating:
		return true
	}
	return false
}

// Feedback is anonymous or attributed reader feedback on an article.
// Rating is set only for RATING feedback; Message is optional.
type Feedback struct {
	ID        uuid.UUID    `json:"id"`
	ArticleID uuid.UUID    `json:"articleId"`
	Type      FeedbackType `json:"type"`
	Rating    *int         `json:"rating,omitempty"`
	Message   *string      `json:"message,omitempty"`
	UserID    *uuid.UUID   `json:"userId,omitempty"`
	UserAgent *string      `json:"userAgent,omitempty"`
	IPAddress *string      `json:"ipAddress,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`

	UserName *string `json:"userName,omitempty"`
}

// FeedbackStats aggregates feedback for an article (or the whole site).
type FeedbackStats struct {
	Counts        map[FeedbackType]int `json:"stats"`
	AverageRating *float64             `json:"averageRating"`
	Recent        []Feedback           `json:"recentFeedback"`
}
