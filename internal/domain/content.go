// Package domain contains the core business logic and entities.
// This package has no infrastructure dependencies.
package domain

import (
	"time"
)

// ContentKind represents the kind of uploaded content.
type ContentKind string

const (
	ContentKindNote     ContentKind = "note"
	ContentKindQuestion ContentKind = "question"
)

// IsValid reports whether k is a known content kind.
func (k ContentKind) IsValid() bool {
	return k == ContentKindNote || k == ContentKindQuestion
}

// ContentItem represents an uploaded Note or Question.
// This is the unit the scoring engine operates on.
type ContentItem struct {
	// Primary identifiers
	ID      string      `json:"id"`
	Kind    ContentKind `json:"kind"`
	OwnerID string      `json:"owner_id"` // User who uploaded the item

	// Display metadata
	Title   string   `json:"title"`
	Subject string   `json:"subject,omitempty"`
	Tags    []string `json:"tags,omitempty"`

	// Engagement signals
	RatingMean  float64 `json:"rating_mean"`  // 0 when unrated, [1,5] otherwise
	RatingCount int     `json:"rating_count"` // Number of ratings received
	Downloads   int     `json:"downloads"`    // Distinct downloaders
	Likes       int     `json:"likes"`        // Size of the likedBy set

	// Last computed point value, used by the reconciler to compute deltas
	DerivedScore int `json:"derived_score"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewContentItem creates a freshly uploaded item.
// DerivedScore starts at the base points for the kind.
func NewContentItem(ownerID, title string, kind ContentKind) *ContentItem {
	now := time.Now().UTC()
	return &ContentItem{
		Kind:         kind,
		OwnerID:      ownerID,
		Title:        title,
		Tags:         []string{},
		DerivedScore: ComputeScore(kind, 0, 0, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsRated returns true once at least one rating was recorded.
func (c *ContentItem) IsRated() bool {
	return c.RatingCount > 0
}

// CurrentScore recomputes the item's score from its current signals.
func (c *ContentItem) CurrentScore() int {
	return ComputeScore(c.Kind, c.RatingMean, c.Downloads, c.Likes)
}

// Ref returns the document reference of the item.
func (c *ContentItem) Ref() DocumentRef {
	return ItemRef(c.ID)
}

// Badge is a user's tier.
type Badge string

const (
	BadgeBronze   Badge = "bronze"
	BadgeSilver   Badge = "silver"
	BadgeGold     Badge = "gold"
	BadgePlatinum Badge = "platinum"
)

// User holds a user's point balance.
// PointBalance eventually equals the sum of DerivedScore over the user's items.
type User struct {
	ID           string    `json:"id"`
	PointBalance int64     `json:"point_balance"`
	Badge        Badge     `json:"badge"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser creates a user with an empty balance and the default badge.
func NewUser(id string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        id,
		Badge:     BadgeBronze,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
