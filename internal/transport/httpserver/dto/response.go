package dto

import (
	"time"

	"content-scoring-service/internal/app/service"
	"content-scoring-service/internal/domain"
)

// ItemResponse represents a content item.
type ItemResponse struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	OwnerID string   `json:"owner_id"`
	Title   string   `json:"title"`
	Subject string   `json:"subject,omitempty"`
	Tags    []string `json:"tags,omitempty"`

	// Metrics
	RatingMean  float64 `json:"rating_mean"`
	RatingCount int     `json:"rating_count"`
	Downloads   int     `json:"downloads"`
	Likes       int     `json:"likes"`

	// Score
	Points int `json:"points"`

	// Timestamps
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// FromDomainItem converts domain.ContentItem to ItemResponse.
func FromDomainItem(c *domain.ContentItem) ItemResponse {
	return ItemResponse{
		ID:          c.ID,
		Kind:        string(c.Kind),
		OwnerID:     c.OwnerID,
		Title:       c.Title,
		Subject:     c.Subject,
		Tags:        c.Tags,
		RatingMean:  c.RatingMean,
		RatingCount: c.RatingCount,
		Downloads:   c.Downloads,
		Likes:       c.Likes,
		Points:      c.DerivedScore,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}

// ScoreUpdateResponse is returned by score-affecting events.
type ScoreUpdateResponse struct {
	Item       ItemResponse `json:"item"`
	RatingMean float64      `json:"rating_mean"`
	Delta      int64        `json:"delta"`
	Counted    bool         `json:"counted"`
}

// FromScoreUpdate converts service.ScoreUpdate to ScoreUpdateResponse.
func FromScoreUpdate(u *service.ScoreUpdate) ScoreUpdateResponse {
	return ScoreUpdateResponse{
		Item:       FromDomainItem(u.Item),
		RatingMean: u.RatingMean,
		Delta:      u.Delta,
		Counted:    u.Counted,
	}
}

// LikeResponse is returned by a like toggle.
type LikeResponse struct {
	ScoreUpdateResponse
	Liked bool `json:"liked"`
}

// FromLikeUpdate converts service.LikeUpdate to LikeResponse.
func FromLikeUpdate(u *service.LikeUpdate) LikeResponse {
	return LikeResponse{
		ScoreUpdateResponse: FromScoreUpdate(&u.ScoreUpdate),
		Liked:               u.Liked,
	}
}

// UserResponse represents a user's points summary.
type UserResponse struct {
	ID           string `json:"id"`
	PointBalance int64  `json:"point_balance"`
	Badge        string `json:"badge"`
}

// FromDomainUser converts domain.User to UserResponse.
func FromDomainUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		PointBalance: u.PointBalance,
		Badge:        string(u.Badge),
	}
}

// EarningsResponse represents a user's earnings.
// Amounts are decimal strings with two places.
type EarningsResponse struct {
	UserID        string `json:"user_id"`
	TotalPoints   int64  `json:"total_points"`
	TotalEarnings string `json:"total_earnings"`
	Badge         string `json:"badge"`
}

// FromEarnings converts domain.Earnings to EarningsResponse.
func FromEarnings(e *domain.Earnings) EarningsResponse {
	return EarningsResponse{
		UserID:        e.UserID,
		TotalPoints:   e.TotalPoints,
		TotalEarnings: e.TotalEarnings.StringFixed(2),
		Badge:         string(e.Badge),
	}
}

// ItemPointsResponse pairs an item with its score breakdown.
type ItemPointsResponse struct {
	Item      ItemResponse           `json:"item"`
	Breakdown domain.PointsBreakdown `json:"breakdown"`
	Earnings  string                 `json:"earnings"`
}

// FromItemPoints converts service.ItemPoints to ItemPointsResponse.
func FromItemPoints(p service.ItemPoints) ItemPointsResponse {
	return ItemPointsResponse{
		Item:      FromDomainItem(p.Item),
		Breakdown: p.Breakdown,
		Earnings:  p.Earnings,
	}
}

// ItemListResponse lists a user's items.
type ItemListResponse struct {
	Items []ItemPointsResponse `json:"items"`
	Total int                  `json:"total"`
}

// FromItemPointsList converts a service.ItemPoints slice to ItemListResponse.
func FromItemPointsList(points []service.ItemPoints) ItemListResponse {
	items := make([]ItemPointsResponse, len(points))
	for i, p := range points {
		items[i] = FromItemPoints(p)
	}

	return ItemListResponse{Items: items, Total: len(items)}
}

// AuditResponse summarizes a balance audit.
type AuditResponse struct {
	UsersChecked int                    `json:"users_checked"`
	Drifts       []service.BalanceDrift `json:"drifts"`
	Repaired     int                    `json:"repaired"`
	Duration     string                 `json:"duration"`
}

// FromAuditReport converts service.AuditReport to AuditResponse.
func FromAuditReport(r *service.AuditReport) AuditResponse {
	drifts := r.Drifts
	if drifts == nil {
		drifts = []service.BalanceDrift{}
	}

	return AuditResponse{
		UsersChecked: r.UsersChecked,
		Drifts:       drifts,
		Repaired:     r.Repaired(),
		Duration:     r.Duration.String(),
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
