package searchindex

import "content-scoring-service/internal/domain"

// scoreUpdate is the partial record sent to the index.
type scoreUpdate struct {
	Kind        string  `json:"kind"`
	OwnerID     string  `json:"owner_id"`
	Points      int     `json:"points"`
	RatingMean  float64 `json:"rating_mean"`
	RatingCount int     `json:"rating_count"`
	Downloads   int     `json:"downloads"`
	Likes       int     `json:"likes"`
}

func newScoreUpdate(item *domain.ContentItem) scoreUpdate {
	return scoreUpdate{
		Kind:        string(item.Kind),
		OwnerID:     item.OwnerID,
		Points:      item.DerivedScore,
		RatingMean:  item.RatingMean,
		RatingCount: item.RatingCount,
		Downloads:   item.Downloads,
		Likes:       item.Likes,
	}
}
