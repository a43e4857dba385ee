// Package domain contains the core business logic and entities.
package domain

const (
	// NoteBasePoints is the base value of an uploaded note.
	NoteBasePoints = 10
	// QuestionBasePoints is the base value of an uploaded question paper.
	QuestionBasePoints = 15

	maxDownloadBonus  = 100
	maxLikeBonus      = 75
	pointsPerDownload = 2
	pointsPerLike     = 3
)

// QualityTier is a rating-mean bracket that multiplies and bonuses the base score.
type QualityTier struct {
	MinRating float64
	// Multiplier in tenths, so 3.0 is stored as 30. Keeps the floor exact.
	multiplierTenths int
	Bonus            int
}

// Multiplier returns the tier multiplier as a float for display.
func (t QualityTier) Multiplier() float64 {
	return float64(t.multiplierTenths) / 10
}

// qualityTiers are evaluated top-down, first match wins.
var qualityTiers = []QualityTier{
	{MinRating: 4.8, multiplierTenths: 30, Bonus: 50},
	{MinRating: 4.5, multiplierTenths: 25, Bonus: 30},
	{MinRating: 4.0, multiplierTenths: 20, Bonus: 20},
	{MinRating: 3.5, multiplierTenths: 15, Bonus: 10},
	{MinRating: 3.0, multiplierTenths: 12, Bonus: 5},
}

var baseTier = QualityTier{MinRating: 0, multiplierTenths: 10, Bonus: 0}

// PointsBreakdown explains how an item's score was computed.
type PointsBreakdown struct {
	BasePoints        int     `json:"base_points"`
	DownloadBonus     int     `json:"download_bonus"`
	LikeBonus         int     `json:"like_bonus"`
	QualityMultiplier float64 `json:"quality_multiplier"`
	QualityBonus      int     `json:"quality_bonus"`
	TotalPoints       int     `json:"total_points"`
}

// BasePoints returns the base point value for a content kind.
// Unknown kinds fall through to the question value.
func BasePoints(kind ContentKind) int {
	if kind == ContentKindNote {
		return NoteBasePoints
	}
	return QuestionBasePoints
}

// TierFor returns the quality tier for a rating mean.
// Boundaries are inclusive: 4.8 qualifies for the top tier, 4.79999 does not.
func TierFor(ratingMean float64) QualityTier {
	for _, t := range qualityTiers {
		if ratingMean >= t.MinRating {
			return t
		}
	}
	return baseTier
}

// ComputeScore computes the integer reward score for a content item.
//
// Formula:
//
//	total = floor((base + downloadBonus + likeBonus) * qualityMultiplier + qualityBonus)
//
// Base: note 10, question 15.
// Download bonus: min(downloads*2, 100).
// Like bonus: min(likes*3, 75).
// Quality tier by rating mean (>=): 4.8 x3.0+50, 4.5 x2.5+30, 4.0 x2.0+20, 3.5 x1.5+10, 3.0 x1.2+5, else x1.0.
func ComputeScore(kind ContentKind, ratingMean float64, downloads, likes int) int {
	return Breakdown(kind, ratingMean, downloads, likes).TotalPoints
}

// Breakdown computes the score together with each of its components.
func Breakdown(kind ContentKind, ratingMean float64, downloads, likes int) PointsBreakdown {
	base := BasePoints(kind)
	downloadBonus := engagementBonus(downloads, pointsPerDownload, maxDownloadBonus)
	likeBonus := engagementBonus(likes, pointsPerLike, maxLikeBonus)
	tier := TierFor(ratingMean)

	// Integer arithmetic in tenths; all operands are non-negative so division floors.
	subtotal := base + downloadBonus + likeBonus
	total := subtotal*tier.multiplierTenths/10 + tier.Bonus

	return PointsBreakdown{
		BasePoints:        base,
		DownloadBonus:     downloadBonus,
		LikeBonus:         likeBonus,
		QualityMultiplier: tier.Multiplier(),
		QualityBonus:      tier.Bonus,
		TotalPoints:       total,
	}
}

// engagementBonus returns min(count*perUnit, limit), and 0 for negative counts.
// The cap is checked before multiplying so huge counts cannot overflow.
func engagementBonus(count, perUnit, limit int) int {
	if count <= 0 {
		return 0
	}
	if count > limit/perUnit {
		return limit
	}
	// count*perUnit <= limit here.
	return count * perUnit
}
