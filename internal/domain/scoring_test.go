package domain

import (
	"math"
	"testing"
)

func TestComputeScore_TierBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		kind       ContentKind
		ratingMean float64
		expected   int
	}{
		// floor(10 * 3.0 + 50)
		{"note exactly 4.8 is top tier", ContentKindNote, 4.8, 80},
		// floor(10 * 2.5 + 30)
		{"note just below 4.8", ContentKindNote, 4.79, 55},
		{"note 4.79999", ContentKindNote, 4.79999, 55},
		{"note exactly 4.5", ContentKindNote, 4.5, 55},
		// floor(10 * 2.0 + 20)
		{"note exactly 4.0", ContentKindNote, 4.0, 40},
		// floor(10 * 1.5 + 10)
		{"note exactly 3.5", ContentKindNote, 3.5, 25},
		// floor(10 * 1.2 + 5)
		{"note exactly 3.0", ContentKindNote, 3.0, 17},
		{"note below 3.0", ContentKindNote, 2.99, 10},
		{"unrated note", ContentKindNote, 0, 10},
		{"unrated question", ContentKindQuestion, 0, 15},
		// floor(15 * 3.0 + 50)
		{"perfect question", ContentKindQuestion, 5.0, 95},
		// floor(15 * 1.2 + 5) = floor(18 + 5)
		{"question at 3.0", ContentKindQuestion, 3.0, 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeScore(tt.kind, tt.ratingMean, 0, 0)
			if got != tt.expected {
				t.Errorf("ComputeScore(%s, %v, 0, 0) = %d, want %d", tt.kind, tt.ratingMean, got, tt.expected)
			}
		})
	}
}

func TestComputeScore_Caps(t *testing.T) {
	tests := []struct {
		name      string
		downloads int
		likes     int
		expected  int
	}{
		// floor((10 + 100 + 75) * 1.0 + 0)
		{"both capped", 1000, 1000, 185},
		// 50 downloads -> exactly 100
		{"download cap reached exactly", 50, 0, 110},
		{"download cap minus one", 49, 0, 108},
		// 25 likes -> exactly 75
		{"like cap reached exactly", 0, 25, 85},
		{"like cap minus one", 0, 24, 82},
		{"zero engagement", 0, 0, 10},
		{"huge download count stays capped", math.MaxInt/2 + 1, 0, 110},
		{"max int downloads", math.MaxInt, 0, 110},
		{"max int likes", 0, math.MaxInt, 85},
		{"huge counts on both", math.MaxInt, math.MaxInt/3 + 1, 185},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeScore(ContentKindNote, 0, tt.downloads, tt.likes)
			if got != tt.expected {
				t.Errorf("ComputeScore() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestComputeScore_FloorsFractionalMultiplier(t *testing.T) {
	// (10 + 2 + 3) * 1.2 + 5 = 23
	if got := ComputeScore(ContentKindNote, 3.2, 1, 1); got != 23 {
		t.Errorf("ComputeScore() = %d, want 23", got)
	}
	// (10 + 2) * 1.5 + 10 = 28
	if got := ComputeScore(ContentKindNote, 3.7, 1, 0); got != 28 {
		t.Errorf("ComputeScore() = %d, want 28", got)
	}
	// (10 + 4 + 3) * 1.5 + 10 = 35.5 -> 35
	if got := ComputeScore(ContentKindNote, 3.9, 2, 1); got != 35 {
		t.Errorf("ComputeScore() = %d, want 35", got)
	}
	// (15 + 2) * 1.2 + 5 = 25.4 -> 25
	if got := ComputeScore(ContentKindQuestion, 3.0, 1, 0); got != 25 {
		t.Errorf("ComputeScore() = %d, want 25", got)
	}
}

func TestComputeScore_Monotonic(t *testing.T) {
	kinds := []ContentKind{ContentKindNote, ContentKindQuestion}
	means := []float64{0, 1, 3.0, 3.5, 4.0, 4.5, 4.8, 5.0}

	for _, kind := range kinds {
		for _, mean := range means {
			prev := ComputeScore(kind, mean, 0, 0)
			for downloads := 1; downloads <= 120; downloads++ {
				got := ComputeScore(kind, mean, downloads, 0)
				if got < prev {
					t.Fatalf("score decreased in downloads: kind=%s mean=%v downloads=%d: %d < %d", kind, mean, downloads, got, prev)
				}
				prev = got
			}

			prev = ComputeScore(kind, mean, 0, 0)
			for likes := 1; likes <= 120; likes++ {
				got := ComputeScore(kind, mean, 0, likes)
				if got < prev {
					t.Fatalf("score decreased in likes: kind=%s mean=%v likes=%d: %d < %d", kind, mean, likes, got, prev)
				}
				prev = got
			}
		}
	}
}

func TestComputeScore_MonotonicAtLargeCounts(t *testing.T) {
	counts := []int{1000, 1 << 30, math.MaxInt/3 + 1, math.MaxInt/2 + 1, math.MaxInt - 1, math.MaxInt}

	prevDownloads := ComputeScore(ContentKindNote, 0, 50, 0)
	prevLikes := ComputeScore(ContentKindNote, 0, 0, 25)
	for _, n := range counts {
		if got := ComputeScore(ContentKindNote, 0, n, 0); got < prevDownloads {
			t.Fatalf("score decreased at downloads=%d: %d < %d", n, got, prevDownloads)
		}
		if got := ComputeScore(ContentKindNote, 0, 0, n); got < prevLikes {
			t.Fatalf("score decreased at likes=%d: %d < %d", n, got, prevLikes)
		}
	}
}

func TestBreakdown_Components(t *testing.T) {
	b := Breakdown(ContentKindQuestion, 4.6, 10, 5)

	expected := PointsBreakdown{
		BasePoints:        15,
		DownloadBonus:     20,
		LikeBonus:         15,
		QualityMultiplier: 2.5,
		QualityBonus:      30,
		// (15 + 20 + 15) * 2.5 + 30
		TotalPoints: 155,
	}
	if b != expected {
		t.Errorf("Breakdown() = %+v, want %+v", b, expected)
	}
}

func TestBreakdown_NegativeCountersClampToZero(t *testing.T) {
	b := Breakdown(ContentKindNote, 0, -3, -1)
	if b.DownloadBonus != 0 || b.LikeBonus != 0 {
		t.Errorf("expected zero bonuses for negative counters, got %+v", b)
	}
	if b.TotalPoints != 10 {
		t.Errorf("TotalPoints = %d, want 10", b.TotalPoints)
	}
}

func TestBasePoints(t *testing.T) {
	tests := []struct {
		kind     ContentKind
		expected int
	}{
		{ContentKindNote, 10},
		{ContentKindQuestion, 15},
		{"unknown", 15},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := BasePoints(tt.kind); got != tt.expected {
				t.Errorf("BasePoints(%v) = %d, want %d", tt.kind, got, tt.expected)
			}
		})
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		mean       float64
		multiplier float64
		bonus      int
	}{
		{5.0, 3.0, 50},
		{4.8, 3.0, 50},
		{4.7, 2.5, 30},
		{4.5, 2.5, 30},
		{4.2, 2.0, 20},
		{3.6, 1.5, 10},
		{3.1, 1.2, 5},
		{2.0, 1.0, 0},
		{0, 1.0, 0},
	}

	for _, tt := range tests {
		tier := TierFor(tt.mean)
		if tier.Multiplier() != tt.multiplier || tier.Bonus != tt.bonus {
			t.Errorf("TierFor(%v) = x%v +%d, want x%v +%d", tt.mean, tier.Multiplier(), tier.Bonus, tt.multiplier, tt.bonus)
		}
	}
}
