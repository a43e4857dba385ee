package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"content-scoring-service/internal/domain"
)

type scoreOutput struct {
	Kind       string                 `json:"kind"`
	RatingMean float64                `json:"rating_mean"`
	Downloads  int                    `json:"downloads"`
	Likes      int                    `json:"likes"`
	Breakdown  domain.PointsBreakdown `json:"breakdown"`
	Earnings   string                 `json:"earnings"`
}

func newScoreCmd() *cobra.Command {
	var (
		kind      string
		rating    float64
		downloads int
		likes     int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the points and earnings of a hypothetical item",
		Example: `  scoringctl score --kind note --rating 4.5 --downloads 30 --likes 12
  scoringctl score --kind question --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k := domain.ContentKind(kind)
			if !k.IsValid() {
				return domain.ErrInvalidKind
			}
			if rating != 0 && (rating < domain.MinRating || rating > domain.MaxRating) {
				return fmt.Errorf("rating mean %.2f: %w", rating, domain.ErrInvalidRating)
			}
			if downloads < 0 || likes < 0 {
				return errors.New("downloads and likes must not be negative")
			}

			breakdown := domain.Breakdown(k, rating, downloads, likes)
			out := scoreOutput{
				Kind:       kind,
				RatingMean: rating,
				Downloads:  downloads,
				Likes:      likes,
				Breakdown:  breakdown,
				Earnings:   domain.ToEarnings(int64(breakdown.TotalPoints)).StringFixed(2),
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			cmd.Printf("base points:        %d\n", breakdown.BasePoints)
			cmd.Printf("download bonus:     %d\n", breakdown.DownloadBonus)
			cmd.Printf("like bonus:         %d\n", breakdown.LikeBonus)
			cmd.Printf("quality multiplier: x%.1f\n", breakdown.QualityMultiplier)
			cmd.Printf("quality bonus:      %d\n", breakdown.QualityBonus)
			cmd.Printf("total points:       %d\n", breakdown.TotalPoints)
			cmd.Printf("earnings:           %s\n", out.Earnings)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(domain.ContentKindNote), "content kind (note, question)")
	cmd.Flags().Float64Var(&rating, "rating", 0, "rating mean, 0 when unrated")
	cmd.Flags().IntVar(&downloads, "downloads", 0, "distinct downloads")
	cmd.Flags().IntVar(&likes, "likes", 0, "likes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}
