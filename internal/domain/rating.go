package domain

const (
	MinRating = 1
	MaxRating = 5
)

// ValidateRating returns ErrInvalidRating when rating is outside [1,5].
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return &InvalidRatingError{Rating: rating}
	}
	return nil
}

// ApplyRating folds a new rating into a running (mean, count) pair.
//
//	mean' = (mean*count + rating) / (count+1)
//	count' = count + 1
//
// A pair with count 0 is treated as unrated regardless of mean.
func ApplyRating(mean float64, count, rating int) (float64, int) {
	if count <= 0 {
		return float64(rating), 1
	}
	updated := (mean*float64(count) + float64(rating)) / float64(count+1)
	return updated, count + 1
}
