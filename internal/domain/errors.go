package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRating is returned for ratings outside [1,5].
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrStoreUnavailable marks failures of the document store.
	ErrStoreUnavailable = errors.New("document store unavailable")

	ErrItemNotFound = errors.New("content item not found")
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidKind is returned when uploading content of an unknown kind.
	ErrInvalidKind = errors.New("content kind must be note or question")

	// ErrUnknownField is returned when a write names a field outside the whitelist.
	ErrUnknownField = errors.New("unknown document field")

	ErrMonthlyEarningsUnsupported = errors.New("monthly earnings are not supported")
)

// InvalidRatingError carries the rejected rating value.
type InvalidRatingError struct {
	Rating int
}

func (e *InvalidRatingError) Error() string {
	return fmt.Sprintf("invalid rating %d: %s", e.Rating, ErrInvalidRating)
}

// Is makes errors.Is(err, ErrInvalidRating) match.
func (e *InvalidRatingError) Is(target error) bool {
	return target == ErrInvalidRating
}

// StoreError wraps a document store failure with the failed operation.
// It matches ErrStoreUnavailable with errors.Is.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError wraps err as a store failure. Returns nil if err is nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}
