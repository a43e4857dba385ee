package memstore

import (
	"fmt"

	"content-scoring-service/internal/domain"
)

func setItemField(it *domain.ContentItem, f domain.Field, val any) error {
	switch f {
	case domain.FieldRatingMean:
		mean, err := toFloat(val)
		if err != nil {
			return fieldTypeError(f, val)
		}
		it.RatingMean = mean
		return nil
	case domain.FieldRatingCount, domain.FieldDownloads, domain.FieldLikes, domain.FieldDerivedScore:
		n, err := toInt(val)
		if err != nil {
			return fieldTypeError(f, val)
		}
		switch f {
		case domain.FieldRatingCount:
			it.RatingCount = int(n)
		case domain.FieldDownloads:
			it.Downloads = int(n)
		case domain.FieldLikes:
			it.Likes = int(n)
		default:
			it.DerivedScore = int(n)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrUnknownField, f)
}

func setUserField(u *domain.User, f domain.Field, val any) error {
	switch f {
	case domain.FieldPointBalance:
		n, err := toInt(val)
		if err != nil {
			return fieldTypeError(f, val)
		}
		u.PointBalance = n
		return nil
	case domain.FieldBadge:
		switch b := val.(type) {
		case domain.Badge:
			u.Badge = b
		case string:
			u.Badge = domain.Badge(b)
		default:
			return fieldTypeError(f, val)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrUnknownField, f)
}

func toInt(val any) (int64, error) {
	switch n := val.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	}
	return 0, fmt.Errorf("not an integer: %T", val)
}

func toFloat(val any) (float64, error) {
	switch n := val.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("not a number: %T", val)
}

func fieldTypeError(f domain.Field, val any) error {
	return fmt.Errorf("%w: %s cannot hold %T", domain.ErrUnknownField, f, val)
}
