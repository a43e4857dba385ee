package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"content-scoring-service/internal/domain"
)

// BalanceObserver is told when a user's point balance changed.
type BalanceObserver interface {
	BalanceChanged(ctx context.Context, userID string)
}

// ScoreUpdate describes the outcome of a score-affecting event.
type ScoreUpdate struct {
	Item *domain.ContentItem

	// RatingMean is the item's mean after the event.
	RatingMean float64

	// Delta is the change applied to the owner's balance.
	Delta int64

	// Counted is false when the event was a no-op, e.g. a repeat download.
	Counted bool
}

// LikeUpdate is the outcome of ToggleLike.
type LikeUpdate struct {
	ScoreUpdate
	Liked bool
}

// NewItemInput holds the fields of an upload.
type NewItemInput struct {
	Kind    domain.ContentKind
	Title   string
	Subject string
	Tags    []string
}

// ScoringService handles the events that move an item's score: uploads, ratings, downloads and likes.
// Each event runs as one store transaction ending in a balance reconciliation.
type ScoringService struct {
	store      domain.DocumentStore
	reconciler *Reconciler
	index      domain.SearchIndex
	observer   BalanceObserver
	logger     *zap.Logger
}

// NewScoringService creates a new ScoringService.
// index and observer may be nil.
func NewScoringService(store domain.DocumentStore, index domain.SearchIndex, observer BalanceObserver, logger *zap.Logger) *ScoringService {
	return &ScoringService{
		store:      store,
		reconciler: NewReconciler(logger),
		index:      index,
		observer:   observer,
		logger:     logger,
	}
}

// CreateItem stores a new item and credits its base points to the owner.
func (s *ScoringService) CreateItem(ctx context.Context, ownerID string, in NewItemInput) (*domain.ContentItem, error) {
	if !in.Kind.IsValid() {
		return nil, domain.ErrInvalidKind
	}

	item := domain.NewContentItem(ownerID, strings.TrimSpace(in.Title), in.Kind)
	item.Subject = in.Subject
	if in.Tags != nil {
		item.Tags = in.Tags
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.DocumentStore) error {
		if _, err := tx.EnsureUser(ctx, ownerID); err != nil {
			return err
		}
		if err := tx.CreateItem(ctx, item); err != nil {
			return err
		}
		return tx.ApplyIncrement(ctx, domain.UserRef(ownerID), domain.FieldPointBalance, int64(item.DerivedScore))
	})
	if err != nil {
		s.logger.Error("create item failed",
			zap.String("owner_id", ownerID),
			zap.String("kind", string(in.Kind)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("item created",
		zap.String("item_id", item.ID),
		zap.String("owner_id", ownerID),
		zap.String("kind", string(item.Kind)),
		zap.Int("base_points", item.DerivedScore),
	)

	s.afterCommit(ctx, &ScoreUpdate{Item: item, Delta: int64(item.DerivedScore), Counted: true})

	return item, nil
}

// SubmitRating folds a 1 to 5 rating into the item's running mean and rescores the item.
// Invalid ratings are rejected before the store is touched.
func (s *ScoringService) SubmitRating(ctx context.Context, itemID string, rating int) (*ScoreUpdate, error) {
	if err := domain.ValidateRating(rating); err != nil {
		return nil, err
	}

	var update *ScoreUpdate
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.DocumentStore) error {
		item, err := tx.GetItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}

		mean, count := domain.ApplyRating(item.RatingMean, item.RatingCount, rating)
		if err := tx.ApplyIncrement(ctx, item.Ref(), domain.FieldRatingCount, 1); err != nil {
			return err
		}
		if err := tx.SetFields(ctx, item.Ref(), domain.Fields{domain.FieldRatingMean: mean}); err != nil {
			return err
		}
		item.RatingMean, item.RatingCount = mean, count

		update, err = s.rescore(ctx, tx, item)
		return err
	})
	if err != nil {
		s.logger.Error("submit rating failed",
			zap.String("item_id", itemID),
			zap.Int("rating", rating),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Debug("rating submitted",
		zap.String("item_id", itemID),
		zap.Int("rating", rating),
		zap.Float64("rating_mean", update.RatingMean),
		zap.Int64("delta", update.Delta),
	)

	s.afterCommit(ctx, update)

	return update, nil
}

// RecordDownload counts the first download of an item by a user.
// Later downloads by the same user leave the item unchanged.
func (s *ScoringService) RecordDownload(ctx context.Context, itemID, userID string) (*ScoreUpdate, error) {
	var update *ScoreUpdate
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.DocumentStore) error {
		item, err := tx.GetItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}

		added, err := tx.AddMember(ctx, domain.MemberSetDownloadedBy, itemID, userID)
		if err != nil {
			return err
		}
		if !added {
			update = &ScoreUpdate{Item: item, RatingMean: item.RatingMean}
			return nil
		}

		if err := tx.ApplyIncrement(ctx, item.Ref(), domain.FieldDownloads, 1); err != nil {
			return err
		}
		item.Downloads++

		update, err = s.rescore(ctx, tx, item)
		return err
	})
	if err != nil {
		s.logger.Error("record download failed",
			zap.String("item_id", itemID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	if !update.Counted {
		s.logger.Debug("repeat download ignored",
			zap.String("item_id", itemID),
			zap.String("user_id", userID),
		)
		return update, nil
	}

	s.afterCommit(ctx, update)

	return update, nil
}

// ToggleLike adds the user to the item's likers, or removes them if already present.
func (s *ScoringService) ToggleLike(ctx context.Context, itemID, userID string) (*LikeUpdate, error) {
	var update *LikeUpdate
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.DocumentStore) error {
		item, err := tx.GetItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}

		liked, err := tx.HasMember(ctx, domain.MemberSetLikedBy, itemID, userID)
		if err != nil {
			return err
		}

		if liked {
			if _, err := tx.RemoveMember(ctx, domain.MemberSetLikedBy, itemID, userID); err != nil {
				return err
			}
			if item.Likes > 0 {
				if err := tx.ApplyIncrement(ctx, item.Ref(), domain.FieldLikes, -1); err != nil {
					return err
				}
				item.Likes--
			}
		} else {
			if _, err := tx.AddMember(ctx, domain.MemberSetLikedBy, itemID, userID); err != nil {
				return err
			}
			if err := tx.ApplyIncrement(ctx, item.Ref(), domain.FieldLikes, 1); err != nil {
				return err
			}
			item.Likes++
		}

		su, err := s.rescore(ctx, tx, item)
		if err != nil {
			return err
		}
		update = &LikeUpdate{ScoreUpdate: *su, Liked: !liked}
		return nil
	})
	if err != nil {
		s.logger.Error("toggle like failed",
			zap.String("item_id", itemID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Debug("like toggled",
		zap.String("item_id", itemID),
		zap.String("user_id", userID),
		zap.Bool("liked", update.Liked),
		zap.Int("likes", update.Item.Likes),
	)

	s.afterCommit(ctx, &update.ScoreUpdate)

	return update, nil
}

// rescore recomputes the score of a locked item and reconciles the owner's balance.
func (s *ScoringService) rescore(ctx context.Context, tx domain.DocumentStore, item *domain.ContentItem) (*ScoreUpdate, error) {
	delta, err := s.reconciler.ReconcileItemScore(ctx, tx, item, item.CurrentScore())
	if err != nil {
		return nil, err
	}

	return &ScoreUpdate{
		Item:       item,
		RatingMean: item.RatingMean,
		Delta:      delta,
		Counted:    true,
	}, nil
}

// afterCommit runs the best-effort side effects of a committed event.
func (s *ScoringService) afterCommit(ctx context.Context, update *ScoreUpdate) {
	if update.Delta != 0 && s.observer != nil {
		s.observer.BalanceChanged(ctx, update.Item.OwnerID)
	}

	if s.index == nil {
		return
	}
	if err := s.index.UpdateScore(ctx, update.Item); err != nil {
		s.logger.Warn("search index score update failed",
			zap.String("item_id", update.Item.ID),
			zap.Int("score", update.Item.DerivedScore),
			zap.Error(err),
		)
	}
}
