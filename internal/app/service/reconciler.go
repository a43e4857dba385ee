// Package service provides application use cases.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"content-scoring-service/internal/domain"
)

// Reconciler keeps a user's point balance in step with the scores of their items.
type Reconciler struct {
	logger *zap.Logger
}

// NewReconciler creates a new Reconciler.
func NewReconciler(logger *zap.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// ReconcileItemScore moves item to newScore and credits the owner with the difference.
// item must have been read with GetItemForUpdate in tx, so its DerivedScore is the
// persisted value; it is updated in place. Repeated calls with the same score are
// no-ops. Returns the applied delta.
//
// The balance is written before the score. A reader holding the owner's row lock
// therefore never observes a score change without its balance change.
func (r *Reconciler) ReconcileItemScore(ctx context.Context, tx domain.DocumentStore, item *domain.ContentItem, newScore int) (int64, error) {
	delta := int64(newScore - item.DerivedScore)
	if delta == 0 {
		return 0, nil
	}

	if err := tx.ApplyIncrement(ctx, domain.UserRef(item.OwnerID), domain.FieldPointBalance, delta); err != nil {
		return 0, fmt.Errorf("credit owner %s: %w", item.OwnerID, err)
	}
	if err := tx.SetFields(ctx, item.Ref(), domain.Fields{domain.FieldDerivedScore: newScore}); err != nil {
		return 0, fmt.Errorf("store derived score: %w", err)
	}

	r.logger.Debug("item score reconciled",
		zap.String("item_id", item.ID),
		zap.String("owner_id", item.OwnerID),
		zap.Int("old_score", item.DerivedScore),
		zap.Int("new_score", newScore),
		zap.Int64("delta", delta),
	)

	item.DerivedScore = newScore

	return delta, nil
}
