package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"content-scoring-service/internal/domain"
)

const defaultAuditPageSize = 200

// BalanceDrift is a user whose point balance disagrees with the scores of their items.
type BalanceDrift struct {
	UserID   string `json:"user_id"`
	Balance  int64  `json:"balance"`
	Expected int64  `json:"expected"`
	Repaired bool   `json:"repaired"`
}

// Diff returns how far the balance is above the expected value.
func (d BalanceDrift) Diff() int64 {
	return d.Balance - d.Expected
}

// AuditReport holds the result of an audit run.
type AuditReport struct {
	UsersChecked int            `json:"users_checked"`
	Drifts       []BalanceDrift `json:"drifts"`
	Duration     time.Duration  `json:"duration"`
}

// Repaired returns the number of drifts that were fixed.
func (r *AuditReport) Repaired() int {
	n := 0
	for _, d := range r.Drifts {
		if d.Repaired {
			n++
		}
	}
	return n
}

// AuditService checks that every point balance equals the sum of the user's item scores.
type AuditService struct {
	store    domain.Store
	observer BalanceObserver
	pageSize int
	logger   *zap.Logger
}

// NewAuditService creates a new AuditService.
// observer may be nil.
func NewAuditService(store domain.Store, observer BalanceObserver, logger *zap.Logger) *AuditService {
	return &AuditService{
		store:    store,
		observer: observer,
		pageSize: defaultAuditPageSize,
		logger:   logger,
	}
}

// Audit scans all users and reports balance drift. With repair set, drifted
// balances are reset to the expected value.
func (s *AuditService) Audit(ctx context.Context, repair bool) (*AuditReport, error) {
	start := time.Now()
	report := &AuditReport{Drifts: []BalanceDrift{}}

	s.logger.Info("starting balance audit", zap.Bool("repair", repair))

	for offset := 0; ; offset += s.pageSize {
		users, err := s.store.ListUsers(ctx, offset, s.pageSize)
		if err != nil {
			s.logger.Error("audit list users failed", zap.Int("offset", offset), zap.Error(err))
			return nil, err
		}

		for _, u := range users {
			drift, err := s.checkUser(ctx, u.ID, repair)
			if err != nil {
				return nil, err
			}
			report.UsersChecked++
			if drift != nil {
				report.Drifts = append(report.Drifts, *drift)
			}
		}

		if len(users) < s.pageSize {
			break
		}
	}

	report.Duration = time.Since(start)

	s.logger.Info("balance audit completed",
		zap.Int("users_checked", report.UsersChecked),
		zap.Int("drifts", len(report.Drifts)),
		zap.Int("repaired", report.Repaired()),
		zap.Duration("duration", report.Duration),
	)

	return report, nil
}

// checkUser compares the balance with the item scores inside one transaction that
// holds the user row lock, so no score change can land between the two reads.
// With repair set the balance is reset in the same transaction.
func (s *AuditService) checkUser(ctx context.Context, userID string, repair bool) (*BalanceDrift, error) {
	var drift *BalanceDrift

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.DocumentStore) error {
		drift = nil

		u, err := tx.GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		expected, err := tx.SumDerivedScores(ctx, userID)
		if err != nil {
			return err
		}
		if u.PointBalance == expected {
			return nil
		}

		drift = &BalanceDrift{UserID: userID, Balance: u.PointBalance, Expected: expected}
		if !repair {
			return nil
		}

		if err := tx.SetFields(ctx, domain.UserRef(userID), domain.Fields{
			domain.FieldPointBalance: expected,
		}); err != nil {
			return err
		}
		drift.Repaired = true
		return nil
	})
	if err != nil {
		s.logger.Error("audit user check failed",
			zap.String("user_id", userID),
			zap.Bool("repair", repair),
			zap.Error(err),
		)
		return nil, err
	}
	if drift == nil {
		return nil, nil
	}

	s.logger.Warn("inconsistent point balance",
		zap.String("user_id", userID),
		zap.Int64("balance", drift.Balance),
		zap.Int64("expected", drift.Expected),
		zap.Int64("diff", drift.Diff()),
	)

	if drift.Repaired {
		s.logger.Info("point balance repaired",
			zap.String("user_id", userID),
			zap.Int64("from", drift.Balance),
			zap.Int64("to", drift.Expected),
		)
		if s.observer != nil {
			s.observer.BalanceChanged(ctx, userID)
		}
	}

	return drift, nil
}
