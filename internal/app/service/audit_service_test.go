package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"content-scoring-service/internal/domain"
	"content-scoring-service/internal/infra/memstore"
)

// interleavingStore runs between once, after the audit has listed users and
// before it checks any of them.
type interleavingStore struct {
	*memstore.Store
	between func()
}

func (s *interleavingStore) ListUsers(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	users, err := s.Store.ListUsers(ctx, offset, limit)
	if err == nil && s.between != nil {
		run := s.between
		s.between = nil
		run()
	}
	return users, err
}

func TestAuditService_NoDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.upload(t, "alice", domain.ContentKindNote)
	f.upload(t, "bob", domain.ContentKindQuestion)
	_, err := f.scoring.SubmitRating(ctx, item.ID, 4)
	require.NoError(t, err)

	svc := NewAuditService(f.store, nil, zap.NewNop())

	report, err := svc.Audit(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.UsersChecked)
	assert.Empty(t, report.Drifts)
}

func TestAuditService_DetectsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.upload(t, "alice", domain.ContentKindNote)
	require.NoError(t, f.store.ApplyIncrement(ctx, domain.UserRef("alice"), domain.FieldPointBalance, 7))

	svc := NewAuditService(f.store, nil, zap.NewNop())

	report, err := svc.Audit(ctx, false)
	require.NoError(t, err)
	require.Len(t, report.Drifts, 1)

	d := report.Drifts[0]
	assert.Equal(t, "alice", d.UserID)
	assert.Equal(t, int64(17), d.Balance)
	assert.Equal(t, int64(10), d.Expected)
	assert.Equal(t, int64(7), d.Diff())
	assert.False(t, d.Repaired)
	assert.Equal(t, int64(17), f.balance(t, "alice"))
}

func TestAuditService_Repairs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.upload(t, "alice", domain.ContentKindNote)
	f.upload(t, "bob", domain.ContentKindQuestion)
	require.NoError(t, f.store.ApplyIncrement(ctx, domain.UserRef("bob"), domain.FieldPointBalance, -5))

	observer := &recordingObserver{}
	svc := NewAuditService(f.store, observer, zap.NewNop())

	report, err := svc.Audit(ctx, true)
	require.NoError(t, err)
	require.Len(t, report.Drifts, 1)
	assert.True(t, report.Drifts[0].Repaired)
	assert.Equal(t, 1, report.Repaired())
	assert.Equal(t, int64(15), f.balance(t, "bob"))
	assert.Equal(t, []string{"bob"}, observer.calls())

	again, err := svc.Audit(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, again.Drifts)
}

func TestAuditService_Paginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		f.upload(t, fmt.Sprintf("user-%02d", i), domain.ContentKindNote)
	}

	svc := NewAuditService(f.store, nil, zap.NewNop())
	svc.pageSize = 3

	report, err := svc.Audit(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 7, report.UsersChecked)
}

func TestAuditService_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.upload(t, "alice", domain.ContentKindNote)
	f.store.SetFault(func(op string) error {
		if op == "sum derived scores" {
			return errors.New("timeout")
		}
		return nil
	})

	svc := NewAuditService(f.store, nil, zap.NewNop())

	_, err := svc.Audit(context.Background(), false)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestAuditService_EventsAfterListingAreNotDrift(t *testing.T) {
	tests := []struct {
		name    string
		toggles int
	}{
		{name: "score change", toggles: 1},
		{name: "score change and reversal", toggles: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			item := f.upload(t, "alice", domain.ContentKindNote)

			store := &interleavingStore{Store: f.store}
			store.between = func() {
				for i := 0; i < tt.toggles; i++ {
					_, err := f.scoring.ToggleLike(ctx, item.ID, "reader")
					require.NoError(t, err)
				}
			}

			observer := &recordingObserver{}
			svc := NewAuditService(store, observer, zap.NewNop())

			report, err := svc.Audit(ctx, true)
			require.NoError(t, err)
			assert.Empty(t, report.Drifts)
			assert.Empty(t, observer.calls())

			sum, err := f.store.SumDerivedScores(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, sum, f.balance(t, "alice"))
			assert.Equal(t, int64(f.item(t, item.ID).DerivedScore), sum)
		})
	}
}

func TestAuditService_RepairUsesCurrentSum(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.upload(t, "alice", domain.ContentKindNote)
	require.NoError(t, f.store.ApplyIncrement(ctx, domain.UserRef("alice"), domain.FieldPointBalance, 7))

	// The like moves score and balance together, so the drift stays 7
	// but the expected value is the post-like sum.
	store := &interleavingStore{Store: f.store}
	store.between = func() {
		_, err := f.scoring.ToggleLike(ctx, item.ID, "reader")
		require.NoError(t, err)
	}

	svc := NewAuditService(store, nil, zap.NewNop())

	report, err := svc.Audit(ctx, true)
	require.NoError(t, err)
	require.Len(t, report.Drifts, 1)

	want := int64(domain.ComputeScore(domain.ContentKindNote, 0, 0, 1))
	assert.Equal(t, want, report.Drifts[0].Expected)
	assert.Equal(t, int64(7), report.Drifts[0].Diff())
	assert.True(t, report.Drifts[0].Repaired)
	assert.Equal(t, want, f.balance(t, "alice"))
}
