package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"content-scoring-service/internal/domain"
	"content-scoring-service/internal/infra/memstore"
)

type fakeIndex struct {
	mu      sync.Mutex
	updates map[string]int
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{updates: make(map[string]int)}
}

func (f *fakeIndex) UpdateScore(_ context.Context, item *domain.ContentItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.updates[item.ID] = item.DerivedScore
	return nil
}

func (f *fakeIndex) HealthCheck(context.Context) error { return f.err }

func (f *fakeIndex) score(id string) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.updates[id]
	return s, ok
}

type recordingObserver struct {
	mu      sync.Mutex
	changed []string
}

func (o *recordingObserver) BalanceChanged(_ context.Context, userID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.changed = append(o.changed, userID)
}

func (o *recordingObserver) calls() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.changed...)
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.data[key], nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	return nil
}

type fixture struct {
	store    *memstore.Store
	index    *fakeIndex
	observer *recordingObserver
	scoring  *ScoringService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	index := newFakeIndex()
	observer := &recordingObserver{}

	return &fixture{
		store:    store,
		index:    index,
		observer: observer,
		scoring:  NewScoringService(store, index, observer, zap.NewNop()),
	}
}

func (f *fixture) upload(t *testing.T, owner string, kind domain.ContentKind) *domain.ContentItem {
	t.Helper()

	item, err := f.scoring.CreateItem(context.Background(), owner, NewItemInput{
		Kind:  kind,
		Title: "Higher math chapter 5",
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) balance(t *testing.T, userID string) int64 {
	t.Helper()

	u, err := f.store.GetUser(context.Background(), userID)
	require.NoError(t, err)
	return u.PointBalance
}

func (f *fixture) item(t *testing.T, id string) *domain.ContentItem {
	t.Helper()

	it, err := f.store.GetItem(context.Background(), id)
	require.NoError(t, err)
	return it
}
