// Package memstore provides an in-memory document store.
// It backs the service tests and local runs without PostgreSQL.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"content-scoring-service/internal/domain"
)

// FaultFunc is consulted before every store operation.
// A non-nil return makes the operation fail with that error wrapped as a StoreError.
type FaultFunc func(op string) error

type (
	// Store is a mutex-guarded in-memory implementation of domain.Store.
	Store struct {
		mu    sync.Mutex
		st    *state
		fault FaultFunc
	}

	state struct {
		items   map[string]*domain.ContentItem
		users   map[string]*domain.User
		members map[domain.MemberSet]map[string]map[string]struct{}
	}
)

// New creates an empty store.
func New() *Store {
	return &Store{st: newState()}
}

func newState() *state {
	return &state{
		items: make(map[string]*domain.ContentItem),
		users: make(map[string]*domain.User),
		members: map[domain.MemberSet]map[string]map[string]struct{}{
			domain.MemberSetLikedBy:      {},
			domain.MemberSetDownloadedBy: {},
		},
	}
}

// clone deep-copies the state so a transaction can be discarded on error.
func (s *state) clone() *state {
	c := newState()
	for id, it := range s.items {
		c.items[id] = copyItem(it)
	}
	for id, u := range s.users {
		cu := *u
		c.users[id] = &cu
	}
	for set, byItem := range s.members {
		for itemID, userIDs := range byItem {
			m := make(map[string]struct{}, len(userIDs))
			for uid := range userIDs {
				m[uid] = struct{}{}
			}
			c.members[set][itemID] = m
		}
	}
	return c
}

// SetFault installs a fault hook. Pass nil to clear it.
func (s *Store) SetFault(fn FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

func (s *Store) view() *view {
	return &view{st: s.st, fault: s.fault}
}

// GetItem retrieves a content item.
func (s *Store) GetItem(ctx context.Context, id string) (*domain.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().GetItem(ctx, id)
}

// GetItemForUpdate retrieves a content item. Single operations are already serialized.
func (s *Store) GetItemForUpdate(ctx context.Context, id string) (*domain.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().GetItemForUpdate(ctx, id)
}

// GetUser retrieves a user.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().GetUser(ctx, id)
}

// GetUserForUpdate retrieves a user.
func (s *Store) GetUserForUpdate(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().GetUserForUpdate(ctx, id)
}

// EnsureUser returns the user, creating it if absent.
func (s *Store) EnsureUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().EnsureUser(ctx, id)
}

// CreateItem persists a new item.
func (s *Store) CreateItem(ctx context.Context, item *domain.ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CreateItem(ctx, item)
}

// ApplyIncrement atomically adds delta to a numeric field.
func (s *Store) ApplyIncrement(ctx context.Context, ref domain.DocumentRef, field domain.Field, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().ApplyIncrement(ctx, ref, field, delta)
}

// SetFields writes several fields of one document.
func (s *Store) SetFields(ctx context.Context, ref domain.DocumentRef, fields domain.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().SetFields(ctx, ref, fields)
}

// AddMember adds a user to an item's set.
func (s *Store) AddMember(ctx context.Context, set domain.MemberSet, itemID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().AddMember(ctx, set, itemID, userID)
}

// RemoveMember removes a user from an item's set.
func (s *Store) RemoveMember(ctx context.Context, set domain.MemberSet, itemID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().RemoveMember(ctx, set, itemID, userID)
}

// HasMember reports set membership.
func (s *Store) HasMember(ctx context.Context, set domain.MemberSet, itemID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().HasMember(ctx, set, itemID, userID)
}

// WithinTx runs fn against a private copy of the state and commits it only if fn succeeds.
// Transactions are fully serialized.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.DocumentStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.st.clone()
	if err := fn(ctx, &view{st: staged, fault: s.fault}); err != nil {
		return err
	}
	s.st = staged

	return nil
}

// ListItemsByOwner returns the owner's items, highest score first.
func (s *Store) ListItemsByOwner(ctx context.Context, ownerID string) ([]*domain.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.view()
	if err := v.check(ctx, "list items by owner"); err != nil {
		return nil, err
	}

	items := make([]*domain.ContentItem, 0)
	for _, it := range s.st.items {
		if it.OwnerID == ownerID {
			items = append(items, copyItem(it))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].DerivedScore != items[j].DerivedScore {
			return items[i].DerivedScore > items[j].DerivedScore
		}
		return items[i].ID < items[j].ID
	})

	return items, nil
}

// ListUsers returns a page of users ordered by ID.
func (s *Store) ListUsers(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.view().check(ctx, "list users"); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(s.st.users))
	for id := range s.st.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if offset >= len(ids) {
		return []*domain.User{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(ids) {
		end = len(ids)
	}

	users := make([]*domain.User, 0, end-offset)
	for _, id := range ids[offset:end] {
		u := *s.st.users[id]
		users = append(users, &u)
	}

	return users, nil
}

// SumDerivedScores sums DerivedScore over the owner's items.
func (s *Store) SumDerivedScores(ctx context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().SumDerivedScores(ctx, ownerID)
}

// view implements domain.DocumentStore over a state without locking.
// The caller holds the store mutex.
type view struct {
	st    *state
	fault FaultFunc
}

func (v *view) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError(op, err)
	}
	if v.fault != nil {
		if err := v.fault(op); err != nil {
			return domain.NewStoreError(op, err)
		}
	}
	return nil
}

func (v *view) GetItem(ctx context.Context, id string) (*domain.ContentItem, error) {
	if err := v.check(ctx, "get item"); err != nil {
		return nil, err
	}
	it, ok := v.st.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return copyItem(it), nil
}

func (v *view) GetItemForUpdate(ctx context.Context, id string) (*domain.ContentItem, error) {
	return v.GetItem(ctx, id)
}

func (v *view) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := v.check(ctx, "get user"); err != nil {
		return nil, err
	}
	u, ok := v.st.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cu := *u
	return &cu, nil
}

func (v *view) GetUserForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return v.GetUser(ctx, id)
}

func (v *view) SumDerivedScores(ctx context.Context, ownerID string) (int64, error) {
	if err := v.check(ctx, "sum derived scores"); err != nil {
		return 0, err
	}

	var sum int64
	for _, it := range v.st.items {
		if it.OwnerID == ownerID {
			sum += int64(it.DerivedScore)
		}
	}

	return sum, nil
}

func (v *view) EnsureUser(ctx context.Context, id string) (*domain.User, error) {
	if err := v.check(ctx, "ensure user"); err != nil {
		return nil, err
	}
	u, ok := v.st.users[id]
	if !ok {
		u = domain.NewUser(id)
		v.st.users[id] = u
	}
	cu := *u
	return &cu, nil
}

func (v *view) CreateItem(ctx context.Context, item *domain.ContentItem) error {
	if err := v.check(ctx, "create item"); err != nil {
		return err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if _, exists := v.st.items[item.ID]; exists {
		return domain.NewStoreError("create item", fmt.Errorf("duplicate item id %s", item.ID))
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	v.st.items[item.ID] = copyItem(item)
	return nil
}

func (v *view) ApplyIncrement(ctx context.Context, ref domain.DocumentRef, field domain.Field, delta int64) error {
	if err := domain.ValidateIncrement(ref, field); err != nil {
		return err
	}
	if err := v.check(ctx, "apply increment"); err != nil {
		return err
	}

	switch ref.Collection {
	case domain.CollectionItems:
		it, ok := v.st.items[ref.ID]
		if !ok {
			return domain.ErrItemNotFound
		}
		switch field {
		case domain.FieldRatingCount:
			it.RatingCount = clampCounter(it.RatingCount, delta)
		case domain.FieldDownloads:
			it.Downloads = clampCounter(it.Downloads, delta)
		case domain.FieldLikes:
			it.Likes = clampCounter(it.Likes, delta)
		case domain.FieldDerivedScore:
			it.DerivedScore += int(delta)
		}
		it.UpdatedAt = time.Now().UTC()
	case domain.CollectionUsers:
		u, ok := v.st.users[ref.ID]
		if !ok {
			return domain.ErrUserNotFound
		}
		u.PointBalance += delta
		u.UpdatedAt = time.Now().UTC()
	}

	return nil
}

func (v *view) SetFields(ctx context.Context, ref domain.DocumentRef, fields domain.Fields) error {
	if err := domain.ValidateFields(ref, fields); err != nil {
		return err
	}
	if err := v.check(ctx, "set fields"); err != nil {
		return err
	}

	switch ref.Collection {
	case domain.CollectionItems:
		it, ok := v.st.items[ref.ID]
		if !ok {
			return domain.ErrItemNotFound
		}
		// Apply to a copy so a bad value leaves the document untouched.
		updated := copyItem(it)
		for f, val := range fields {
			if err := setItemField(updated, f, val); err != nil {
				return err
			}
		}
		updated.UpdatedAt = time.Now().UTC()
		v.st.items[ref.ID] = updated
	case domain.CollectionUsers:
		u, ok := v.st.users[ref.ID]
		if !ok {
			return domain.ErrUserNotFound
		}
		updated := *u
		for f, val := range fields {
			if err := setUserField(&updated, f, val); err != nil {
				return err
			}
		}
		updated.UpdatedAt = time.Now().UTC()
		v.st.users[ref.ID] = &updated
	}

	return nil
}

func (v *view) AddMember(ctx context.Context, set domain.MemberSet, itemID, userID string) (bool, error) {
	members, err := v.memberSet(ctx, "add member", set, itemID)
	if err != nil {
		return false, err
	}
	if _, ok := members[userID]; ok {
		return false, nil
	}
	members[userID] = struct{}{}
	return true, nil
}

func (v *view) RemoveMember(ctx context.Context, set domain.MemberSet, itemID, userID string) (bool, error) {
	members, err := v.memberSet(ctx, "remove member", set, itemID)
	if err != nil {
		return false, err
	}
	if _, ok := members[userID]; !ok {
		return false, nil
	}
	delete(members, userID)
	return true, nil
}

func (v *view) HasMember(ctx context.Context, set domain.MemberSet, itemID, userID string) (bool, error) {
	members, err := v.memberSet(ctx, "has member", set, itemID)
	if err != nil {
		return false, err
	}
	_, ok := members[userID]
	return ok, nil
}

func (v *view) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.DocumentStore) error) error {
	return fn(ctx, v)
}

func (v *view) memberSet(ctx context.Context, op string, set domain.MemberSet, itemID string) (map[string]struct{}, error) {
	if !set.IsValid() {
		return nil, fmt.Errorf("%w: member set %q", domain.ErrUnknownField, set)
	}
	if err := v.check(ctx, op); err != nil {
		return nil, err
	}
	if _, ok := v.st.items[itemID]; !ok {
		return nil, domain.ErrItemNotFound
	}
	members, ok := v.st.members[set][itemID]
	if !ok {
		members = make(map[string]struct{})
		v.st.members[set][itemID] = members
	}
	return members, nil
}

func copyItem(it *domain.ContentItem) *domain.ContentItem {
	c := *it
	if it.Tags != nil {
		c.Tags = append([]string(nil), it.Tags...)
	}
	return &c
}

// clampCounter applies delta without going below zero.
func clampCounter(current int, delta int64) int {
	next := int64(current) + delta
	if next < 0 {
		return 0
	}
	return int(next)
}
