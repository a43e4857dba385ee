package domain

import (
	"context"
	"time"
)

// DocumentStore is the persistence collaborator for items and users.
// Implementations: internal/infra/postgres/store.go, internal/infra/memstore/store.go
type DocumentStore interface {
	// GetItem retrieves a content item. Returns ErrItemNotFound if absent.
	GetItem(ctx context.Context, id string) (*ContentItem, error)

	// GetItemForUpdate retrieves a content item and locks it until the
	// surrounding transaction ends. Outside WithinTx it behaves like GetItem.
	GetItemForUpdate(ctx context.Context, id string) (*ContentItem, error)

	// GetUser retrieves a user. Returns ErrUserNotFound if absent.
	GetUser(ctx context.Context, id string) (*User, error)

	// GetUserForUpdate retrieves a user and locks the row until the
	// surrounding transaction ends. Outside WithinTx it behaves like GetUser.
	GetUserForUpdate(ctx context.Context, id string) (*User, error)

	// SumDerivedScores returns the sum of DerivedScore over a user's items.
	SumDerivedScores(ctx context.Context, ownerID string) (int64, error)

	// EnsureUser returns the user, creating it with defaults if absent.
	EnsureUser(ctx context.Context, id string) (*User, error)

	// CreateItem persists a new item and assigns its ID if empty.
	CreateItem(ctx context.Context, item *ContentItem) error

	// ApplyIncrement atomically adds delta to a numeric field.
	ApplyIncrement(ctx context.Context, ref DocumentRef, field Field, delta int64) error

	// SetFields writes several fields of one document.
	SetFields(ctx context.Context, ref DocumentRef, fields Fields) error

	// AddMember adds userID to one of the item's user sets.
	// Returns false if the user was already a member.
	AddMember(ctx context.Context, set MemberSet, itemID, userID string) (bool, error)

	// RemoveMember removes userID from one of the item's user sets.
	// Returns false if the user was not a member.
	RemoveMember(ctx context.Context, set MemberSet, itemID, userID string) (bool, error)

	// HasMember reports whether userID belongs to the item's user set.
	HasMember(ctx context.Context, set MemberSet, itemID, userID string) (bool, error)

	// WithinTx runs fn in a single transaction. All writes made through tx
	// are applied together or not at all.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DocumentStore) error) error
}

// ScoreLedger provides the listing queries used by dashboards and the balance audit.
type ScoreLedger interface {
	// ListItemsByOwner returns all items uploaded by a user, highest score first.
	ListItemsByOwner(ctx context.Context, ownerID string) ([]*ContentItem, error)

	// ListUsers returns a page of users ordered by ID.
	ListUsers(ctx context.Context, offset, limit int) ([]*User, error)
}

// Store combines the write and read sides of persistence.
type Store interface {
	DocumentStore
	ScoreLedger
}

// SearchIndex receives score updates so search ranking follows the points.
// Implementations: internal/infra/searchindex/client.go
type SearchIndex interface {
	// UpdateScore pushes the item's current score and engagement counters.
	UpdateScore(ctx context.Context, item *ContentItem) error

	// HealthCheck verifies the index is reachable.
	HealthCheck(ctx context.Context) error
}

// Cache defines the interface for caching operations.
// Implementations: internal/infra/redis/cache.go
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all cached values.
	Clear(ctx context.Context) error
}
