package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"content-scoring-service/internal/domain"
)

// counterFields never drop below zero.
var counterFields = map[domain.Field]bool{
	domain.FieldRatingCount: true,
	domain.FieldDownloads:   true,
	domain.FieldLikes:       true,
}

// Store implements domain.Store using PostgreSQL.
// A Store created by WithinTx is bound to that transaction.
type Store struct {
	db   *gorm.DB
	inTx bool
}

// NewStore creates a new PostgreSQL store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetItem retrieves a content item.
func (s *Store) GetItem(ctx context.Context, id string) (*domain.ContentItem, error) {
	return s.getItem(ctx, id, false)
}

// GetItemForUpdate retrieves a content item with a row lock held until the transaction ends.
func (s *Store) GetItemForUpdate(ctx context.Context, id string) (*domain.ContentItem, error) {
	return s.getItem(ctx, id, s.inTx)
}

func (s *Store) getItem(ctx context.Context, id string, lock bool) (*domain.ContentItem, error) {
	query := s.db.WithContext(ctx)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model ContentItemModel
	if err := query.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, domain.NewStoreError("get item", err)
	}

	return model.ToDomain(), nil
}

// GetUser retrieves a user.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUser(ctx, id, false)
}

// GetUserForUpdate retrieves a user with a row lock held until the transaction ends.
// Score writers increment the balance before touching derived_score, so while the
// lock is held no uncommitted score change exists for this user's items.
func (s *Store) GetUserForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return s.getUser(ctx, id, s.inTx)
}

func (s *Store) getUser(ctx context.Context, id string, lock bool) (*domain.User, error) {
	query := s.db.WithContext(ctx)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model UserModel
	if err := query.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.NewStoreError("get user", err)
	}

	return model.ToDomain(), nil
}

// EnsureUser returns the user, inserting a default row if absent.
func (s *Store) EnsureUser(ctx context.Context, id string) (*domain.User, error) {
	model := UserModel{ID: id, Badge: string(domain.BadgeBronze)}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model).Error
	if err != nil {
		return nil, domain.NewStoreError("ensure user", err)
	}

	return s.GetUser(ctx, id)
}

// CreateItem inserts a new item. An empty ID is replaced by a new UUID.
func (s *Store) CreateItem(ctx context.Context, item *domain.ContentItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	model := itemFromDomain(item)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return domain.NewStoreError("create item", err)
	}

	item.CreatedAt = model.CreatedAt
	item.UpdatedAt = model.UpdatedAt

	return nil
}

// ApplyIncrement adds delta to a numeric column in a single UPDATE.
func (s *Store) ApplyIncrement(ctx context.Context, ref domain.DocumentRef, field domain.Field, delta int64) error {
	if err := domain.ValidateIncrement(ref, field); err != nil {
		return err
	}

	// Column names come from the validated field whitelist.
	col := string(field)
	expr := gorm.Expr(col+" + ?", delta)
	if counterFields[field] {
		expr = gorm.Expr("GREATEST("+col+" + ?, 0)", delta)
	}

	result := s.db.WithContext(ctx).
		Table(tableFor(ref.Collection)).
		Where("id = ?", ref.ID).
		Updates(map[string]any{
			col:          expr,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return domain.NewStoreError("apply increment", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound(ref)
	}

	return nil
}

// SetFields writes several columns of one row.
func (s *Store) SetFields(ctx context.Context, ref domain.DocumentRef, fields domain.Fields) error {
	if err := domain.ValidateFields(ref, fields); err != nil {
		return err
	}

	values := make(map[string]any, len(fields)+1)
	for f, v := range fields {
		if b, ok := v.(domain.Badge); ok {
			v = string(b)
		}
		values[string(f)] = v
	}
	values["updated_at"] = time.Now().UTC()

	result := s.db.WithContext(ctx).
		Table(tableFor(ref.Collection)).
		Where("id = ?", ref.ID).
		Updates(values)
	if result.Error != nil {
		return domain.NewStoreError("set fields", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound(ref)
	}

	return nil
}

// AddMember inserts the membership row if it is not present yet.
func (s *Store) AddMember(ctx context.Context, set domain.MemberSet, itemID, userID string) (bool, error) {
	if !set.IsValid() {
		return false, fmt.Errorf("%w: member set %q", domain.ErrUnknownField, set)
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ItemMemberModel{SetName: string(set), ItemID: itemID, UserID: userID})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return false, domain.ErrItemNotFound
		}
		return false, domain.NewStoreError("add member", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// RemoveMember deletes the membership row.
func (s *Store) RemoveMember(ctx context.Context, set domain.MemberSet, itemID, userID string) (bool, error) {
	if !set.IsValid() {
		return false, fmt.Errorf("%w: member set %q", domain.ErrUnknownField, set)
	}

	result := s.db.WithContext(ctx).
		Where("set_name = ? AND item_id = ? AND user_id = ?", string(set), itemID, userID).
		Delete(&ItemMemberModel{})
	if result.Error != nil {
		return false, domain.NewStoreError("remove member", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// HasMember reports whether the membership row exists.
func (s *Store) HasMember(ctx context.Context, set domain.MemberSet, itemID, userID string) (bool, error) {
	if !set.IsValid() {
		return false, fmt.Errorf("%w: member set %q", domain.ErrUnknownField, set)
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&ItemMemberModel{}).
		Where("set_name = ? AND item_id = ? AND user_id = ?", string(set), itemID, userID).
		Count(&count).Error
	if err != nil {
		return false, domain.NewStoreError("has member", err)
	}

	return count > 0, nil
}

// WithinTx runs fn in a database transaction. Serialization failures and
// deadlocks roll back and rerun fn from the start. Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.DocumentStore) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	return withRetry(ctx, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(ctx, &Store{db: tx, inTx: true})
		})
	})
}

// ListItemsByOwner returns the owner's items, highest score first.
func (s *Store) ListItemsByOwner(ctx context.Context, ownerID string) ([]*domain.ContentItem, error) {
	var models []ContentItemModel
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("derived_score DESC").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, domain.NewStoreError("list items by owner", err)
	}

	items := make([]*domain.ContentItem, len(models))
	for i := range models {
		items[i] = models[i].ToDomain()
	}

	return items, nil
}

// ListUsers returns a page of users ordered by ID.
func (s *Store) ListUsers(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	var models []UserModel
	query := s.db.WithContext(ctx).Order("id ASC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, domain.NewStoreError("list users", err)
	}

	users := make([]*domain.User, len(models))
	for i := range models {
		users[i] = models[i].ToDomain()
	}

	return users, nil
}

// SumDerivedScores sums derived_score over the owner's items.
func (s *Store) SumDerivedScores(ctx context.Context, ownerID string) (int64, error) {
	var sum int64
	err := s.db.WithContext(ctx).
		Model(&ContentItemModel{}).
		Where("owner_id = ?", ownerID).
		Select("COALESCE(SUM(derived_score), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, domain.NewStoreError("sum derived scores", err)
	}

	return sum, nil
}

func notFound(ref domain.DocumentRef) error {
	if ref.Collection == domain.CollectionUsers {
		return domain.ErrUserNotFound
	}
	return domain.ErrItemNotFound
}
