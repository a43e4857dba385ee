package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"content-scoring-service/internal/domain"
)

const earningsCacheKey = "earnings:"

// ItemPoints pairs an item with its score breakdown and earnings.
type ItemPoints struct {
	Item      *domain.ContentItem    `json:"item"`
	Breakdown domain.PointsBreakdown `json:"breakdown"`
	Earnings  string                 `json:"earnings"`
}

// Dashboard is a user's points overview.
type Dashboard struct {
	Earnings *domain.Earnings `json:"earnings"`
	Items    []ItemPoints     `json:"items"`
}

// EarningsService serves the read side: balances, earnings and per-item breakdowns.
type EarningsService struct {
	store  domain.Store
	cache  domain.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewEarningsService creates a new EarningsService.
// cache may be nil to disable caching.
func NewEarningsService(store domain.Store, cache domain.Cache, ttl time.Duration, logger *zap.Logger) *EarningsService {
	return &EarningsService{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// GetUser returns a user.
func (s *EarningsService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.GetUser(ctx, userID)
}

// GetItem returns an item.
func (s *EarningsService) GetItem(ctx context.Context, itemID string) (*domain.ContentItem, error) {
	return s.store.GetItem(ctx, itemID)
}

// GetUserEarnings returns the user's points and their currency value.
func (s *EarningsService) GetUserEarnings(ctx context.Context, userID string) (*domain.Earnings, error) {
	if cached := s.cachedEarnings(ctx, userID); cached != nil {
		return cached, nil
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	earnings := domain.NewEarnings(user)
	s.storeEarnings(ctx, &earnings)

	return &earnings, nil
}

// MonthlyEarnings is not supported; it reports ErrMonthlyEarningsUnsupported for known users.
func (s *EarningsService) MonthlyEarnings(ctx context.Context, userID string) (decimal.Decimal, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	return domain.MonthlyEarnings(user)
}

// GetItemPoints returns the score breakdown of one item.
func (s *EarningsService) GetItemPoints(ctx context.Context, itemID string) (*ItemPoints, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	points := itemPoints(item)
	return &points, nil
}

// ListItemsByOwner returns the owner's items with their breakdowns, highest score first.
func (s *EarningsService) ListItemsByOwner(ctx context.Context, ownerID string) ([]ItemPoints, error) {
	items, err := s.store.ListItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := make([]ItemPoints, 0, len(items))
	for _, it := range items {
		result = append(result, itemPoints(it))
	}

	return result, nil
}

// Dashboard returns the user's earnings together with their items.
func (s *EarningsService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	earnings, err := s.GetUserEarnings(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.ListItemsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{Earnings: earnings, Items: items}, nil
}

// BalanceChanged drops the cached earnings of the user.
func (s *EarningsService) BalanceChanged(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, earningsCacheKey+userID); err != nil {
		s.logger.Warn("earnings cache invalidation failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

func (s *EarningsService) cachedEarnings(ctx context.Context, userID string) *domain.Earnings {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, earningsCacheKey+userID)
	if err != nil || data == nil {
		return nil
	}

	var earnings domain.Earnings
	if err := json.Unmarshal(data, &earnings); err != nil {
		s.logger.Warn("discarding malformed cached earnings",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil
	}

	return &earnings
}

func (s *EarningsService) storeEarnings(ctx context.Context, earnings *domain.Earnings) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(earnings)
	if err != nil {
		return
	}
	// Set failures are logged by the cache.
	_ = s.cache.Set(ctx, earningsCacheKey+earnings.UserID, data, s.ttl)
}

func itemPoints(item *domain.ContentItem) ItemPoints {
	b := domain.Breakdown(item.Kind, item.RatingMean, item.Downloads, item.Likes)
	return ItemPoints{
		Item:      item,
		Breakdown: b,
		Earnings:  domain.ToEarnings(int64(b.TotalPoints)).StringFixed(2),
	}
}
