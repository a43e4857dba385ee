// Package searchindex pushes item scores to the external search index so that
// ranking follows the points.
package searchindex

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"content-scoring-service/internal/domain"
)

const (
	partialUpdatePath = "/1/indexes/{index}/{objectID}/partial"
	healthPath        = "/1/isalive"

	headerAPIKey = "X-Algolia-API-Key"
	headerAppID  = "X-Algolia-Application-Id"
)

// Config holds search index client configuration.
type Config struct {
	BaseURL string
	Index   string
	AppID   string
	APIKey  string
	Timeout time.Duration
	Retry   RetryConfig
	CB      CBConfig
}

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts int
	WaitTime    time.Duration
	MaxWaitTime time.Duration
}

// CBConfig holds circuit breaker configuration.
type CBConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
}

// Client implements domain.SearchIndex over the index REST API.
type Client struct {
	index  string
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new search index client.
func New(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		index:  cfg.Index,
		client: newRestyClient(cfg),
		cb:     newCircuitBreaker("search_index", cfg.CB, logger),
		logger: logger,
	}
}

func newRestyClient(cfg Config) *resty.Client {
	return resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader(headerAPIKey, cfg.APIKey).
		SetHeader(headerAppID, cfg.AppID).
		SetRetryCount(cfg.Retry.MaxAttempts).
		SetRetryWaitTime(cfg.Retry.WaitTime).
		SetRetryMaxWaitTime(cfg.Retry.MaxWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
}

func newCircuitBreaker(name string, cfg CBConfig, logger *zap.Logger) *gobreaker.CircuitBreaker[*resty.Response] {
	return gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// UpdateScore writes the item's score and engagement counters to its index record.
func (c *Client) UpdateScore(ctx context.Context, item *domain.ContentItem) error {
	_, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := c.client.R().
			SetContext(ctx).
			SetPathParams(map[string]string{
				"index":    c.index,
				"objectID": item.ID,
			}).
			SetQueryParam("createIfNotExists", "false").
			SetBody(newScoreUpdate(item)).
			Post(partialUpdatePath)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("search index returned status %d", r.StatusCode())
		}
		return r, nil
	})
	if err != nil {
		return fmt.Errorf("updating score of %s: %w", item.ID, err)
	}

	c.logger.Debug("search index score updated",
		zap.String("item_id", item.ID),
		zap.Int("score", item.DerivedScore),
	)

	return nil
}

// HealthCheck verifies the index is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(healthPath)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}

// State returns the circuit breaker state.
func (c *Client) State() gobreaker.State {
	return c.cb.State()
}
