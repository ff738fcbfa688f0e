package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/duelcast/duelcast/internal/model"
)

// Source provides random card artifacts for duels.
// One call returns one artifact image URL.
type Source interface {
	RandomCard(ctx context.Context) (string, error)
}

// Config holds settings for the HTTP card-catalog client
type Config struct {
	// URL is the single-artifact-per-call endpoint
	URL string
	// RequestTimeout bounds each individual fetch attempt
	RequestTimeout time.Duration
	// MaxAttempts bounds retries against the unreliable upstream
	MaxAttempts int
	// RetryDelay is the pause between attempts
	RetryDelay time.Duration
}

// DefaultConfig returns sensible defaults for the catalog client
func DefaultConfig() Config {
	return Config{
		URL:            "https://db.ygoprodeck.com/api/v7/randomcard.php",
		RequestTimeout: 5 * time.Second,
		MaxAttempts:    3,
		RetryDelay:     250 * time.Millisecond,
	}
}

// Client fetches random cards from the external catalog endpoint
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// Ensure Client implements Source
var _ Source = (*Client)(nil)

// NewClient creates a catalog client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger.With(slog.String("component", "catalog")),
	}
}

// cardRecord mirrors the catalog's response shape
type cardRecord struct {
	CardImages []struct {
		ImageURL string `json:"image_url"`
	} `json:"card_images"`
}

// RandomCard fetches one random card artifact, retrying a bounded number of
// times, and returns its image URL
func (c *Client) RandomCard(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %w", model.ErrExternalFetch, ctx.Err())
			}
		}

		url, err := c.fetch(ctx)
		if err == nil {
			return url, nil
		}
		lastErr = err
		c.logger.Warn("card fetch attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
	}
	return "", fmt.Errorf("%w: %w", model.ErrExternalFetch, lastErr)
}

func (c *Client) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var record cardRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return "", fmt.Errorf("decode card record: %w", err)
	}
	if len(record.CardImages) == 0 || record.CardImages[0].ImageURL == "" {
		return "", fmt.Errorf("card record has no image")
	}
	return record.CardImages[0].ImageURL, nil
}
