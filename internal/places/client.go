// Package places proxies the Google Places web service.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
	"github.com/mymichiganlake/lakes-server/internal/ratelimit"
)

const (
	// Outbound budget shared by every caller of this process.
	defaultRPS   = 10.0
	defaultBurst = 20
	limiterKey   = "google-places"

	serviceName = "maps provider"

	// NearbyLakesLimit is the number of nearby results returned to clients.
	NearbyLakesLimit = 5

	maxResponseBytes = 4 << 20
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("places: api key not configured")

// Config holds Google Places settings.
type Config struct {
	APIKey       string
	BaseURL      string
	RadiusMeters int
	Timeout      time.Duration
}

// Client is a rate-limited Google Places client. Responses are returned as
// decoded JSON objects so the provider's shape passes through unchanged.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	radius  int
	timeout time.Duration
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a new Places client.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		radius:  cfg.RadiusMeters,
		timeout: cfg.Timeout,
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Autocomplete returns place predictions for free-text input.
func (c *Client) Autocomplete(ctx context.Context, input string) (map[string]any, error) {
	query := url.Values{}
	query.Set("input", input)
	return c.get(ctx, "/maps/api/place/autocomplete/json", query)
}

// PlaceDetails returns the details document for a place id.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (map[string]any, error) {
	query := url.Values{}
	query.Set("place_id", placeID)
	return c.get(ctx, "/maps/api/place/details/json", query)
}

// NearbyLakes searches for lakes around a coordinate. Only the first
// NearbyLakesLimit results are kept.
func (c *Client) NearbyLakes(ctx context.Context, lat, lng float64) (map[string]any, error) {
	query := url.Values{}
	query.Set("location", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))
	query.Set("radius", strconv.Itoa(c.radius))
	query.Set("keyword", "lake")

	resp, err := c.get(ctx, "/maps/api/place/nearbysearch/json", query)
	if err != nil {
		return nil, err
	}

	if results, ok := resp["results"].([]any); ok && len(results) > NearbyLakesLimit {
		resp["results"] = results[:NearbyLakesLimit]
	}
	return resp, nil
}

// get executes a rate-limited request and decodes the JSON object body.
func (c *Client) get(ctx context.Context, path string, query url.Values) (map[string]any, error) {
	if c.apiKey == "" {
		return nil, domainerrors.UpstreamUnavailable(serviceName, ErrNotConfigured)
	}

	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, domainerrors.UpstreamUnavailable(serviceName, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("places request", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domainerrors.UpstreamUnavailable(serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domainerrors.UpstreamUnavailable(serviceName, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domainerrors.UpstreamUnavailable(serviceName, fmt.Errorf("status %d", resp.StatusCode))
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, domainerrors.UpstreamUnavailable(serviceName, fmt.Errorf("parse response: %w", err))
	}
	return out, nil
}
