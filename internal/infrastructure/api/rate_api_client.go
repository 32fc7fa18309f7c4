package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/domain/apperrors"
	"github.com/damon-houk/travel-budget-tracker/internal/domain/entity"
	"github.com/damon-houk/travel-budget-tracker/internal/domain/service"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/cache"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultRateURL is the provider endpoint queried with ?base=<code>
	DefaultRateURL = "https://api.exchangeratesapi.io/latest"
	// DefaultBaseCurrency is the currency every cached rate is quoted against
	DefaultBaseCurrency = "KRW"

	asOfLayout   = "2006-01-02"
	maxBodyBytes = 1 << 20
)

// RateAPIClient implements service.RateFetcher against an exchangeratesapi-style endpoint.
// Each call is a single HTTP attempt. Successful snapshots are cached per base currency per day,
// and concurrent calls while a request is in flight share its result.
type RateAPIClient struct {
	baseURL      string
	baseCurrency string
	httpClient   *http.Client
	cache        *cache.RateSnapshotCache
	group        singleflight.Group
	logger       logger.Logger
	now          func() time.Time
}

var _ service.RateFetcher = (*RateAPIClient)(nil)

// Option configures a RateAPIClient
type Option func(*RateAPIClient)

// WithBaseURL points the client at another provider endpoint
func WithBaseURL(u string) Option {
	return func(c *RateAPIClient) { c.baseURL = u }
}

// WithBaseCurrency sets the base currency sent as ?base=
func WithBaseCurrency(code string) Option {
	return func(c *RateAPIClient) { c.baseCurrency = code }
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *RateAPIClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCache replaces the default snapshot cache
func WithCache(rc *cache.RateSnapshotCache) Option {
	return func(c *RateAPIClient) {
		if rc != nil {
			c.cache = rc
		}
	}
}

// NewRateAPIClient creates a new rate provider client
func NewRateAPIClient(log logger.Logger, opts ...Option) *RateAPIClient {
	c := &RateAPIClient{
		baseURL:      DefaultRateURL,
		baseCurrency: DefaultBaseCurrency,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:  cache.NewRateSnapshotCache(24 * time.Hour),
		logger: logger.Component(log, "rate_api"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RatesResponse is the provider's JSON body
type RatesResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// FetchRates returns the latest snapshot quoting currencyCode against the base currency
func (c *RateAPIClient) FetchRates(ctx context.Context, currencyCode string) (*entity.RateSnapshot, error) {
	today := c.now()

	if snap := c.cache.Get(c.baseCurrency, today); snap != nil {
		c.logger.Debug("Rate snapshot served from cache", map[string]interface{}{
			"base":     c.baseCurrency,
			"currency": currencyCode,
			"as_of":    snap.AsOf.Format(asOfLayout),
		})
		return snap, nil
	}

	v, err, shared := c.group.Do(c.baseCurrency, func() (interface{}, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		c.logger.Warn("Rate request failed", map[string]interface{}{
			"base":     c.baseCurrency,
			"currency": currencyCode,
			"error":    err.Error(),
		})
		return nil, err
	}

	snap := v.(*entity.RateSnapshot)
	c.cache.Put(snap, today)

	c.logger.Info("Rate snapshot fetched", map[string]interface{}{
		"base":     snap.Base,
		"currency": currencyCode,
		"as_of":    snap.AsOf.Format(asOfLayout),
		"quoted":   len(snap.Rates),
		"shared":   shared,
	})

	return snap, nil
}

func (c *RateAPIClient) fetch(ctx context.Context) (*entity.RateSnapshot, error) {
	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid rate url %q: %w", apperrors.ErrNetwork, c.baseURL, err)
	}
	query := reqURL.Query()
	query.Set("base", c.baseCurrency)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", apperrors.ErrNetwork, err)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", apperrors.ErrNetwork, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", apperrors.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: provider returned status %d", apperrors.ErrNetwork, resp.StatusCode)
	}

	var ratesResp RatesResponse
	if err := json.Unmarshal(body, &ratesResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", apperrors.ErrDecode, err)
	}
	if ratesResp.Rates == nil {
		return nil, fmt.Errorf("%w: response has no rates", apperrors.ErrDecode)
	}

	// The as-of date is a calendar day; reading it in local time keeps a same-day answer fresh.
	asOf, err := time.ParseInLocation(asOfLayout, ratesResp.Date, c.now().Location())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse as-of date %q: %w", apperrors.ErrDecode, ratesResp.Date, err)
	}

	return &entity.RateSnapshot{
		Base:  c.baseCurrency,
		AsOf:  asOf,
		Rates: ratesResp.Rates,
	}, nil
}
