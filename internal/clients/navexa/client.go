// Package navexa provides a client for the Navexa holdings API
package navexa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/fundscan/internal/common"
	"github.com/bobmcallan/fundscan/internal/interfaces"
	"github.com/bobmcallan/fundscan/internal/models"
)

const (
	DefaultBaseURL   = "https://api.navexa.com.au"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the HoldingsClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Navexa client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Navexa API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", path).Msg("Navexa API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetPortfolioHoldings retrieves the current portfolio snapshot for a fund
func (c *Client) GetPortfolioHoldings(ctx context.Context, fundName string) (*models.Portfolio, error) {
	var resp portfolioResponse
	path := fmt.Sprintf("/v1/funds/%s/holdings", url.PathEscape(fundName))
	if err := c.get(ctx, path, &resp); err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, &models.ProviderError{
				Provider: "navexa",
				Message:  fmt.Sprintf("unknown fund %q", fundName),
				Err:      err,
			}
		}
		return nil, &models.ProviderError{
			Provider:  "navexa",
			Message:   "holdings fetch failed",
			Retryable: true,
			Err:       err,
		}
	}

	holdings := make([]models.Holding, len(resp.Data.Holdings))
	for i, h := range resp.Data.Holdings {
		holdings[i] = models.Holding{
			Ticker: h.Ticker,
			Name:   h.Name,
			Weight: h.Weight,
			Value:  h.Value,
		}
	}

	sectors := make(map[string]float64, len(resp.Data.SectorAllocation))
	for _, s := range resp.Data.SectorAllocation {
		sectors[s.Sector] = s.Weight
	}

	portfolio := &models.Portfolio{
		FundName:         resp.Data.FundName,
		TotalValue:       resp.Data.TotalValue,
		Holdings:         holdings,
		SectorAllocation: sectors,
		LastUpdated:      resp.Data.LastUpdated,
	}
	if portfolio.FundName == "" {
		portfolio.FundName = fundName
	}

	if err := portfolio.Validate(); err != nil {
		return nil, &models.ProviderError{
			Provider: "navexa",
			Message:  "malformed holdings response",
			Err:      err,
		}
	}

	return portfolio, nil
}

type portfolioResponse struct {
	Data struct {
		FundName   string  `json:"fund_name"`
		TotalValue float64 `json:"total_value"`
		Holdings   []struct {
			Ticker string  `json:"ticker"`
			Name   string  `json:"name"`
			Weight float64 `json:"weight"`
			Value  float64 `json:"value"`
		} `json:"holdings"`
		SectorAllocation []struct {
			Sector string  `json:"sector"`
			Weight float64 `json:"weight"`
		} `json:"sector_allocation"`
		LastUpdated time.Time `json:"last_updated"`
	} `json:"data"`
}

// Ensure Client implements HoldingsClient
var _ interfaces.HoldingsClient = (*Client)(nil)
