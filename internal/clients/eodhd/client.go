// Package eodhd provides a client for the EODHD market news API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/fundscan/internal/common"
	"github.com/bobmcallan/fundscan/internal/interfaces"
	"github.com/bobmcallan/fundscan/internal/models"
)

const (
	DefaultBaseURL      = "https://eodhd.com/api"
	DefaultTimeout      = 30 * time.Second
	DefaultRateLimit    = 10 // requests per second
	DefaultNewsPerQuery = 10
)

// Client implements the NewsClient interface
type Client struct {
	baseURL      string
	apiKey       string
	newsPerQuery int
	httpClient   *http.Client
	logger       *common.Logger
	limiter      *rate.Limiter
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

// WithNewsPerQuery sets how many articles are requested per ticker
func WithNewsPerQuery(limit int) ClientOption {
	return func(c *Client) {
		c.newsPerQuery = limit
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		apiKey:       apiKey,
		newsPerQuery: DefaultNewsPerQuery,
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
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
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
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", path).Msg("EODHD API request")

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

// ScanMarketNews retrieves news alerts for a set of tickers. An empty ticker
// set returns an empty list without calling the API.
func (c *Client) ScanMarketNews(ctx context.Context, tickers []string) ([]*models.NewsAlert, error) {
	if len(tickers) == 0 {
		return []*models.NewsAlert{}, nil
	}

	alerts := make([]*models.NewsAlert, 0, len(tickers))
	for _, ticker := range tickers {
		items, err := c.getNews(ctx, ticker)
		if err != nil {
			return nil, &models.ProviderError{
				Provider:  "eodhd",
				Message:   fmt.Sprintf("news scan failed for %s", ticker),
				Retryable: true,
				Err:       err,
			}
		}
		for _, item := range items {
			alerts = append(alerts, classifyAlert(ticker, item))
		}
	}

	c.logger.Debug().Int("tickers", len(tickers)).Int("alerts", len(alerts)).Msg("News scan complete")
	return alerts, nil
}

// newsItem is the raw EODHD news payload
type newsItem struct {
	Title     string   `json:"title"`
	Source    string   `json:"source"`
	Tags      []string `json:"tags"`
	Sentiment struct {
		Polarity float64 `json:"polarity"` // [-1,1]
	} `json:"sentiment"`
}

func (c *Client) getNews(ctx context.Context, ticker string) ([]newsItem, error) {
	var items []newsItem
	path := fmt.Sprintf("/news?s=%s&limit=%d&api_token=%s&fmt=json",
		url.QueryEscape(ticker), c.newsPerQuery, url.QueryEscape(c.apiKey))
	if err := c.get(ctx, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// classifyAlert maps a raw news item onto the alert taxonomy. Alert type comes
// from article tags with a headline-keyword fallback, severity and impact from
// polarity magnitude, sentiment from polarity sign.
func classifyAlert(ticker string, item newsItem) *models.NewsAlert {
	magnitude := math.Abs(item.Sentiment.Polarity)
	if magnitude > 1 {
		magnitude = 1
	}

	severity := models.SeverityLow
	switch {
	case magnitude >= 0.7:
		severity = models.SeverityHigh
	case magnitude >= 0.4:
		severity = models.SeverityMedium
	}

	sentiment := models.SentimentNeutral
	switch {
	case item.Sentiment.Polarity > 0.1:
		sentiment = models.SentimentPositive
	case item.Sentiment.Polarity < -0.1:
		sentiment = models.SentimentNegative
	}

	return &models.NewsAlert{
		Ticker:      ticker,
		AlertType:   classifyType(item),
		Severity:    severity,
		Headline:    item.Title,
		Sentiment:   sentiment,
		ImpactScore: magnitude,
		Source:      item.Source,
	}
}

func classifyType(item newsItem) models.AlertType {
	haystack := strings.ToLower(strings.Join(item.Tags, " ") + " " + item.Title)
	switch {
	case strings.Contains(haystack, "earnings"), strings.Contains(haystack, "results"), strings.Contains(haystack, "profit"):
		return models.AlertTypeEarnings
	case strings.Contains(haystack, "regulat"), strings.Contains(haystack, "antitrust"), strings.Contains(haystack, "compliance"):
		return models.AlertTypeRegulatory
	case strings.Contains(haystack, "lawsuit"), strings.Contains(haystack, "court"), strings.Contains(haystack, "fine"):
		return models.AlertTypeLegal
	case strings.Contains(haystack, "launch"), strings.Contains(haystack, "product"), strings.Contains(haystack, "release"):
		return models.AlertTypeProduct
	case strings.Contains(haystack, "inflation"), strings.Contains(haystack, "rates"), strings.Contains(haystack, "economy"):
		return models.AlertTypeMacro
	default:
		return models.AlertTypeMarket
	}
}

// Ensure Client implements NewsClient
var _ interfaces.NewsClient = (*Client)(nil)
