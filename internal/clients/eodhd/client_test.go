package eodhd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fundscan/internal/models"
)

func TestScanMarketNews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/news", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("api_token"))

		switch r.URL.Query().Get("s") {
		case "AAPL":
			w.Write([]byte(`[
				{"title": "Apple earnings beat expectations", "source": "wire", "tags": ["earnings"], "sentiment": {"polarity": 0.8}},
				{"title": "Apple faces antitrust probe", "source": "wire", "tags": [], "sentiment": {"polarity": -0.5}}
			]`))
		case "JPM":
			w.Write([]byte(`[
				{"title": "JPMorgan trading update", "source": "wire", "tags": [], "sentiment": {"polarity": 0.05}}
			]`))
		default:
			w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL))

	alerts, err := client.ScanMarketNews(context.Background(), []string{"AAPL", "JPM"})
	require.NoError(t, err)
	require.Len(t, alerts, 3)

	earnings := alerts[0]
	assert.Equal(t, "AAPL", earnings.Ticker)
	assert.Equal(t, models.AlertTypeEarnings, earnings.AlertType)
	assert.Equal(t, models.SeverityHigh, earnings.Severity)
	assert.Equal(t, models.SentimentPositive, earnings.Sentiment)
	assert.InDelta(t, 0.8, earnings.ImpactScore, 1e-9)

	probe := alerts[1]
	assert.Equal(t, models.AlertTypeRegulatory, probe.AlertType, "antitrust headline classifies as regulatory")
	assert.Equal(t, models.SeverityMedium, probe.Severity)
	assert.Equal(t, models.SentimentNegative, probe.Sentiment)

	trading := alerts[2]
	assert.Equal(t, "JPM", trading.Ticker)
	assert.Equal(t, models.AlertTypeMarket, trading.AlertType)
	assert.Equal(t, models.SeverityLow, trading.Severity)
	assert.Equal(t, models.SentimentNeutral, trading.Sentiment, "polarity within ±0.1 is neutral")
}

func TestScanMarketNews_EmptyTickerSetSkipsAPI(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL))

	alerts, err := client.ScanMarketNews(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestScanMarketNews_ProviderErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL))

	_, err := client.ScanMarketNews(context.Background(), []string{"AAPL"})
	require.Error(t, err)

	var provErr *models.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "eodhd", provErr.Provider)
	assert.True(t, provErr.Retryable)
}

func TestClassifyAlert_PolarityClamped(t *testing.T) {
	item := newsItem{Title: "headline", Source: "wire"}
	item.Sentiment.Polarity = -1.7

	alert := classifyAlert("XYZ", item)

	assert.Equal(t, 1.0, alert.ImpactScore)
	assert.Equal(t, models.SeverityHigh, alert.Severity)
	assert.Equal(t, models.SentimentNegative, alert.Sentiment)
	assert.NoError(t, alert.Validate())
}
