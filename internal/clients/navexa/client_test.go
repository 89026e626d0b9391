package navexa

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fundscan/internal/models"
)

const holdingsPayload = `{
	"data": {
		"fund_name": "Tech Growth Fund",
		"total_value": 1000000,
		"holdings": [
			{"ticker": "AAPL", "name": "Apple Inc.", "weight": 0.6, "value": 600000},
			{"ticker": "MSFT", "name": "Microsoft Corporation", "weight": 0.4, "value": 400000}
		],
		"sector_allocation": [
			{"sector": "Technology", "weight": 1.0}
		],
		"last_updated": "2025-06-02T00:00:00Z"
	}
}`

func TestGetPortfolioHoldings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/funds/Tech%20Growth%20Fund/holdings", r.URL.EscapedPath())
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(holdingsPayload))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	portfolio, err := client.GetPortfolioHoldings(context.Background(), "Tech Growth Fund")
	require.NoError(t, err)

	assert.Equal(t, "Tech Growth Fund", portfolio.FundName)
	assert.Equal(t, 1000000.0, portfolio.TotalValue)
	require.Len(t, portfolio.Holdings, 2)
	assert.Equal(t, "AAPL", portfolio.Holdings[0].Ticker)
	assert.Equal(t, 0.6, portfolio.Holdings[0].Weight)
	assert.Equal(t, 1.0, portfolio.SectorAllocation["Technology"])
}

func TestGetPortfolioHoldings_UnknownFund(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	_, err := client.GetPortfolioHoldings(context.Background(), "Ghost Fund")
	require.Error(t, err)

	var provErr *models.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "navexa", provErr.Provider)
	assert.False(t, provErr.Retryable, "an unknown fund will not become known on retry")
	assert.Contains(t, provErr.Message, "Ghost Fund")
}

func TestGetPortfolioHoldings_ServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	_, err := client.GetPortfolioHoldings(context.Background(), "Some Fund")
	require.Error(t, err)

	var provErr *models.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.True(t, provErr.Retryable)
}

func TestGetPortfolioHoldings_MalformedResponseRejected(t *testing.T) {
	// Weights that cannot describe a real portfolio must not pass through.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"data": {
				"fund_name": "Broken Fund",
				"total_value": 1000,
				"holdings": [
					{"ticker": "AAA", "name": "Alpha", "weight": 0.2, "value": 200}
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	_, err := client.GetPortfolioHoldings(context.Background(), "Broken Fund")
	require.Error(t, err)

	var provErr *models.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, provErr.Message, "malformed")
}
