// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/fundscan/internal/common"
	"github.com/bobmcallan/fundscan/internal/interfaces"
	"github.com/bobmcallan/fundscan/internal/models"
)

const DefaultModel = "gemini-2.0-flash"

// Client implements the ReportClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateContent generates AI content from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating content")

	contents := genai.Text(prompt)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// GenerateReport produces a narrative report for a scanned fund
func (c *Client) GenerateReport(ctx context.Context, portfolio *models.Portfolio, alerts []*models.NewsAlert, risk *models.RiskAnalysis) (string, error) {
	prompt := buildReportPrompt(portfolio, alerts, risk)

	text, err := c.GenerateContent(ctx, prompt)
	if err != nil {
		return "", &models.ProviderError{
			Provider:  "gemini",
			Message:   "report generation failed",
			Retryable: true,
			Err:       err,
		}
	}
	return text, nil
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// buildReportPrompt creates the prompt for the fund narrative report
func buildReportPrompt(portfolio *models.Portfolio, alerts []*models.NewsAlert, risk *models.RiskAnalysis) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are a portfolio analyst. Write a concise narrative report for the fund %q.\n\n", portfolio.FundName))

	sb.WriteString(fmt.Sprintf("Portfolio (total value $%.2f):\n", portfolio.TotalValue))
	for _, h := range portfolio.Holdings {
		sb.WriteString(fmt.Sprintf("- %s (%s): weight %.1f%%, value $%.2f\n", h.Ticker, h.Name, h.Weight*100, h.Value))
	}

	if len(portfolio.SectorAllocation) > 0 {
		sb.WriteString("\nSector allocation:\n")
		for sector, frac := range portfolio.SectorAllocation {
			sb.WriteString(fmt.Sprintf("- %s: %.1f%%\n", sector, frac*100))
		}
	}

	if len(alerts) > 0 {
		sb.WriteString("\nRecent news alerts:\n")
		for _, a := range alerts {
			sb.WriteString(fmt.Sprintf("- [%s/%s/%s] %s: %q (impact %.2f, source %s)\n",
				a.AlertType, a.Severity, a.Sentiment, a.Ticker, a.Headline, a.ImpactScore, a.Source))
		}
	} else {
		sb.WriteString("\nNo news alerts were found for the current holdings.\n")
	}

	sb.WriteString(fmt.Sprintf("\nRisk analysis: overall level %s, score %d/100.\n", risk.OverallRiskLevel, risk.RiskScore))
	for _, f := range risk.KeyFindings {
		sb.WriteString(fmt.Sprintf("- Finding: %s\n", f))
	}
	for _, a := range risk.ActionItems {
		sb.WriteString(fmt.Sprintf("- Action: %s\n", a))
	}

	sb.WriteString(`
Write 3-4 paragraphs covering: the portfolio's composition and concentration,
how the news landscape affects the held positions, and what the risk profile
means for the fund. Be specific and actionable. Do not invent data that is not
listed above.`)

	return sb.String()
}

// Ensure Client implements ReportClient
var _ interfaces.ReportClient = (*Client)(nil)
