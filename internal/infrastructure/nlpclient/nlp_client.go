package nlpclient

import (
	"context"
	"fmt"

	"resty.dev/v3"

	"betline-server/services/support-api/internal/config"
	"betline-server/services/support-api/internal/domain/extraction"
	"betline-server/services/support-api/internal/utils/httpclients"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

// Client calls the NLP collaborator service for intent classification and
// text analysis.
type Client struct {
	client *resty.Client
}

func NewClient(cfg *config.Config) *Client {
	client := httpclients.NewClient("nlp-service")
	client.SetBaseURL(cfg.NLPServiceURL)
	client.SetTimeout(cfg.ExtractionTimeout)
	return &Client{client: client}
}

type textInput struct {
	Text string `json:"text"`
}

type intentPayload struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

type classifyResponse struct {
	Text         string          `json:"text"`
	Intent       intentPayload   `json:"intent"`
	Alternatives []intentPayload `json:"alternatives"`
}

type analyzeResponse struct {
	Text     string `json:"text"`
	Entities []struct {
		Type       string  `json:"type"`
		Value      string  `json:"value"`
		Confidence float64 `json:"confidence"`
	} `json:"entities"`
	Intent intentPayload `json:"intent"`
}

// Name identifies this collaborator in health metrics.
func (c *Client) Name() string { return "nlp-service" }

// Health probes the collaborator's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("nlp-service health returned status %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) ClassifyIntent(ctx context.Context, text string) (*extraction.Intent, error) {
	var result classifyResponse
	resp, err := c.client.R().SetContext(ctx).
		SetBody(textInput{Text: text}).
		SetResult(&result).
		Post("/api/nlp/intent")
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "intent classification request failed")
	}
	if resp.IsError() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("intent classification failed with status %d", resp.StatusCode()), nil, "7f2c9a4e-1b6d-4580-a3c7-9e5d2f8b0c64")
	}
	return &extraction.Intent{
		Type:       extraction.IntentType(result.Intent.Type),
		Confidence: result.Intent.Confidence,
	}, nil
}

func (c *Client) AnalyzeText(ctx context.Context, text string) (*extraction.TextAnalysis, error) {
	var result analyzeResponse
	resp, err := c.client.R().SetContext(ctx).
		SetBody(textInput{Text: text}).
		SetResult(&result).
		Post("/api/nlp/analyze")
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "text analysis request failed")
	}
	if resp.IsError() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("text analysis failed with status %d", resp.StatusCode()), nil, "e1a8d5f2-4c7b-4396-8d0a-6b3e9c2f7a15")
	}

	analysis := &extraction.TextAnalysis{
		Intent: &extraction.Intent{
			Type:       extraction.IntentType(result.Intent.Type),
			Confidence: result.Intent.Confidence,
		},
	}
	for _, e := range result.Entities {
		analysis.Entities = append(analysis.Entities, extraction.Entity{
			Type:       e.Type,
			Value:      e.Value,
			Confidence: e.Confidence,
		})
	}
	return analysis, nil
}
