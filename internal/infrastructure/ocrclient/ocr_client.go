package ocrclient

import (
	"context"
	"fmt"

	"resty.dev/v3"

	"betline-server/services/support-api/internal/config"
	"betline-server/services/support-api/internal/domain/extraction"
	"betline-server/services/support-api/internal/utils/httpclients"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

// Client calls the OCR collaborator service. It is the fallback leg of the
// ticket-id and document-field chains when the vision provider fails.
type Client struct {
	client   *resty.Client
	baseConf float64
}

func NewClient(cfg *config.Config) *Client {
	client := httpclients.NewClient("ocr-service")
	client.SetBaseURL(cfg.OCRServiceURL)
	client.SetTimeout(cfg.ExtractionTimeout)

	// OCR reports no per-field confidence, so every hit carries the same
	// conservative score.
	return &Client{client: client, baseConf: 0.4}
}

// imageInput references the image by URL; the collaborator fetches it.
type imageInput struct {
	Base64 string `json:"base64,omitempty"`
	URL    string `json:"url,omitempty"`
}

type extractRequest struct {
	Image imageInput `json:"image"`
}

type ticketExtractionResponse struct {
	Success  bool   `json:"success"`
	TicketID string `json:"ticket_id"`
	RawText  string `json:"raw_text"`
	Error    string `json:"error"`
}

type documentExtractionResponse struct {
	Success        bool   `json:"success"`
	DocumentNumber string `json:"document_number"`
	FullName       string `json:"full_name"`
	DateOfBirth    string `json:"date_of_birth"`
	RawText        string `json:"raw_text"`
	Error          string `json:"error"`
}

// Name identifies this collaborator in health metrics.
func (c *Client) Name() string { return "ocr-service" }

// Health probes the collaborator's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("ocr-service health returned status %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) ExtractTicketID(ctx context.Context, imageURL string) (*extraction.TicketIDResult, error) {
	var result ticketExtractionResponse
	resp, err := c.client.R().SetContext(ctx).
		SetBody(extractRequest{Image: imageInput{URL: imageURL}}).
		SetResult(&result).
		Post("/api/ocr/extract/ticket")
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "ticket ocr request failed")
	}
	if resp.IsError() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("ticket ocr failed with status %d", resp.StatusCode()), nil, "5b8e1f4d-2a9c-4367-8f0b-7d3a6c9e2f51")
	}
	if !result.Success {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("ticket ocr failed: %s", result.Error), nil, "9d4f2c8a-6e1b-4750-b2d9-3a7c5e0f8b26")
	}
	return &extraction.TicketIDResult{TicketID: result.TicketID, Confidence: c.baseConf}, nil
}

func (c *Client) ExtractDocumentFields(ctx context.Context, imageURL string) (*extraction.DocumentFields, error) {
	var result documentExtractionResponse
	resp, err := c.client.R().SetContext(ctx).
		SetBody(extractRequest{Image: imageInput{URL: imageURL}}).
		SetResult(&result).
		Post("/api/ocr/extract/document")
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "document ocr request failed")
	}
	if resp.IsError() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("document ocr failed with status %d", resp.StatusCode()), nil, "4c7a9e2d-8f1b-4635-a0d8-6e3b5c9f2a74")
	}
	if !result.Success {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("document ocr failed: %s", result.Error), nil, "2e8c5f1a-9d4b-4276-b3f0-8a6d1c7e4b59")
	}
	return &extraction.DocumentFields{
		DocumentNumber: result.DocumentNumber,
		FullName:       result.FullName,
		DateOfBirth:    result.DateOfBirth,
		Confidence:     c.baseConf,
	}, nil
}
