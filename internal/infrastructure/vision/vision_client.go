package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"betline-server/services/support-api/internal/config"
	"betline-server/services/support-api/internal/domain/extraction"
	"betline-server/services/support-api/internal/utils/httpclients"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

// Extraction prompts run at low temperature; the pipelines depend on
// repeatable answers, not creative ones.
const extractionTemperature = 0.1

// Client talks to an OpenAI-compatible chat completion endpoint for all
// vision and text generation capabilities.
type Client struct {
	client      *resty.Client
	baseURL     string
	apiKey      string
	visionModel string
	textModel   string
}

func NewClient(cfg *config.Config) *Client {
	client := httpclients.NewClient("vision")
	client.SetTimeout(cfg.ExtractionTimeout)
	return &Client{
		client:      client,
		baseURL:     strings.TrimRight(cfg.VisionBaseURL, "/"),
		apiKey:      cfg.VisionAPIKey,
		visionModel: cfg.VisionModel,
		textModel:   cfg.TextModel,
	}
}

// ExtractTicketID reads a short ticket identifier off a ticket photo.
func (c *Client) ExtractTicketID(ctx context.Context, imageURL string) (*extraction.TicketIDResult, error) {
	content, err := c.complete(ctx, c.visionModel, visionMessage(
		`Extrae el número de ticket de esta imagen de un ticket de apuesta. Responde solo JSON: {"ticket_id": "<número o vacío>", "confidence": <0.0-1.0>}`,
		imageURL), true)
	if err != nil {
		return nil, err
	}

	var result extraction.TicketIDResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		// Some providers ignore JSON mode; salvage a digit run from the
		// raw text before giving up.
		if id := firstDigitRun(content); id != "" {
			return &extraction.TicketIDResult{TicketID: id, Confidence: 0.5}, nil
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "unparseable ticket id response")
	}
	result.TicketID = strings.TrimSpace(result.TicketID)
	return &result, nil
}

// ExtractDocumentFields reads identity fields off a document front image.
func (c *Client) ExtractDocumentFields(ctx context.Context, imageURL string) (*extraction.DocumentFields, error) {
	content, err := c.complete(ctx, c.visionModel, visionMessage(
		`Extrae los datos de este documento de identidad. Responde solo JSON: {"document_number": "", "full_name": "", "date_of_birth": "YYYY-MM-DD", "confidence": <0.0-1.0>}. Deja vacío lo que no puedas leer.`,
		imageURL), true)
	if err != nil {
		return nil, err
	}

	var fields extraction.DocumentFields
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "unparseable document fields response")
	}
	return &fields, nil
}

// AnalyzeImage runs a free-form vision prompt and returns the raw verdict,
// plus the parsed form when the model answered in JSON.
func (c *Client) AnalyzeImage(ctx context.Context, imageURL, promptContext string) (*extraction.ImageAnalysis, error) {
	content, err := c.complete(ctx, c.visionModel, visionMessage(promptContext, imageURL), false)
	if err != nil {
		return nil, err
	}

	analysis := &extraction.ImageAnalysis{RawText: content}
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		analysis.StructuredJSON = json.RawMessage(trimmed)
	}
	return analysis, nil
}

// AnalyzeSelfie compares a selfie against the document photo.
func (c *Client) AnalyzeSelfie(ctx context.Context, selfieURL, referenceImageURL string) (*extraction.SelfieAnalysis, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: `La primera imagen es una selfie, la segunda es la foto de un documento de identidad. Responde solo JSON: {"face_count": <número de rostros en la selfie>, "holding_document": <true si la persona sostiene un documento>, "match_confidence": <0.0-1.0 similitud entre el rostro de la selfie y el del documento>}`,
				},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: selfieURL},
				},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: referenceImageURL},
				},
			},
		},
	}
	content, err := c.complete(ctx, c.visionModel, messages, true)
	if err != nil {
		return nil, err
	}

	var analysis extraction.SelfieAnalysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "unparseable selfie analysis response")
	}
	return &analysis, nil
}

// GenerateGroundedAnswer answers a follow-up question grounded in the
// resolved ticket record.
func (c *Client) GenerateGroundedAnswer(ctx context.Context, question string, grounding json.RawMessage) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleSystem,
			Content: "Eres un asistente de soporte de una casa de apuestas. Responde en español, breve y amigable, " +
				"usando únicamente los datos del ticket proporcionados. Si la pregunta no se puede responder con esos datos, dilo.",
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("Datos del ticket:\n%s\n\nPregunta del usuario: %s", string(grounding), question),
		},
	}
	return c.complete(ctx, c.textModel, messages, false)
}

func (c *Client) complete(ctx context.Context, model string, messages []openai.ChatCompletionMessage, jsonMode bool) (string, error) {
	request := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: extractionTemperature,
	}
	if jsonMode {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	var respBody openai.ChatCompletionResponse
	req := c.client.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		SetResult(&respBody)
	if strings.TrimSpace(c.apiKey) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := req.Post(c.baseURL + "/chat/completions")
	if err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "chat completion request failed")
	}
	if resp.IsError() {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("chat completion failed with status %d", resp.StatusCode()), nil, "c5e8a2d7-3f1b-4694-b8c0-7a4d9e2f6b58")
	}
	if len(respBody.Choices) == 0 {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"chat completion returned no choices", nil, "2b9f4e7c-8d1a-4035-9c6b-5e3a7f0d2c81")
	}
	return respBody.Choices[0].Message.Content, nil
}

func visionMessage(prompt, imageURL string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURL}},
			},
		},
	}
}

var digitRunPattern = regexp.MustCompile(`\d{4,12}`)

func firstDigitRun(s string) string {
	return digitRunPattern.FindString(s)
}
