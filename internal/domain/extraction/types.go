package extraction

import (
	"context"
	"encoding/json"
)

// ===============================================
// Capability Result Types
// ===============================================

type IntentType string

const (
	IntentTicketVerification IntentType = "ticket_verification"
	IntentKycStart           IntentType = "kyc_start"
	IntentKycUpload          IntentType = "kyc_upload"
	IntentGreeting           IntentType = "greeting"
	IntentFarewell           IntentType = "farewell"
	IntentAccountQuery       IntentType = "account_query"
	IntentBetHistory         IntentType = "bet_history"
	IntentComplaint          IntentType = "complaint"
	IntentOther              IntentType = "other"
)

// Intent is the result of free-text intent classification.
type Intent struct {
	Type       IntentType `json:"type"`
	Confidence float64    `json:"confidence"`
}

// Entity is a single extracted entity from text analysis.
type Entity struct {
	Type       string  `json:"type"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// TextAnalysis bundles intent plus extracted entities.
type TextAnalysis struct {
	Intent   *Intent  `json:"intent,omitempty"`
	Entities []Entity `json:"entities,omitempty"`
}

// TicketIDResult is the output of ticket-id extraction from an image.
type TicketIDResult struct {
	TicketID   string  `json:"ticket_id"`
	Confidence float64 `json:"confidence"`
}

// DocumentFields holds identity fields extracted from a document image.
type DocumentFields struct {
	DocumentNumber string  `json:"document_number"`
	FullName       string  `json:"full_name"`
	DateOfBirth    string  `json:"date_of_birth"`
	Confidence     float64 `json:"confidence"`
}

// ImageAnalysis is the output of a free-form vision prompt.
type ImageAnalysis struct {
	RawText        string          `json:"raw_text"`
	StructuredJSON json.RawMessage `json:"structured_json,omitempty"`
}

// SelfieAnalysis is the output of the selfie-vs-document comparison.
type SelfieAnalysis struct {
	FaceCount       int     `json:"face_count"`
	HoldingDocument bool    `json:"holding_document"`
	MatchConfidence float64 `json:"match_confidence"`
}

// ===============================================
// Capability Interfaces
// ===============================================

// Every capability returns a structured result or an error; callers absorb
// errors into fallback chains or user-facing copy, never propagate them raw.

type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, text string) (*Intent, error)
}

type TextAnalyzer interface {
	AnalyzeText(ctx context.Context, text string) (*TextAnalysis, error)
}

type TicketIDExtractor interface {
	ExtractTicketID(ctx context.Context, imageURL string) (*TicketIDResult, error)
}

type DocumentFieldExtractor interface {
	ExtractDocumentFields(ctx context.Context, imageURL string) (*DocumentFields, error)
}

type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, imageURL, promptContext string) (*ImageAnalysis, error)
}

type SelfieAnalyzer interface {
	AnalyzeSelfie(ctx context.Context, selfieURL, referenceImageURL string) (*SelfieAnalysis, error)
}

type AnswerGenerator interface {
	GenerateGroundedAnswer(ctx context.Context, question string, grounding json.RawMessage) (string, error)
}
