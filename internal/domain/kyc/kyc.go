package kyc

import (
	"context"

	"betline-server/services/support-api/internal/domain/extraction"
	"betline-server/services/support-api/internal/domain/session"
)

// Player is the platform identity record. Read-only except for the
// verification write-back on successful completion.
type Player struct {
	AccountID      string
	FullName       string
	DocumentNumber string
	BirthDate      string
	Verified       bool
}

// PlayerRepository looks up and verifies identity records. Find methods
// return (nil, nil) when no record matches.
type PlayerRepository interface {
	FindByAccountID(ctx context.Context, accountID string) (*Player, error)
	FindByDocumentNumber(ctx context.Context, documentNumber string) (*Player, error)
	MarkVerified(ctx context.Context, accountID, documentNumber string) error
}

// Extractor is the slice of the extraction surface the pipeline needs.
// The extraction gateway satisfies it.
type Extractor interface {
	ExtractDocumentFields(ctx context.Context, imageURL string) (*extraction.DocumentFields, error)
	AnalyzeImage(ctx context.Context, imageURL, promptContext string) (*extraction.ImageAnalysis, error)
	AnalyzeSelfie(ctx context.Context, selfieURL, referenceImageURL string) (*extraction.SelfieAnalysis, error)
}

// StageResult is returned by every stage execution, success or not.
// Errors accumulates all validation problems so one resubmission can fix
// them together.
type StageResult struct {
	Success bool
	Stage   session.KycStage
	Errors  []string
	Reply   string
}

const instructionsReply = "Para verificar tu identidad necesito tres fotos, en este orden:\n" +
	"1️⃣ El frente de tu documento de identidad\n" +
	"2️⃣ El reverso de tu documento\n" +
	"3️⃣ Una selfie sosteniendo tu documento junto a tu rostro\n\n" +
	"Envíame la primera foto cuando estés listo."

const completedReply = "Tu proceso de verificación ya fue completado ✅."

var stagePrompts = map[session.KycStage]string{
	session.KycStageFrontDocument: "Envíame una foto del frente de tu documento de identidad.",
	session.KycStageBackDocument:  "¡Frente recibido! Ahora envíame una foto del reverso de tu documento.",
	session.KycStageSelfie:        "Perfecto. Por último, envíame una selfie sosteniendo tu documento junto a tu rostro.",
}
