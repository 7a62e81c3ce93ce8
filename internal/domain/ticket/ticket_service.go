package ticket

import (
	"context"
	"fmt"
	"strings"

	"betline-server/services/support-api/internal/domain/extraction"
	"betline-server/services/support-api/internal/infrastructure/logger"
	"betline-server/services/support-api/internal/infrastructure/metrics"
)

// IDExtractor is the slice of the extraction surface this service needs.
type IDExtractor interface {
	ExtractTicketID(ctx context.Context, imageURL string) (*extraction.TicketIDResult, error)
}

// Service resolves ticket ids (from text or images) against the ledger and
// formats conversational replies.
type Service struct {
	extractor    IDExtractor
	ledger       LedgerRepository
	localIDWidth int
}

func NewService(extractor IDExtractor, ledger LedgerRepository, localIDWidth int) *Service {
	return &Service{
		extractor:    extractor,
		ledger:       ledger,
		localIDWidth: localIDWidth,
	}
}

// Resolve runs the full pipeline. It never returns an error; failures are
// absorbed into a ResolveResult with a conversational Reply and an internal
// ErrorDetail.
func (s *Service) Resolve(ctx context.Context, input ResolveInput) ResolveResult {
	log := logger.GetLogger()
	emit := func(stage ProgressStage, percent int) {
		if input.Progress != nil {
			input.Progress(stage, percent)
		}
	}

	emit(StageReceived, 10)

	ticketID := strings.TrimSpace(input.ExplicitID)
	confidence := 1.0

	if ticketID == "" && input.ImageURL != "" {
		emit(StageAnalyzing, 20)
		extracted, err := s.extractor.ExtractTicketID(ctx, input.ImageURL)
		emit(StageExtractingText, 40)
		if err != nil {
			log.Warn().Err(err).Msg("ticket id extraction failed")
		}
		if extracted != nil {
			ticketID = strings.TrimSpace(extracted.TicketID)
			confidence = extracted.Confidence
		}
	}

	if ticketID == "" {
		emit(StageError, 0)
		metrics.RecordTicketResolution("extraction_failed")
		return ResolveResult{
			Reply:       "No pude identificar el número de ticket en la imagen. ¿Podrías enviar una foto más clara o escribir el número directamente?",
			ErrorDetail: "could not identify ticket id",
		}
	}

	emit(StageQuerying, 60)
	found, matchedID, err := s.lookup(ctx, ticketID)
	if err != nil {
		emit(StageError, 0)
		metrics.RecordTicketResolution("lookup_error")
		log.Error().Err(err).Str("ticket_id", ticketID).Msg("ledger lookup failed")
		return ResolveResult{
			TicketID:    ticketID,
			Confidence:  confidence,
			Reply:       "Tuve un problema consultando tu apuesta en este momento. Por favor intenta de nuevo en unos minutos.",
			ErrorDetail: fmt.Sprintf("ledger lookup failed for id %s: %v", ticketID, err),
		}
	}
	if found == nil {
		emit(StageError, 0)
		metrics.RecordTicketResolution("not_found")
		return ResolveResult{
			TicketID:    ticketID,
			Confidence:  confidence,
			Reply:       fmt.Sprintf("No encontré ninguna apuesta con el número %s. Verifica el número e inténtalo otra vez.", ticketID),
			ErrorDetail: fmt.Sprintf("no bet found for id %s (confidence %.2f)", ticketID, confidence),
		}
	}

	emit(StageGeneratingResponse, 80)
	reply, escalated := FormatTicket(found, input.Question)
	if escalated {
		metrics.RecordTicketResolution("escalated")
		metrics.RecordEscalation("canceled_ticket")
	} else {
		metrics.RecordTicketResolution("resolved")
	}

	emit(StageCompleted, 100)
	return ResolveResult{
		Success:    true,
		TicketID:   matchedID,
		Confidence: confidence,
		Ticket:     found,
		Reply:      reply,
		Escalated:  escalated,
	}
}

// lookup tries each normalized form of the id and accepts the first match.
func (s *Service) lookup(ctx context.Context, rawID string) (*BetTicket, string, error) {
	var lastErr error
	for _, candidate := range normalizeCandidates(rawID, s.localIDWidth) {
		found, err := s.ledger.FindByLocalID(ctx, candidate)
		if err != nil {
			lastErr = err
			continue
		}
		if found != nil {
			return found, candidate, nil
		}
	}
	return nil, "", lastErr
}
