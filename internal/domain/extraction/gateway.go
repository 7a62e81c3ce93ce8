package extraction

import (
	"context"
	"encoding/json"
	"strings"

	"betline-server/services/support-api/internal/infrastructure/logger"
	"betline-server/services/support-api/internal/infrastructure/metrics"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

// Gateway composes the individual extraction capabilities behind ordered
// fallback chains. Backends are tried in registration order; the first
// usable result wins. Additional backends can be appended without touching
// call sites.
type Gateway struct {
	intentClassifier IntentClassifier
	textAnalyzer     TextAnalyzer
	ticketExtractors []TicketIDExtractor
	docExtractors    []DocumentFieldExtractor
	imageAnalyzer    ImageAnalyzer
	selfieAnalyzer   SelfieAnalyzer
	answerGenerators []AnswerGenerator
}

func NewGateway(
	intentClassifier IntentClassifier,
	textAnalyzer TextAnalyzer,
	ticketExtractors []TicketIDExtractor,
	docExtractors []DocumentFieldExtractor,
	imageAnalyzer ImageAnalyzer,
	selfieAnalyzer SelfieAnalyzer,
	answerGenerators []AnswerGenerator,
) *Gateway {
	return &Gateway{
		intentClassifier: intentClassifier,
		textAnalyzer:     textAnalyzer,
		ticketExtractors: ticketExtractors,
		docExtractors:    docExtractors,
		imageAnalyzer:    imageAnalyzer,
		selfieAnalyzer:   selfieAnalyzer,
		answerGenerators: answerGenerators,
	}
}

// ClassifyIntent classifies free text. A nil intent with nil error means the
// classifier produced no usable signal; callers fall through to the next rule.
func (g *Gateway) ClassifyIntent(ctx context.Context, text string) (*Intent, error) {
	if g.intentClassifier == nil || strings.TrimSpace(text) == "" {
		return nil, nil
	}
	intent, err := g.intentClassifier.ClassifyIntent(ctx, text)
	if err != nil {
		metrics.ExtractionFailuresTotal.WithLabelValues("intent").Inc()
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "intent classification failed")
	}
	return intent, nil
}

// AnalyzeText runs full text analysis (intent + entities).
func (g *Gateway) AnalyzeText(ctx context.Context, text string) (*TextAnalysis, error) {
	if g.textAnalyzer == nil {
		return nil, nil
	}
	analysis, err := g.textAnalyzer.AnalyzeText(ctx, text)
	if err != nil {
		metrics.ExtractionFailuresTotal.WithLabelValues("text_analysis").Inc()
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "text analysis failed")
	}
	return analysis, nil
}

// ExtractTicketID walks the extractor chain (vision first, then OCR) and
// returns the first result carrying a non-empty ticket id.
func (g *Gateway) ExtractTicketID(ctx context.Context, imageURL string) (*TicketIDResult, error) {
	log := logger.GetLogger()
	var lastErr error
	for _, extractor := range g.ticketExtractors {
		result, err := extractor.ExtractTicketID(ctx, imageURL)
		if err != nil {
			metrics.ExtractionFailuresTotal.WithLabelValues("ticket_id").Inc()
			log.Warn().Err(err).Msg("ticket id extractor failed, trying next backend")
			lastErr = err
			continue
		}
		if result != nil && strings.TrimSpace(result.TicketID) != "" {
			return result, nil
		}
	}
	if lastErr != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, lastErr, "all ticket id extractors failed")
	}
	return nil, nil
}

// ExtractDocumentFields walks the extractor chain and merges results: later
// backends only fill fields the earlier ones left empty. The document number
// decides success, so the chain stops once one is found and no field is
// missing.
func (g *Gateway) ExtractDocumentFields(ctx context.Context, imageURL string) (*DocumentFields, error) {
	log := logger.GetLogger()
	merged := &DocumentFields{}
	var lastErr error
	for _, extractor := range g.docExtractors {
		result, err := extractor.ExtractDocumentFields(ctx, imageURL)
		if err != nil {
			metrics.ExtractionFailuresTotal.WithLabelValues("document_fields").Inc()
			log.Warn().Err(err).Msg("document field extractor failed, trying next backend")
			lastErr = err
			continue
		}
		if result == nil {
			continue
		}
		mergeDocumentFields(merged, result)
		if merged.DocumentNumber != "" && merged.FullName != "" && merged.DateOfBirth != "" {
			break
		}
	}
	if merged.DocumentNumber == "" && merged.FullName == "" && lastErr != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, lastErr, "all document field extractors failed")
	}
	return merged, nil
}

// AnalyzeImage runs a generic vision prompt against the image.
func (g *Gateway) AnalyzeImage(ctx context.Context, imageURL, promptContext string) (*ImageAnalysis, error) {
	if g.imageAnalyzer == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotImplemented, "no image analyzer configured", nil, "e1c2a8d4-7b9f-4c31-a6e5-2d8f0b4c9a17")
	}
	analysis, err := g.imageAnalyzer.AnalyzeImage(ctx, imageURL, promptContext)
	if err != nil {
		metrics.ExtractionFailuresTotal.WithLabelValues("image_analysis").Inc()
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "image analysis failed")
	}
	return analysis, nil
}

// AnalyzeSelfie compares a selfie against the stored document photo.
func (g *Gateway) AnalyzeSelfie(ctx context.Context, selfieURL, referenceImageURL string) (*SelfieAnalysis, error) {
	if g.selfieAnalyzer == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotImplemented, "no selfie analyzer configured", nil, "f4b7d2e9-1a3c-4f86-b0d5-8c2e6a9f1b43")
	}
	analysis, err := g.selfieAnalyzer.AnalyzeSelfie(ctx, selfieURL, referenceImageURL)
	if err != nil {
		metrics.ExtractionFailuresTotal.WithLabelValues("selfie").Inc()
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "selfie analysis failed")
	}
	return analysis, nil
}

// GenerateGroundedAnswer walks the generator chain (web-search grounded
// first, plain grounded second) and returns the first non-empty answer.
func (g *Gateway) GenerateGroundedAnswer(ctx context.Context, question string, grounding json.RawMessage) (string, error) {
	log := logger.GetLogger()
	var lastErr error
	for _, generator := range g.answerGenerators {
		answer, err := generator.GenerateGroundedAnswer(ctx, question, grounding)
		if err != nil {
			metrics.ExtractionFailuresTotal.WithLabelValues("grounded_answer").Inc()
			log.Warn().Err(err).Msg("answer generator failed, trying next backend")
			lastErr = err
			continue
		}
		if strings.TrimSpace(answer) != "" {
			return answer, nil
		}
	}
	if lastErr != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, lastErr, "all answer generators failed")
	}
	return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "no answer produced", nil, "9d5e3f1a-6c8b-4a27-9e0f-4b7d2c5a8e61")
}

func mergeDocumentFields(dst, src *DocumentFields) {
	if dst.DocumentNumber == "" {
		dst.DocumentNumber = strings.TrimSpace(src.DocumentNumber)
	}
	if dst.FullName == "" {
		dst.FullName = strings.TrimSpace(src.FullName)
	}
	if dst.DateOfBirth == "" {
		dst.DateOfBirth = strings.TrimSpace(src.DateOfBirth)
	}
	if src.Confidence > dst.Confidence {
		dst.Confidence = src.Confidence
	}
}
