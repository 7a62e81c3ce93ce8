package kyc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"betline-server/services/support-api/internal/domain/session"
	"betline-server/services/support-api/internal/infrastructure/logger"
	"betline-server/services/support-api/internal/infrastructure/metrics"
)

// Service drives the per-session identity verification state machine:
// not_started, front_document, back_document, selfie, completed. Stages
// only move forward; the single backward transition is a full reset.
type Service struct {
	sessions           *session.Service
	players            PlayerRepository
	extractor          Extractor
	faceMatchThreshold float64
}

func NewService(sessions *session.Service, players PlayerRepository, extractor Extractor, faceMatchThreshold float64) *Service {
	return &Service{
		sessions:           sessions,
		players:            players,
		extractor:          extractor,
		faceMatchThreshold: faceMatchThreshold,
	}
}

// backDocRejectMarkers are matched against the permissive back-of-document
// vision verdict. Borderline images pass; only a clear rejection fails.
var backDocRejectMarkers = []string{
	"not a document", "no es un documento", "unreadable", "ilegible",
	"cannot read", "no se puede leer",
}

// ProcessTurn runs the session's current stage with the supplied image.
// With no image and nothing started it returns the instructions without
// mutating state.
func (s *Service) ProcessTurn(ctx context.Context, sess *session.Session, accountID, imageURL string) StageResult {
	if accountID == "" && sess.AccountID != nil {
		accountID = *sess.AccountID
	}
	if accountID == "" {
		return StageResult{
			Stage:  currentStage(sess),
			Errors: []string{"missing account id"},
			Reply:  "Para iniciar la verificación de identidad necesito que inicies sesión con tu cuenta.",
		}
	}

	player, err := s.players.FindByAccountID(ctx, accountID)
	if err != nil {
		log := logger.GetLogger()
		log.Error().Err(err).Str("account_id", accountID).Msg("player lookup failed")
		return StageResult{
			Stage:  currentStage(sess),
			Errors: []string{fmt.Sprintf("player lookup failed: %v", err)},
			Reply:  "Tuve un problema consultando tu cuenta. Por favor intenta de nuevo en unos minutos.",
		}
	}
	if player == nil {
		return StageResult{
			Stage:  currentStage(sess),
			Errors: []string{"account not found"},
			Reply:  fmt.Sprintf("No encontré ninguna cuenta con el identificador %s. Verifica tus datos e intenta de nuevo.", accountID),
		}
	}
	if player.Verified {
		metrics.RecordKycStage(string(currentStage(sess)), "refused_already_verified")
		return StageResult{
			Success: true,
			Stage:   currentStage(sess),
			Reply:   "Tu cuenta ya está verificada ✅. No necesitas enviar documentos nuevamente.",
		}
	}

	stage := currentStage(sess)

	if stage == session.KycStageCompleted {
		// Terminal state is idempotent: nothing a new image can change.
		return StageResult{
			Success: true,
			Stage:   session.KycStageCompleted,
			Reply:   completedReply,
		}
	}

	if imageURL == "" {
		if stage == session.KycStageNotStarted {
			return StageResult{Success: true, Stage: session.KycStageNotStarted, Reply: instructionsReply}
		}
		return StageResult{Success: true, Stage: stage, Reply: stagePrompts[stage]}
	}

	switch stage {
	case session.KycStageNotStarted, session.KycStageFrontDocument:
		return s.runFrontStage(ctx, sess, player, imageURL)
	case session.KycStageBackDocument:
		return s.runBackStage(ctx, sess, imageURL)
	case session.KycStageSelfie:
		return s.runSelfieStage(ctx, sess, accountID, imageURL)
	default:
		return s.forceReset(ctx, sess, fmt.Sprintf("unknown kyc stage %q", stage))
	}
}

// RunStage executes one named stage, refusing submissions out of order.
func (s *Service) RunStage(ctx context.Context, sess *session.Session, accountID string, stage session.KycStage, imageURL string) StageResult {
	current := currentStage(sess)
	if current == session.KycStageCompleted {
		return StageResult{
			Success: true,
			Stage:   session.KycStageCompleted,
			Reply:   completedReply,
		}
	}
	expected := current
	if expected == session.KycStageNotStarted {
		expected = session.KycStageFrontDocument
	}
	if stage != expected {
		return StageResult{
			Stage:  current,
			Errors: []string{fmt.Sprintf("stage %s submitted while pipeline is at %s", stage, current)},
			Reply:  fmt.Sprintf("Esa no es la etapa que corresponde ahora. %s", stagePrompts[expected]),
		}
	}
	return s.ProcessTurn(ctx, sess, accountID, imageURL)
}

func (s *Service) runFrontStage(ctx context.Context, sess *session.Session, player *Player, imageURL string) StageResult {
	state := sess.EnsureKycState()
	state.CurrentStage = session.KycStageFrontDocument
	sess.Context = session.ContextKyc

	fields, err := s.extractor.ExtractDocumentFields(ctx, imageURL)
	if err != nil || fields == nil || strings.TrimSpace(fields.DocumentNumber) == "" {
		if err != nil {
			log := logger.GetLogger()
			log.Warn().Err(err).Msg("document field extraction failed")
		}
		return s.stageFailure(ctx, sess, session.KycStageFrontDocument,
			[]string{"no document number extracted"},
			"No pude leer el número de documento en la imagen. Envíame una foto más clara del frente de tu documento.")
	}

	docNumber := strings.TrimSpace(fields.DocumentNumber)
	var validationErrors []string

	if player.DocumentNumber != "" && player.DocumentNumber != docNumber {
		validationErrors = append(validationErrors,
			fmt.Sprintf("extracted document number %s does not match the one on file", docNumber))
	}

	owner, err := s.players.FindByDocumentNumber(ctx, docNumber)
	if err != nil {
		return s.stageFailure(ctx, sess, session.KycStageFrontDocument,
			[]string{fmt.Sprintf("document ownership lookup failed: %v", err)},
			"Tuve un problema validando tu documento. Por favor intenta de nuevo en unos minutos.")
	}
	if owner != nil && owner.AccountID != player.AccountID {
		validationErrors = append(validationErrors,
			fmt.Sprintf("document number %s is already registered to another account", docNumber))
	}

	if len(validationErrors) > 0 {
		return s.stageFailure(ctx, sess, session.KycStageFrontDocument, validationErrors,
			"El documento enviado no se puede asociar a tu cuenta. Verifica que sea tu propio documento y que coincida con tus datos registrados.")
	}

	state.DocumentNumber = docNumber
	state.FullName = strings.TrimSpace(fields.FullName)
	state.DateOfBirth = strings.TrimSpace(fields.DateOfBirth)
	state.FrontImageRef = imageURL
	state.CurrentStage = session.KycStageBackDocument
	if err := s.sessions.Save(ctx, sess); err != nil {
		return s.persistFailure(ctx, sess, session.KycStageFrontDocument, err)
	}

	metrics.RecordKycStage(string(session.KycStageFrontDocument), "success")
	return StageResult{
		Success: true,
		Stage:   session.KycStageBackDocument,
		Reply:   stagePrompts[session.KycStageBackDocument],
	}
}

func (s *Service) runBackStage(ctx context.Context, sess *session.Session, imageURL string) StageResult {
	analysis, err := s.extractor.AnalyzeImage(ctx, imageURL,
		"¿Es esta imagen el reverso de un documento de identidad y es legible? Acepta imágenes dudosas; rechaza solo si claramente no es un documento o es completamente ilegible.")
	if err != nil {
		log := logger.GetLogger()
		log.Warn().Err(err).Msg("back document analysis failed")
		return s.stageFailure(ctx, sess, session.KycStageBackDocument,
			[]string{fmt.Sprintf("back document analysis failed: %v", err)},
			"No pude procesar la imagen. Envíame de nuevo una foto del reverso de tu documento.")
	}

	verdict := ""
	if analysis != nil {
		verdict = strings.ToLower(analysis.RawText)
	}
	for _, marker := range backDocRejectMarkers {
		if strings.Contains(verdict, marker) {
			return s.stageFailure(ctx, sess, session.KycStageBackDocument,
				[]string{"image rejected as not a legible document back"},
				"La imagen no parece ser el reverso de un documento legible. Envíame una foto más clara del reverso.")
		}
	}

	state := sess.EnsureKycState()
	state.BackImageRef = imageURL
	state.CurrentStage = session.KycStageSelfie
	if err := s.sessions.Save(ctx, sess); err != nil {
		return s.persistFailure(ctx, sess, session.KycStageBackDocument, err)
	}

	metrics.RecordKycStage(string(session.KycStageBackDocument), "success")
	return StageResult{
		Success: true,
		Stage:   session.KycStageSelfie,
		Reply:   stagePrompts[session.KycStageSelfie],
	}
}

func (s *Service) runSelfieStage(ctx context.Context, sess *session.Session, accountID, imageURL string) StageResult {
	state := sess.EnsureKycState()

	// Stage 1 artifacts are the comparison baseline. If they are gone the
	// state is corrupt and the whole process restarts.
	if state.FrontImageRef == "" || state.DocumentNumber == "" {
		return s.forceReset(ctx, sess, "selfie stage reached without front document artifacts")
	}

	analysis, err := s.extractor.AnalyzeSelfie(ctx, imageURL, state.FrontImageRef)
	if err != nil || analysis == nil {
		if err != nil {
			log := logger.GetLogger()
			log.Warn().Err(err).Msg("selfie analysis failed")
		}
		return s.stageFailure(ctx, sess, session.KycStageSelfie,
			[]string{"selfie analysis failed"},
			"No pude procesar tu selfie. Envíame de nuevo una selfie sosteniendo tu documento.")
	}

	var validationErrors []string
	switch {
	case analysis.FaceCount == 0:
		validationErrors = append(validationErrors, "no face detected")
	case analysis.FaceCount > 1:
		validationErrors = append(validationErrors, "multiple faces detected")
	}
	if !analysis.HoldingDocument {
		validationErrors = append(validationErrors, "document not visibly held")
	}
	if analysis.MatchConfidence < s.faceMatchThreshold {
		validationErrors = append(validationErrors,
			fmt.Sprintf("face match confidence %.2f below threshold %.2f", analysis.MatchConfidence, s.faceMatchThreshold))
	}
	if len(validationErrors) > 0 {
		return s.stageFailure(ctx, sess, session.KycStageSelfie, validationErrors,
			"Tu selfie no pasó la validación: asegúrate de que se vea un solo rostro, que sostengas tu documento y que la foto sea nítida. Envíame una nueva selfie.")
	}

	if err := s.players.MarkVerified(ctx, accountID, state.DocumentNumber); err != nil {
		return s.stageFailure(ctx, sess, session.KycStageSelfie,
			[]string{fmt.Sprintf("failed to mark identity verified: %v", err)},
			"Tu selfie es válida pero tuve un problema registrando la verificación. Intenta enviarla de nuevo en unos minutos.")
	}

	now := time.Now().UTC()
	state.CurrentStage = session.KycStageCompleted
	state.CompletedAt = &now
	if err := s.sessions.Save(ctx, sess); err != nil {
		return s.persistFailure(ctx, sess, session.KycStageSelfie, err)
	}

	metrics.RecordKycStage(string(session.KycStageSelfie), "success")
	return StageResult{
		Success: true,
		Stage:   session.KycStageCompleted,
		Reply:   "🎉 ¡Verificación completada! Tu identidad fue confirmada y tu cuenta ya está verificada.",
	}
}

// stageFailure records the failed attempt and keeps the pipeline at the
// same stage so the user resubmits that stage's image.
func (s *Service) stageFailure(ctx context.Context, sess *session.Session, stage session.KycStage, errs []string, reply string) StageResult {
	if err := s.sessions.Save(ctx, sess); err != nil {
		log := logger.GetLogger()
		log.Error().Err(err).Msg("failed to persist kyc state after stage failure")
	}
	metrics.RecordKycStage(string(stage), "failure")
	return StageResult{
		Stage:  stage,
		Errors: errs,
		Reply:  reply,
	}
}

func (s *Service) persistFailure(ctx context.Context, sess *session.Session, stage session.KycStage, err error) StageResult {
	log := logger.GetLogger()
	log.Error().Err(err).Msg("failed to persist kyc state")
	metrics.RecordKycStage(string(stage), "persist_failure")
	return StageResult{
		Stage:  stage,
		Errors: []string{fmt.Sprintf("failed to persist verification state: %v", err)},
		Reply:  "Tuve un problema guardando tu avance. Por favor envía la imagen de nuevo.",
	}
}

// forceReset wipes all progress after an invariant violation.
func (s *Service) forceReset(ctx context.Context, sess *session.Session, detail string) StageResult {
	log := logger.GetLogger()
	log.Error().Str("detail", detail).Str("session", sess.PublicID).Msg("kyc state invariant violated, forcing reset")
	sess.ResetKycState()
	if err := s.sessions.Save(ctx, sess); err != nil {
		log.Error().Err(err).Msg("failed to persist kyc reset")
	}
	metrics.RecordKycStage(string(session.KycStageNotStarted), "forced_reset")
	return StageResult{
		Stage:  session.KycStageNotStarted,
		Errors: []string{detail},
		Reply:  "Hubo un problema con tu proceso de verificación y debemos reiniciarlo. Envíame nuevamente la foto del frente de tu documento.",
	}
}

func currentStage(sess *session.Session) session.KycStage {
	if sess.KycState == nil {
		return session.KycStageNotStarted
	}
	return sess.KycState.CurrentStage
}
