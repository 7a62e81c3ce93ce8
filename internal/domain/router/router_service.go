package router

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"betline-server/services/support-api/internal/domain/extraction"
	"betline-server/services/support-api/internal/domain/kyc"
	"betline-server/services/support-api/internal/domain/session"
	"betline-server/services/support-api/internal/domain/ticket"
	"betline-server/services/support-api/internal/infrastructure/logger"
	"betline-server/services/support-api/internal/infrastructure/metrics"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

// ExtractionGateway is the slice of the extraction surface the router needs.
type ExtractionGateway interface {
	ClassifyIntent(ctx context.Context, text string) (*extraction.Intent, error)
	AnalyzeImage(ctx context.Context, imageURL, promptContext string) (*extraction.ImageAnalysis, error)
	GenerateGroundedAnswer(ctx context.Context, question string, grounding json.RawMessage) (string, error)
}

// TicketResolver resolves ticket ids or images into formatted replies.
type TicketResolver interface {
	Resolve(ctx context.Context, input ticket.ResolveInput) ticket.ResolveResult
}

// KycRunner advances a session's identity verification with one turn.
type KycRunner interface {
	ProcessTurn(ctx context.Context, sess *session.Session, accountID, imageURL string) kyc.StageResult
}

// TurnInput is one inbound user contribution.
type TurnInput struct {
	SessionPublicID string
	Text            string
	Images          []string
	AccountID       *string
	Progress        ticket.ProgressFunc
}

// TurnOutput is the routed result of a turn.
type TurnOutput struct {
	SessionPublicID string
	Reply           string
	FlowType        FlowType
}

const (
	topicExitAck = "Entendido, cambiamos de tema. ¿En qué más puedo ayudarte?"

	emptyTurnPrompt = "No recibí ningún mensaje. Escríbeme tu consulta o envíame una foto de tu ticket o documento."

	followUpSuffix = "\n\n¿Tienes alguna otra pregunta sobre este ticket? Si quieres hablar de otro tema, solo dímelo."
)

var cannedReplies = map[extraction.IntentType]string{
	extraction.IntentGreeting:     "¡Hola! 👋 Soy el asistente de soporte. Puedo verificar tickets de apuesta, ayudarte con la verificación de identidad o responder tus consultas. ¿En qué te ayudo?",
	extraction.IntentFarewell:     "¡Gracias por escribirnos! Que tengas un buen día. 👋",
	extraction.IntentAccountQuery: "Para consultas sobre tu cuenta puedo ayudarte con la verificación de identidad, o puedes revisar la sección Mi Cuenta en la app. ¿Qué necesitas?",
	extraction.IntentBetHistory:   "Puedes ver tu historial completo de apuestas en la sección Mis Apuestas de la app. Si quieres que revise un ticket específico, envíame el número o una foto.",
	extraction.IntentComplaint:    "Lamento el inconveniente. He registrado tu caso y un agente humano te contactará a la brevedad para revisarlo.",
}

const fallbackReply = "Puedo ayudarte a verificar un ticket de apuesta (envíame el número o una foto) o con la verificación de tu identidad. ¿Qué necesitas?"

// Service is the top-level turn orchestrator. It owns the routing decision
// and guarantees every produced reply is persisted as an assistant message
// before returning.
type Service struct {
	sessions *session.Service
	tickets  TicketResolver
	kyc      KycRunner
	gateway  ExtractionGateway
}

func NewService(sessions *session.Service, tickets TicketResolver, kycRunner KycRunner, gateway ExtractionGateway) *Service {
	return &Service{
		sessions: sessions,
		tickets:  tickets,
		kyc:      kycRunner,
		gateway:  gateway,
	}
}

// ProcessTurn routes one turn and returns the persisted assistant reply.
func (s *Service) ProcessTurn(ctx context.Context, input TurnInput) (*TurnOutput, error) {
	start := time.Now()
	log := logger.GetLogger()

	sess, err := s.sessions.GetOrCreate(ctx, input.SessionPublicID, input.AccountID)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeStateViolation, "session is closed", nil, "d8a4c2f1-6b3e-4970-8c5d-1f9e7a2b4c63")
	}

	text := strings.TrimSpace(input.Text)
	hasImages := len(input.Images) > 0

	if text == "" && !hasImages {
		reply, err := s.finishTurn(ctx, sess, emptyTurnPrompt, FlowGeneral, start)
		if err != nil {
			return nil, err
		}
		return reply, nil
	}

	if _, err := s.sessions.AppendMessage(ctx, sess, session.RoleUser, text, input.Images, nil); err != nil {
		return nil, err
	}

	reply, flow := s.route(ctx, sess, text, input)
	log.Info().
		Str("session", sess.PublicID).
		Str("flow", string(flow)).
		Dur("latency", time.Since(start)).
		Msg("turn routed")

	return s.finishTurn(ctx, sess, reply, flow, start)
}

// route applies the priority rules and dispatches to the owning flow.
// Every branch returns a conversational reply; external failures degrade
// to apologies, never to errors.
func (s *Service) route(ctx context.Context, sess *session.Session, text string, input TurnInput) (string, FlowType) {
	hasImages := len(input.Images) > 0

	if decision, ok := evaluateLexicalRules(text, hasImages, sess); ok {
		switch decision.Action {
		case ActionTopicExit:
			return s.handleTopicExit(ctx, sess), FlowGeneral
		case ActionTicketFollowUp:
			return s.handleTicketFollowUp(ctx, sess, text), FlowTicketVerification
		case ActionResolveTicket:
			return s.handleTicketFlow(ctx, sess, ticket.ResolveInput{
				ExplicitID: decision.TicketID,
				Question:   text,
				Progress:   input.Progress,
			}), FlowTicketVerification
		}
	}

	var intent *extraction.Intent
	if text != "" {
		classified, err := s.gateway.ClassifyIntent(ctx, text)
		if err != nil {
			// Ambiguous or failed classification falls through to the
			// next rule instead of failing the turn.
			log := logger.GetLogger()
			log.Warn().Err(err).Msg("intent classification unavailable")
		} else {
			intent = classified
		}
	}

	if intent != nil && !hasImages {
		switch intent.Type {
		case extraction.IntentTicketVerification:
			return "Claro, puedo verificar tu ticket. Envíame el número de ticket o una foto clara del mismo.", FlowTicketVerification
		case extraction.IntentKycStart, extraction.IntentKycUpload:
			return s.handleKycFlow(ctx, sess, input), FlowKyc
		}
	}

	if hasImages {
		if flow, ok := s.classifyImageFlow(ctx, input.Images[0]); ok {
			switch flow {
			case FlowTicketVerification:
				return s.handleTicketFlow(ctx, sess, ticket.ResolveInput{
					ImageURL: input.Images[0],
					Question: text,
					Progress: input.Progress,
				}), FlowTicketVerification
			case FlowKyc:
				return s.handleKycFlow(ctx, sess, input), FlowKyc
			}
		}
	}

	return s.handleGeneralQuery(ctx, sess, text, input, intent), FlowGeneral
}

func (s *Service) handleTopicExit(ctx context.Context, sess *session.Session) string {
	sess.ClearTicketContext()
	if err := s.sessions.Save(ctx, sess); err != nil {
		log := logger.GetLogger()
		log.Error().Err(err).Msg("failed to persist topic exit")
	}
	return topicExitAck
}

// handleTicketFollowUp answers from the stored record without re-resolving.
func (s *Service) handleTicketFollowUp(ctx context.Context, sess *session.Session, question string) string {
	tc := sess.LastVerifiedTicket
	answer, err := s.gateway.GenerateGroundedAnswer(ctx, question, tc.Record)
	if err != nil || strings.TrimSpace(answer) == "" {
		log := logger.GetLogger()
		log.Warn().Err(err).Str("ticket_id", tc.TicketID).Msg("grounded follow-up failed")
		return "No pude generar una respuesta sobre tu ticket en este momento. ¿Podrías reformular la pregunta?"
	}
	return answer
}

func (s *Service) handleTicketFlow(ctx context.Context, sess *session.Session, input ticket.ResolveInput) string {
	result := s.tickets.Resolve(ctx, input)
	if !result.Success {
		return result.Reply
	}

	record, err := json.Marshal(result.Ticket)
	if err != nil {
		log := logger.GetLogger()
		log.Error().Err(err).Str("ticket_id", result.TicketID).Msg("failed to encode resolved ticket")
		record = nil
	}
	sess.SetTicketContext(result.TicketID, record)
	if err := s.sessions.Save(ctx, sess); err != nil {
		log := logger.GetLogger()
		log.Error().Err(err).Msg("failed to persist ticket context")
	}

	if result.Escalated {
		return result.Reply
	}
	return result.Reply + followUpSuffix
}

func (s *Service) handleKycFlow(ctx context.Context, sess *session.Session, input TurnInput) string {
	accountID := ""
	if input.AccountID != nil {
		accountID = *input.AccountID
	}
	imageURL := ""
	if len(input.Images) > 0 {
		imageURL = input.Images[0]
	}
	result := s.kyc.ProcessTurn(ctx, sess, accountID, imageURL)
	return result.Reply
}

// classifyImageFlow asks the vision backend what kind of image this is and
// keyword-matches the free-text verdict.
func (s *Service) classifyImageFlow(ctx context.Context, imageURL string) (FlowType, bool) {
	analysis, err := s.gateway.AnalyzeImage(ctx, imageURL,
		"Clasifica esta imagen en una de estas categorías: ticket de apuesta, documento de identidad, selfie, otro. Responde con la categoría.")
	if err != nil || analysis == nil {
		log := logger.GetLogger()
		log.Warn().Err(err).Msg("image classification unavailable")
		return "", false
	}

	verdict := strings.ToLower(analysis.RawText)
	switch {
	case strings.Contains(verdict, "ticket") || strings.Contains(verdict, "apuesta") || strings.Contains(verdict, "boleto"):
		return FlowTicketVerification, true
	case strings.Contains(verdict, "documento") || strings.Contains(verdict, "identidad") ||
		strings.Contains(verdict, "selfie") || strings.Contains(verdict, "rostro") ||
		strings.Contains(verdict, "document") || strings.Contains(verdict, "id card"):
		return FlowKyc, true
	default:
		return "", false
	}
}

// handleGeneralQuery covers everything no specialized flow claimed.
func (s *Service) handleGeneralQuery(ctx context.Context, sess *session.Session, text string, input TurnInput, intent *extraction.Intent) string {
	// A ticket id can hide inside text even when classification said
	// general.
	if id := ExtractTicketIDFromText(text); id != "" {
		return s.handleTicketFlow(ctx, sess, ticket.ResolveInput{
			ExplicitID: id,
			Question:   text,
			Progress:   input.Progress,
		})
	}

	if len(input.Images) > 0 {
		analysis, err := s.gateway.AnalyzeImage(ctx, input.Images[0],
			"Describe brevemente el contenido de esta imagen para un agente de soporte.")
		if err == nil && analysis != nil && strings.TrimSpace(analysis.RawText) != "" {
			return "Esto es lo que veo en tu imagen: " + analysis.RawText +
				"\n\nSi es un ticket de apuesta o un documento de identidad, envíame una foto más clara para procesarlo."
		}
		return "No pude interpretar la imagen. Si es un ticket o un documento de identidad, intenta con una foto más clara."
	}

	if intent != nil {
		if reply, ok := cannedReplies[intent.Type]; ok {
			return reply
		}
	}
	return fallbackReply
}

// finishTurn persists the assistant reply and records turn metrics. No
// reply leaves the router without being durably recorded first.
func (s *Service) finishTurn(ctx context.Context, sess *session.Session, reply string, flow FlowType, start time.Time) (*TurnOutput, error) {
	metadata := &session.MessageMetadata{LatencyMS: time.Since(start).Milliseconds()}
	if _, err := s.sessions.AppendMessage(ctx, sess, session.RoleAssistant, reply, nil, metadata); err != nil {
		return nil, err
	}
	metrics.RecordTurn(string(flow), time.Since(start).Seconds())
	return &TurnOutput{
		SessionPublicID: sess.PublicID,
		Reply:           reply,
		FlowType:        flow,
	}, nil
}
