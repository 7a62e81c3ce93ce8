package router

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"betline-server/services/support-api/internal/domain/extraction"
	"betline-server/services/support-api/internal/domain/kyc"
	"betline-server/services/support-api/internal/domain/session"
	"betline-server/services/support-api/internal/domain/ticket"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

type memSessionRepo struct {
	sessions map[string]*session.Session
	messages map[uint][]*session.Message
	nextID   uint
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{
		sessions: make(map[string]*session.Session),
		messages: make(map[uint][]*session.Message),
	}
}

func (r *memSessionRepo) Create(_ context.Context, s *session.Session) error {
	r.nextID++
	s.ID = r.nextID
	r.sessions[s.PublicID] = s
	return nil
}

func (r *memSessionRepo) FindByPublicID(_ context.Context, publicID string) (*session.Session, error) {
	return r.sessions[publicID], nil
}

func (r *memSessionRepo) Update(_ context.Context, s *session.Session) error {
	r.sessions[s.PublicID] = s
	return nil
}

func (r *memSessionRepo) AppendMessage(_ context.Context, m *session.Message) error {
	r.nextID++
	m.ID = r.nextID
	m.SequenceNumber = len(r.messages[m.SessionID]) + 1
	r.messages[m.SessionID] = append(r.messages[m.SessionID], m)
	return nil
}

func (r *memSessionRepo) FindMessages(_ context.Context, sessionID uint) ([]*session.Message, error) {
	return r.messages[sessionID], nil
}

func (r *memSessionRepo) CloseIdleBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeResolver struct {
	result ticket.ResolveResult
	calls  []ticket.ResolveInput
}

func (f *fakeResolver) Resolve(_ context.Context, input ticket.ResolveInput) ticket.ResolveResult {
	f.calls = append(f.calls, input)
	return f.result
}

type fakeKycRunner struct {
	result kyc.StageResult
	calls  int
}

func (f *fakeKycRunner) ProcessTurn(_ context.Context, _ *session.Session, _, _ string) kyc.StageResult {
	f.calls++
	return f.result
}

type fakeGateway struct {
	intent        *extraction.Intent
	imageVerdict  string
	groundedReply string
	groundedCalls int
}

func (f *fakeGateway) ClassifyIntent(_ context.Context, _ string) (*extraction.Intent, error) {
	return f.intent, nil
}

func (f *fakeGateway) AnalyzeImage(_ context.Context, _, _ string) (*extraction.ImageAnalysis, error) {
	return &extraction.ImageAnalysis{RawText: f.imageVerdict}, nil
}

func (f *fakeGateway) GenerateGroundedAnswer(_ context.Context, _ string, _ json.RawMessage) (string, error) {
	f.groundedCalls++
	return f.groundedReply, nil
}

func resolvedTicketResult() ticket.ResolveResult {
	return ticket.ResolveResult{
		Success:    true,
		TicketID:   "0000085426",
		Confidence: 1.0,
		Ticket: &ticket.BetTicket{
			LocalID: "0000085426",
			Result:  ticket.ResultLost,
			Events: []ticket.BetEvent{
				{EventName: "Boca vs River", Market: "Ambos anotan", Selection: "Sí", Result: ticket.ResultLost},
			},
		},
		Reply: "🎫 Ticket 0000085426\nEstado: Perdida ❌",
	}
}

func TestProcessTurn_FourTurnScenario(t *testing.T) {
	repo := newMemSessionRepo()
	sessions := session.NewService(repo)
	resolver := &fakeResolver{result: resolvedTicketResult()}
	gateway := &fakeGateway{
		intent:        &extraction.Intent{Type: extraction.IntentGreeting, Confidence: 0.9},
		groundedReply: "Perdiste por la selección Boca vs River (Ambos anotan: Sí).",
	}
	svc := NewService(sessions, resolver, &fakeKycRunner{}, gateway)
	ctx := context.Background()

	// Turn 1: greeting on a fresh session.
	out1, err := svc.ProcessTurn(ctx, TurnInput{Text: "Hola"})
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if out1.FlowType != FlowGeneral {
		t.Errorf("turn 1 flow = %q, want general_query", out1.FlowType)
	}
	sess := repo.sessions[out1.SessionPublicID]
	if sess.LastVerifiedTicket != nil || sess.KycState != nil {
		t.Errorf("turn 1 set verification state: %+v", sess)
	}

	// Turn 2: explicit ticket id resolves and stores context.
	out2, err := svc.ProcessTurn(ctx, TurnInput{SessionPublicID: out1.SessionPublicID, Text: "mi ticket es 0000085426"})
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if out2.FlowType != FlowTicketVerification {
		t.Errorf("turn 2 flow = %q, want ticket_verification", out2.FlowType)
	}
	if len(resolver.calls) != 1 || resolver.calls[0].ExplicitID != "0000085426" {
		t.Fatalf("turn 2 resolver calls = %+v, want one with id 0000085426", resolver.calls)
	}
	if sess.LastVerifiedTicket == nil || sess.LastVerifiedTicket.TicketID != "0000085426" {
		t.Fatalf("turn 2 ticket context = %+v", sess.LastVerifiedTicket)
	}

	// Turn 3: follow-up answers from stored record, no re-resolution.
	out3, err := svc.ProcessTurn(ctx, TurnInput{SessionPublicID: out1.SessionPublicID, Text: "por qué perdí"})
	if err != nil {
		t.Fatalf("turn 3: %v", err)
	}
	if out3.FlowType != FlowTicketVerification {
		t.Errorf("turn 3 flow = %q, want ticket_verification", out3.FlowType)
	}
	if len(resolver.calls) != 1 {
		t.Errorf("turn 3 re-resolved the ticket: %d calls", len(resolver.calls))
	}
	if gateway.groundedCalls != 1 {
		t.Errorf("turn 3 grounded calls = %d, want 1", gateway.groundedCalls)
	}
	if !strings.Contains(out3.Reply, "Boca vs River") {
		t.Errorf("turn 3 reply does not name the losing leg: %q", out3.Reply)
	}

	// Turn 4: exit clears the topic.
	out4, err := svc.ProcessTurn(ctx, TurnInput{SessionPublicID: out1.SessionPublicID, Text: "otra cosa"})
	if err != nil {
		t.Fatalf("turn 4: %v", err)
	}
	if out4.FlowType != FlowGeneral {
		t.Errorf("turn 4 flow = %q, want general_query", out4.FlowType)
	}
	if sess.LastVerifiedTicket != nil {
		t.Errorf("turn 4 did not clear ticket context: %+v", sess.LastVerifiedTicket)
	}
}

func TestProcessTurn_EmptyTurn(t *testing.T) {
	repo := newMemSessionRepo()
	sessions := session.NewService(repo)
	svc := NewService(sessions, &fakeResolver{}, &fakeKycRunner{}, &fakeGateway{})

	out, err := svc.ProcessTurn(context.Background(), TurnInput{})
	if err != nil {
		t.Fatalf("empty turn errored: %v", err)
	}
	if out.FlowType != FlowGeneral {
		t.Errorf("flow = %q, want general_query", out.FlowType)
	}
	if out.Reply == "" {
		t.Error("empty turn produced no prompt")
	}
}

func TestProcessTurn_ClosedSessionRejected(t *testing.T) {
	repo := newMemSessionRepo()
	sessions := session.NewService(repo)
	svc := NewService(sessions, &fakeResolver{}, &fakeKycRunner{}, &fakeGateway{})
	ctx := context.Background()

	sess, err := sessions.GetOrCreate(ctx, "", nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := sessions.Close(ctx, sess); err != nil {
		t.Fatalf("close session: %v", err)
	}

	_, err = svc.ProcessTurn(ctx, TurnInput{SessionPublicID: sess.PublicID, Text: "hola"})
	if err == nil {
		t.Fatal("closed session accepted a turn")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeStateViolation) {
		t.Errorf("error = %v, want STATE_VIOLATION", err)
	}
}

func TestProcessTurn_RepliesArePersisted(t *testing.T) {
	repo := newMemSessionRepo()
	sessions := session.NewService(repo)
	gateway := &fakeGateway{intent: &extraction.Intent{Type: extraction.IntentGreeting}}
	svc := NewService(sessions, &fakeResolver{}, &fakeKycRunner{}, gateway)
	ctx := context.Background()

	out, err := svc.ProcessTurn(ctx, TurnInput{Text: "Hola"})
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	sess := repo.sessions[out.SessionPublicID]
	messages := repo.messages[sess.ID]
	if len(messages) != 2 {
		t.Fatalf("len(messages) = %d, want user + assistant", len(messages))
	}
	last := messages[len(messages)-1]
	if last.Role != session.RoleAssistant {
		t.Errorf("last message role = %q, want assistant", last.Role)
	}
	if last.Content != out.Reply {
		t.Errorf("persisted reply %q differs from returned %q", last.Content, out.Reply)
	}
}

func TestProcessTurn_ImageClassificationRouting(t *testing.T) {
	tests := []struct {
		name     string
		verdict  string
		wantFlow FlowType
	}{
		{"ticket image", "Es un ticket de apuesta deportiva.", FlowTicketVerification},
		{"identity document image", "La imagen muestra un documento de identidad.", FlowKyc},
		{"selfie image", "Una selfie de una persona con un rostro visible.", FlowKyc},
		{"unrelated image", "Una foto de un paisaje.", FlowGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemSessionRepo()
			sessions := session.NewService(repo)
			resolver := &fakeResolver{result: resolvedTicketResult()}
			kycRunner := &fakeKycRunner{result: kyc.StageResult{Success: true, Reply: "Envíame el reverso."}}
			gateway := &fakeGateway{imageVerdict: tt.verdict}
			svc := NewService(sessions, resolver, kycRunner, gateway)

			out, err := svc.ProcessTurn(context.Background(), TurnInput{
				Images: []string{"https://img/upload.jpg"},
			})
			if err != nil {
				t.Fatalf("ProcessTurn: %v", err)
			}
			if out.FlowType != tt.wantFlow {
				t.Errorf("flow = %q, want %q", out.FlowType, tt.wantFlow)
			}
		})
	}
}

func TestProcessTurn_TicketIntentWithoutID(t *testing.T) {
	repo := newMemSessionRepo()
	sessions := session.NewService(repo)
	resolver := &fakeResolver{}
	gateway := &fakeGateway{intent: &extraction.Intent{Type: extraction.IntentTicketVerification, Confidence: 0.85}}
	svc := NewService(sessions, resolver, &fakeKycRunner{}, gateway)

	out, err := svc.ProcessTurn(context.Background(), TurnInput{Text: "quiero verificar mi apuesta de ayer"})
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if out.FlowType != FlowTicketVerification {
		t.Errorf("flow = %q, want ticket_verification", out.FlowType)
	}
	if len(resolver.calls) != 0 {
		t.Errorf("resolver called without an id or image: %+v", resolver.calls)
	}
}
