package router

import (
	"testing"

	"betline-server/services/support-api/internal/domain/session"
)

func TestMatchesExitPhrase(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain exit", "otra cosa", true},
		{"exit with punctuation", "¡Otra cosa!", true},
		{"exit at end of sentence", "gracias, quiero cancelar", true},
		{"goodbye", "goodbye", true},
		{"cancellation follow-up is not an exit", "¿me cancelaron alguna selección?", false},
		{"embedded verb is not an exit", "el partido se canceló", false},
		{"unrelated", "mi ticket es 85426", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesExitPhrase(tt.text); got != tt.want {
				t.Errorf("matchesExitPhrase(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestMatchesFollowUp(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"why lost", "¿por qué perdí?", true},
		{"result question", "cuál fue el resultado", true},
		{"event question", "qué pasó con el evento", true},
		{"odds question", "la cuota estaba bien?", true},
		{"english why", "why did i lose", true},
		{"greeting", "hola", false},
		{"new ticket", "quiero verificar otro boleto", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesFollowUp(tt.text); got != tt.want {
				t.Errorf("matchesFollowUp(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractTicketIDFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"labeled reference", "mi ticket es 0000085426", "0000085426"},
		{"labeled with colon", "ticket: 123456", "123456"},
		{"labeled boleto", "el boleto número 4321 por favor", "4321"},
		{"bare long run", "revisa el 85426123 cuando puedas", "85426123"},
		{"zero padded short run", "es el 0085426", "0085426"},
		{"label beats bare run", "ticket 9999 aunque también tengo el 12345678", "9999"},
		{"short bare run ignored", "tengo 25 años", ""},
		{"no id", "hola, buenas tardes", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTicketIDFromText(tt.text); got != tt.want {
				t.Errorf("ExtractTicketIDFromText(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestEvaluateLexicalRules_Priority(t *testing.T) {
	withTicket := &session.Session{
		Status:             session.StatusActive,
		LastVerifiedTicket: &session.TicketContext{TicketID: "85426"},
	}
	fresh := &session.Session{Status: session.StatusActive}

	tests := []struct {
		name       string
		text       string
		hasImages  bool
		sess       *session.Session
		wantMatch  bool
		wantAction Action
	}{
		{
			name:       "exit beats follow-up wording",
			text:       "listo, gracias",
			sess:       withTicket,
			wantMatch:  true,
			wantAction: ActionTopicExit,
		},
		{
			name:       "follow-up with active ticket",
			text:       "¿por qué perdí?",
			sess:       withTicket,
			wantMatch:  true,
			wantAction: ActionTicketFollowUp,
		},
		{
			name:      "follow-up wording without ticket context falls through",
			text:      "¿por qué perdí?",
			sess:      fresh,
			wantMatch: false,
		},
		{
			name:      "follow-up with new image falls through",
			text:      "¿por qué perdí?",
			hasImages: true,
			sess:      withTicket,
			wantMatch: false,
		},
		{
			name:       "explicit id without ticket context",
			text:       "mi ticket es 0000085426",
			sess:       fresh,
			wantMatch:  true,
			wantAction: ActionResolveTicket,
		},
		{
			name:      "plain greeting matches nothing",
			text:      "Hola",
			sess:      fresh,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, ok := evaluateLexicalRules(tt.text, tt.hasImages, tt.sess)
			if ok != tt.wantMatch {
				t.Fatalf("evaluateLexicalRules(%q) matched=%v, want %v", tt.text, ok, tt.wantMatch)
			}
			if ok && decision.Action != tt.wantAction {
				t.Errorf("action = %q, want %q", decision.Action, tt.wantAction)
			}
		})
	}
}
