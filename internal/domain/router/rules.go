package router

import (
	"regexp"
	"strings"

	"betline-server/services/support-api/internal/domain/session"
	"betline-server/services/support-api/internal/utils/functional"
)

// FlowType is the classified conversational purpose of a turn.
type FlowType string

const (
	FlowGeneral            FlowType = "general_query"
	FlowTicketVerification FlowType = "ticket_verification"
	FlowKyc                FlowType = "kyc"
)

// Action is what a matched routing rule wants done with the turn.
type Action string

const (
	ActionTopicExit      Action = "topic_exit"
	ActionTicketFollowUp Action = "ticket_follow_up"
	ActionResolveTicket  Action = "resolve_ticket"
)

// Decision is the outcome of the lexical rule pass. TicketID is set only
// for ActionResolveTicket.
type Decision struct {
	Rule     string
	Action   Action
	TicketID string
}

// Exit and follow-up lexicons are product-tuned; revisit with real traffic.
var exitPhrases = []string{
	"otra cosa", "cancelar", "cancela", "listo", "adiós", "adios",
	"salir", "nada más", "nada mas", "cambiar de tema", "eso es todo",
	"something else", "cancel", "done", "goodbye", "never mind",
}

var followUpWords = []string{
	"por qué", "por que", "porque", "perdí", "perdi", "perdió", "perdio",
	"resultado", "explica", "explícame", "explicame", "evento", "cuota",
	"selección", "seleccion", "cancelad", "anulad",
	"why", "result", "lost", "explain",
}

// Ticket id patterns in priority order: a labeled reference, then a bare
// 8-10 digit run, then a zero-padded run of 4 or more digits.
var ticketIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:ticket|tiquete|boleto|apuesta)\D{0,12}?(\d{4,12})`),
	regexp.MustCompile(`\b(\d{8,10})\b`),
	regexp.MustCompile(`\b(0\d{3,})\b`),
}

// lexicalRule is one entry of the ordered routing table. Rules are
// evaluated top to bottom and the first match wins, so the priority order
// stays auditable in one place.
type lexicalRule struct {
	name string
	eval func(text string, hasImages bool, sess *session.Session) (Decision, bool)
}

var lexicalRules = []lexicalRule{
	{
		name: "topic_exit",
		eval: func(text string, _ bool, sess *session.Session) (Decision, bool) {
			if sess.LastVerifiedTicket == nil || text == "" || !matchesExitPhrase(text) {
				return Decision{}, false
			}
			return Decision{Rule: "topic_exit", Action: ActionTopicExit}, true
		},
	},
	{
		name: "ticket_follow_up",
		eval: func(text string, hasImages bool, sess *session.Session) (Decision, bool) {
			if sess.LastVerifiedTicket == nil || hasImages || text == "" || !matchesFollowUp(text) {
				return Decision{}, false
			}
			return Decision{Rule: "ticket_follow_up", Action: ActionTicketFollowUp}, true
		},
	},
	{
		name: "explicit_ticket_id",
		eval: func(text string, _ bool, _ *session.Session) (Decision, bool) {
			id := ExtractTicketIDFromText(text)
			if id == "" {
				return Decision{}, false
			}
			return Decision{Rule: "explicit_ticket_id", Action: ActionResolveTicket, TicketID: id}, true
		},
	},
}

// evaluateLexicalRules runs the ordered rule table against a turn.
func evaluateLexicalRules(text string, hasImages bool, sess *session.Session) (Decision, bool) {
	for _, rule := range lexicalRules {
		if decision, ok := rule.eval(text, hasImages, sess); ok {
			return decision, true
		}
	}
	return Decision{}, false
}

// matchesExitPhrase requires the phrase at a word boundary so that verbs
// like "cancelaron" (a follow-up about canceled legs) do not read as an
// exit.
func matchesExitPhrase(text string) bool {
	normalized := strings.ToLower(text)
	normalized = strings.Map(func(r rune) rune {
		switch r {
		case '¿', '?', '¡', '!', '.', ',', ';', ':':
			return ' '
		}
		return r
	}, normalized)
	normalized = strings.Join(strings.Fields(normalized), " ")
	return functional.Any(exitPhrases, func(phrase string) bool {
		return normalized == phrase ||
			strings.HasPrefix(normalized, phrase+" ") ||
			strings.HasSuffix(normalized, " "+phrase)
	})
}

func matchesFollowUp(text string) bool {
	lowered := strings.ToLower(text)
	return functional.Any(followUpWords, func(word string) bool {
		return strings.Contains(lowered, word)
	})
}

// ExtractTicketIDFromText scans text with the priority-ordered id patterns
// and returns the first capture, or empty.
func ExtractTicketIDFromText(text string) string {
	if text == "" {
		return ""
	}
	for _, pattern := range ticketIDPatterns {
		if m := pattern.FindStringSubmatch(text); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}
