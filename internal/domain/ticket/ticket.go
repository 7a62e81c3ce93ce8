package ticket

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Result of a ticket or of a single leg.
type Result string

const (
	ResultPending  Result = "pending"
	ResultWon      Result = "won"
	ResultLost     Result = "lost"
	ResultVoid     Result = "void"
	ResultCanceled Result = "canceled"
)

// BetEvent is one selection (leg) within a ticket.
type BetEvent struct {
	EventName string          `json:"event_name"`
	Market    string          `json:"market"`
	Selection string          `json:"selection"`
	Odds      decimal.Decimal `json:"odds"`
	Result    Result          `json:"result"`
}

// BetTicket is a ledger row. Read-only from this service's point of view.
type BetTicket struct {
	LocalID         string          `json:"local_id"`
	SignatureID     string          `json:"signature_id,omitempty"`
	Stake           decimal.Decimal `json:"stake"`
	Currency        string          `json:"currency"`
	TotalOdds       decimal.Decimal `json:"total_odds"`
	PotentialPayout decimal.Decimal `json:"potential_payout"`
	Result          Result          `json:"result"`
	SettledAt       *time.Time      `json:"settled_at,omitempty"`
	Events          []BetEvent      `json:"events"`
}

// LedgerRepository resolves tickets by their human-facing local id.
// FindByLocalID returns (nil, nil) when no row matches.
type LedgerRepository interface {
	FindByLocalID(ctx context.Context, localID string) (*BetTicket, error)
}

// ProgressStage names are part of the caller contract; a UI maps them to
// fixed copy.
type ProgressStage string

const (
	StageReceived           ProgressStage = "received"
	StageAnalyzing          ProgressStage = "analyzing"
	StageExtractingText     ProgressStage = "extracting_text"
	StageQuerying           ProgressStage = "querying"
	StageGeneratingResponse ProgressStage = "generating_response"
	StageCompleted          ProgressStage = "completed"
	StageError              ProgressStage = "error"
)

// ProgressFunc receives best-effort progress checkpoints during resolution.
// Implementations must not block; a slow or missing receiver never stalls
// the pipeline.
type ProgressFunc func(stage ProgressStage, percent int)

// ResolveInput describes one resolution request. Exactly one of ImageURL or
// ExplicitID is expected; Question optionally carries the user's free text
// for answer shaping.
type ResolveInput struct {
	ImageURL   string
	ExplicitID string
	Question   string
	Progress   ProgressFunc
}

// ResolveResult is always returned, success or not. On failure Reply holds
// the conversational explanation and ErrorDetail the internal cause for
// logging.
type ResolveResult struct {
	Success     bool
	TicketID    string
	Confidence  float64
	Ticket      *BetTicket
	Reply       string
	Escalated   bool
	ErrorDetail string
}

// normalizeCandidates produces the lookup forms for a raw ticket id, in try
// order: literal trimmed, leading zeros stripped, zero-padded to width.
// Duplicates are removed preserving order.
func normalizeCandidates(raw string, width int) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	candidates := []string{trimmed}

	stripped := strings.TrimLeft(trimmed, "0")
	if stripped != "" {
		candidates = append(candidates, stripped)
		if len(stripped) < width {
			candidates = append(candidates, strings.Repeat("0", width-len(stripped))+stripped)
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	unique := candidates[:0]
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}
