package ticket

import (
	"time"

	"github.com/shopspring/decimal"

	"betline-server/services/support-api/internal/domain/ticket"
	"betline-server/services/support-api/internal/utils/functional"
)

// ResolveResponse is the outcome of a ticket resolution attempt.
type ResolveResponse struct {
	Success     bool            `json:"success"`
	TicketID    string          `json:"ticket_id,omitempty"`
	Confidence  float64         `json:"confidence,omitempty"`
	Reply       string          `json:"reply"`
	Escalated   bool            `json:"escalated,omitempty"`
	ErrorDetail string          `json:"error_detail,omitempty"`
	Ticket      *TicketResponse `json:"ticket,omitempty"`
}

// TicketResponse is the API shape of a resolved ledger row.
type TicketResponse struct {
	LocalID         string          `json:"local_id"`
	SignatureID     string          `json:"signature_id,omitempty"`
	Stake           decimal.Decimal `json:"stake"`
	Currency        string          `json:"currency"`
	TotalOdds       decimal.Decimal `json:"total_odds"`
	PotentialPayout decimal.Decimal `json:"potential_payout"`
	Result          string          `json:"result"`
	SettledAt       *time.Time      `json:"settled_at,omitempty"`
	Events          []EventResponse `json:"events"`
}

// EventResponse is one leg of a resolved ticket.
type EventResponse struct {
	EventName string          `json:"event_name"`
	Market    string          `json:"market"`
	Selection string          `json:"selection"`
	Odds      decimal.Decimal `json:"odds"`
	Result    string          `json:"result"`
}

func NewResolveResponse(result ticket.ResolveResult) *ResolveResponse {
	resp := &ResolveResponse{
		Success:     result.Success,
		TicketID:    result.TicketID,
		Confidence:  result.Confidence,
		Reply:       result.Reply,
		Escalated:   result.Escalated,
		ErrorDetail: result.ErrorDetail,
	}
	if result.Ticket != nil {
		resp.Ticket = NewTicketResponse(result.Ticket)
	}
	return resp
}

func NewTicketResponse(t *ticket.BetTicket) *TicketResponse {
	return &TicketResponse{
		LocalID:         t.LocalID,
		SignatureID:     t.SignatureID,
		Stake:           t.Stake,
		Currency:        t.Currency,
		TotalOdds:       t.TotalOdds,
		PotentialPayout: t.PotentialPayout,
		Result:          string(t.Result),
		SettledAt:       t.SettledAt,
		Events: functional.Map(t.Events, func(e ticket.BetEvent) EventResponse {
			return EventResponse{
				EventName: e.EventName,
				Market:    e.Market,
				Selection: e.Selection,
				Odds:      e.Odds,
				Result:    string(e.Result),
			}
		}),
	}
}
