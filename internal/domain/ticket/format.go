package ticket

import (
	"fmt"
	"strings"

	"betline-server/services/support-api/internal/utils/functional"
)

var statusText = map[Result]string{
	ResultPending:  "Pendiente",
	ResultWon:      "Ganada",
	ResultLost:     "Perdida",
	ResultVoid:     "Anulada",
	ResultCanceled: "Cancelada",
}

var resultGlyph = map[Result]string{
	ResultPending:  "⏳",
	ResultWon:      "✅",
	ResultLost:     "❌",
	ResultVoid:     "⚠️",
	ResultCanceled: "⚠️",
}

var whyLostWords = []string{
	"por qué", "por que", "porque", "perdí", "perdi", "perdió", "perdio",
	"explica", "resultado", "why", "lost", "lose",
}

var cancellationWords = []string{
	"cancelad", "cancelac", "anulad", "anulac", "cancel", "void",
}

// FormatTicket renders the conversational summary of a resolved ticket.
// question is the user's free text, used to decide whether to add a loss
// breakdown or a cancellation note. Returns the reply and whether the
// ticket requires human review.
func FormatTicket(t *BetTicket, question string) (string, bool) {
	var b strings.Builder

	status := statusText[t.Result]
	if status == "" {
		status = string(t.Result)
	}

	fmt.Fprintf(&b, "🎫 Ticket %s\n", t.LocalID)
	fmt.Fprintf(&b, "Estado: %s %s\n", status, resultGlyph[t.Result])
	fmt.Fprintf(&b, "Apuesta: %s %s\n", t.Stake.StringFixed(2), t.Currency)
	fmt.Fprintf(&b, "Cuota total: %s\n", t.TotalOdds.StringFixed(2))
	if t.SettledAt != nil {
		fmt.Fprintf(&b, "Liquidada: %s\n", t.SettledAt.Format("02/01/2006 15:04"))
	} else {
		fmt.Fprintf(&b, "Pago potencial: %s %s\n", t.PotentialPayout.StringFixed(2), t.Currency)
	}

	if len(t.Events) > 0 {
		b.WriteString("\nSelecciones:\n")
		for _, ev := range t.Events {
			fmt.Fprintf(&b, "%s %s — %s: %s (cuota %s)\n",
				resultGlyph[ev.Result], ev.EventName, ev.Market, ev.Selection, ev.Odds.StringFixed(2))
		}
	}

	// Canceled or voided tickets always go to a human; no automatic
	// win/loss explanation below this point.
	if requiresHumanReview(t) {
		b.WriteString("\n⚠️ Este ticket contiene selecciones canceladas o anuladas y requiere revisión de un agente humano. Un miembro de nuestro equipo lo revisará a la brevedad.")
		return b.String(), true
	}

	q := strings.ToLower(question)

	if asksWhyLost(q) && t.Result == ResultLost {
		losing := functional.Filter(t.Events, func(ev BetEvent) bool {
			return ev.Result == ResultLost
		})
		if len(losing) > 0 {
			b.WriteString("\nPerdiste por las siguientes selecciones:\n")
			for _, ev := range losing {
				fmt.Fprintf(&b, "❌ %s — %s: %s\n", ev.EventName, ev.Market, ev.Selection)
			}
		}
	}

	if asksAboutCancellation(q) {
		b.WriteString("\nTu ticket no tiene selecciones canceladas ni anuladas.")
	}

	return b.String(), false
}

func requiresHumanReview(t *BetTicket) bool {
	if t.Result == ResultCanceled || t.Result == ResultVoid {
		return true
	}
	return functional.Any(t.Events, func(ev BetEvent) bool {
		return ev.Result == ResultCanceled || ev.Result == ResultVoid
	})
}

func asksWhyLost(q string) bool {
	if q == "" {
		return false
	}
	return functional.Any(whyLostWords, func(w string) bool {
		return strings.Contains(q, w)
	})
}

func asksAboutCancellation(q string) bool {
	if q == "" {
		return false
	}
	return functional.Any(cancellationWords, func(w string) bool {
		return strings.Contains(q, w)
	})
}
