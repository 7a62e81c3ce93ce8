package ticket

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func lostTicket() *BetTicket {
	settled := time.Date(2026, 1, 2, 18, 30, 0, 0, time.UTC)
	return &BetTicket{
		LocalID:   "0000085426",
		Stake:     decimal.RequireFromString("50.00"),
		Currency:  "USD",
		TotalOdds: decimal.RequireFromString("4.50"),
		Result:    ResultLost,
		SettledAt: &settled,
		Events: []BetEvent{
			{EventName: "Real Madrid vs Barcelona", Market: "Ganador del partido", Selection: "Real Madrid", Odds: decimal.RequireFromString("1.80"), Result: ResultWon},
			{EventName: "Boca vs River", Market: "Ambos anotan", Selection: "Sí", Odds: decimal.RequireFromString("1.60"), Result: ResultLost},
			{EventName: "Chivas vs América", Market: "Total de goles", Selection: "Más de 2.5", Odds: decimal.RequireFromString("1.55"), Result: ResultWon},
		},
	}
}

func TestFormatTicket_WhyLostNamesLosingLegsOnly(t *testing.T) {
	reply, escalated := FormatTicket(lostTicket(), "¿por qué perdí?")

	if escalated {
		t.Fatal("lost ticket flagged for escalation")
	}
	if !strings.Contains(reply, "Perdiste por las siguientes selecciones") {
		t.Fatalf("reply missing loss breakdown:\n%s", reply)
	}

	breakdown := reply[strings.Index(reply, "Perdiste por"):]
	if !strings.Contains(breakdown, "Boca vs River") {
		t.Errorf("breakdown missing the losing leg:\n%s", breakdown)
	}
	if strings.Contains(breakdown, "Real Madrid vs Barcelona") || strings.Contains(breakdown, "Chivas vs América") {
		t.Errorf("breakdown names winning legs:\n%s", breakdown)
	}
}

func TestFormatTicket_NoBreakdownWithoutQuestion(t *testing.T) {
	reply, _ := FormatTicket(lostTicket(), "")
	if strings.Contains(reply, "Perdiste por") {
		t.Errorf("unprompted loss breakdown present:\n%s", reply)
	}
}

func TestFormatTicket_CanceledEscalatesAndSuppressesExplanation(t *testing.T) {
	tk := lostTicket()
	tk.Events[1].Result = ResultCanceled

	reply, escalated := FormatTicket(tk, "¿por qué perdí?")

	if !escalated {
		t.Fatal("ticket with canceled leg not escalated")
	}
	if !strings.Contains(reply, "requiere revisión de un agente humano") {
		t.Errorf("reply missing human review notice:\n%s", reply)
	}
	if strings.Contains(reply, "Perdiste por") {
		t.Errorf("canceled ticket still carries loss explanation:\n%s", reply)
	}
}

func TestFormatTicket_VoidOverallEscalates(t *testing.T) {
	tk := lostTicket()
	tk.Result = ResultVoid

	_, escalated := FormatTicket(tk, "")
	if !escalated {
		t.Error("void ticket not escalated")
	}
}

func TestFormatTicket_CancellationQuestionWithNone(t *testing.T) {
	tk := lostTicket()
	reply, _ := FormatTicket(tk, "¿me cancelaron alguna selección?")

	if !strings.Contains(reply, "no tiene selecciones canceladas ni anuladas") {
		t.Errorf("reply missing explicit no-cancellation statement:\n%s", reply)
	}
}

func TestFormatTicket_PendingShowsPotentialPayout(t *testing.T) {
	tk := lostTicket()
	tk.Result = ResultPending
	tk.SettledAt = nil
	tk.PotentialPayout = decimal.RequireFromString("225.00")

	reply, _ := FormatTicket(tk, "")
	if !strings.Contains(reply, "Pago potencial: 225.00 USD") {
		t.Errorf("reply missing potential payout:\n%s", reply)
	}
	if strings.Contains(reply, "Liquidada") {
		t.Errorf("pending ticket shows settlement date:\n%s", reply)
	}
}
