package ticket

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"betline-server/services/support-api/internal/domain/extraction"
)

type fakeLedger struct {
	tickets map[string]*BetTicket
}

func (f *fakeLedger) FindByLocalID(_ context.Context, localID string) (*BetTicket, error) {
	return f.tickets[localID], nil
}

type fakeExtractor struct {
	result *extraction.TicketIDResult
	err    error
}

func (f *fakeExtractor) ExtractTicketID(_ context.Context, _ string) (*extraction.TicketIDResult, error) {
	return f.result, f.err
}

func wonTicket(localID string) *BetTicket {
	return &BetTicket{
		LocalID:   localID,
		Stake:     decimal.RequireFromString("50.00"),
		Currency:  "USD",
		TotalOdds: decimal.RequireFromString("3.20"),
		Result:    ResultWon,
		Events: []BetEvent{
			{EventName: "Real Madrid vs Barcelona", Market: "Ganador", Selection: "Real Madrid", Odds: decimal.RequireFromString("1.80"), Result: ResultWon},
		},
	}
}

func TestResolve_NormalizationIdempotence(t *testing.T) {
	ledger := &fakeLedger{tickets: map[string]*BetTicket{
		"0000085426": wonTicket("0000085426"),
	}}
	svc := NewService(&fakeExtractor{}, ledger, 10)

	ids := []string{"85426", "0000085426", "85426 "}
	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			result := svc.Resolve(context.Background(), ResolveInput{ExplicitID: id})
			if !result.Success {
				t.Fatalf("Resolve(%q) failed: %s", id, result.ErrorDetail)
			}
			if result.Ticket.LocalID != "0000085426" {
				t.Errorf("Resolve(%q) matched %q, want 0000085426", id, result.Ticket.LocalID)
			}
		})
	}
}

func TestResolve_ProgressCheckpoints(t *testing.T) {
	ledger := &fakeLedger{tickets: map[string]*BetTicket{
		"0000085426": wonTicket("0000085426"),
	}}
	svc := NewService(&fakeExtractor{}, ledger, 10)

	type checkpoint struct {
		stage   ProgressStage
		percent int
	}
	var got []checkpoint
	svc.Resolve(context.Background(), ResolveInput{
		ExplicitID: "85426",
		Progress: func(stage ProgressStage, percent int) {
			got = append(got, checkpoint{stage, percent})
		},
	})

	want := []checkpoint{
		{StageReceived, 10},
		{StageQuerying, 60},
		{StageGeneratingResponse, 80},
		{StageCompleted, 100},
	}
	if len(got) != len(want) {
		t.Fatalf("checkpoints = %v, want %v", got, want)
	}
	prev := -1
	for i, cp := range got {
		if cp != want[i] {
			t.Errorf("checkpoint %d = %v, want %v", i, cp, want[i])
		}
		if cp.percent <= prev {
			t.Errorf("checkpoint %d percent %d not increasing (prev %d)", i, cp.percent, prev)
		}
		prev = cp.percent
	}
}

func TestResolve_ImagePipeline(t *testing.T) {
	tests := []struct {
		name        string
		extractor   *fakeExtractor
		wantSuccess bool
		wantID      string
		wantStages  []ProgressStage
	}{
		{
			name:        "vision extraction feeds the lookup",
			extractor:   &fakeExtractor{result: &extraction.TicketIDResult{TicketID: "85426", Confidence: 0.92}},
			wantSuccess: true,
			wantID:      "0000085426",
			wantStages:  []ProgressStage{StageReceived, StageAnalyzing, StageExtractingText, StageQuerying, StageGeneratingResponse, StageCompleted},
		},
		{
			name:       "no id extracted fails without guessing",
			extractor:  &fakeExtractor{result: &extraction.TicketIDResult{}},
			wantStages: []ProgressStage{StageReceived, StageAnalyzing, StageExtractingText, StageError},
		},
		{
			name:       "extractor error degrades to a user-facing failure",
			extractor:  &fakeExtractor{err: errors.New("backend down")},
			wantStages: []ProgressStage{StageReceived, StageAnalyzing, StageExtractingText, StageError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{tickets: map[string]*BetTicket{
				"0000085426": wonTicket("0000085426"),
			}}
			svc := NewService(tt.extractor, ledger, 10)

			var stages []ProgressStage
			result := svc.Resolve(context.Background(), ResolveInput{
				ImageURL: "https://example.com/ticket.jpg",
				Progress: func(stage ProgressStage, _ int) { stages = append(stages, stage) },
			})

			if result.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v (detail: %s)", result.Success, tt.wantSuccess, result.ErrorDetail)
			}
			if tt.wantID != "" && result.TicketID != tt.wantID {
				t.Errorf("TicketID = %q, want %q", result.TicketID, tt.wantID)
			}
			if !result.Success && result.Reply == "" {
				t.Error("failed resolution carries no user-facing reply")
			}
			if len(stages) != len(tt.wantStages) {
				t.Fatalf("stages = %v, want %v", stages, tt.wantStages)
			}
			for i, stage := range stages {
				if stage != tt.wantStages[i] {
					t.Errorf("stage %d = %q, want %q", i, stage, tt.wantStages[i])
				}
			}
		})
	}
}

func TestResolve_NotFoundCarriesExtractedID(t *testing.T) {
	ledger := &fakeLedger{tickets: map[string]*BetTicket{}}
	svc := NewService(&fakeExtractor{result: &extraction.TicketIDResult{TicketID: "99999999", Confidence: 0.81}}, ledger, 10)

	result := svc.Resolve(context.Background(), ResolveInput{ImageURL: "https://example.com/ticket.jpg"})
	if result.Success {
		t.Fatal("Resolve succeeded for unknown id")
	}
	if result.TicketID != "99999999" {
		t.Errorf("TicketID = %q, want 99999999", result.TicketID)
	}
	if result.Confidence != 0.81 {
		t.Errorf("Confidence = %v, want 0.81", result.Confidence)
	}
	if !strings.Contains(result.Reply, "99999999") {
		t.Errorf("Reply %q does not mention the id", result.Reply)
	}
	if !strings.Contains(result.ErrorDetail, "99999999") {
		t.Errorf("ErrorDetail %q does not mention the id", result.ErrorDetail)
	}
}

func TestNormalizeCandidates(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		width int
		want  []string
	}{
		{
			name:  "short id gains stripped and padded forms",
			raw:   "85426",
			width: 10,
			want:  []string{"85426", "0000085426"},
		},
		{
			name:  "padded id collapses to two forms",
			raw:   "0000085426",
			width: 10,
			want:  []string{"0000085426", "85426"},
		},
		{
			name:  "whitespace is trimmed first",
			raw:   "  85426 ",
			width: 10,
			want:  []string{"85426", "0000085426"},
		},
		{
			name:  "all zeros keeps only the literal",
			raw:   "0000",
			width: 10,
			want:  []string{"0000"},
		},
		{
			name:  "empty yields nothing",
			raw:   "   ",
			width: 10,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeCandidates(tt.raw, tt.width)
			if len(got) != len(tt.want) {
				t.Fatalf("normalizeCandidates(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("candidate %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
