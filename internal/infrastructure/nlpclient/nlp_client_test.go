package nlpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"betline-server/services/support-api/internal/config"
	"betline-server/services/support-api/internal/domain/extraction"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.Config{NLPServiceURL: srv.URL, ExtractionTimeout: 5 * time.Second})
}

func TestClassifyIntent_DecodesNestedIntent(t *testing.T) {
	var gotPath string
	var gotBody struct {
		Text string `json:"text"`
	}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"text": "quiero verificar mi ticket 85426",
			"intent": {"type": "ticket_verification", "confidence": 0.91},
			"alternatives": [{"type": "bet_history", "confidence": 0.05}]
		}`))
	}))

	intent, err := client.ClassifyIntent(context.Background(), "quiero verificar mi ticket 85426")
	if err != nil {
		t.Fatalf("classify intent: %v", err)
	}
	if gotPath != "/api/nlp/intent" {
		t.Errorf("posted to %s", gotPath)
	}
	if gotBody.Text != "quiero verificar mi ticket 85426" {
		t.Errorf("request carried text %q", gotBody.Text)
	}
	if intent.Type != extraction.IntentTicketVerification {
		t.Errorf("intent type = %s", intent.Type)
	}
	if intent.Confidence != 0.91 {
		t.Errorf("intent confidence = %v", intent.Confidence)
	}
}

func TestAnalyzeText_DecodesEntitiesAndIntent(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"text": "mi ticket 00085426 no pagó",
			"entities": [
				{"type": "ticket_id", "value": "00085426", "confidence": 0.95, "start_pos": 10, "end_pos": 18}
			],
			"intent": {"type": "complaint", "confidence": 0.72},
			"alternative_intents": [{"type": "ticket_verification", "confidence": 0.2}],
			"word_count": 5,
			"char_count": 26
		}`))
	}))

	analysis, err := client.AnalyzeText(context.Background(), "mi ticket 00085426 no pagó")
	if err != nil {
		t.Fatalf("analyze text: %v", err)
	}
	if gotPath != "/api/nlp/analyze" {
		t.Errorf("posted to %s", gotPath)
	}
	if analysis.Intent == nil || analysis.Intent.Type != extraction.IntentComplaint {
		t.Fatalf("intent = %+v", analysis.Intent)
	}
	if analysis.Intent.Confidence != 0.72 {
		t.Errorf("intent confidence = %v", analysis.Intent.Confidence)
	}
	if len(analysis.Entities) != 1 {
		t.Fatalf("entities = %+v", analysis.Entities)
	}
	if e := analysis.Entities[0]; e.Type != "ticket_id" || e.Value != "00085426" || e.Confidence != 0.95 {
		t.Errorf("entity = %+v", e)
	}
}

func TestClassifyIntent_ServerErrorPropagates(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	}))

	if _, err := client.ClassifyIntent(context.Background(), "hola"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}
