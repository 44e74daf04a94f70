package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foxseedlab/kikitori/internal/webhook"
)

func TestSendTranscript_EmptyWebhookURL(t *testing.T) {
	sender := NewHTTPSender("")
	if err := sender.SendTranscript(context.Background(), webhook.TranscriptWebhookPayload{SessionID: "s-1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSendTranscript_Success(t *testing.T) {
	var got webhook.TranscriptWebhookPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	payload := webhook.TranscriptWebhookPayload{
		SchemaVersion: webhook.TranscriptWebhookSchemaVersion,
		SessionID:     "s-1",
		DeviceName:    "mic",
		SegmentCount:  1,
		TranscriptSegments: []webhook.TranscriptWebhookSegment{
			{Index: 0, Original: "hello", Translated: "hola"},
		},
		Transcript: "hello => hola",
	}
	if err := sender.SendTranscript(context.Background(), payload); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.SessionID != "s-1" || got.SchemaVersion != webhook.TranscriptWebhookSchemaVersion {
		t.Fatalf("unexpected payload header: %+v", got)
	}
	if len(got.TranscriptSegments) != 1 || got.TranscriptSegments[0].Translated != "hola" {
		t.Fatalf("unexpected segments: %+v", got.TranscriptSegments)
	}
}

func TestSendTranscript_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	if err := sender.SendTranscript(context.Background(), webhook.TranscriptWebhookPayload{SessionID: "s-1"}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
