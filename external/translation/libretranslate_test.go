package translation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foxseedlab/kikitori/internal/translation"
)

func TestTranslate_Success(t *testing.T) {
	var got translateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/translate" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"translatedText": "hola mundo"}`))
	}))
	defer server.Close()

	client := NewLibreTranslateClient(server.URL+"/", "secret")
	out, err := client.Translate(context.Background(), translation.Request{Text: "hello world", SourceLang: "en", TargetLang: "es"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hola mundo" {
		t.Fatalf("unexpected translation: %q", out)
	}
	if got.Q != "hello world" || got.Source != "en" || got.Target != "es" || got.Format != "text" || got.APIKey != "secret" {
		t.Fatalf("unexpected request body: %+v", got)
	}
}

func TestTranslate_OmitsEmptyAPIKey(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"translatedText": "oi"}`))
	}))
	defer server.Close()

	client := NewLibreTranslateClient(server.URL, "")
	if _, err := client.Translate(context.Background(), translation.Request{Text: "hi", SourceLang: "en", TargetLang: "pt"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raw["api_key"]; ok {
		t.Fatalf("api_key should be omitted when empty: %+v", raw)
	}
}

func TestTranslate_EmptyTextSkipsRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := NewLibreTranslateClient(server.URL, "")
	out, err := client.Translate(context.Background(), translation.Request{Text: "  ", SourceLang: "en", TargetLang: "es"})
	if err != nil || out != "" {
		t.Fatalf("expected empty result without error, got %q, %v", out, err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no request, got %d", calls.Load())
	}
}

func TestTranslate_Non2xxIsServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "es is not supported"}`))
	}))
	defer server.Close()

	client := NewLibreTranslateClient(server.URL, "")
	_, err := client.Translate(context.Background(), translation.Request{Text: "hello", SourceLang: "en", TargetLang: "es"})
	var unavailable *translation.ServiceUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ServiceUnavailableError, got %v", err)
	}
	if unavailable.StatusCode != http.StatusBadRequest || !strings.Contains(unavailable.Body, "not supported") {
		t.Fatalf("unexpected error details: %+v", unavailable)
	}
}

func TestTranslate_UnreachableIsServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewLibreTranslateClient(url, "")
	_, err := client.Translate(context.Background(), translation.Request{Text: "hello", SourceLang: "en", TargetLang: "es"})
	var unavailable *translation.ServiceUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ServiceUnavailableError, got %v", err)
	}
	if unavailable.StatusCode != 0 {
		t.Fatalf("expected no status code, got %d", unavailable.StatusCode)
	}
}

func TestTranslate_MalformedBodyIsServiceResponseError(t *testing.T) {
	cases := map[string]string{
		"not json":      `<html>oops</html>`,
		"missing field": `{"detectedLanguage": {"language": "en"}}`,
		"error field":   `{"error": "quota exceeded"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			client := NewLibreTranslateClient(server.URL, "")
			_, err := client.Translate(context.Background(), translation.Request{Text: "hello", SourceLang: "en", TargetLang: "es"})
			var respErr *translation.ServiceResponseError
			if !errors.As(err, &respErr) {
				t.Fatalf("expected ServiceResponseError, got %v", err)
			}
		})
	}
}

func TestTranslate_EmptyTranslationIsValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"translatedText": ""}`))
	}))
	defer server.Close()

	client := NewLibreTranslateClient(server.URL, "")
	out, err := client.Translate(context.Background(), translation.Request{Text: "hm", SourceLang: "en", TargetLang: "es"})
	if err != nil || out != "" {
		t.Fatalf("expected empty translation without error, got %q, %v", out, err)
	}
}

func TestTranslate_RespectsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	client := NewLibreTranslateClient(server.URL, "")
	_, err := client.Translate(ctx, translation.Request{Text: "hello", SourceLang: "en", TargetLang: "es"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestLanguages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/languages" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"code":"en","name":"English","targets":["es","pt"]},{"code":"pt","name":"Portuguese","targets":["en"]}]`))
	}))
	defer server.Close()

	client := NewLibreTranslateClient(server.URL, "")
	langs, err := client.Languages(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(langs) != 2 || langs[0].Code != "en" || langs[0].Name != "English" {
		t.Fatalf("unexpected languages: %+v", langs)
	}
	if !translation.SupportsPair(langs, "en", "pt") || translation.SupportsPair(langs, "pt", "es") {
		t.Fatalf("unexpected pair support for %+v", langs)
	}
}
