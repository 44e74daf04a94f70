package pipeline

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBuildTranscriptText(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	startedAt := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	endedAt := startedAt.Add(2 * time.Minute)
	pairs := []FinalPair{
		{Seq: 0, SpokenAt: startedAt.Add(15 * time.Second), Original: "bom dia", Translated: "good morning"},
		{Seq: 1, SpokenAt: startedAt.Add(75 * time.Second), Original: "tudo bem", TranslationErr: errors.New("boom")},
	}

	body := BuildTranscriptText("USB Mic", &LanguagePair{Source: "pt-BR", Target: "en"}, startedAt, endedAt, "America/Sao_Paulo", loc, pairs)

	if !strings.Contains(body, "Device: USB Mic") {
		t.Fatalf("device line not found in body: %s", body)
	}
	if !strings.Contains(body, "Period: 2026-10-14 09:00:00 ~ 2026-10-14 09:02:00 (America/Sao_Paulo)") {
		t.Fatalf("period line not found in body: %s", body)
	}
	if !strings.Contains(body, "Languages: pt-BR -> en") {
		t.Fatalf("languages line not found in body: %s", body)
	}
	if !strings.Contains(body, "00:00:15 bom dia => good morning") {
		t.Fatalf("first segment line not found in body: %s", body)
	}
	if !strings.Contains(body, "00:01:15 tudo bem => "+TranslationFailedMarker) {
		t.Fatalf("second segment line not found in body: %s", body)
	}
}

func TestBuildTranscriptText_RecognitionOnly(t *testing.T) {
	startedAt := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	pairs := []FinalPair{{Seq: 0, SpokenAt: startedAt.Add(-time.Second), Original: "olá"}}

	body := BuildTranscriptText("mic", nil, startedAt, startedAt.Add(time.Minute), "UTC", nil, pairs)

	if strings.Contains(body, "Languages:") {
		t.Fatalf("languages line should be omitted without translation: %s", body)
	}
	if !strings.Contains(body, "00:00:00 olá") {
		t.Fatalf("negative offsets should clamp to zero: %s", body)
	}
	if strings.Contains(body, "=>") {
		t.Fatalf("translation arrow should be omitted without translation: %s", body)
	}
}

func TestBuildTranscriptWebhookPayload(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	startedAt := time.Date(2026, 10, 14, 19, 0, 0, 0, loc)
	endedAt := startedAt.Add(45 * time.Second)
	pairs := []FinalPair{
		{Seq: 0, SpokenAt: startedAt.Add(10 * time.Second), Original: "hello", Translated: "hola"},
		{Seq: 1, SpokenAt: startedAt.Add(30 * time.Second), Original: "world", TranslationErr: ErrDrainTimeout},
	}

	payload := buildTranscriptWebhookPayload("session-1", "mic", &LanguagePair{Source: "en", Target: "es"}, startedAt, endedAt, "Asia/Tokyo", loc, pairs)

	if payload.SchemaVersion != "2026-10-01" {
		t.Fatalf("unexpected schema_version: %s", payload.SchemaVersion)
	}
	if payload.SessionID != "session-1" || payload.DeviceName != "mic" {
		t.Fatalf("unexpected session fields: id=%s device=%s", payload.SessionID, payload.DeviceName)
	}
	if payload.SourceLanguage != "en" || payload.TargetLanguage != "es" {
		t.Fatalf("unexpected languages: %s -> %s", payload.SourceLanguage, payload.TargetLanguage)
	}
	if payload.DurationSeconds != 45 {
		t.Fatalf("unexpected duration_seconds: %d", payload.DurationSeconds)
	}
	if payload.SegmentCount != 2 || len(payload.TranscriptSegments) != 2 {
		t.Fatalf("unexpected segment count: %d/%d", payload.SegmentCount, len(payload.TranscriptSegments))
	}
	if payload.TranscriptSegments[0].Translated != "hola" || payload.TranscriptSegments[0].TranslationFailed {
		t.Fatalf("unexpected first segment: %+v", payload.TranscriptSegments[0])
	}
	if payload.TranscriptSegments[1].Translated != TranslationFailedMarker || !payload.TranscriptSegments[1].TranslationFailed {
		t.Fatalf("unexpected second segment: %+v", payload.TranscriptSegments[1])
	}
	if payload.TranscriptSegments[0].SpokenAt != startedAt.Add(10*time.Second).Format(time.RFC3339) {
		t.Fatalf("unexpected spoken_at: %s", payload.TranscriptSegments[0].SpokenAt)
	}
	if payload.Transcript != "hello => hola\nworld => "+TranslationFailedMarker {
		t.Fatalf("unexpected transcript: %q", payload.Transcript)
	}
}

func TestFormatElapsedHMS(t *testing.T) {
	if got := formatElapsedHMS(3*time.Hour + 4*time.Minute + 5*time.Second); got != "03:04:05" {
		t.Fatalf("unexpected elapsed text: %s", got)
	}
}
