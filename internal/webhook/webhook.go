package webhook

import "context"

const TranscriptWebhookSchemaVersion = "2026-10-01"

type TranscriptWebhookSegment struct {
	Index             int    `json:"index"`
	SpokenAt          string `json:"spoken_at"`
	Original          string `json:"original"`
	Translated        string `json:"translated,omitempty"`
	TranslationFailed bool   `json:"translation_failed,omitempty"`
}

type TranscriptWebhookPayload struct {
	SchemaVersion      string                     `json:"schema_version"`
	SessionID          string                     `json:"session_id"`
	DeviceName         string                     `json:"device_name"`
	SourceLanguage     string                     `json:"source_language,omitempty"`
	TargetLanguage     string                     `json:"target_language,omitempty"`
	StartAt            string                     `json:"start_at"`
	EndAt              string                     `json:"end_at"`
	Timezone           string                     `json:"timezone"`
	DurationSeconds    int64                      `json:"duration_seconds"`
	SegmentCount       int                        `json:"segment_count"`
	TranscriptSegments []TranscriptWebhookSegment `json:"transcript_segments"`
	Transcript         string                     `json:"transcript"`
}

type Sender interface {
	SendTranscript(ctx context.Context, payload TranscriptWebhookPayload) error
}
