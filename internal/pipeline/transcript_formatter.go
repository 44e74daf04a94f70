package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/kikitori/internal/webhook"
)

const transcriptTimeLayout = "2006-01-02 15:04:05"

// BuildTranscriptText renders a finished session as plain text, one line per
// final with its offset from the start of the session.
func BuildTranscriptText(deviceName string, pair *LanguagePair, startedAt, endedAt time.Time, timezone string, loc *time.Location, pairs []FinalPair) string {
	startText := startedAt.In(safeLocation(loc)).Format(transcriptTimeLayout)
	endText := endedAt.In(safeLocation(loc)).Format(transcriptTimeLayout)

	lines := []string{
		fmt.Sprintf("Device: %s", deviceName),
		fmt.Sprintf("Period: %s ~ %s (%s)", startText, endText, timezone),
	}
	if pair != nil {
		lines = append(lines, fmt.Sprintf("Languages: %s -> %s", pair.Source, pair.Target))
	}
	lines = append(lines, "")
	for _, p := range pairs {
		elapsed := p.SpokenAt.Sub(startedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		lines = append(lines, fmt.Sprintf("%s %s", formatElapsedHMS(elapsed), transcriptLine(p, pair != nil)))
	}
	return strings.Join(lines, "\n")
}

func buildTranscriptWebhookPayload(sessionID, deviceName string, pair *LanguagePair, startedAt, endedAt time.Time, timezone string, loc *time.Location, pairs []FinalPair) webhook.TranscriptWebhookPayload {
	transcriptLines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		transcriptLines = append(transcriptLines, transcriptLine(p, pair != nil))
	}

	durationSeconds := int64(endedAt.Sub(startedAt).Seconds())
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	payload := webhook.TranscriptWebhookPayload{
		SchemaVersion:      webhook.TranscriptWebhookSchemaVersion,
		SessionID:          sessionID,
		DeviceName:         deviceName,
		StartAt:            startedAt.In(safeLocation(loc)).Format(time.RFC3339),
		EndAt:              endedAt.In(safeLocation(loc)).Format(time.RFC3339),
		Timezone:           timezone,
		DurationSeconds:    durationSeconds,
		SegmentCount:       len(pairs),
		TranscriptSegments: buildTranscriptWebhookSegments(pairs, safeLocation(loc)),
		Transcript:         strings.Join(transcriptLines, "\n"),
	}
	if pair != nil {
		payload.SourceLanguage = pair.Source
		payload.TargetLanguage = pair.Target
	}
	return payload
}

func buildTranscriptWebhookSegments(pairs []FinalPair, loc *time.Location) []webhook.TranscriptWebhookSegment {
	out := make([]webhook.TranscriptWebhookSegment, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, webhook.TranscriptWebhookSegment{
			Index:             p.Seq,
			SpokenAt:          p.SpokenAt.In(loc).Format(time.RFC3339),
			Original:          p.Original,
			Translated:        p.TranslatedText(),
			TranslationFailed: p.TranslationFailed(),
		})
	}
	return out
}

func transcriptLine(p FinalPair, translated bool) string {
	if !translated {
		return p.Original
	}
	return fmt.Sprintf("%s => %s", p.Original, p.TranslatedText())
}

func formatElapsedHMS(d time.Duration) string {
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func safeLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
