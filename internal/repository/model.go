package repository

import "time"

type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

type Session struct {
	ID         string
	DeviceName string
	SourceLang string
	TargetLang string
	StartedAt  time.Time
	EndedAt    *time.Time
	Status     SessionStatus
}

type TranscriptSegment struct {
	ID                string
	SessionID         string
	SegmentIndex      int
	Original          string
	Translated        string
	TranslationFailed bool
	SpokenAt          time.Time
	CreatedAt         time.Time
}
