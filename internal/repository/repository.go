package repository

import (
	"context"
	"time"
)

type CreateSessionInput struct {
	DeviceName string
	SourceLang string
	TargetLang string
	StartedAt  time.Time
}

type CompleteSessionInput struct {
	SessionID string
	EndedAt   time.Time
	Status    SessionStatus
}

type InsertSegmentInput struct {
	SessionID         string
	SegmentIndex      int
	Original          string
	Translated        string
	TranslationFailed bool
	SpokenAt          time.Time
}

type SessionRepository interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	UpdateSessionCompleted(ctx context.Context, input CompleteSessionInput) error
}

type TranscriptRepository interface {
	InsertSegment(ctx context.Context, input InsertSegmentInput) error
	ListSegmentsBySessionID(ctx context.Context, sessionID string) ([]TranscriptSegment, error)
}

type Repository interface {
	SessionRepository
	TranscriptRepository
}
