package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/foxseedlab/kikitori/internal/repository"
)

// MemoryRepository keeps the archive in process memory. It backs sessions
// when no database is configured.
type MemoryRepository struct {
	mu       sync.Mutex
	nextID   int
	sessions map[string]*repository.Session
	segments map[string][]repository.TranscriptSegment
}

func NewMemoryRepository() repository.Repository {
	return &MemoryRepository{
		sessions: make(map[string]*repository.Session),
		segments: make(map[string][]repository.TranscriptSegment),
	}
}

func (r *MemoryRepository) CreateSession(_ context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s := &repository.Session{
		ID:         fmt.Sprintf("mem-%d", r.nextID),
		DeviceName: input.DeviceName,
		SourceLang: input.SourceLang,
		TargetLang: input.TargetLang,
		StartedAt:  input.StartedAt,
		Status:     repository.SessionStatusRunning,
	}
	r.sessions[s.ID] = s
	out := *s
	return &out, nil
}

func (r *MemoryRepository) UpdateSessionCompleted(_ context.Context, input repository.CompleteSessionInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[input.SessionID]
	if !ok {
		return fmt.Errorf("session %s not found", input.SessionID)
	}
	endedAt := input.EndedAt
	s.EndedAt = &endedAt
	s.Status = input.Status
	if s.Status == "" {
		s.Status = repository.SessionStatusCompleted
	}
	return nil
}

func (r *MemoryRepository) InsertSegment(_ context.Context, input repository.InsertSegmentInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[input.SessionID]; !ok {
		return fmt.Errorf("session %s not found", input.SessionID)
	}
	for _, seg := range r.segments[input.SessionID] {
		if seg.SegmentIndex == input.SegmentIndex {
			return fmt.Errorf("segment %d already exists for session %s", input.SegmentIndex, input.SessionID)
		}
	}
	r.segments[input.SessionID] = append(r.segments[input.SessionID], repository.TranscriptSegment{
		ID:                fmt.Sprintf("%s-%d", input.SessionID, input.SegmentIndex),
		SessionID:         input.SessionID,
		SegmentIndex:      input.SegmentIndex,
		Original:          input.Original,
		Translated:        input.Translated,
		TranslationFailed: input.TranslationFailed,
		SpokenAt:          input.SpokenAt,
		CreatedAt:         input.SpokenAt,
	})
	return nil
}

func (r *MemoryRepository) ListSegmentsBySessionID(_ context.Context, sessionID string) ([]repository.TranscriptSegment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	segs := r.segments[sessionID]
	out := make([]repository.TranscriptSegment, len(segs))
	copy(out, segs)
	return out, nil
}
