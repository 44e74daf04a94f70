package repository

import (
	"context"
	"time"

	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateSession(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO capture_sessions (device_name, source_lang, target_lang, started_at, status)
		 VALUES ($1, $2, $3, $4, 'running')
		 RETURNING id, device_name, source_lang, target_lang, started_at, ended_at, status`,
		input.DeviceName, input.SourceLang, input.TargetLang, input.StartedAt)
	var s repository.Session
	var endedAt *time.Time
	err := row.Scan(&s.ID, &s.DeviceName, &s.SourceLang, &s.TargetLang, &s.StartedAt, &endedAt, &s.Status)
	if err != nil {
		return nil, err
	}
	s.EndedAt = endedAt
	return &s, nil
}

func (r *PostgresRepository) UpdateSessionCompleted(ctx context.Context, input repository.CompleteSessionInput) error {
	status := input.Status
	if status == "" {
		status = repository.SessionStatusCompleted
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE capture_sessions SET status = $3, ended_at = $2 WHERE id = $1`,
		input.SessionID, input.EndedAt, string(status))
	return err
}

func (r *PostgresRepository) InsertSegment(ctx context.Context, input repository.InsertSegmentInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transcript_segments (session_id, segment_index, original, translated, translation_failed, spoken_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		input.SessionID, input.SegmentIndex, input.Original, input.Translated, input.TranslationFailed, input.SpokenAt)
	return err
}

func (r *PostgresRepository) ListSegmentsBySessionID(ctx context.Context, sessionID string) ([]repository.TranscriptSegment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, segment_index, original, translated, translation_failed, spoken_at, created_at
		 FROM transcript_segments WHERE session_id = $1 ORDER BY segment_index ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.TranscriptSegment
	for rows.Next() {
		var seg repository.TranscriptSegment
		if err := rows.Scan(&seg.ID, &seg.SessionID, &seg.SegmentIndex, &seg.Original, &seg.Translated, &seg.TranslationFailed, &seg.SpokenAt, &seg.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, seg)
	}
	return list, rows.Err()
}
