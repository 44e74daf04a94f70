package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE capture_session_status AS ENUM ('running', 'completed', 'failed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS capture_sessions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		device_name TEXT NOT NULL,
		source_lang TEXT NOT NULL DEFAULT '',
		target_lang TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		status capture_session_status NOT NULL DEFAULT 'running'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_capture_sessions_started ON capture_sessions (started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS transcript_segments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		session_id UUID NOT NULL REFERENCES capture_sessions(id) ON DELETE CASCADE,
		segment_index INTEGER NOT NULL,
		original TEXT NOT NULL,
		translated TEXT NOT NULL DEFAULT '',
		translation_failed BOOLEAN NOT NULL DEFAULT FALSE,
		spoken_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(session_id, segment_index)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transcript_segments_session ON transcript_segments (session_id, segment_index)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
