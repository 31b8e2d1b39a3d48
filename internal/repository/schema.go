package repository

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shikshalabs/qpaper/internal/common"
)

// schemaDDL is applied on startup. Idempotent so a restart against an
// existing database is a no-op.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS documents (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL,
    page_count  INT  NOT NULL DEFAULT 0,
    uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS extract_jobs (
    id             UUID PRIMARY KEY,
    document_id    UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    strategy       TEXT NOT NULL,
    status         TEXT NOT NULL,
    started_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    finished_at    TIMESTAMPTZ,
    error_message  TEXT,
    question_count INT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_extract_jobs_document ON extract_jobs(document_id);

CREATE TABLE IF NOT EXISTS questions (
    id              UUID PRIMARY KEY,
    job_id          UUID NOT NULL REFERENCES extract_jobs(id) ON DELETE CASCADE,
    question_number INT  NOT NULL,
    question_text   TEXT NOT NULL,
    answer          TEXT NOT NULL DEFAULT '',
    marks           INT,
    type            TEXT NOT NULL,
    difficulty      TEXT NOT NULL,
    year            INT,
    confidence      REAL NOT NULL DEFAULT 0,
    page            INT  NOT NULL,
    position        INT  NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_questions_job ON questions(job_id);

CREATE TABLE IF NOT EXISTS sub_questions (
    id          UUID PRIMARY KEY,
    question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    label       TEXT NOT NULL,
    text        TEXT NOT NULL,
    answer      TEXT NOT NULL DEFAULT '',
    position    INT  NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sub_questions_question ON sub_questions(question_id);
`

// EnsureSchema creates the tables on startup when they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		logger.Error("schema migration failed", "error", err)
		return common.WrapError(err, "ensure schema")
	}
	logger.Info("schema ensured")
	return nil
}
