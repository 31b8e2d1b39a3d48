package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shikshalabs/qpaper/constants"
	"github.com/shikshalabs/qpaper/internal/common"
	"github.com/shikshalabs/qpaper/internal/entity"
)

type ExtractJobRepository interface {
	Create(ctx context.Context, documentID uuid.UUID, strategy string) (*entity.ExtractJob, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractJob, error)
	LatestCompletedForDocument(ctx context.Context, documentID uuid.UUID) (*entity.ExtractJob, error)
	MarkRunning(ctx context.Context, jobID uuid.UUID) error
	FinishSuccess(ctx context.Context, jobID uuid.UUID, questionCount int) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	MarkCancelled(ctx context.Context, jobID uuid.UUID) error
}

type extractJobRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewExtractJobRepository(pool *pgxpool.Pool, log *slog.Logger) ExtractJobRepository {
	return &extractJobRepo{pool: pool, log: log}
}

func (r *extractJobRepo) Create(ctx context.Context, documentID uuid.UUID, strategy string) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:         uuid.New(),
		DocumentID: documentID,
		Strategy:   strategy,
		Status:     constants.JobStatusQueued,
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO extract_jobs (id, document_id, strategy, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING started_at`,
		job.ID, job.DocumentID, job.Strategy, job.Status)
	if err := row.Scan(&job.StartedAt); err != nil {
		r.log.Error("extract_job create failed", "document_id", documentID, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to create extract job", err)
	}
	r.log.Info("extract_job created", "job_id", job.ID, "document_id", documentID, "strategy", strategy)
	return job, nil
}

func (r *extractJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractJob, error) {
	var job entity.ExtractJob
	row := r.pool.QueryRow(ctx,
		`SELECT id, document_id, strategy, status, started_at, finished_at, error_message, question_count
		 FROM extract_jobs WHERE id = $1`, id)
	err := row.Scan(&job.ID, &job.DocumentID, &job.Strategy, &job.Status,
		&job.StartedAt, &job.FinishedAt, &job.ErrorMessage, &job.QuestionCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.log.Error("extract_job fetch failed", "job_id", id, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to fetch extract job", err)
	}
	return &job, nil
}

func (r *extractJobRepo) LatestCompletedForDocument(ctx context.Context, documentID uuid.UUID) (*entity.ExtractJob, error) {
	var job entity.ExtractJob
	row := r.pool.QueryRow(ctx,
		`SELECT id, document_id, strategy, status, started_at, finished_at, error_message, question_count
		 FROM extract_jobs
		 WHERE document_id = $1 AND status = $2
		 ORDER BY started_at DESC
		 LIMIT 1`, documentID, constants.JobStatusCompleted)
	err := row.Scan(&job.ID, &job.DocumentID, &job.Strategy, &job.Status,
		&job.StartedAt, &job.FinishedAt, &job.ErrorMessage, &job.QuestionCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.log.Error("latest job fetch failed", "document_id", documentID, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to fetch latest job", err)
	}
	return &job, nil
}

func (r *extractJobRepo) MarkRunning(ctx context.Context, jobID uuid.UUID) error {
	return r.setStatus(ctx, jobID, constants.JobStatusRunning, nil, nil)
}

func (r *extractJobRepo) FinishSuccess(ctx context.Context, jobID uuid.UUID, questionCount int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE extract_jobs
		 SET status = $2, finished_at = $3, question_count = $4
		 WHERE id = $1`,
		jobID, constants.JobStatusCompleted, time.Now(), questionCount)
	if err != nil {
		r.log.Error("extract_job finish failed", "job_id", jobID, "error", err)
		return common.NewAppError("DB_ERROR", "failed to finish extract job", err)
	}
	r.log.Info("extract_job completed", "job_id", jobID, "questions", questionCount)
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	now := time.Now()
	if err := r.setStatus(ctx, jobID, constants.JobStatusFailed, &now, &message); err != nil {
		return err
	}
	r.log.Warn("extract_job failed", "job_id", jobID, "error", message)
	return nil
}

func (r *extractJobRepo) MarkCancelled(ctx context.Context, jobID uuid.UUID) error {
	now := time.Now()
	if err := r.setStatus(ctx, jobID, constants.JobStatusCancelled, &now, nil); err != nil {
		return err
	}
	r.log.Info("extract_job cancelled", "job_id", jobID)
	return nil
}

func (r *extractJobRepo) setStatus(ctx context.Context, jobID uuid.UUID, status constants.JobStatus, finishedAt *time.Time, message *string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE extract_jobs
		 SET status = $2,
		     finished_at = COALESCE($3, finished_at),
		     error_message = COALESCE($4, error_message)
		 WHERE id = $1`,
		jobID, status, finishedAt, message)
	if err != nil {
		r.log.Error("extract_job status update failed", "job_id", jobID, "status", status, "error", err)
		return common.NewAppError("DB_ERROR", "failed to update extract job status", err)
	}
	return nil
}
