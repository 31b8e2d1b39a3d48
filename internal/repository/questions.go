package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shikshalabs/qpaper/internal/common"
	"github.com/shikshalabs/qpaper/internal/entity"
)

type QuestionRepository interface {
	// ReplaceForJob stores the full question list of one extraction run,
	// replacing any previous result for the job. Runs in one transaction.
	ReplaceForJob(ctx context.Context, jobID uuid.UUID, questions []entity.Question) error
	// ListByJob returns the job's questions in stored display order.
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Question, error)
}

type questionRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewQuestionRepository(pool *pgxpool.Pool, log *slog.Logger) QuestionRepository {
	return &questionRepo{pool: pool, log: log}
}

func (r *questionRepo) ReplaceForJob(ctx context.Context, jobID uuid.UUID, questions []entity.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return common.NewAppError("DB_ERROR", "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE job_id = $1`, jobID); err != nil {
		return common.NewAppError("DB_ERROR", "failed to clear previous questions", err)
	}

	batch := &pgx.Batch{}
	for pos, q := range questions {
		questionID := uuid.New()
		batch.Queue(
			`INSERT INTO questions
			   (id, job_id, question_number, question_text, answer, marks, type, difficulty, year, confidence, page, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			questionID, jobID, q.QuestionNumber, q.QuestionText, q.Answer,
			q.Marks, q.Type, q.Difficulty, q.Year, q.Confidence, q.Page, pos)
		for sp, sub := range q.SubQuestions {
			batch.Queue(
				`INSERT INTO sub_questions (id, question_id, label, text, answer, position)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				uuid.New(), questionID, sub.Label, sub.Text, sub.Answer, sp)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		r.log.Error("question batch insert failed", "job_id", jobID, "error", err)
		return common.NewAppError("DB_ERROR", "failed to insert questions", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return common.NewAppError("DB_ERROR", "failed to commit questions", err)
	}
	r.log.Info("questions stored", "job_id", jobID, "count", len(questions))
	return nil
}

func (r *questionRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, job_id, question_number, question_text, answer, marks, type, difficulty, year, confidence, page
		 FROM questions WHERE job_id = $1 ORDER BY position`, jobID)
	if err != nil {
		r.log.Error("question list failed", "job_id", jobID, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to list questions", err)
	}
	defer rows.Close()

	questions := []entity.Question{}
	for rows.Next() {
		var q entity.Question
		if err := rows.Scan(&q.ID, &q.JobID, &q.QuestionNumber, &q.QuestionText, &q.Answer,
			&q.Marks, &q.Type, &q.Difficulty, &q.Year, &q.Confidence, &q.Page); err != nil {
			return nil, common.NewAppError("DB_ERROR", "failed to scan question", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to read questions", err)
	}

	for i := range questions {
		subs, err := r.listSubQuestions(ctx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].SubQuestions = subs
	}
	return questions, nil
}

func (r *questionRepo) listSubQuestions(ctx context.Context, questionID uuid.UUID) ([]entity.SubQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT label, text, answer FROM sub_questions WHERE question_id = $1 ORDER BY position`,
		questionID)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to list sub-questions", err)
	}
	defer rows.Close()

	var subs []entity.SubQuestion
	for rows.Next() {
		var s entity.SubQuestion
		if err := rows.Scan(&s.Label, &s.Text, &s.Answer); err != nil {
			return nil, common.NewAppError("DB_ERROR", "failed to scan sub-question", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
