// Package extract runs one extraction job end to end: status transitions,
// pipeline execution, and result persistence.
package extract

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shikshalabs/qpaper/internal/ocr"
	"github.com/shikshalabs/qpaper/internal/pipeline"
	"github.com/shikshalabs/qpaper/internal/repository"
)

type Service struct {
	extractor *pipeline.Extractor
	jobs      repository.ExtractJobRepository
	questions repository.QuestionRepository
	logger    *slog.Logger
}

func NewService(extractor *pipeline.Extractor, jobs repository.ExtractJobRepository, questions repository.QuestionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{extractor: extractor, jobs: jobs, questions: questions, logger: logger}
}

// ProcessJob drives one job to a terminal status. The returned error reflects
// the pipeline outcome; status bookkeeping failures are logged, not returned,
// so a flaky status write cannot mask the extraction result.
func (s *Service) ProcessJob(ctx context.Context, jobID uuid.UUID, strategy pipeline.Strategy, shards []ocr.Shard) error {
	if err := s.jobs.MarkRunning(ctx, jobID); err != nil {
		return err
	}

	questions, err := s.extractor.Run(ctx, shards, strategy)
	if err != nil {
		// status writes survive the job context being cancelled
		bg := context.WithoutCancel(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if serr := s.jobs.MarkCancelled(bg, jobID); serr != nil {
				s.logger.Error("cancel status write failed", "job_id", jobID, "error", serr)
			}
		} else if serr := s.jobs.FinishFailure(bg, jobID, err.Error()); serr != nil {
			s.logger.Error("failure status write failed", "job_id", jobID, "error", serr)
		}
		return err
	}

	if err := s.questions.ReplaceForJob(ctx, jobID, questions); err != nil {
		if serr := s.jobs.FinishFailure(context.WithoutCancel(ctx), jobID, err.Error()); serr != nil {
			s.logger.Error("failure status write failed", "job_id", jobID, "error", serr)
		}
		return err
	}
	return s.jobs.FinishSuccess(ctx, jobID, len(questions))
}
