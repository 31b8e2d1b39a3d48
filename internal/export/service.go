// Package export produces downloadable artifacts from stored extraction
// results.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/shikshalabs/qpaper/internal/entity"
	"github.com/shikshalabs/qpaper/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	questions repository.QuestionRepository
	logger    *slog.Logger
}

func NewService(questions repository.QuestionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{questions: questions, logger: logger}
}

// ExportQuestionsXLSX returns an XLSX workbook (as bytes) with one row per
// question of the given job, in stored display order.
func (s *Service) ExportQuestionsXLSX(ctx context.Context, jobID uuid.UUID) ([]byte, error) {
	start := time.Now()

	questions, err := s.questions.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Questions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defIndex, _ := f.GetSheetIndex("Sheet1"); defIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"No.",
		"Question",
		"Answer",
		"Sub-Questions",
		"Marks",
		"Type",
		"Difficulty",
		"Page",
		"Confidence",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, q := range questions {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, q.QuestionNumber)
		write(2, q.QuestionText)
		write(3, q.Answer)
		write(4, formatSubQuestions(q.SubQuestions))
		if q.Marks != nil {
			write(5, *q.Marks)
		}
		write(6, string(q.Type))
		write(7, string(q.Difficulty))
		write(8, q.Page)
		write(9, q.Confidence)

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 6)
	_ = f.SetColWidth(sheet, "B", "B", 60)
	_ = f.SetColWidth(sheet, "C", "C", 40)
	_ = f.SetColWidth(sheet, "D", "D", 40)
	_ = f.SetColWidth(sheet, "F", "G", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.xlsx.done", "job_id", jobID, "rows", len(questions),
		"elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

// formatSubQuestions flattens nested parts into one readable cell,
// e.g. "(a) Paris (b) Berlin".
func formatSubQuestions(subs []entity.SubQuestion) string {
	if len(subs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(subs))
	for _, s := range subs {
		p := fmt.Sprintf("(%s) %s", s.Label, s.Text)
		if s.Answer != "" {
			p += " - " + s.Answer
		}
		parts = append(parts, strings.TrimSpace(p))
	}
	return strings.Join(parts, "; ")
}
