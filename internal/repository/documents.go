package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shikshalabs/qpaper/internal/common"
	"github.com/shikshalabs/qpaper/internal/entity"
)

type DocumentRepository interface {
	Create(ctx context.Context, name string, pageCount int) (*entity.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
}

type documentRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewDocumentRepository(pool *pgxpool.Pool, log *slog.Logger) DocumentRepository {
	return &documentRepo{pool: pool, log: log}
}

func (r *documentRepo) Create(ctx context.Context, name string, pageCount int) (*entity.Document, error) {
	doc := &entity.Document{
		ID:        uuid.New(),
		Name:      name,
		PageCount: pageCount,
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO documents (id, name, page_count)
		 VALUES ($1, $2, $3)
		 RETURNING uploaded_at`,
		doc.ID, doc.Name, doc.PageCount)
	if err := row.Scan(&doc.UploadedAt); err != nil {
		r.log.Error("document create failed", "name", name, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to create document", err)
	}
	r.log.Info("document created", "document_id", doc.ID, "name", name, "pages", pageCount)
	return doc, nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	var doc entity.Document
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, page_count, uploaded_at FROM documents WHERE id = $1`, id)
	err := row.Scan(&doc.ID, &doc.Name, &doc.PageCount, &doc.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.log.Error("document fetch failed", "document_id", id, "error", err)
		return nil, common.NewAppError("DB_ERROR", "failed to fetch document", err)
	}
	return &doc, nil
}
