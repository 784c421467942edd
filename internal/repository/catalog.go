package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"storefront/catalogsync/internal/domain"
)

// CatalogRepository mirrors catalog items into Postgres.
type CatalogRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveItems(ctx context.Context, items []domain.CatalogItem) error
}

// DB is the part of *pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const createCatalogItems = `
	CREATE TABLE IF NOT EXISTS catalog_items (
		id         TEXT PRIMARY KEY,
		category   TEXT NOT NULL DEFAULT '',
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`

const upsertCatalogItem = `
	INSERT INTO catalog_items (id, category, data, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id)
	DO UPDATE SET category = $2, data = $3, updated_at = $4`

type catalogRepository struct {
	db  DB
	now func() time.Time
}

func NewCatalogRepository(db DB) CatalogRepository {
	return &catalogRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *catalogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createCatalogItems); err != nil {
		return fmt.Errorf("failed to create catalog_items: %w", err)
	}
	return nil
}

// SaveItems upserts items in one batch. A later save of the same id replaces
// the stored row.
func (r *catalogRepository) SaveItems(ctx context.Context, items []domain.CatalogItem) error {
	if len(items) == 0 {
		return nil
	}

	now := r.now()
	batch := &pgx.Batch{}
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		batch.Queue(upsertCatalogItem, item.ID, item.Category, item, now)
	}
	if batch.Len() == 0 {
		return nil
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save catalog item %d of %d: %w", i+1, batch.Len(), err)
		}
	}

	return nil
}
