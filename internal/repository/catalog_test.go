package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/catalogsync/internal/domain"
)

type fakeDB struct {
	execSQL []string
	batches []*pgx.Batch
	failAt  int // 1-based statement in the batch, 0 for none
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (f *fakeDB) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batches = append(f.batches, b)
	return &fakeResults{failAt: f.failAt}
}

type fakeResults struct {
	n      int
	failAt int
	closed bool
}

func (r *fakeResults) Exec() (pgconn.CommandTag, error) {
	r.n++
	if r.n == r.failAt {
		return pgconn.CommandTag{}, errors.New("duplicate key value violates unique constraint")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeResults) Query() (pgx.Rows, error) { return nil, errors.New("not implemented") }
func (r *fakeResults) QueryRow() pgx.Row        { return nil }
func (r *fakeResults) Close() error {
	r.closed = true
	return nil
}

func TestCatalogRepository_SaveItems(t *testing.T) {
	db := &fakeDB{}
	repo := NewCatalogRepository(db).(*catalogRepository)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	items := []domain.CatalogItem{
		{ID: "a1", Name: "Wool Coat", Category: "Outerwear"},
		{ID: "", Name: "no id"},
		{ID: "b2", Name: "Denim Jacket", Category: "Outerwear"},
	}
	require.NoError(t, repo.SaveItems(context.Background(), items))

	require.Len(t, db.batches, 1)
	queued := db.batches[0].QueuedQueries
	require.Len(t, queued, 2)
	assert.Contains(t, queued[0].SQL, "ON CONFLICT (id)")
	assert.Equal(t, []any{"a1", "Outerwear", items[0], fixed}, queued[0].Arguments)
	assert.Equal(t, "b2", queued[1].Arguments[0])
}

func TestCatalogRepository_SaveItemsEmpty(t *testing.T) {
	db := &fakeDB{}
	repo := NewCatalogRepository(db)

	require.NoError(t, repo.SaveItems(context.Background(), nil))
	require.NoError(t, repo.SaveItems(context.Background(), []domain.CatalogItem{{Name: "no id"}}))
	assert.Empty(t, db.batches)
}

func TestCatalogRepository_SaveItemsError(t *testing.T) {
	db := &fakeDB{failAt: 2}
	repo := NewCatalogRepository(db)

	err := repo.SaveItems(context.Background(), []domain.CatalogItem{{ID: "a1"}, {ID: "b2"}, {ID: "c3"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 2 of 3")
}

func TestCatalogRepository_EnsureSchema(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, NewCatalogRepository(db).EnsureSchema(context.Background()))
	require.Len(t, db.execSQL, 1)
	assert.Contains(t, db.execSQL[0], "CREATE TABLE IF NOT EXISTS catalog_items")
}
