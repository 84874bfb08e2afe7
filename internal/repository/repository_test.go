package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/circulation-service/internal/model"
	"github.com/Astemirdum/circulation-service/migrations"
	"github.com/Astemirdum/circulation-service/pkg/database"
)

type repos struct {
	db        *sqlx.DB
	catalog   *CatalogRepository
	borrowers *BorrowerRepository
	ledger    *LedgerRepository
}

func newTestRepos(t *testing.T) *repos {
	t.Helper()
	db, err := database.New(context.Background(), &database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, migrations.MigrationFiles)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	log := zap.NewNop()
	return &repos{
		db:        db,
		catalog:   NewCatalogRepository(db, log),
		borrowers: NewBorrowerRepository(db, log),
		ledger:    NewLedgerRepository(db, log),
	}
}

func (r *repos) mustCategory(t *testing.T, name string) int {
	t.Helper()
	id, err := r.catalog.CreateCategory(context.Background(), model.CategoryRequest{Name: name})
	require.NoError(t, err)
	return id
}

func (r *repos) mustAuthor(t *testing.T, first, last string) int {
	t.Helper()
	id, err := r.catalog.CreateAuthor(context.Background(), model.AuthorRequest{
		FirstName: first,
		LastName:  last,
	})
	require.NoError(t, err)
	return id
}

func (r *repos) mustBook(t *testing.T, req model.BookRequest) int {
	t.Helper()
	id, err := r.catalog.CreateBook(context.Background(), req)
	require.NoError(t, err)
	return id
}

func (r *repos) mustBorrower(t *testing.T, first, last, email string) int {
	t.Helper()
	cardNumber, err := r.borrowers.CreateBorrower(context.Background(), model.BorrowerRequest{
		FirstName: first,
		LastName:  last,
		Email:     email,
	})
	require.NoError(t, err)
	return cardNumber
}

func (r *repos) bookCopies(t *testing.T, bookID int) (total, available int) {
	t.Helper()
	var row struct {
		Total     int `db:"total_copies"`
		Available int `db:"available_copies"`
	}
	err := r.db.Get(&row, "select total_copies, available_copies from books where id = ?", bookID)
	require.NoError(t, err)
	return row.Total, row.Available
}
