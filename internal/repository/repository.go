package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const (
	categoriesTable   = `categories`
	authorsTable      = `authors`
	booksTable        = `books`
	bookAuthorsTable  = `book_authors`
	borrowersTable    = `borrowers`
	reservationsTable = `reservations`
)

// Question placeholders are rebound per driver at execution time, so the
// same builders serve both the postgres and the sqlite engine.
var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// inTx runs fn inside a transaction. Rollback on any error, commit
// otherwise; a multi-step mutation is never partially applied.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
