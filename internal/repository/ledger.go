package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/circulation-service/internal/errs"
	"github.com/Astemirdum/circulation-service/internal/model"
)

// LedgerRepository owns loan records and the inventory-adjusting
// borrow/return transitions.
type LedgerRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewLedgerRepository(db *sqlx.DB, log *zap.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:  db,
		log: log.Named("ledger-repo"),
	}
}

// Borrow checks out one copy of the book. The availability check, the
// copy-count decrement and the loan-row insert commit together or not at
// all: the decrement is conditional on available_copies > 0, so of two
// concurrent borrows racing for the last copy exactly one affects a row
// and the loser refuses with (0, false, nil). A missing book refuses the
// same way. The due date is caller-supplied and stored verbatim.
func (r *LedgerRepository) Borrow(ctx context.Context, bookID, borrowerID int, dueDate string) (int, bool, error) {
	var (
		loanID int
		ok     bool
	)
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args, err := qb.Update(booksTable).
			Set("available_copies", sq.Expr("available_copies - 1")).
			Where(sq.Eq{"id": bookID}).
			Where(sq.Gt{"available_copies": 0}).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}

		query, args, err = qb.Insert(reservationsTable).
			Columns("book_id", "borrower_id", "checkout_date", "due_date", "status").
			Values(bookID, borrowerID, time.Now().UTC(), dueDate, model.StatusActive).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &loanID, tx.Rebind(query), args...); err != nil {
			r.log.Error("Borrow", zap.String("q", query), zap.Any("args", args), zap.Error(err))
			return errs.Classify(err)
		}
		ok = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return loanID, ok, nil
}

// Return transitions the loan ACTIVE -> RETURNED exactly once and gives
// the copy back to the book, as one transaction. A missing or
// already-returned loan is a no-op refusal, not an error. The increment
// stops at total_copies so a capacity reduction that clamped availability
// can never push the count past the new total.
func (r *LedgerRepository) Return(ctx context.Context, loanID int) (bool, error) {
	ok := false
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args, err := qb.Update(reservationsTable).
			Set("status", model.StatusReturned).
			Set("return_date", time.Now().UTC()).
			Where(sq.Eq{"id": loanID, "status": model.StatusActive}).
			Suffix("RETURNING book_id").
			ToSql()
		if err != nil {
			return err
		}
		var bookID int
		if err := tx.GetContext(ctx, &bookID, tx.Rebind(query), args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			r.log.Error("Return", zap.String("q", query), zap.Any("args", args), zap.Error(err))
			return err
		}

		query, args, err = qb.Update(booksTable).
			Set("available_copies", sq.Expr("available_copies + 1")).
			Where(sq.Eq{"id": bookID}).
			Where(sq.Expr("available_copies < total_copies")).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return err
		}
		ok = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}
