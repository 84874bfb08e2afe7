package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Astemirdum/circulation-service/internal/errs"
	"github.com/Astemirdum/circulation-service/internal/model"
)

// BorrowerRepository owns borrower records. Field presence is validated at
// the caller boundary; the repository persists what it is given and fails
// only on the email uniqueness constraint.
type BorrowerRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewBorrowerRepository(db *sqlx.DB, log *zap.Logger) *BorrowerRepository {
	return &BorrowerRepository{
		db:  db,
		log: log.Named("borrower-repo"),
	}
}

func (r *BorrowerRepository) CreateBorrower(ctx context.Context, req model.BorrowerRequest) (int, error) {
	query, args, err := qb.Insert(borrowersTable).
		Columns("first_name", "last_name", "address", "phone", "email", "registration_date").
		Values(req.FirstName, req.LastName, req.Address, req.Phone, req.Email, time.Now().UTC()).
		Suffix("RETURNING card_number").
		ToSql()
	if err != nil {
		return 0, err
	}
	var cardNumber int
	if err := r.db.GetContext(ctx, &cardNumber, r.db.Rebind(query), args...); err != nil {
		r.log.Error("CreateBorrower", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return 0, errs.Classify(err)
	}
	return cardNumber, nil
}

func (r *BorrowerRepository) UpdateBorrower(ctx context.Context, cardNumber int, req model.BorrowerRequest) error {
	query, args, err := qb.Update(borrowersTable).
		Set("first_name", req.FirstName).
		Set("last_name", req.LastName).
		Set("address", req.Address).
		Set("phone", req.Phone).
		Set("email", req.Email).
		Where(sq.Eq{"card_number": cardNumber}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		r.log.Error("UpdateBorrower", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return errs.Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteBorrower refuses (false, nil) while any of the borrower's loans is
// still active. Otherwise the returned-loan history goes with the borrower
// row, same as book deletion, so no loan is left dangling.
func (r *BorrowerRepository) DeleteBorrower(ctx context.Context, cardNumber int) (bool, error) {
	deleted := false
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		active, err := countWhere(ctx, tx, reservationsTable, sq.Eq{"borrower_id": cardNumber, "status": model.StatusActive})
		if err != nil {
			return err
		}
		if active > 0 {
			return nil
		}

		if err := execDelete(ctx, tx, reservationsTable, sq.Eq{"borrower_id": cardNumber}); err != nil {
			return err
		}
		query, args, err := qb.Delete(borrowersTable).Where(sq.Eq{"card_number": cardNumber}).ToSql()
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
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *BorrowerRepository) ListBorrowers(ctx context.Context) ([]model.Borrower, error) {
	return r.selectBorrowers(ctx, r.borrowerSelect().OrderBy("card_number"))
}

func (r *BorrowerRepository) SearchBorrowers(ctx context.Context, term string) ([]model.Borrower, error) {
	pat := likePattern(term)
	return r.selectBorrowers(ctx, r.borrowerSelect().
		Where(sq.Or{
			sq.Expr("lower(first_name) like ?", pat),
			sq.Expr("lower(last_name) like ?", pat),
			sq.Expr("lower(email) like ?", pat),
			sq.Expr("phone like ?", pat),
		}).
		OrderBy("card_number"))
}

func (r *BorrowerRepository) borrowerSelect() sq.SelectBuilder {
	return qb.Select("card_number", "first_name", "last_name", "address", "phone", "email", "registration_date").
		From(borrowersTable)
}

func (r *BorrowerRepository) selectBorrowers(ctx context.Context, b sq.SelectBuilder) ([]model.Borrower, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Borrower
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return items, nil
}
