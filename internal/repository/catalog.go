package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/circulation-service/internal/errs"
	"github.com/Astemirdum/circulation-service/internal/model"
)

// CatalogRepository owns books, authors, categories and the book-author
// association.
type CatalogRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewCatalogRepository(db *sqlx.DB, log *zap.Logger) *CatalogRepository {
	return &CatalogRepository{
		db:  db,
		log: log.Named("catalog-repo"),
	}
}

// CreateBook inserts the book with available_copies = total_copies and one
// association row per author id, as one transaction. A colliding ISBN
// surfaces as errs.ErrDuplicate.
func (r *CatalogRepository) CreateBook(ctx context.Context, req model.BookRequest) (int, error) {
	var id int
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args, err := qb.Insert(booksTable).
			Columns("title", "isbn", "publication_year", "publisher", "total_copies", "available_copies", "category_id").
			Values(req.Title, isbnValue(req.ISBN), req.PublicationYear, req.Publisher, req.TotalCopies, req.TotalCopies, req.CategoryID).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &id, tx.Rebind(query), args...); err != nil {
			r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args), zap.Error(err))
			return errs.Classify(err)
		}
		return insertBookAuthors(ctx, tx, id, req.AuthorIDs)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateBook rewrites the book row, recomputing available_copies so that
// the number of copies currently on loan is preserved:
//
//	borrowed = oldTotal - oldAvailable
//	newAvailable = max(0, totalCopies - borrowed)
//
// The clamp to zero when capacity drops below what is on loan is intended
// policy, not an oversight; the edit is accepted and apparent availability
// shrinks silently. A non-empty AuthorIDs replaces the whole author set
// (delete all, insert new); an empty AuthorIDs leaves the set unchanged.
func (r *CatalogRepository) UpdateBook(ctx context.Context, id int, req model.BookRequest) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var cur struct {
			TotalCopies     int `db:"total_copies"`
			AvailableCopies int `db:"available_copies"`
		}
		query, args, err := qb.Select("total_copies", "available_copies").
			From(booksTable).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &cur, tx.Rebind(query), args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}

		borrowed := cur.TotalCopies - cur.AvailableCopies
		newAvailable := req.TotalCopies - borrowed
		if newAvailable < 0 {
			newAvailable = 0
		}

		query, args, err = qb.Update(booksTable).
			Set("title", req.Title).
			Set("isbn", isbnValue(req.ISBN)).
			Set("publication_year", req.PublicationYear).
			Set("publisher", req.Publisher).
			Set("total_copies", req.TotalCopies).
			Set("available_copies", newAvailable).
			Set("category_id", req.CategoryID).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			r.log.Error("UpdateBook", zap.String("q", query), zap.Any("args", args), zap.Error(err))
			return errs.Classify(err)
		}

		if len(req.AuthorIDs) == 0 {
			return nil
		}
		if err := deleteBookAuthors(ctx, tx, id); err != nil {
			return err
		}
		return insertBookAuthors(ctx, tx, id, req.AuthorIDs)
	})
}

// DeleteBook removes the association rows, the whole loan history and the
// book row as one unit. It refuses (false, nil) while any loan on the book
// is still active; the guard check and the deletes share one transaction.
func (r *CatalogRepository) DeleteBook(ctx context.Context, id int) (bool, error) {
	deleted := false
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		active, err := countWhere(ctx, tx, reservationsTable, sq.Eq{"book_id": id, "status": model.StatusActive})
		if err != nil {
			return err
		}
		if active > 0 {
			return nil
		}

		if err := deleteBookAuthors(ctx, tx, id); err != nil {
			return err
		}
		if err := execDelete(ctx, tx, reservationsTable, sq.Eq{"book_id": id}); err != nil {
			return err
		}

		query, args, err := qb.Delete(booksTable).Where(sq.Eq{"id": id}).ToSql()
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

func insertBookAuthors(ctx context.Context, tx *sqlx.Tx, bookID int, authorIDs []int) error {
	if len(authorIDs) == 0 {
		return nil
	}
	ins := qb.Insert(bookAuthorsTable).Columns("book_id", "author_id")
	for _, authorID := range authorIDs {
		ins = ins.Values(bookID, authorID)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return errs.Classify(err)
	}
	return nil
}

func deleteBookAuthors(ctx context.Context, tx *sqlx.Tx, bookID int) error {
	return execDelete(ctx, tx, bookAuthorsTable, sq.Eq{"book_id": bookID})
}

func execDelete(ctx context.Context, tx *sqlx.Tx, table string, pred any) error {
	query, args, err := qb.Delete(table).Where(pred).ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
	return err
}

func countWhere(ctx context.Context, tx *sqlx.Tx, table string, pred any) (int, error) {
	query, args, err := qb.Select("count(*)").From(table).Where(pred).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(query), args...); err != nil {
		return 0, err
	}
	return n, nil
}

// isbnValue keeps an absent ISBN out of the unique index: two books
// without an ISBN must not collide on ''.
func isbnValue(isbn string) any {
	if isbn == "" {
		return nil
	}
	return isbn
}
