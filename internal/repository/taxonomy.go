package repository

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Astemirdum/circulation-service/internal/errs"
	"github.com/Astemirdum/circulation-service/internal/model"
)

// Category and author CRUD mirror the book shape: add/update always
// mutate, delete refuses while a dependent row exists.

func (r *CatalogRepository) CreateCategory(ctx context.Context, req model.CategoryRequest) (int, error) {
	query, args, err := qb.Insert(categoriesTable).
		Columns("name", "description").
		Values(req.Name, req.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int
	if err := r.db.GetContext(ctx, &id, r.db.Rebind(query), args...); err != nil {
		r.log.Error("CreateCategory", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return 0, errs.Classify(err)
	}
	return id, nil
}

func (r *CatalogRepository) UpdateCategory(ctx context.Context, id int, req model.CategoryRequest) error {
	query, args, err := qb.Update(categoriesTable).
		Set("name", req.Name).
		Set("description", req.Description).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	return r.execUpdate(ctx, query, args)
}

// DeleteCategory refuses (false, nil) while any book references the
// category.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id int) (bool, error) {
	deleted := false
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		refs, err := countWhere(ctx, tx, booksTable, sq.Eq{"category_id": id})
		if err != nil {
			return err
		}
		if refs > 0 {
			return nil
		}
		query, args, err := qb.Delete(categoriesTable).Where(sq.Eq{"id": id}).ToSql()
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

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	return r.selectCategories(ctx, qb.Select("id", "name", "description").
		From(categoriesTable).
		OrderBy("id"))
}

func (r *CatalogRepository) SearchCategories(ctx context.Context, term string) ([]model.Category, error) {
	pat := likePattern(term)
	return r.selectCategories(ctx, qb.Select("id", "name", "description").
		From(categoriesTable).
		Where(sq.Or{
			sq.Expr("lower(name) like ?", pat),
			sq.Expr("lower(description) like ?", pat),
		}).
		OrderBy("id"))
}

func (r *CatalogRepository) selectCategories(ctx context.Context, b sq.SelectBuilder) ([]model.Category, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Category
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CatalogRepository) CreateAuthor(ctx context.Context, req model.AuthorRequest) (int, error) {
	query, args, err := qb.Insert(authorsTable).
		Columns("first_name", "last_name", "birth_year", "biography").
		Values(req.FirstName, req.LastName, req.BirthYear, req.Biography).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int
	if err := r.db.GetContext(ctx, &id, r.db.Rebind(query), args...); err != nil {
		r.log.Error("CreateAuthor", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return 0, errs.Classify(err)
	}
	return id, nil
}

func (r *CatalogRepository) UpdateAuthor(ctx context.Context, id int, req model.AuthorRequest) error {
	query, args, err := qb.Update(authorsTable).
		Set("first_name", req.FirstName).
		Set("last_name", req.LastName).
		Set("birth_year", req.BirthYear).
		Set("biography", req.Biography).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	return r.execUpdate(ctx, query, args)
}

// DeleteAuthor refuses (false, nil) while any book-author association
// references the author.
func (r *CatalogRepository) DeleteAuthor(ctx context.Context, id int) (bool, error) {
	deleted := false
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		refs, err := countWhere(ctx, tx, bookAuthorsTable, sq.Eq{"author_id": id})
		if err != nil {
			return err
		}
		if refs > 0 {
			return nil
		}
		query, args, err := qb.Delete(authorsTable).Where(sq.Eq{"id": id}).ToSql()
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

func (r *CatalogRepository) ListAuthors(ctx context.Context) ([]model.Author, error) {
	return r.selectAuthors(ctx, qb.Select("id", "first_name", "last_name", "birth_year", "biography").
		From(authorsTable).
		OrderBy("id"))
}

func (r *CatalogRepository) SearchAuthors(ctx context.Context, term string) ([]model.Author, error) {
	pat := likePattern(term)
	return r.selectAuthors(ctx, qb.Select("id", "first_name", "last_name", "birth_year", "biography").
		From(authorsTable).
		Where(sq.Or{
			sq.Expr("lower(first_name) like ?", pat),
			sq.Expr("lower(last_name) like ?", pat),
		}).
		OrderBy("id"))
}

func (r *CatalogRepository) selectAuthors(ctx context.Context, b sq.SelectBuilder) ([]model.Author, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Author
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CatalogRepository) execUpdate(ctx context.Context, query string, args []any) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		r.log.Error("execUpdate", zap.String("q", query), zap.Any("args", args), zap.Error(err))
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

// likePattern lowercases both sides of the comparison, keeping substring
// matching case-insensitive on either engine.
func likePattern(term string) string {
	return "%" + strings.ToLower(term) + "%"
}
