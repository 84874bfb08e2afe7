package errs

import (
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate value violates a unique constraint")
	ErrForeignKey = errors.New("referenced row does not exist")
)

// Classify maps driver-specific constraint violations onto the typed
// sentinels above so callers can tell a validation-style failure from an
// infrastructure one. Anything unrecognized passes through untouched.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return errors.Wrap(ErrDuplicate, pgErr.Detail)
		case pgerrcode.ForeignKeyViolation:
			return errors.Wrap(ErrForeignKey, pgErr.Detail)
		}
		return err
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		switch sqErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return errors.Wrap(ErrDuplicate, sqErr.Error())
		case sqlite3.ErrConstraintForeignKey:
			return errors.Wrap(ErrForeignKey, sqErr.Error())
		}
	}

	return err
}
