package repository

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Astemirdum/circulation-service/internal/model"
)

// Joined read views. The one-to-many author edge is folded in Go after a
// left join: a book (or loan) appears exactly once whatever its author
// count, with author full names comma-joined in a stable order. The
// aggregation is deliberately not pushed into SQL - string_agg and
// group_concat spell differently across the two supported engines.

type bookRow struct {
	ID              int     `db:"id"`
	Title           string  `db:"title"`
	ISBN            *string `db:"isbn"`
	PublicationYear int     `db:"publication_year"`
	Publisher       string  `db:"publisher"`
	TotalCopies     int     `db:"total_copies"`
	AvailableCopies int     `db:"available_copies"`
	Category        *string `db:"category"`
	AuthorFirst     *string `db:"author_first"`
	AuthorLast      *string `db:"author_last"`
}

type loanRow struct {
	LoanID       int          `db:"loan_id"`
	BookID       int          `db:"book_id"`
	Title        string       `db:"title"`
	ISBN         *string      `db:"isbn"`
	CheckoutDate time.Time    `db:"checkout_date"`
	DueDate      string       `db:"due_date"`
	ReturnDate   *time.Time   `db:"return_date"`
	Status       model.Status `db:"status"`
	AuthorFirst  *string      `db:"author_first"`
	AuthorLast   *string      `db:"author_last"`
}

func (r *CatalogRepository) ListBooks(ctx context.Context) ([]model.BookDetails, error) {
	rows, err := r.selectBookRows(ctx)
	if err != nil {
		return nil, err
	}
	return foldBooks(rows), nil
}

// SearchBooks filters the joined projection by case-insensitive substring
// match against title, ISBN or any associated author's first or last
// name. Matching on an author keeps the whole book row, all authors
// included, which is why the filter runs after the fold.
func (r *CatalogRepository) SearchBooks(ctx context.Context, term string) ([]model.BookDetails, error) {
	rows, err := r.selectBookRows(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return foldBooks(rows), nil
	}

	matched := make(map[int]bool)
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Title), needle) ||
			(row.ISBN != nil && strings.Contains(strings.ToLower(*row.ISBN), needle)) ||
			strings.Contains(strings.ToLower(authorName(row.AuthorFirst, row.AuthorLast)), needle) {
			matched[row.ID] = true
		}
	}

	books := foldBooks(rows)
	out := books[:0]
	for _, b := range books {
		if matched[b.ID] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *CatalogRepository) selectBookRows(ctx context.Context) ([]bookRow, error) {
	query, args, err := qb.Select(
		"b.id", "b.title", "b.isbn", "b.publication_year", "b.publisher",
		"b.total_copies", "b.available_copies",
		"c.name as category",
		"a.first_name as author_first", "a.last_name as author_last").
		From(booksTable + " b").
		LeftJoin(categoriesTable + " c on c.id = b.category_id").
		LeftJoin(bookAuthorsTable + " ba on ba.book_id = b.id").
		LeftJoin(authorsTable + " a on a.id = ba.author_id").
		OrderBy("b.id", "a.last_name", "a.first_name").
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []bookRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// ActiveLoans is the loan-with-book-details view restricted to the
// borrower's active loans.
func (r *LedgerRepository) ActiveLoans(ctx context.Context, borrowerID int) ([]model.LoanDetails, error) {
	return r.selectLoanDetails(ctx, borrowerID, true)
}

// History is the same view unfiltered by status, most recent checkout
// first.
func (r *LedgerRepository) History(ctx context.Context, borrowerID int) ([]model.LoanDetails, error) {
	return r.selectLoanDetails(ctx, borrowerID, false)
}

func (r *LedgerRepository) selectLoanDetails(ctx context.Context, borrowerID int, activeOnly bool) ([]model.LoanDetails, error) {
	b := qb.Select(
		"r.id as loan_id", "r.book_id", "b.title", "b.isbn",
		"r.checkout_date", "r.due_date", "r.return_date", "r.status",
		"a.first_name as author_first", "a.last_name as author_last").
		From(reservationsTable + " r").
		Join(booksTable + " b on b.id = r.book_id").
		LeftJoin(bookAuthorsTable + " ba on ba.book_id = b.id").
		LeftJoin(authorsTable + " a on a.id = ba.author_id").
		Where(sq.Eq{"r.borrower_id": borrowerID}).
		OrderBy("r.checkout_date desc", "r.id desc", "a.last_name", "a.first_name")
	if activeOnly {
		b = b.Where(sq.Eq{"r.status": model.StatusActive})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []loanRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return foldLoans(rows), nil
}

func foldBooks(rows []bookRow) []model.BookDetails {
	out := make([]model.BookDetails, 0, len(rows))
	idx := make(map[int]int, len(rows))
	for _, row := range rows {
		i, seen := idx[row.ID]
		if !seen {
			var category string
			if row.Category != nil {
				category = *row.Category
			}
			out = append(out, model.BookDetails{
				ID:              row.ID,
				Title:           row.Title,
				ISBN:            row.ISBN,
				PublicationYear: row.PublicationYear,
				Publisher:       row.Publisher,
				TotalCopies:     row.TotalCopies,
				AvailableCopies: row.AvailableCopies,
				Category:        category,
			})
			i = len(out) - 1
			idx[row.ID] = i
		}
		appendAuthor(&out[i].Authors, row.AuthorFirst, row.AuthorLast)
	}
	return out
}

func foldLoans(rows []loanRow) []model.LoanDetails {
	out := make([]model.LoanDetails, 0, len(rows))
	idx := make(map[int]int, len(rows))
	for _, row := range rows {
		i, seen := idx[row.LoanID]
		if !seen {
			out = append(out, model.LoanDetails{
				LoanID:       row.LoanID,
				BookID:       row.BookID,
				Title:        row.Title,
				ISBN:         row.ISBN,
				CheckoutDate: row.CheckoutDate,
				DueDate:      row.DueDate,
				ReturnDate:   row.ReturnDate,
				Status:       row.Status,
			})
			i = len(out) - 1
			idx[row.LoanID] = i
		}
		appendAuthor(&out[i].Authors, row.AuthorFirst, row.AuthorLast)
	}
	return out
}

func appendAuthor(dst *string, first, last *string) {
	name := authorName(first, last)
	if name == "" {
		return
	}
	if *dst != "" {
		*dst += ", "
	}
	*dst += name
}

func authorName(first, last *string) string {
	var parts []string
	if first != nil && *first != "" {
		parts = append(parts, *first)
	}
	if last != nil && *last != "" {
		parts = append(parts, *last)
	}
	return strings.Join(parts, " ")
}
