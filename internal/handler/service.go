package handler

import (
	"context"

	"github.com/Astemirdum/circulation-service/internal/model"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=service_mocks

type CatalogService interface {
	CreateBook(ctx context.Context, req model.BookRequest) (int, error)
	UpdateBook(ctx context.Context, id int, req model.BookRequest) error
	DeleteBook(ctx context.Context, id int) (bool, error)
	ListBooks(ctx context.Context) ([]model.BookDetails, error)
	SearchBooks(ctx context.Context, term string) ([]model.BookDetails, error)

	CreateCategory(ctx context.Context, req model.CategoryRequest) (int, error)
	UpdateCategory(ctx context.Context, id int, req model.CategoryRequest) error
	DeleteCategory(ctx context.Context, id int) (bool, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	SearchCategories(ctx context.Context, term string) ([]model.Category, error)

	CreateAuthor(ctx context.Context, req model.AuthorRequest) (int, error)
	UpdateAuthor(ctx context.Context, id int, req model.AuthorRequest) error
	DeleteAuthor(ctx context.Context, id int) (bool, error)
	ListAuthors(ctx context.Context) ([]model.Author, error)
	SearchAuthors(ctx context.Context, term string) ([]model.Author, error)
}

type BorrowerService interface {
	CreateBorrower(ctx context.Context, req model.BorrowerRequest) (int, error)
	UpdateBorrower(ctx context.Context, cardNumber int, req model.BorrowerRequest) error
	DeleteBorrower(ctx context.Context, cardNumber int) (bool, error)
	ListBorrowers(ctx context.Context) ([]model.Borrower, error)
	SearchBorrowers(ctx context.Context, term string) ([]model.Borrower, error)
}

type CirculationService interface {
	BorrowBook(ctx context.Context, req model.BorrowRequest) (int, bool, error)
	ReturnBook(ctx context.Context, loanID int) (bool, error)
	ActiveLoans(ctx context.Context, borrowerID int) ([]model.LoanDetails, error)
	History(ctx context.Context, borrowerID int) ([]model.LoanDetails, error)
}
