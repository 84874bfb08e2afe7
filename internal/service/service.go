package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/circulation-service/internal/model"
	"github.com/Astemirdum/circulation-service/pkg/kafka"
)

type CatalogRepo interface {
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

type BorrowerRepo interface {
	CreateBorrower(ctx context.Context, req model.BorrowerRequest) (int, error)
	UpdateBorrower(ctx context.Context, cardNumber int, req model.BorrowerRequest) error
	DeleteBorrower(ctx context.Context, cardNumber int) (bool, error)
	ListBorrowers(ctx context.Context) ([]model.Borrower, error)
	SearchBorrowers(ctx context.Context, term string) ([]model.Borrower, error)
}

type LedgerRepo interface {
	Borrow(ctx context.Context, bookID, borrowerID int, dueDate string) (int, bool, error)
	Return(ctx context.Context, loanID int) (bool, error)
	ActiveLoans(ctx context.Context, borrowerID int) ([]model.LoanDetails, error)
	History(ctx context.Context, borrowerID int) ([]model.LoanDetails, error)
}

type Service struct {
	log       *zap.Logger
	catalog   CatalogRepo
	borrowers BorrowerRepo
	ledger    LedgerRepo
	queue     Enqueuer
}

func NewService(catalog CatalogRepo, borrowers BorrowerRepo, ledger LedgerRepo, queue Enqueuer, log *zap.Logger) *Service {
	return &Service{
		log:       log,
		catalog:   catalog,
		borrowers: borrowers,
		ledger:    ledger,
		queue:     queue,
	}
}

func (s *Service) CreateBook(ctx context.Context, req model.BookRequest) (int, error) {
	return s.catalog.CreateBook(ctx, req)
}

func (s *Service) UpdateBook(ctx context.Context, id int, req model.BookRequest) error {
	return s.catalog.UpdateBook(ctx, id, req)
}

func (s *Service) DeleteBook(ctx context.Context, id int) (bool, error) {
	return s.catalog.DeleteBook(ctx, id)
}

func (s *Service) ListBooks(ctx context.Context) ([]model.BookDetails, error) {
	return s.catalog.ListBooks(ctx)
}

func (s *Service) SearchBooks(ctx context.Context, term string) ([]model.BookDetails, error) {
	return s.catalog.SearchBooks(ctx, term)
}

func (s *Service) CreateCategory(ctx context.Context, req model.CategoryRequest) (int, error) {
	return s.catalog.CreateCategory(ctx, req)
}

func (s *Service) UpdateCategory(ctx context.Context, id int, req model.CategoryRequest) error {
	return s.catalog.UpdateCategory(ctx, id, req)
}

func (s *Service) DeleteCategory(ctx context.Context, id int) (bool, error) {
	return s.catalog.DeleteCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.catalog.ListCategories(ctx)
}

func (s *Service) SearchCategories(ctx context.Context, term string) ([]model.Category, error) {
	return s.catalog.SearchCategories(ctx, term)
}

func (s *Service) CreateAuthor(ctx context.Context, req model.AuthorRequest) (int, error) {
	return s.catalog.CreateAuthor(ctx, req)
}

func (s *Service) UpdateAuthor(ctx context.Context, id int, req model.AuthorRequest) error {
	return s.catalog.UpdateAuthor(ctx, id, req)
}

func (s *Service) DeleteAuthor(ctx context.Context, id int) (bool, error) {
	return s.catalog.DeleteAuthor(ctx, id)
}

func (s *Service) ListAuthors(ctx context.Context) ([]model.Author, error) {
	return s.catalog.ListAuthors(ctx)
}

func (s *Service) SearchAuthors(ctx context.Context, term string) ([]model.Author, error) {
	return s.catalog.SearchAuthors(ctx, term)
}

func (s *Service) CreateBorrower(ctx context.Context, req model.BorrowerRequest) (int, error) {
	return s.borrowers.CreateBorrower(ctx, req)
}

func (s *Service) UpdateBorrower(ctx context.Context, cardNumber int, req model.BorrowerRequest) error {
	return s.borrowers.UpdateBorrower(ctx, cardNumber, req)
}

func (s *Service) DeleteBorrower(ctx context.Context, cardNumber int) (bool, error) {
	return s.borrowers.DeleteBorrower(ctx, cardNumber)
}

func (s *Service) ListBorrowers(ctx context.Context) ([]model.Borrower, error) {
	return s.borrowers.ListBorrowers(ctx)
}

func (s *Service) SearchBorrowers(ctx context.Context, term string) ([]model.Borrower, error) {
	return s.borrowers.SearchBorrowers(ctx, term)
}

// BorrowBook checks out one copy and, on success, feeds the circulation
// event stream. The event is fire-and-forget: circulation state is already
// committed, a publish failure is only logged.
func (s *Service) BorrowBook(ctx context.Context, req model.BorrowRequest) (int, bool, error) {
	loanID, ok, err := s.ledger.Borrow(ctx, req.BookID, req.BorrowerID, req.DueDate)
	if err == nil && ok {
		s.publish(model.EventBookBorrowed, loanID, req.BookID, req.BorrowerID)
	}
	return loanID, ok, err
}

func (s *Service) ReturnBook(ctx context.Context, loanID int) (bool, error) {
	ok, err := s.ledger.Return(ctx, loanID)
	if err == nil && ok {
		s.publish(model.EventBookReturned, loanID, 0, 0)
	}
	return ok, err
}

func (s *Service) ActiveLoans(ctx context.Context, borrowerID int) ([]model.LoanDetails, error) {
	return s.ledger.ActiveLoans(ctx, borrowerID)
}

func (s *Service) History(ctx context.Context, borrowerID int) ([]model.LoanDetails, error) {
	return s.ledger.History(ctx, borrowerID)
}

func (s *Service) publish(eventType string, loanID, bookID, borrowerID int) {
	ev := model.CirculationEvent{
		Type:       eventType,
		LoanID:     loanID,
		BookID:     bookID,
		BorrowerID: borrowerID,
		At:         time.Now().UTC(),
	}
	if err := s.queue.Enqueue(kafka.CirculationTopic, ev); err != nil {
		s.log.Warn("enqueue circulation event", zap.String("type", eventType), zap.Error(err))
	}
}
