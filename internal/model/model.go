package model

import (
	"time"
)

type Category struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

type Author struct {
	ID        int    `json:"id" db:"id"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	BirthYear int    `json:"birthYear" db:"birth_year"` // 0 means unknown
	Biography string `json:"biography" db:"biography"`
}

type Book struct {
	ID              int     `json:"id" db:"id"`
	Title           string  `json:"title" db:"title"`
	ISBN            *string `json:"isbn" db:"isbn"`
	PublicationYear int     `json:"publicationYear" db:"publication_year"`
	Publisher       string  `json:"publisher" db:"publisher"`
	TotalCopies     int     `json:"totalCopies" db:"total_copies"`
	AvailableCopies int     `json:"availableCopies" db:"available_copies"`
	CategoryID      int     `json:"categoryId" db:"category_id"`
}

type Borrower struct {
	CardNumber       int       `json:"cardNumber" db:"card_number"`
	FirstName        string    `json:"firstName" db:"first_name"`
	LastName         string    `json:"lastName" db:"last_name"`
	Address          string    `json:"address" db:"address"`
	Phone            string    `json:"phone" db:"phone"`
	Email            string    `json:"email" db:"email"`
	RegistrationDate time.Time `json:"registrationDate" db:"registration_date"`
}

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusReturned Status = "RETURNED"
)

// Loan is a two-state machine: ACTIVE until returned, RETURNED forever after.
type Loan struct {
	ID           int        `json:"id" db:"id"`
	BookID       int        `json:"bookId" db:"book_id"`
	BorrowerID   int        `json:"borrowerId" db:"borrower_id"`
	CheckoutDate time.Time  `json:"checkoutDate" db:"checkout_date"`
	DueDate      string     `json:"dueDate" db:"due_date"`
	ReturnDate   *time.Time `json:"returnDate" db:"return_date"`
	Status       Status     `json:"status" db:"status"`
}

// BookDetails is the flat read projection consumed by the presentation
// layer: the book row joined with its category name and all author full
// names comma-joined. A book always appears exactly once, author count
// notwithstanding.
type BookDetails struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	ISBN            *string `json:"isbn"`
	PublicationYear int     `json:"publicationYear"`
	Publisher       string  `json:"publisher"`
	TotalCopies     int     `json:"totalCopies"`
	AvailableCopies int     `json:"availableCopies"`
	Category        string  `json:"category"`
	Authors         string  `json:"authors"`
}

type LoanDetails struct {
	LoanID       int        `json:"loanId"`
	BookID       int        `json:"bookId"`
	Title        string     `json:"title"`
	ISBN         *string    `json:"isbn"`
	Authors      string     `json:"authors"`
	CheckoutDate time.Time  `json:"checkoutDate"`
	DueDate      string     `json:"dueDate"`
	ReturnDate   *time.Time `json:"returnDate"`
	Status       Status     `json:"status"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type AuthorRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	BirthYear int    `json:"birthYear"`
	Biography string `json:"biography"`
}

// BookRequest drives both create and update. AuthorIDs semantics on
// update: a non-empty list replaces the whole author set, an empty list
// leaves the current set untouched.
type BookRequest struct {
	Title           string `json:"title" validate:"required"`
	ISBN            string `json:"isbn"`
	PublicationYear int    `json:"publicationYear"`
	Publisher       string `json:"publisher"`
	TotalCopies     int    `json:"totalCopies" validate:"required,min=1"`
	CategoryID      int    `json:"categoryId" validate:"required"`
	AuthorIDs       []int  `json:"authorIds"`
}

type BorrowerRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"email" validate:"required,email"`
}

type BorrowRequest struct {
	BookID     int    `json:"bookId" validate:"required"`
	BorrowerID int    `json:"borrowerId" validate:"required"`
	DueDate    string `json:"dueDate"`
}

const (
	EventBookBorrowed = "BOOK_BORROWED"
	EventBookReturned = "BOOK_RETURNED"
)

type CirculationEvent struct {
	Type       string    `json:"type"`
	LoanID     int       `json:"loanId"`
	BookID     int       `json:"bookId"`
	BorrowerID int       `json:"borrowerId"`
	At         time.Time `json:"at"`
}
