package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/circulation-service/internal/errs"
	"github.com/Astemirdum/circulation-service/internal/model"
)

func TestCreateBorrower_DuplicateEmail(t *testing.T) {
	r := newTestRepos(t)

	r.mustBorrower(t, "Ada", "Lovelace", "ada@example.com")
	_, err := r.borrowers.CreateBorrower(context.Background(), model.BorrowerRequest{
		FirstName: "Augusta",
		LastName:  "King",
		Email:     "ada@example.com",
	})
	require.ErrorIs(t, err, errs.ErrDuplicate)
}

func TestUpdateBorrower(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	cardNumber := r.mustBorrower(t, "Ada", "Lovelace", "ada@example.com")
	err := r.borrowers.UpdateBorrower(ctx, cardNumber, model.BorrowerRequest{
		FirstName: "Ada",
		LastName:  "King",
		Email:     "ada@example.com",
		Phone:     "555-0101",
	})
	require.NoError(t, err)

	items, err := r.borrowers.ListBorrowers(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "King", items[0].LastName)
	require.Equal(t, "555-0101", items[0].Phone)
	require.False(t, items[0].RegistrationDate.IsZero())

	err = r.borrowers.UpdateBorrower(ctx, 404, model.BorrowerRequest{
		FirstName: "Ghost",
		LastName:  "Card",
		Email:     "ghost@example.com",
	})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeleteBorrower_ActiveLoanGuard(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	catID := r.mustCategory(t, "Fiction")
	bookID := r.mustBook(t, model.BookRequest{Title: "Held", TotalCopies: 1, CategoryID: catID})
	cardNumber := r.mustBorrower(t, "Ada", "Lovelace", "ada@example.com")

	loanID, ok, err := r.ledger.Borrow(ctx, bookID, cardNumber, "2026-09-27")
	require.NoError(t, err)
	require.True(t, ok)

	deleted, err := r.borrowers.DeleteBorrower(ctx, cardNumber)
	require.NoError(t, err)
	require.False(t, deleted)

	ok, err = r.ledger.Return(ctx, loanID)
	require.NoError(t, err)
	require.True(t, ok)

	// Returned-loan history goes with the borrower row.
	deleted, err = r.borrowers.DeleteBorrower(ctx, cardNumber)
	require.NoError(t, err)
	require.True(t, deleted)

	items, err := r.borrowers.ListBorrowers(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
	history, err := r.ledger.History(ctx, cardNumber)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestSearchBorrowers(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	ada := r.mustBorrower(t, "Ada", "Lovelace", "ada@example.com")
	grace := r.mustBorrower(t, "Grace", "Hopper", "grace@example.com")

	tests := []struct {
		name string
		term string
		want []int
	}{
		{name: "by last name", term: "LOVELACE", want: []int{ada}},
		{name: "by email", term: "grace@", want: []int{grace}},
		{name: "no match", term: "zzz", want: nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			items, err := r.borrowers.SearchBorrowers(ctx, tt.term)
			require.NoError(t, err)
			got := make([]int, 0, len(items))
			for _, b := range items {
				got = append(got, b.CardNumber)
			}
			require.ElementsMatch(t, tt.want, got)
		})
	}
}
