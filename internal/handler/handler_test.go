package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/circulation-service/internal/errs"
	"github.com/Astemirdum/circulation-service/internal/handler"
	service_mocks "github.com/Astemirdum/circulation-service/internal/handler/mocks"
	"github.com/Astemirdum/circulation-service/internal/model"
	"github.com/Astemirdum/circulation-service/pkg/validate"
)

type mocks struct {
	catalog     *service_mocks.MockCatalogService
	borrowers   *service_mocks.MockBorrowerService
	circulation *service_mocks.MockCirculationService
}

func newTestHandler(t *testing.T) (*handler.Handler, mocks) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	m := mocks{
		catalog:     service_mocks.NewMockCatalogService(c),
		borrowers:   service_mocks.NewMockBorrowerService(c),
		circulation: service_mocks.NewMockCirculationService(c),
	}
	log := zap.NewExample().Named("test")
	return handler.New(m.catalog, m.borrowers, m.circulation, log), m
}

func TestHandler_CreateBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(m mocks)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"title":"Rivers of Glass","isbn":"978-0-300000-3","totalCopies":2,"categoryId":1,"authorIds":[1,2]}`,
			mockBehavior: func(m mocks) {
				m.catalog.EXPECT().
					CreateBook(context.Background(), model.BookRequest{
						Title:       "Rivers of Glass",
						ISBN:        "978-0-300000-3",
						TotalCopies: 2,
						CategoryID:  1,
						AuthorIDs:   []int{1, 2},
					}).
					Return(1, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":1}`,
			},
		},
		{
			name:         "err. totalCopies required",
			body:         `{"title":"Rivers of Glass","categoryId":1}`,
			mockBehavior: func(m mocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
		},
		{
			name: "err. duplicate isbn",
			body: `{"title":"Rivers of Glass","isbn":"978-0-300000-3","totalCopies":2,"categoryId":1}`,
			mockBehavior: func(m mocks) {
				m.catalog.EXPECT().
					CreateBook(context.Background(), gomock.Any()).
					Return(0, errs.ErrDuplicate)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"duplicate value violates a unique constraint"}`,
			},
		},
		{
			name: "err. unknown category",
			body: `{"title":"Rivers of Glass","totalCopies":2,"categoryId":404}`,
			mockBehavior: func(m mocks) {
				m.catalog.EXPECT().
					CreateBook(context.Background(), gomock.Any()).
					Return(0, errs.ErrForeignKey)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"referenced row does not exist"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, m := newTestHandler(t)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/books", h.CreateBook)

			r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(m)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_ListBooks(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(m mocks)

	isbn := "978-0-300000-3"
	var tests = []struct {
		name         string
		search       string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(m mocks) {
				m.catalog.EXPECT().
					ListBooks(context.Background()).
					Return([]model.BookDetails{
						{
							ID:              1,
							Title:           "Rivers of Glass",
							ISBN:            &isbn,
							PublicationYear: 2001,
							Publisher:       "Acme",
							TotalCopies:     2,
							AvailableCopies: 1,
							Category:        "Fiction",
							Authors:         "Jane Doe",
						},
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[{"id":1,"title":"Rivers of Glass","isbn":"978-0-300000-3","publicationYear":2001,"publisher":"Acme","totalCopies":2,"availableCopies":1,"category":"Fiction","authors":"Jane Doe"}]`,
			},
		},
		{
			name:   "ok. search term",
			search: "doe",
			mockBehavior: func(m mocks) {
				m.catalog.EXPECT().
					SearchBooks(context.Background(), "doe").
					Return([]model.BookDetails{}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[]`,
			},
		},
		{
			name: "err. internal",
			mockBehavior: func(m mocks) {
				m.catalog.EXPECT().
					ListBooks(context.Background()).
					Return(nil, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, m := newTestHandler(t)

			e := echo.New()
			e.GET("/books", h.ListBooks)

			target := "/books"
			if tt.search != "" {
				target = fmt.Sprintf("/books?search=%s", tt.search)
			}
			r := httptest.NewRequest(http.MethodGet, target, http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(m)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_DeleteBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(m mocks)

	var tests = []struct {
		name         string
		id           string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			id:   "1",
			mockBehavior: func(m mocks) {
				m.catalog.EXPECT().
					DeleteBook(context.Background(), 1).
					Return(true, nil)
			},
			response: response{
				expectedCode: http.StatusNoContent,
			},
		},
		{
			name: "err. active loans",
			id:   "1",
			mockBehavior: func(m mocks) {
				m.catalog.EXPECT().
					DeleteBook(context.Background(), 1).
					Return(false, nil)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book has active loans"}`,
			},
		},
		{
			name:         "err. invalid id",
			id:           "abc",
			mockBehavior: func(m mocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"id is invalid"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, m := newTestHandler(t)

			e := echo.New()
			e.DELETE("/books/:id", h.DeleteBook)

			r := httptest.NewRequest(http.MethodDelete, "/books/"+tt.id, http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(m)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_BorrowBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(m mocks)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"bookId":1,"borrowerId":2,"dueDate":"2026-09-27"}`,
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().
					BorrowBook(context.Background(), model.BorrowRequest{
						BookID:     1,
						BorrowerID: 2,
						DueDate:    "2026-09-27",
					}).
					Return(7, true, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"loanId":7}`,
			},
		},
		{
			name: "ok. due date defaulted",
			body: `{"bookId":1,"borrowerId":2}`,
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().
					BorrowBook(context.Background(), gomock.Any()).
					Return(8, true, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"loanId":8}`,
			},
		},
		{
			name: "err. no copies",
			body: `{"bookId":1,"borrowerId":2,"dueDate":"2026-09-27"}`,
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().
					BorrowBook(context.Background(), gomock.Any()).
					Return(0, false, nil)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"no copies available"}`,
			},
		},
		{
			name:         "err. bookId required",
			body:         `{"borrowerId":2}`,
			mockBehavior: func(m mocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, m := newTestHandler(t)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/loans", h.BorrowBook)

			r := httptest.NewRequest(http.MethodPost, "/loans", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(m)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_ReturnBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(m mocks)

	var tests = []struct {
		name         string
		id           string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			id:   "7",
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().
					ReturnBook(context.Background(), 7).
					Return(true, nil)
			},
			response: response{
				expectedCode: http.StatusNoContent,
			},
		},
		{
			name: "err. already returned",
			id:   "7",
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().
					ReturnBook(context.Background(), 7).
					Return(false, nil)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"loan is not active"}`,
			},
		},
		{
			name: "err. internal",
			id:   "7",
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().
					ReturnBook(context.Background(), 7).
					Return(false, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, m := newTestHandler(t)

			e := echo.New()
			e.POST("/loans/:id/return", h.ReturnBook)

			r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/loans/%s/return", tt.id), http.NoBody)
			w := httptest.NewRecorder()

			tt.mockBehavior(m)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_CreateBorrower(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(m mocks)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`,
			mockBehavior: func(m mocks) {
				m.borrowers.EXPECT().
					CreateBorrower(context.Background(), model.BorrowerRequest{
						FirstName: "Ada",
						LastName:  "Lovelace",
						Email:     "ada@example.com",
					}).
					Return(3, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"cardNumber":3}`,
			},
		},
		{
			name:         "err. email invalid",
			body:         `{"firstName":"Ada","lastName":"Lovelace","email":"not-an-email"}`,
			mockBehavior: func(m mocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
		},
		{
			name: "err. duplicate email",
			body: `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`,
			mockBehavior: func(m mocks) {
				m.borrowers.EXPECT().
					CreateBorrower(context.Background(), gomock.Any()).
					Return(0, errs.ErrDuplicate)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"duplicate value violates a unique constraint"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, m := newTestHandler(t)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/borrowers", h.CreateBorrower)

			r := httptest.NewRequest(http.MethodPost, "/borrowers", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(m)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}
