package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/circulation-service/internal/model"
)

// defaultLoanDays is the due-date policy applied when the caller supplies
// none. The ledger itself stores whatever due-date string it is handed.
const defaultLoanDays = 30

func (h *Handler) BorrowBook(c echo.Context) error {
	var req model.BorrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	if req.DueDate == "" {
		req.DueDate = time.Now().UTC().AddDate(0, 0, defaultLoanDays).Format(time.DateOnly)
	}

	loanID, ok, err := h.circulationSvc.BorrowBook(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusConflict, "no copies available")
	}
	return c.JSON(http.StatusCreated, echo.Map{"loanId": loanID})
}

func (h *Handler) ReturnBook(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	ok, err := h.circulationSvc.ReturnBook(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusConflict, "loan is not active")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ActiveLoans(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	loans, err := h.circulationSvc.ActiveLoans(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) History(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	loans, err := h.circulationSvc.History(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}
