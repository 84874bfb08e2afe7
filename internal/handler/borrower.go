package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/circulation-service/internal/model"
)

func (h *Handler) ListBorrowers(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		borrowers []model.Borrower
		err       error
	)
	if term := c.QueryParam("search"); term != "" {
		borrowers, err = h.borrowerSvc.SearchBorrowers(ctx, term)
	} else {
		borrowers, err = h.borrowerSvc.ListBorrowers(ctx)
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, borrowers)
}

func (h *Handler) CreateBorrower(c echo.Context) error {
	var req model.BorrowerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	cardNumber, err := h.borrowerSvc.CreateBorrower(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"cardNumber": cardNumber})
}

func (h *Handler) UpdateBorrower(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req model.BorrowerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	if err := h.borrowerSvc.UpdateBorrower(c.Request().Context(), id, req); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteBorrower(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	deleted, err := h.borrowerSvc.DeleteBorrower(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusConflict, "borrower has active loans")
	}
	return c.NoContent(http.StatusNoContent)
}
