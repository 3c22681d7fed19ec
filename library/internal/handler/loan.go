package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/astorskii/library-api/library/internal/errs"
	"github.com/astorskii/library-api/library/internal/model"
)

func (h *Handler) CreateLoan(c echo.Context) error {
	var req model.CreateLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errs.NewApiErrors(err))
	}

	loan, err := h.loanSvc.CreateLoan(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, errs.ErrBookNotFound) || errors.Is(err, errs.ErrBookAlreadyLoaned) {
			return c.JSON(http.StatusBadRequest, errs.NewApiErrors(err))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": loan.ID})
}

func (h *Handler) ReturnLoan(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var req model.ReturnLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errs.NewApiErrors(err))
	}

	if _, err := h.loanSvc.ReturnLoan(c.Request().Context(), id, *req.Returned); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func (h *Handler) FindLoans(c echo.Context) error {
	page, size, err := pageParams(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	filter := model.LoanFilter{
		ISBN:     c.QueryParam("isbn"),
		Customer: c.QueryParam("customer"),
	}

	loans, err := h.loanSvc.FindLoans(c.Request().Context(), filter, page, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loans)
}
