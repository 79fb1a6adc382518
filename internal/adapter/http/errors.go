package http

import (
	"errors"
	"net/http"
	"strconv"

	"bloodbank-service/internal/domain"

	"github.com/labstack/echo/v4"
)

// writeError maps domain errors to status codes. Anything unknown is a 500
// with a generic message.
func writeError(c echo.Context, err error) error {
	var (
		elig  *domain.EligibilityError
		short *domain.InsufficientInventoryError
	)
	switch {
	case errors.As(err, &elig):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   err.Error(),
			Details: []FieldError{
				{Field: "days_remaining", Message: strconv.Itoa(elig.DaysRemaining)},
				{Field: "next_eligible_date", Message: elig.NextEligibleDate.Format("2006-01-02")},
			},
		})
	case errors.As(err, &short):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   err.Error(),
			Details: []FieldError{
				{Field: "requested", Message: strconv.Itoa(short.Requested)},
				{Field: "available", Message: strconv.Itoa(short.Available)},
			},
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrAlreadyProcessed),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

func invalidBody(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Details: ToFieldErrors(err),
	})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, ErrorResponse{Error: "you do not have permission to access this resource"})
}
