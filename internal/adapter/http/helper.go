package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	lenderDomain "lending-backoffice/internal/domain/lender"
	prospectDomain "lending-backoffice/internal/domain/prospect"
	userDomain "lending-backoffice/internal/domain/user"
	"lending-backoffice/internal/session"
)

func sessionFrom(c echo.Context) *session.Session {
	if s, ok := c.Get(session.ContextKey).(*session.Session); ok {
		return s
	}
	return session.New("", "")
}

// writeError maps domain errors to HTTP statuses. Validation → 422 (nothing
// was mutated), not found → 404, optimistic conflict → 409, anything else is
// a backend failure → 502 with the underlying message for operator visibility.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, prospectDomain.ErrValidation),
		errors.Is(err, lenderDomain.ErrValidation),
		errors.Is(err, lenderDomain.ErrInsufficientFunds):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, prospectDomain.ErrNotFound),
		errors.Is(err, lenderDomain.ErrNotFound),
		errors.Is(err, userDomain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, prospectDomain.ErrConflict),
		errors.Is(err, lenderDomain.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	}
}
