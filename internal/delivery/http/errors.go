package http

import (
	"errors"

	"github.com/labstack/echo/v4"

	"papertrade/internal/domain"
)

// DomainErrorResponse maps the closed domain error set onto HTTP statuses.
// Business and validation failures are 400-class; lookup and persistence
// failures are 5xx.
func DomainErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidSymbol),
		errors.Is(err, domain.ErrInvalidShareCount),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientShares):
		return BadRequestResponse(c, err.Error())
	case errors.Is(err, domain.ErrNoSuchHolding),
		errors.Is(err, domain.ErrUserNotFound):
		return NotFoundResponse(c, err.Error())
	case errors.Is(err, domain.ErrUsernameTaken):
		return ConflictResponse(c, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		return UnauthorizedResponse(c, err.Error())
	case errors.Is(err, domain.ErrLookupFailed):
		return ServiceUnavailableResponse(c, "price lookup is unavailable")
	default:
		return InternalServerErrorResponse(c, "internal error", err)
	}
}
