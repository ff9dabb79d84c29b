package controllers

import (
	"errors"
	"net/http"

	"github.com/nahidhasan/mealbox-app/services"
)

var ErrNoPermission = errors.New("you don't have permission to access this resource")

// statusForError maps domain errors onto HTTP codes. Gateway failures are 502
// so clients know to retry; everything in the 4xx bucket is final.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrMealUnavailable),
		errors.Is(err, services.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrMealNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrGatewayUnavailable),
		errors.Is(err, services.ErrGatewayRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
