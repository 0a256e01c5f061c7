package controlplane

import (
	"errors"
	"net/http"

	"github.com/fentz26/timeline/internal/models"
	"github.com/fentz26/timeline/internal/store"
)

// Sentinel errors for control plane operations.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrItemIDRequired = errors.New("item id required")
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrItemIDRequired),
		errors.Is(err, store.ErrInvalidName),
		errors.Is(err, store.ErrNameTooLong),
		errors.Is(err, store.ErrInvalidRange),
		errors.Is(err, store.ErrInvalidID),
		errors.Is(err, store.ErrDuplicateID),
		errors.Is(err, models.ErrInvalidDate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
