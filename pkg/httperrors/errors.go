package httperrors

import (
	"errors"
	"net/http"

	"github.com/ycycse/alluxio/internal/models"
)

// Status возвращает HTTP-статус для ошибки из таксономии воркера.
func Status(err error) int {
	switch {
	case errors.Is(err, models.ErrMalformedRequest):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnmatchedRoute):
		return http.StatusNotFound
	case errors.Is(err, models.ErrPageNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrBackendIO):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Write пишет ошибку в ResponseWriter с кодом из таксономии.
func Write(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), Status(err))
}
