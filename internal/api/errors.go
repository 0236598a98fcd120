package api

import (
	"errors"
	"net/http"

	apperrors "clinica/internal/errors"
	"clinica/internal/repository"
	"clinica/internal/service"
)

// httpError maps a service error onto the status code the client sees.
// Anything unrecognized is a plain persistence failure and stays a 500.
func httpError(err error) *apperrors.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return apperrors.ErrBadRequest(err.Error())
	case errors.Is(err, service.ErrProfileIncomplete):
		return apperrors.ErrBadRequest(err.Error())
	case errors.Is(err, service.ErrPatientNotFound), errors.Is(err, service.ErrDoctorNotFound):
		return apperrors.ErrNotFound(err.Error())
	case errors.Is(err, repository.ErrSlotTaken):
		return apperrors.ErrConflict("Slot already booked")
	case errors.Is(err, service.ErrSlotUnavailable):
		return apperrors.ErrConflict("Slot not available")
	}
	return apperrors.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

func writeError(w http.ResponseWriter, err error) {
	httpErr := httpError(err)
	http.Error(w, httpErr.Message, httpErr.Code)
}
