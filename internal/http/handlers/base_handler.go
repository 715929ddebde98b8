// README: Base handler utilities (JSON helpers, error mapping per module).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"guava/internal/backend"
	"guava/internal/modules/pricing"
	"guava/internal/modules/tiereditor"
	"guava/internal/modules/trip"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeValidationError(c *gin.Context, err *pricing.ValidationError) {
	writeJSON(c, http.StatusUnprocessableEntity, errorResponse{Error: err.Message, Field: err.Field})
}

func writeTripError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trip.ErrIncompleteRoute), errors.Is(err, pricing.ErrUnknownServiceType):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, trip.ErrRouteUnavailable):
		writeError(c, http.StatusUnprocessableEntity, "Could not calculate route")
	case errors.Is(err, trip.ErrRouteFailed):
		writeError(c, http.StatusBadGateway, "Failed to calculate route. Please try again.")
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// writePricingError maps tier-host failures (validation and store errors).
func writePricingError(c *gin.Context, err error) {
	var verr *pricing.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(c, verr)
	case errors.Is(err, pricing.ErrUnknownServiceType), errors.Is(err, pricing.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricing.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// writeEditorError maps tier editor failures. Backend rejections surface the
// backend's own message, or the generic fallback string.
func writeEditorError(c *gin.Context, err error) {
	var verr *pricing.ValidationError
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &verr):
		writeValidationError(c, verr)
	case errors.Is(err, tiereditor.ErrNotConfirmed):
		writeError(c, http.StatusPreconditionRequired, err.Error())
	case errors.Is(err, tiereditor.ErrRowNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, tiereditor.ErrUnknownField), errors.Is(err, tiereditor.ErrInvalidValue),
		errors.Is(err, pricing.ErrUnknownServiceType):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &apiErr):
		writeError(c, http.StatusBadGateway, backend.UserMessage(err))
	default:
		_ = c.Error(err)
		writeError(c, http.StatusBadGateway, backend.UserMessage(err))
	}
}
