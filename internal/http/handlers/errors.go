package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/http/response"
	"github.com/openagora/opinion-engine/internal/math/numeric"
	"github.com/openagora/opinion-engine/internal/math/project"
	"github.com/openagora/opinion-engine/internal/platform/apierr"
	"github.com/openagora/opinion-engine/internal/services"
)

// respondServiceError maps the engine's error taxonomy onto HTTP statuses.
// Lock conflicts are not surfaced as errors: the caller gets an
// already-running payload with 202.
func respondServiceError(c *gin.Context, err error) {
	var ae *apierr.Error
	switch {
	case errors.Is(err, services.ErrAlreadyRunning):
		c.JSON(http.StatusAccepted, gin.H{"status": "already-running"})
		return
	case errors.Is(err, services.ErrNotFound):
		ae = apierr.New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, numeric.ErrInsufficientData):
		ae = apierr.New(http.StatusUnprocessableEntity, "insufficient_data", err)
	case errors.Is(err, numeric.ErrCancelled):
		ae = apierr.New(http.StatusConflict, "cancelled", err)
	case errors.Is(err, project.ErrUnknownMethod),
		errors.Is(err, types.ErrInvalidChoice),
		errors.Is(err, services.ErrInvalidEngagement):
		ae = apierr.New(http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, numeric.ErrNumericFailure):
		ae = apierr.New(http.StatusInternalServerError, "numeric_failure", err)
	default:
		ae = apierr.New(http.StatusInternalServerError, "internal", err)
	}
	response.RespondError(c, ae.Status, ae.Code, ae.Err)
}
