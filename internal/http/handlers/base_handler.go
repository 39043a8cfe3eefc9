// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gosnap/internal/modules/booking"
	"gosnap/internal/modules/estimate"
	"gosnap/internal/modules/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module sentinels onto HTTP status codes.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrValidation),
		errors.Is(err, pricing.ErrUnknownCatalog),
		errors.Is(err, pricing.ErrUnknownTier):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// kindParam reads the screen kind from the query string, defaulting to city.
func kindParam(c *gin.Context) (estimate.Kind, bool) {
	k, ok := estimate.ParseKind(c.Query("kind"))
	if !ok {
		writeError(c, http.StatusBadRequest, "kind must be city or airport")
	}
	return k, ok
}
