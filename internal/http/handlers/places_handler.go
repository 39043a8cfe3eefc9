// README: Places autocomplete handler.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gosnap/internal/maps"
)

type Autocompleter interface {
	Autocomplete(ctx context.Context, input string) ([]maps.Prediction, error)
}

type PlacesHandler struct {
	places Autocompleter
	log    *zap.Logger
}

func NewPlacesHandler(places Autocompleter, log *zap.Logger) *PlacesHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlacesHandler{places: places, log: log}
}

// Autocomplete answers with an empty list when the provider fails.
func (h *PlacesHandler) Autocomplete(c *gin.Context) {
	predictions := suggest(c.Request.Context(), h.places, h.log, c.Query("input"))
	writeJSON(c, http.StatusOK, map[string]any{"predictions": predictions})
}

func suggest(ctx context.Context, places Autocompleter, log *zap.Logger, input string) []maps.Prediction {
	predictions, err := places.Autocomplete(ctx, input)
	if err != nil {
		log.Warn("autocomplete failed", zap.String("input", input), zap.Error(err))
		return []maps.Prediction{}
	}
	if predictions == nil {
		return []maps.Prediction{}
	}
	return predictions
}
