// README: Estimate and tier catalog handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gosnap/internal/modules/estimate"
	"gosnap/internal/modules/pricing"
)

type TierSource interface {
	Tiers(ctx context.Context, c pricing.Catalog) ([]pricing.Tier, error)
}

type EstimateHandler struct {
	estimator estimate.Estimating
	quoter    estimate.Quoter
	tiers     TierSource
}

func NewEstimateHandler(estimator estimate.Estimating, pricingSvc *pricing.Service) *EstimateHandler {
	return &EstimateHandler{estimator: estimator, quoter: pricingSvc, tiers: pricingSvc}
}

type estimateReq struct {
	Kind        string            `json:"kind"`
	Pickup      estimate.Endpoint `json:"pickup"`
	Destination estimate.Endpoint `json:"destination"`
}

type estimateResp struct {
	Kind     estimate.Kind          `json:"kind"`
	Estimate estimate.RouteEstimate `json:"estimate"`
	Quotes   []pricing.FareQuote    `json:"quotes"`
}

// Create runs a one-shot estimate. Provider failures never fail the request;
// they show up as fallback flags on the estimate.
func (h *EstimateHandler) Create(c *gin.Context) {
	var req estimateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	kind, ok := estimate.ParseKind(req.Kind)
	if !ok {
		writeError(c, http.StatusBadRequest, "kind must be city or airport")
		return
	}

	ctx := c.Request.Context()
	est := h.estimator.Estimate(ctx, estimate.Query{
		Kind:        kind,
		Pickup:      req.Pickup,
		Destination: req.Destination,
	})
	quotes, err := h.quoter.QuoteAll(ctx, kind.Catalog(), est.DistanceKm)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, estimateResp{Kind: kind, Estimate: est, Quotes: quotes})
}

func (h *EstimateHandler) Tiers(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	tiers, err := h.tiers.Tiers(c.Request.Context(), kind.Catalog())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"kind": kind, "tiers": tiers})
}
