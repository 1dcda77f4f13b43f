package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/ranch/internal/domain/models"
	"github.com/mamadbah2/ranch/internal/server/metrics"
)

// BatchProfitability runs the group analysis over a batch's active animals.
func (h *APIHandler) BatchProfitability(c *gin.Context) {
	price, target, err := priceAndTarget(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	g, err := h.svc.Profitability.BatchProfitability(c.Request.Context(), c.Param("id"), price, target)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.Calculated(metrics.EngineBreakEven)
	c.JSON(http.StatusOK, g)
}

type breakEvenRequest struct {
	Costs                models.CostBreakdown `json:"costs"`
	CurrentWeight        float64              `json:"current_weight"`
	ProjectedFinalWeight float64              `json:"projected_final_weight"`
	MarketPrice          float64              `json:"market_price"`
}

// BreakEven runs the calculator on caller-supplied inputs.
func (h *APIHandler) BreakEven(c *gin.Context) {
	var req breakEvenRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.CurrentWeight < 0 || req.ProjectedFinalWeight < 0 || req.MarketPrice < 0 {
		h.fail(c, badRequest("weights and market price must not be negative"))
		return
	}
	a := h.svc.Calculator.CalculateBreakEven(req.Costs, req.CurrentWeight, req.ProjectedFinalWeight, req.MarketPrice)
	h.metrics.Calculated(metrics.EngineBreakEven)
	c.JSON(http.StatusOK, a)
}

type groupBreakEvenRequest struct {
	Costs   []models.CostBreakdown    `json:"costs"`
	Weights []models.WeightProjection `json:"weights"`
	Group   models.GroupInfo          `json:"group"`
}

// GroupBreakEven runs the group calculator on index-aligned inputs.
func (h *APIHandler) GroupBreakEven(c *gin.Context) {
	var req groupBreakEvenRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	g, err := h.svc.Calculator.CalculateGroupBreakEven(req.Costs, req.Weights, req.Group)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.Calculated(metrics.EngineBreakEven)
	c.JSON(http.StatusOK, g)
}

// HerdReport builds and archives the herd report for the trailing week.
func (h *APIHandler) HerdReport(c *gin.Context) {
	r, err := h.svc.Profitability.HerdReport(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
