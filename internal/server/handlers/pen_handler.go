package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/ranch/internal/domain/models"
	"github.com/mamadbah2/ranch/internal/server/metrics"
	"github.com/mamadbah2/ranch/internal/service/records"
)

// Pens lists pens with occupancy warnings.
func (h *APIHandler) Pens(c *gin.Context) {
	pens, err := h.svc.Profitability.Pens(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pens": nonNil(pens)})
}

type nutritionResponse struct {
	models.NutritionExport
	RowsPushed *int `json:"rows_pushed,omitempty"`
}

// Nutrition exports a pen's feed records; ?push=true also appends them to the sheet.
func (h *APIHandler) Nutrition(c *gin.Context) {
	r, err := queryRange(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	push := false
	if raw := c.Query("push"); raw != "" {
		if push, err = strconv.ParseBool(raw); err != nil {
			h.fail(c, badRequest("push must be true or false"))
			return
		}
	}

	e, err := h.svc.Export.PenNutrition(c.Request.Context(), c.Param("id"), r)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := nutritionResponse{NutritionExport: e}
	if push {
		n, err := h.svc.Export.PushToSheets(c.Request.Context(), e)
		if err != nil {
			h.fail(c, err)
			return
		}
		resp.RowsPushed = &n
	}
	c.JSON(http.StatusOK, resp)
}

type feedAllocationRequest struct {
	records.FeedAllocationInput
	Date string `json:"date"`
}

// CreateFeedAllocation records a detailed feed delivery to a pen.
func (h *APIHandler) CreateFeedAllocation(c *gin.Context) {
	var req feedAllocationRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	date, err := parseDay("date", req.Date)
	if err != nil {
		h.fail(c, err)
		return
	}
	in := req.FeedAllocationInput
	in.PenID, in.Date = c.Param("id"), date

	rec, err := h.svc.Records.CreateFeedAllocation(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

type feedActivityRequest struct {
	records.PenFeedActivityInput
	Date string `json:"date"`
}

// CreateFeedActivity records a simple feed delivery to a pen.
func (h *APIHandler) CreateFeedActivity(c *gin.Context) {
	var req feedActivityRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	date, err := parseDay("date", req.Date)
	if err != nil {
		h.fail(c, err)
		return
	}
	in := req.PenFeedActivityInput
	in.PenID, in.Date = c.Param("id"), date

	rec, err := h.svc.Records.CreatePenFeedActivity(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// AllocationLedger splits a feed allocation across the pen's current animals.
func (h *APIHandler) AllocationLedger(c *gin.Context) {
	ledger, err := h.svc.Costs.AllocationLedger(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.Calculated(metrics.EngineAllocation)
	c.JSON(http.StatusOK, ledger)
}
