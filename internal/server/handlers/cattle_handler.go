package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/ranch/internal/domain/models"
	"github.com/mamadbah2/ranch/internal/server/metrics"
)

const defaultProjectionDays = 90

// CattleCosts returns the cost summary of one animal over ?start=&end=.
func (h *APIHandler) CattleCosts(c *gin.Context) {
	r, err := queryRange(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	summary, err := h.svc.Costs.GetCattleCostSummary(c.Request.Context(), c.Param("id"), r)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.Calculated(metrics.EngineAllocation)
	c.JSON(http.StatusOK, summary)
}

// FeedHistory returns the animal's feed history entries.
func (h *APIHandler) FeedHistory(c *gin.Context) {
	r, err := queryRange(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	history, err := h.svc.Costs.GetCattleFeedHistory(c.Request.Context(), c.Param("id"), r)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.Calculated(metrics.EngineAllocation)
	c.JSON(http.StatusOK, gin.H{"cattle_id": c.Param("id"), "entries": nonNil(history)})
}

// MedicationHistory returns the animal's medication history entries.
func (h *APIHandler) MedicationHistory(c *gin.Context) {
	r, err := queryRange(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	history, err := h.svc.Costs.GetCattleMedicationHistory(c.Request.Context(), c.Param("id"), r)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.Calculated(metrics.EngineAllocation)
	c.JSON(http.StatusOK, gin.H{"cattle_id": c.Param("id"), "entries": nonNil(history)})
}

// Growth returns ADG windows and feed efficiency.
func (h *APIHandler) Growth(c *gin.Context) {
	m, err := h.svc.Growth.Metrics(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.Calculated(metrics.EngineGrowth)
	c.JSON(http.StatusOK, m)
}

// Timeline returns weights, feedings and ?projectionDays= of projections.
func (h *APIHandler) Timeline(c *gin.Context) {
	days, err := queryInt(c, "projectionDays", defaultProjectionDays)
	if err != nil {
		h.fail(c, err)
		return
	}
	events, err := h.svc.Growth.Timeline(c.Request.Context(), c.Param("id"), days)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.Calculated(metrics.EngineGrowth)
	c.JSON(http.StatusOK, gin.H{"cattle_id": c.Param("id"), "events": nonNil(events)})
}

// Target estimates days to ?weight=.
func (h *APIHandler) Target(c *gin.Context) {
	weight, err := queryFloat(c, "weight", 0, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	p, err := h.svc.Growth.TargetProjection(c.Request.Context(), c.Param("id"), weight)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.Calculated(metrics.EngineGrowth)
	c.JSON(http.StatusOK, p)
}

// Profitability runs the break-even analysis for one animal at ?price=.
func (h *APIHandler) Profitability(c *gin.Context) {
	price, target, err := priceAndTarget(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	a, err := h.svc.Profitability.AnimalProfitability(c.Request.Context(), c.Param("id"), price, target)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.Calculated(metrics.EngineBreakEven)
	c.JSON(http.StatusOK, a)
}

type withdrawalResponse struct {
	models.WithdrawalStatus
	AsOf        string `json:"as_of"`
	ClearToSell bool   `json:"clear_to_sell"`
}

// Withdrawal reports the drug withdrawal clear date, checked against ?asOf=.
func (h *APIHandler) Withdrawal(c *gin.Context) {
	asOf, err := parseDay("asOf", c.Query("asOf"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if asOf.IsZero() {
		asOf = models.StartOfDay(h.now())
	}
	st, err := h.svc.Inventory.Withdrawal(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, withdrawalResponse{
		WithdrawalStatus: st,
		AsOf:             asOf.Format(models.DateLayout),
		ClearToSell:      st.ClearToSell(asOf),
	})
}

type weightRequest struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight" binding:"required"`
}

// RecordWeight appends a weigh-in.
func (h *APIHandler) RecordWeight(c *gin.Context) {
	var req weightRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	date, err := parseDay("date", req.Date)
	if err != nil {
		h.fail(c, err)
		return
	}
	if date.IsZero() {
		date = models.StartOfDay(h.now())
	}
	animal, err := h.svc.Records.RecordWeight(c.Request.Context(), c.Param("id"), date, req.Weight)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, animal)
}

func priceAndTarget(c *gin.Context) (float64, float64, error) {
	price, err := queryFloat(c, "price", 0, true)
	if err != nil {
		return 0, 0, err
	}
	target, err := queryFloat(c, "targetWeight", 0, false)
	if err != nil {
		return 0, 0, err
	}
	return price, target, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
