package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/ranch/internal/domain/models"
	"github.com/mamadbah2/ranch/internal/service/records"
)

type medicationRequest struct {
	records.MedicationInput
	Date string `json:"date"`
}

// CreateMedication records a drug administration to a pen or one animal.
func (h *APIHandler) CreateMedication(c *gin.Context) {
	var req medicationRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	date, err := parseDay("date", req.Date)
	if err != nil {
		h.fail(c, err)
		return
	}
	in := req.MedicationInput
	in.Date = date

	rec, err := h.svc.Records.CreateMedicationActivity(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

type healthRecordRequest struct {
	CattleID    string                  `json:"cattle_id" binding:"required"`
	Date        string                  `json:"date"`
	Kind        models.HealthRecordKind `json:"kind"`
	Description string                  `json:"description"`
	Cost        float64                 `json:"cost"`
}

// CreateHealthRecord records a veterinary or other animal-level health cost.
func (h *APIHandler) CreateHealthRecord(c *gin.Context) {
	var req healthRecordRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	date, err := parseDay("date", req.Date)
	if err != nil {
		h.fail(c, err)
		return
	}

	rec, err := h.svc.Records.CreateHealthRecord(c.Request.Context(), models.HealthRecord{
		CattleID:    req.CattleID,
		Date:        date,
		Kind:        req.Kind,
		Description: req.Description,
		Cost:        req.Cost,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

type restockRequest struct {
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
}

// Restock adds stock to an inventory item.
func (h *APIHandler) Restock(c *gin.Context) {
	var req restockRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	item, err := h.svc.Inventory.Restock(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
