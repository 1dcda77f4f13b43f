package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/ranch/internal/domain/models"
	"github.com/mamadbah2/ranch/internal/service/breakeven"
	"github.com/mamadbah2/ranch/internal/service/commands"
	"github.com/mamadbah2/ranch/internal/service/export"
	"github.com/mamadbah2/ranch/internal/service/inventory"
)

// errBadQuery marks malformed query parameters and request bodies.
var errBadQuery = errors.New("bad request")

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadQuery),
		errors.Is(err, models.ErrInvalidRecord),
		errors.Is(err, breakeven.ErrMismatchedInputs),
		errors.Is(err, commands.ErrInvalidArguments):
		return http.StatusBadRequest
	case errors.Is(err, inventory.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, export.ErrSheetsDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *APIHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	h.logger.Debug("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadQuery, fmt.Sprintf(format, args...))
}

func queryRange(c *gin.Context) (models.DateRange, error) {
	r, err := models.ParseDateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		return models.DateRange{}, fmt.Errorf("%w: %v", errBadQuery, err)
	}
	return r, nil
}

// queryFloat parses a finite number. Missing values return def unless required.
func queryFloat(c *gin.Context, key string, def float64, required bool) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		if required {
			return 0, badRequest("%s is required", key)
		}
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, badRequest("%s must be a number", key)
	}
	if v < 0 {
		return 0, badRequest("%s must not be negative", key)
	}
	return v, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, badRequest("%s must be a non-negative integer", key)
	}
	return v, nil
}

// parseDay parses an optional YYYY-MM-DD body date.
func parseDay(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, badRequest("%s must be YYYY-MM-DD", field)
	}
	return t, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadQuery, err)
	}
	return nil
}
