package models

import (
	"time"

	"github.com/mamadbah2/ranch/internal/domain/metric"
)

// NutritionExport is a pen's feed record over a period, shared with the
// consulting nutritionist.
type NutritionExport struct {
	PenID         string            `json:"pen_id"`
	PenName       string            `json:"pen_name"`
	PeriodStart   *time.Time        `json:"period_start,omitempty"`
	PeriodEnd     *time.Time        `json:"period_end,omitempty"`
	HeadCount     int               `json:"head_count"`
	Allocations   []FeedAllocation  `json:"allocations"`
	Activities    []PenFeedActivity `json:"activities"`
	TotalFeedLbs  float64           `json:"total_feed_lbs"`
	TotalFeedCost float64           `json:"total_feed_cost"`
	CostPerHead   metric.Value      `json:"cost_per_head"`
	AverageADG    metric.Value      `json:"average_adg"`
	GeneratedAt   time.Time         `json:"generated_at"`
}
