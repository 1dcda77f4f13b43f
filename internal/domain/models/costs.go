package models

import (
	"time"

	"github.com/mamadbah2/ranch/internal/domain/metric"
)

// FeedSource tells which recording workflow a feed history entry came from.
type FeedSource string

const (
	FeedSourceAllocation FeedSource = "allocation"
	FeedSourceActivity   FeedSource = "activity"
)

// FeedHistoryEntry is one animal's share of a pen feed record.
type FeedHistoryEntry struct {
	Source        FeedSource       `json:"source"`
	Date          time.Time        `json:"date"`
	Allocation    *FeedAllocation  `json:"allocation,omitempty"`
	Activity      *PenFeedActivity `json:"activity,omitempty"`
	AllocatedCost metric.Value     `json:"allocated_cost"`
	// CattleShare is the percentage of the delivery attributable to one head.
	CattleShare metric.Value `json:"cattle_share"`
	// FeedLbs is the animal's share of the delivered weight.
	FeedLbs metric.Value `json:"feed_lbs"`
}

// MedicationHistoryEntry is one animal's share of a medication activity.
type MedicationHistoryEntry struct {
	Activity      MedicationActivity `json:"activity"`
	AllocatedCost float64            `json:"allocated_cost"`
	Dosage        float64            `json:"dosage"`
}

// CostSummary is an animal's variable cost over a date range. It is rebuilt
// from the underlying records on every request.
type CostSummary struct {
	CattleID string    `json:"cattle_id"`
	PenID    string    `json:"pen_id,omitempty"`
	Range    DateRange `json:"-"`

	PenFeedCost              float64 `json:"pen_feed_cost"`
	IndividualFeedCost       float64 `json:"individual_feed_cost"`
	FeedCost                 float64 `json:"feed_cost"`
	PenMedicationCost        float64 `json:"pen_medication_cost"`
	IndividualMedicationCost float64 `json:"individual_medication_cost"`
	MedicationCost           float64 `json:"medication_cost"`
	HealthRecordCost         float64 `json:"health_record_cost"`
	TotalVariableCost        float64 `json:"total_variable_cost"`

	FeedRecords       int `json:"feed_records"`
	MedicationRecords int `json:"medication_records"`
	HealthRecords     int `json:"health_records"`
}

// CostShare is one animal's exact-to-the-cent share of a pen cost.
type CostShare struct {
	CattleID string  `json:"cattle_id"`
	Amount   float64 `json:"amount"`
}

// AllocationLedger splits one feed allocation across the animals currently in
// its pen. Unallocated is what the current pen members do not account for when
// membership has changed since delivery.
type AllocationLedger struct {
	AllocationID string       `json:"allocation_id"`
	PenID        string       `json:"pen_id"`
	TotalCost    float64      `json:"total_cost"`
	HeadCount    int          `json:"head_count"`
	CostPerHead  metric.Value `json:"cost_per_head"`
	Shares       []CostShare  `json:"shares"`
	Unallocated  float64      `json:"unallocated"`
}
