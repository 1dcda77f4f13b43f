package models

import (
	"fmt"
	"math"
	"time"
)

// FeedLine is one feed item delivered as part of a feed allocation.
type FeedLine struct {
	ItemID      string  `bson:"item_id" json:"item_id"`
	Name        string  `bson:"name" json:"name"`
	Quantity    float64 `bson:"quantity" json:"quantity"`
	CostPerUnit float64 `bson:"cost_per_unit" json:"cost_per_unit"`
	TotalCost   float64 `bson:"total_cost" json:"total_cost"`
}

// FeedAllocation is a detailed feed delivery to a pen. It is immutable once
// created; HeadCount is the pen head count at delivery time.
type FeedAllocation struct {
	ID          string     `bson:"_id" json:"id"`
	PenID       string     `bson:"pen_id" json:"pen_id"`
	Date        time.Time  `bson:"date" json:"date"`
	Items       []FeedLine `bson:"items" json:"items"`
	TotalWeight float64    `bson:"total_weight" json:"total_weight"`
	HeadCount   int        `bson:"head_count" json:"head_count"`
	TotalCost   float64    `bson:"total_cost" json:"total_cost"`
	CostPerHead *float64   `bson:"cost_per_head,omitempty" json:"cost_per_head,omitempty"`
	Notes       string     `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Validate rejects malformed numbers before the record is stored.
func (f FeedAllocation) Validate() error {
	if f.PenID == "" {
		return fmt.Errorf("%w: feed allocation requires a pen", ErrInvalidRecord)
	}
	if f.HeadCount < 0 {
		return fmt.Errorf("%w: negative head count %d", ErrInvalidRecord, f.HeadCount)
	}
	if err := checkAmount("total cost", f.TotalCost); err != nil {
		return err
	}
	if err := checkAmount("total weight", f.TotalWeight); err != nil {
		return err
	}
	for _, line := range f.Items {
		if err := checkAmount("quantity of "+line.ItemID, line.Quantity); err != nil {
			return err
		}
		if err := checkAmount("cost per unit of "+line.ItemID, line.CostPerUnit); err != nil {
			return err
		}
	}
	if f.CostPerHead != nil {
		return checkAmount("cost per head", *f.CostPerHead)
	}
	return nil
}

// PenFeedActivity is the lightweight feed recording path: one feed type, one
// total, one head count.
type PenFeedActivity struct {
	ID          string    `bson:"_id" json:"id"`
	PenID       string    `bson:"pen_id" json:"pen_id"`
	Date        time.Time `bson:"date" json:"date"`
	FeedType    string    `bson:"feed_type" json:"feed_type"`
	Quantity    float64   `bson:"quantity" json:"quantity"`
	TotalCost   float64   `bson:"total_cost" json:"total_cost"`
	CattleCount int       `bson:"cattle_count" json:"cattle_count"`
}

// Validate rejects malformed numbers before the record is stored.
func (p PenFeedActivity) Validate() error {
	if p.PenID == "" {
		return fmt.Errorf("%w: feed activity requires a pen", ErrInvalidRecord)
	}
	if p.CattleCount < 0 {
		return fmt.Errorf("%w: negative cattle count %d", ErrInvalidRecord, p.CattleCount)
	}
	if err := checkAmount("quantity", p.Quantity); err != nil {
		return err
	}
	return checkAmount("total cost", p.TotalCost)
}

// MedicationActivity is a drug administration within a pen. CattleID narrows
// it to a single animal in that pen; when empty every head in the pen shares it.
type MedicationActivity struct {
	ID             string    `bson:"_id" json:"id"`
	PenID          string    `bson:"pen_id" json:"pen_id"`
	CattleID       string    `bson:"cattle_id,omitempty" json:"cattle_id,omitempty"`
	DrugID         string    `bson:"drug_id" json:"drug_id"`
	Date           time.Time `bson:"date" json:"date"`
	DosagePerHead  float64   `bson:"dosage_per_head" json:"dosage_per_head"`
	HeadCount      int       `bson:"head_count" json:"head_count"`
	CostPerHead    float64   `bson:"cost_per_head" json:"cost_per_head"`
	WithdrawalDays *int      `bson:"withdrawal_days,omitempty" json:"withdrawal_days,omitempty"`
}

// AppliesTo reports whether the activity covers the given animal.
func (m MedicationActivity) AppliesTo(cattleID string) bool {
	return m.CattleID == "" || m.CattleID == cattleID
}

// Validate rejects malformed numbers before the record is stored.
func (m MedicationActivity) Validate() error {
	if m.PenID == "" {
		return fmt.Errorf("%w: medication requires a pen", ErrInvalidRecord)
	}
	if m.DrugID == "" {
		return fmt.Errorf("%w: medication requires a drug", ErrInvalidRecord)
	}
	if m.HeadCount < 0 {
		return fmt.Errorf("%w: negative head count %d", ErrInvalidRecord, m.HeadCount)
	}
	if m.WithdrawalDays != nil && *m.WithdrawalDays < 0 {
		return fmt.Errorf("%w: negative withdrawal period", ErrInvalidRecord)
	}
	if err := checkAmount("dosage per head", m.DosagePerHead); err != nil {
		return err
	}
	return checkAmount("cost per head", m.CostPerHead)
}

// HealthRecordKind tags individual health records so feed and medication
// entries made outside the pen workflows land in the right cost bucket.
type HealthRecordKind string

const (
	HealthVeterinary HealthRecordKind = "veterinary"
	HealthFeed       HealthRecordKind = "feed"
	HealthMedication HealthRecordKind = "medication"
)

// HealthRecord is an individual, animal-level cost event.
type HealthRecord struct {
	ID          string           `bson:"_id" json:"id"`
	CattleID    string           `bson:"cattle_id" json:"cattle_id"`
	Date        time.Time        `bson:"date" json:"date"`
	Kind        HealthRecordKind `bson:"kind" json:"kind"`
	Description string           `bson:"description,omitempty" json:"description,omitempty"`
	Cost        float64          `bson:"cost" json:"cost"`
}

// Validate rejects malformed numbers before the record is stored.
func (h HealthRecord) Validate() error {
	if h.CattleID == "" {
		return fmt.Errorf("%w: health record requires an animal", ErrInvalidRecord)
	}
	switch h.Kind {
	case HealthVeterinary, HealthFeed, HealthMedication:
	default:
		return fmt.Errorf("%w: unknown health record kind %q", ErrInvalidRecord, h.Kind)
	}
	return checkAmount("cost", h.Cost)
}

func checkAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not a finite number", ErrInvalidRecord, field)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidRecord, field)
	}
	return nil
}
