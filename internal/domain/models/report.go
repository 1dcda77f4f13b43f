package models

import (
	"time"

	"github.com/mamadbah2/ranch/internal/domain/metric"
)

// PenSnapshot is one pen's line in the herd report.
type PenSnapshot struct {
	PenID          string       `bson:"pen_id" json:"pen_id"`
	Name           string       `bson:"name" json:"name"`
	HeadCount      int          `bson:"head_count" json:"head_count"`
	Capacity       int          `bson:"capacity" json:"capacity"`
	OverCapacity   bool         `bson:"over_capacity" json:"over_capacity"`
	FeedCost       float64      `bson:"feed_cost" json:"feed_cost"`
	MedicationCost float64      `bson:"medication_cost" json:"medication_cost"`
	AverageADG     metric.Value `bson:"average_adg" json:"average_adg"`
}

// HerdReport is the periodic herd summary archived to MongoDB. Archived
// reports are history for people, never an input to later calculations.
type HerdReport struct {
	ID                  string        `bson:"_id" json:"id"`
	PeriodStart         time.Time     `bson:"period_start" json:"period_start"`
	PeriodEnd           time.Time     `bson:"period_end" json:"period_end"`
	TotalHead           int           `bson:"total_head" json:"total_head"`
	TotalFeedCost       float64       `bson:"total_feed_cost" json:"total_feed_cost"`
	TotalMedicationCost float64       `bson:"total_medication_cost" json:"total_medication_cost"`
	Pens                []PenSnapshot `bson:"pens" json:"pens"`
	Warnings            []string      `bson:"warnings,omitempty" json:"warnings,omitempty"`
	CreatedAt           time.Time     `bson:"created_at" json:"created_at"`
}
