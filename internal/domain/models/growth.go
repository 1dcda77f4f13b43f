package models

import (
	"time"

	"github.com/mamadbah2/ranch/internal/domain/metric"
)

// ADGWindow is the average daily gain between two weight observations.
type ADGWindow struct {
	Start       time.Time    `json:"start"`
	End         time.Time    `json:"end"`
	StartWeight float64      `json:"start_weight"`
	EndWeight   float64      `json:"end_weight"`
	Days        int          `json:"days"`
	Gain        float64      `json:"gain"`
	ADG         metric.Value `json:"adg"`
}

// FeedEfficiency relates feed consumed to weight gained over a window.
type FeedEfficiency struct {
	FeedLbs         float64      `json:"feed_lbs"`
	FeedCost        float64      `json:"feed_cost"`
	WeightGain      float64      `json:"weight_gain"`
	ConversionRatio metric.Value `json:"conversion_ratio"`
	CostPerLbGain   metric.Value `json:"cost_per_lb_gain"`
	Rating          string       `json:"rating,omitempty"`
}

// GrowthMetrics summarizes an animal's growth history.
type GrowthMetrics struct {
	CattleID      string          `json:"cattle_id"`
	CurrentWeight float64         `json:"current_weight"`
	Observations  int             `json:"observations"`
	Lifetime      *ADGWindow      `json:"lifetime,omitempty"`
	Recent        *ADGWindow      `json:"recent,omitempty"`
	ADGRating     string          `json:"adg_rating"`
	Efficiency    *FeedEfficiency `json:"efficiency,omitempty"`
}

// ADGSource tells which window a projection's ADG came from.
type ADGSource string

const (
	ADGSourceRecent   ADGSource = "recent"
	ADGSourceLifetime ADGSource = "lifetime"
	ADGSourceDefault  ADGSource = "default"
)

// TargetProjection estimates when an animal reaches a target weight.
type TargetProjection struct {
	TargetWeight  float64      `json:"target_weight"`
	CurrentWeight float64      `json:"current_weight"`
	ADG           float64      `json:"adg"`
	ADGSource     ADGSource    `json:"adg_source"`
	Feasible      bool         `json:"feasible"`
	DaysRemaining metric.Value `json:"days_remaining"`
	ProjectedDate *time.Time   `json:"projected_date,omitempty"`
}

// TimelineKind discriminates timeline events.
type TimelineKind string

const (
	TimelineWeight     TimelineKind = "weight"
	TimelineFeed       TimelineKind = "feed"
	TimelineProjection TimelineKind = "projection"
)

// TimelineEvent is one point on an animal's merged growth timeline.
type TimelineEvent struct {
	Date     time.Time    `json:"date"`
	Kind     TimelineKind `json:"kind"`
	Weight   float64      `json:"weight,omitempty"`
	FeedLbs  float64      `json:"feed_lbs,omitempty"`
	FeedCost float64      `json:"feed_cost,omitempty"`
	Label    string       `json:"label,omitempty"`
}
