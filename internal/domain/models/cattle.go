package models

import (
	"sort"
	"time"
)

// AnimalStatus enumerates lifecycle states of an animal.
type AnimalStatus string

const (
	StatusActive      AnimalStatus = "active"
	StatusSold        AnimalStatus = "sold"
	StatusDeceased    AnimalStatus = "deceased"
	StatusTransferred AnimalStatus = "transferred"
)

// Valid reports whether s is a known status.
func (s AnimalStatus) Valid() bool {
	switch s {
	case StatusActive, StatusSold, StatusDeceased, StatusTransferred:
		return true
	}
	return false
}

// WeightRecord is a single dated scale reading, in pounds.
type WeightRecord struct {
	Date   time.Time `bson:"date" json:"date"`
	Weight float64   `bson:"weight" json:"weight"`
}

// Animal is one head of cattle.
type Animal struct {
	ID             string         `bson:"_id" json:"id"`
	Tag            string         `bson:"tag" json:"tag"`
	PenID          string         `bson:"pen_id,omitempty" json:"pen_id,omitempty"`
	BatchID        string         `bson:"batch_id,omitempty" json:"batch_id,omitempty"`
	PurchaseDate   time.Time      `bson:"purchase_date" json:"purchase_date"`
	PurchasePrice  float64        `bson:"purchase_price" json:"purchase_price"`
	PurchaseWeight float64        `bson:"purchase_weight" json:"purchase_weight"`
	Weights        []WeightRecord `bson:"weights,omitempty" json:"weights,omitempty"`
	Status         AnimalStatus   `bson:"status" json:"status"`
}

// HasPen reports whether the animal is currently assigned to a pen.
func (a Animal) HasPen() bool { return a.PenID != "" }

// SortedWeights returns a date-ordered copy of the weight history.
func (a Animal) SortedWeights() []WeightRecord {
	out := make([]WeightRecord, len(a.Weights))
	copy(out, a.Weights)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// CurrentWeight is the latest recorded weight, falling back to purchase weight.
func (a Animal) CurrentWeight() float64 {
	w := a.SortedWeights()
	if len(w) == 0 {
		return a.PurchaseWeight
	}
	return w[len(w)-1].Weight
}

// DaysOnFeed counts whole days from purchase to asOf, never negative.
func (a Animal) DaysOnFeed(asOf time.Time) int {
	if a.PurchaseDate.IsZero() {
		return 0
	}
	days := DaysBetween(a.PurchaseDate, asOf)
	if days < 0 {
		return 0
	}
	return days
}
