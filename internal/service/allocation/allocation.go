// Package allocation apportions pen-level feed and medication costs to
// individual animals and folds in individually recorded health costs.
//
// Two feed workflows exist side by side: detailed feed allocations and simple
// pen feed activities. They record different deliveries, so their per-head
// costs are added together. Do not deduplicate them; that would change
// financial totals.
package allocation

import (
	"sort"

	"github.com/mamadbah2/ranch/internal/domain/metric"
	"github.com/mamadbah2/ranch/internal/domain/models"
)

// AllocationCostPerHead is the recorded cost per head, or total cost over the
// head count recorded on the allocation itself.
func AllocationCostPerHead(rec models.FeedAllocation) metric.Value {
	if rec.CostPerHead != nil {
		return metric.Of(*rec.CostPerHead)
	}
	return metric.SafeDiv(rec.TotalCost, float64(rec.HeadCount))
}

// ActivityCostPerHead is total cost over the cattle count of a simple feed
// activity.
func ActivityCostPerHead(act models.PenFeedActivity) metric.Value {
	return metric.SafeDiv(act.TotalCost, float64(act.CattleCount))
}

// FeedHistory maps the in-range records of a pen to one animal's share, in
// date order. Records with no head count keep their entry with not-computable
// cost and share.
func FeedHistory(allocations []models.FeedAllocation, activities []models.PenFeedActivity, r models.DateRange) []models.FeedHistoryEntry {
	out := make([]models.FeedHistoryEntry, 0, len(allocations)+len(activities))

	for i := range allocations {
		rec := allocations[i]
		if !r.Contains(rec.Date) {
			continue
		}
		heads := float64(rec.HeadCount)
		out = append(out, models.FeedHistoryEntry{
			Source:        models.FeedSourceAllocation,
			Date:          rec.Date,
			Allocation:    &rec,
			AllocatedCost: AllocationCostPerHead(rec),
			CattleShare:   metric.SafeDiv(100, heads),
			FeedLbs:       metric.SafeDiv(rec.TotalWeight, heads),
		})
	}

	for i := range activities {
		act := activities[i]
		if !r.Contains(act.Date) {
			continue
		}
		heads := float64(act.CattleCount)
		out = append(out, models.FeedHistoryEntry{
			Source:        models.FeedSourceActivity,
			Date:          act.Date,
			Activity:      &act,
			AllocatedCost: ActivityCostPerHead(act),
			CattleShare:   metric.SafeDiv(100, heads),
			FeedLbs:       metric.SafeDiv(act.Quantity, heads),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// FeedCost sums one animal's share across both feed workflows. Records whose
// per-head cost is not computable contribute nothing.
func FeedCost(allocations []models.FeedAllocation, activities []models.PenFeedActivity, r models.DateRange) float64 {
	var total float64
	for _, rec := range allocations {
		if r.Contains(rec.Date) {
			total += AllocationCostPerHead(rec).Or(0)
		}
	}
	for _, act := range activities {
		if r.Contains(act.Date) {
			total += ActivityCostPerHead(act).Or(0)
		}
	}
	return total
}

// MedicationHistory maps in-range activities covering cattleID to that
// animal's cost and dosage, in date order.
func MedicationHistory(cattleID string, activities []models.MedicationActivity, r models.DateRange) []models.MedicationHistoryEntry {
	out := make([]models.MedicationHistoryEntry, 0, len(activities))
	for _, act := range activities {
		if !r.Contains(act.Date) || !act.AppliesTo(cattleID) {
			continue
		}
		out = append(out, models.MedicationHistoryEntry{
			Activity:      act,
			AllocatedCost: act.CostPerHead,
			Dosage:        act.DosagePerHead,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Activity.Date.Before(out[j].Activity.Date) })
	return out
}

// MedicationCost sums cost per head across in-range activities covering
// cattleID.
func MedicationCost(cattleID string, activities []models.MedicationActivity, r models.DateRange) float64 {
	var total float64
	for _, act := range activities {
		if r.Contains(act.Date) && act.AppliesTo(cattleID) {
			total += act.CostPerHead
		}
	}
	return total
}

// HealthBuckets splits individual health records into feed-tagged,
// medication-tagged and plain veterinary cost.
type HealthBuckets struct {
	Feed       float64
	Medication float64
	Veterinary float64
	Count      int
}

// PartitionHealthRecords buckets in-range health records by their tag.
func PartitionHealthRecords(records []models.HealthRecord, r models.DateRange) HealthBuckets {
	var b HealthBuckets
	for _, rec := range records {
		if !r.Contains(rec.Date) {
			continue
		}
		b.Count++
		switch rec.Kind {
		case models.HealthFeed:
			b.Feed += rec.Cost
		case models.HealthMedication:
			b.Medication += rec.Cost
		default:
			b.Veterinary += rec.Cost
		}
	}
	return b
}
