// Package growth derives average daily gain, feed efficiency, target-weight
// projections and a merged display timeline from an animal's weight history
// and its share of pen feed deliveries.
package growth

import (
	"math"
	"sort"
	"time"

	"github.com/mamadbah2/ranch/internal/domain/metric"
	"github.com/mamadbah2/ranch/internal/domain/models"
)

const (
	// DefaultADG is assumed when an animal has no usable weight history.
	DefaultADG = 2.5
	// RecentWindowDays is the trailing window for recent ADG.
	RecentWindowDays = 30
)

// Window computes ADG between two observations. Zero or negative day counts
// yield a not-computable ADG.
func Window(start, end time.Time, startWeight, endWeight float64) models.ADGWindow {
	days := models.DaysBetween(start, end)
	gain := endWeight - startWeight
	return models.ADGWindow{
		Start:       start,
		End:         end,
		StartWeight: startWeight,
		EndWeight:   endWeight,
		Days:        days,
		Gain:        gain,
		ADG:         metric.SafeDiv(gain, float64(days)),
	}
}

// Lifetime is the ADG from the first to the latest observation, or nil with
// fewer than two observations.
func Lifetime(weights []models.WeightRecord) *models.ADGWindow {
	sorted := sortedCopy(weights)
	if len(sorted) < 2 {
		return nil
	}
	first, last := sorted[0], sorted[len(sorted)-1]
	w := Window(first.Date, last.Date, first.Weight, last.Weight)
	return &w
}

// Recent is the ADG from the observation closest to windowDays before the
// latest one, up to the latest. Nil with fewer than two observations.
func Recent(weights []models.WeightRecord, windowDays int) *models.ADGWindow {
	sorted := sortedCopy(weights)
	if len(sorted) < 2 {
		return nil
	}
	last := sorted[len(sorted)-1]
	target := last.Date.AddDate(0, 0, -windowDays)

	best := sorted[0]
	bestGap := math.Abs(target.Sub(best.Date).Hours())
	for _, w := range sorted[1 : len(sorted)-1] {
		if gap := math.Abs(target.Sub(w.Date).Hours()); gap < bestGap {
			best, bestGap = w, gap
		}
	}

	win := Window(best.Date, last.Date, best.Weight, last.Weight)
	return &win
}

// Efficiency relates feed to gain. Ratios are not computable when gain <= 0.
func Efficiency(feedLbs, feedCost, weightGain float64) models.FeedEfficiency {
	fcr := metric.SafeDiv(feedLbs, weightGain)
	return models.FeedEfficiency{
		FeedLbs:         feedLbs,
		FeedCost:        feedCost,
		WeightGain:      weightGain,
		ConversionRatio: fcr,
		CostPerLbGain:   metric.SafeDiv(feedCost, weightGain),
		Rating:          ClassifyFCR(fcr),
	}
}

// ClassifyADG maps ADG to a display band.
func ClassifyADG(adg metric.Value) string {
	v, ok := adg.Float64()
	switch {
	case !ok:
		return metric.NotComputableLabel
	case v > 3:
		return "Excellent"
	case v > 2:
		return "Good"
	case v > 1:
		return "Fair"
	default:
		return "Low"
	}
}

// ClassifyFCR flags efficient and poor feed conversion. Ratios between the
// bands carry no label.
func ClassifyFCR(fcr metric.Value) string {
	v, ok := fcr.Float64()
	switch {
	case !ok:
		return ""
	case v < 6:
		return "Efficient"
	case v > 8:
		return "Review feed"
	default:
		return ""
	}
}

// ChooseADG picks the recent ADG, then lifetime, then the fallback.
func ChooseADG(recent, lifetime *models.ADGWindow, fallback float64) (float64, models.ADGSource) {
	if recent != nil {
		if v, ok := recent.ADG.Float64(); ok {
			return v, models.ADGSourceRecent
		}
	}
	if lifetime != nil {
		if v, ok := lifetime.ADG.Float64(); ok {
			return v, models.ADGSourceLifetime
		}
	}
	return fallback, models.ADGSourceDefault
}

// DaysToTarget projects when currentWeight reaches targetWeight at adg. A
// non-positive ADG can never reach the target and is reported infeasible.
func DaysToTarget(targetWeight, currentWeight, adg float64, source models.ADGSource, asOf time.Time) models.TargetProjection {
	p := models.TargetProjection{
		TargetWeight:  targetWeight,
		CurrentWeight: currentWeight,
		ADG:           adg,
		ADGSource:     source,
	}
	if adg <= 0 || math.IsNaN(adg) || math.IsInf(adg, 0) {
		p.DaysRemaining = metric.NA
		return p
	}

	days := math.Max(0, (targetWeight-currentWeight)/adg)
	p.Feasible = true
	p.DaysRemaining = metric.Of(days)
	at := models.StartOfDay(asOf).AddDate(0, 0, int(math.Ceil(days)))
	p.ProjectedDate = &at
	return p
}

// Projection builds synthetic future points every stepDays for horizonDays,
// starting after from.
func Projection(from time.Time, currentWeight, adg float64, horizonDays, stepDays int) []models.TimelineEvent {
	if horizonDays <= 0 || stepDays <= 0 || adg <= 0 {
		return nil
	}
	out := make([]models.TimelineEvent, 0, horizonDays/stepDays+1)
	for d := stepDays; d <= horizonDays; d += stepDays {
		out = append(out, models.TimelineEvent{
			Date:   models.StartOfDay(from).AddDate(0, 0, d),
			Kind:   models.TimelineProjection,
			Weight: currentWeight + adg*float64(d),
			Label:  "projected",
		})
	}
	return out
}

// Timeline merges weights, feed deliveries and projection points in date
// order. On equal dates weights sort before feed before projections.
func Timeline(weights []models.WeightRecord, feed []models.FeedHistoryEntry, projections []models.TimelineEvent) []models.TimelineEvent {
	out := make([]models.TimelineEvent, 0, len(weights)+len(feed)+len(projections))
	for _, w := range weights {
		out = append(out, models.TimelineEvent{Date: w.Date, Kind: models.TimelineWeight, Weight: w.Weight})
	}
	for _, f := range feed {
		ev := models.TimelineEvent{
			Date:     f.Date,
			Kind:     models.TimelineFeed,
			FeedLbs:  f.FeedLbs.Or(0),
			FeedCost: f.AllocatedCost.Or(0),
		}
		switch {
		case f.Activity != nil:
			ev.Label = f.Activity.FeedType
		case f.Allocation != nil && len(f.Allocation.Items) > 0:
			ev.Label = f.Allocation.Items[0].Name
		}
		out = append(out, ev)
	}
	out = append(out, projections...)

	rank := map[models.TimelineKind]int{models.TimelineWeight: 0, models.TimelineFeed: 1, models.TimelineProjection: 2}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return rank[out[i].Kind] < rank[out[j].Kind]
	})
	return out
}

func sortedCopy(weights []models.WeightRecord) []models.WeightRecord {
	out := make([]models.WeightRecord, len(weights))
	copy(out, weights)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
