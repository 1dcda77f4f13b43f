package reporting

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/ranch/internal/domain/metric"
	"github.com/mamadbah2/ranch/internal/domain/models"
)

const dateLayout = models.DateLayout

func money(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

func moneyValue(v metric.Value) string {
	f, ok := v.Float64()
	if !ok {
		return metric.NotComputableLabel
	}
	return money(f)
}

// FormatHerdReport renders a herd report for a WhatsApp message.
func FormatHerdReport(r models.HerdReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Herd report (%s to %s)\n", r.PeriodStart.Format(dateLayout), r.PeriodEnd.Format(dateLayout))
	fmt.Fprintf(&b, "Head: %d | Feed: %s | Medication: %s\n", r.TotalHead, money(r.TotalFeedCost), money(r.TotalMedicationCost))

	if len(r.Pens) == 0 {
		b.WriteString("No pens recorded yet.")
		return b.String()
	}

	for _, p := range r.Pens {
		fmt.Fprintf(&b, "- %s: %d/%d head, feed %s, meds %s, ADG %s\n",
			p.Name, p.HeadCount, p.Capacity, money(p.FeedCost), money(p.MedicationCost), p.AverageADG.Format("%.2f"))
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", w)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatCostSummary renders an animal's cost summary.
func FormatCostSummary(tag string, s models.CostSummary) string {
	return fmt.Sprintf("Costs for %s: feed %s, medication %s, vet %s. Total %s across %d feed and %d medication records.",
		tag, money(s.FeedCost), money(s.MedicationCost), money(s.HealthRecordCost),
		money(s.TotalVariableCost), s.FeedRecords, s.MedicationRecords)
}

// FormatGrowth renders an animal's growth metrics.
func FormatGrowth(tag string, m models.GrowthMetrics) string {
	if m.Lifetime == nil {
		return fmt.Sprintf("Growth for %s: %.0f lbs, not enough weigh-ins for ADG yet.", tag, m.CurrentWeight)
	}

	recent := metric.NA
	if m.Recent != nil {
		recent = m.Recent.ADG
	}
	msg := fmt.Sprintf("Growth for %s: %.0f lbs, ADG %s lifetime, %s last 30 days (%s).",
		tag, m.CurrentWeight, m.Lifetime.ADG.Format("%.2f"), recent.Format("%.2f"), m.ADGRating)
	if m.Efficiency != nil {
		msg += fmt.Sprintf(" FCR %s, %s per lb gain.", m.Efficiency.ConversionRatio.Format("%.1f"), moneyValue(m.Efficiency.CostPerLbGain))
		if m.Efficiency.Rating != "" {
			msg += " " + m.Efficiency.Rating + "."
		}
	}
	return msg
}

// FormatBreakEven renders the headline numbers of a break-even analysis.
func FormatBreakEven(tag string, a models.BreakEvenAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Break-even for %s: %s/lb (sale %s). Total cost %s.\n",
		tag, moneyValue(a.BreakEven.PricePerPound), moneyValue(a.BreakEven.SalePrice), money(a.Costs.Total))
	fmt.Fprintf(&b, "At %s/lb: margin %s (%s).",
		money(a.Margin.MarketPrice), money(a.Margin.Amount), a.Margin.Percentage.Format("%.1f%%"))
	for _, r := range a.Recommendations {
		fmt.Fprintf(&b, "\n- %s", r)
	}
	return b.String()
}
