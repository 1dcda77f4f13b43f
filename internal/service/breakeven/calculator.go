// Package breakeven turns a cost breakdown and a weight trajectory into a
// break-even price, margins, scenario profits and advisory notes, for one
// animal or a purchase batch.
//
// The calculator does arithmetic over caller-supplied values only. It never
// mutates its inputs and every division is guarded through metric.SafeDiv.
package breakeven

import (
	"errors"
	"fmt"

	"github.com/mamadbah2/ranch/internal/domain/metric"
	"github.com/mamadbah2/ranch/internal/domain/models"
)

// ErrMismatchedInputs indicates batch inputs of different lengths.
var ErrMismatchedInputs = errors.New("costs and weights must be index-aligned")

// Scenarios are the multipliers applied to the market price for projections.
type Scenarios struct {
	Target    float64
	BestCase  float64
	WorstCase float64
}

// DefaultScenarios returns target +10%, best +20% and worst -10%.
func DefaultScenarios() Scenarios {
	return Scenarios{Target: 1.10, BestCase: 1.20, WorstCase: 0.90}
}

// Thresholds drive the recommendation rules. Percentages are 0-100.
type Thresholds struct {
	TargetADG            float64
	StrongADG            float64
	TightMarginPct       float64
	GoodMarginPct        float64
	FeedSharePct         float64
	HealthcareSharePct   float64
	ExtendedDaysOnFeed   int
	StrongProfitSharePct float64
}

// DefaultThresholds returns the standard advisory thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TargetADG:            2.5,
		StrongADG:            3.5,
		TightMarginPct:       5,
		GoodMarginPct:        15,
		FeedSharePct:         60,
		HealthcareSharePct:   10,
		ExtendedDaysOnFeed:   180,
		StrongProfitSharePct: 15,
	}
}

// Calculator computes break-even analyses. It holds no mutable state and is
// safe for concurrent use.
type Calculator struct {
	scenarios  Scenarios
	thresholds Thresholds
}

// NewCalculator builds a calculator. Zero-valued multipliers fall back to the
// defaults.
func NewCalculator(scenarios Scenarios, thresholds Thresholds) *Calculator {
	def := DefaultScenarios()
	if scenarios.Target <= 0 {
		scenarios.Target = def.Target
	}
	if scenarios.BestCase <= 0 {
		scenarios.BestCase = def.BestCase
	}
	if scenarios.WorstCase <= 0 {
		scenarios.WorstCase = def.WorstCase
	}
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}
	return &Calculator{scenarios: scenarios, thresholds: thresholds}
}

// Scenarios returns the price multipliers in use.
func (c *Calculator) Scenarios() Scenarios { return c.scenarios }

// CalculateBreakEven analyses a single animal.
func (c *Calculator) CalculateBreakEven(costs models.CostBreakdown, currentWeight, projectedFinalWeight, currentMarketPrice float64) models.BreakEvenAnalysis {
	days := costs.DaysOnFeed
	if days < 0 {
		days = 0
	}
	d := float64(days)

	purchase := costs.PurchasePrice + costs.TransportationCost + costs.CommissionFees

	feed := costs.FeedCostPerDay*d + costs.FeedCostToDate
	healthcareDaily := costs.HealthcareCostPerDay * d
	labor := costs.LaborCostPerDay * d
	facility := costs.FacilityCostPerDay * d
	totalDaily := feed + healthcareDaily + labor + facility

	healthcareOneTime := costs.Vaccinations + costs.Treatments
	healthcare := healthcareDaily + healthcareOneTime

	// Simple interest on the capital tied up on average over the period.
	averageCapital := purchase + totalDaily/2
	interest := averageCapital * (costs.AnnualInterestRate / 100) * (d / 365)

	other := costs.EquipmentAllocation

	totals := models.CostTotals{
		Purchase:   purchase,
		Feed:       feed,
		Healthcare: healthcare,
		Labor:      labor,
		Facility:   facility,
		Interest:   interest,
		Other:      other,
	}
	totals.Total = purchase + feed + healthcare + labor + facility + interest + other

	totalGain := projectedFinalWeight - currentWeight
	weights := models.WeightMetrics{
		CurrentWeight:        currentWeight,
		ProjectedFinalWeight: projectedFinalWeight,
		TotalGain:            totalGain,
		AverageDailyGain:     metric.SafeDiv(totalGain, d),
		DaysOnFeed:           days,
		CostPerPound:         metric.SafeDiv(totals.Total, projectedFinalWeight),
		CostPerPoundGain:     metric.SafeDiv(totals.Total-purchase, totalGain),
		CostPerDay:           metric.SafeDiv(totals.Total, d),
	}

	breakEvenPrice := metric.SafeDiv(totals.Total, projectedFinalWeight)
	point := models.BreakEvenPoint{
		PricePerPound: breakEvenPrice,
		SalePrice:     breakEvenPrice.Map(func(p float64) float64 { return p * projectedFinalWeight }),
	}

	revenue := projectedFinalWeight * currentMarketPrice
	margin := models.Margin{
		MarketPrice: currentMarketPrice,
		Revenue:     revenue,
		Amount:      revenue - totals.Total,
		Percentage:  metric.SafeDiv(revenue-totals.Total, totals.Total).Map(percent),
	}

	scenario := func(price float64) models.ProfitScenario {
		return models.ProfitScenario{Price: price, Profit: projectedFinalWeight*price - totals.Total}
	}
	profit := models.ProfitProjection{
		AtCurrentMarketPrice: scenario(currentMarketPrice),
		AtTargetPrice:        scenario(currentMarketPrice * c.scenarios.Target),
		BestCase:             scenario(currentMarketPrice * c.scenarios.BestCase),
		WorstCase:            scenario(currentMarketPrice * c.scenarios.WorstCase),
	}

	analysis := models.BreakEvenAnalysis{
		Costs:           totals,
		Weights:         weights,
		BreakEven:       point,
		Margin:          margin,
		ProjectedProfit: profit,
	}
	analysis.Recommendations = c.recommend(costs, analysis, healthcareOneTime)
	return analysis
}

// CalculateGroupBreakEven runs the single-animal calculation for every
// index-aligned (costs, weights) pair and aggregates batch totals.
func (c *Calculator) CalculateGroupBreakEven(costsList []models.CostBreakdown, weightsList []models.WeightProjection, group models.GroupInfo) (models.GroupAnalysis, error) {
	if len(costsList) != len(weightsList) {
		return models.GroupAnalysis{}, fmt.Errorf("%w: %d costs, %d weights", ErrMismatchedInputs, len(costsList), len(weightsList))
	}

	out := models.GroupAnalysis{
		Group:       group,
		AnimalCount: len(costsList),
		Animals:     make([]models.BreakEvenAnalysis, 0, len(costsList)),
	}

	for i := range costsList {
		w := weightsList[i]
		analysis := c.CalculateBreakEven(costsList[i], w.CurrentWeight, w.ProjectedFinalWeight, group.MarketPrice)
		out.Animals = append(out.Animals, analysis)

		out.TotalInvestment += analysis.Costs.Total
		out.TotalProjectedWeight += w.ProjectedFinalWeight
		out.TotalProjectedRevenue += w.ProjectedFinalWeight * group.MarketPrice
	}

	out.ProjectedProfit = out.TotalProjectedRevenue - out.TotalInvestment
	out.AverageCostPerHead = metric.SafeDiv(out.TotalInvestment, float64(out.AnimalCount))
	out.ROIPercentage = metric.SafeDiv(out.ProjectedProfit, out.TotalInvestment).Map(percent)
	out.BreakEvenPricePerCwt = metric.SafeDiv(out.TotalInvestment, out.TotalProjectedWeight).Map(func(v float64) float64 { return v * 100 })

	return out, nil
}

// recommend applies every advisory rule independently, in a fixed order.
func (c *Calculator) recommend(costs models.CostBreakdown, a models.BreakEvenAnalysis, healthcareOneTime float64) []string {
	t := c.thresholds
	notes := make([]string, 0, 4)

	if adg, ok := a.Weights.AverageDailyGain.Float64(); ok {
		if adg < t.TargetADG {
			notes = append(notes, fmt.Sprintf("Average daily gain of %.2f lbs is below the %.1f lbs target; consider adjusting the ration.", adg, t.TargetADG))
		}
		if adg > t.StrongADG {
			notes = append(notes, fmt.Sprintf("Excellent average daily gain of %.2f lbs/day; the current ration is performing well.", adg))
		}
	}

	if pct, ok := a.Margin.Percentage.Float64(); ok {
		if pct < t.TightMarginPct {
			notes = append(notes, fmt.Sprintf("Tight margins: %.1f%% over break-even at the current market price. Consider forward pricing or cutting costs.", pct))
		}
		if pct > t.GoodMarginPct {
			notes = append(notes, fmt.Sprintf("Good margin of %.1f%% over break-even at the current market price.", pct))
		}
	}

	if share, ok := metric.SafeDiv(a.Costs.Feed, a.Costs.Total).Map(percent).Float64(); ok && share > t.FeedSharePct {
		notes = append(notes, fmt.Sprintf("Feed costs are high at %.0f%% of total costs; review ration costs and suppliers.", share))
	}

	if share, ok := metric.SafeDiv(healthcareOneTime, costs.PurchasePrice).Map(percent).Float64(); ok && share > t.HealthcareSharePct {
		notes = append(notes, fmt.Sprintf("Healthcare costs are elevated at %.0f%% of the purchase price; review the herd health protocol.", share))
	}

	if a.Weights.DaysOnFeed > t.ExtendedDaysOnFeed {
		notes = append(notes, fmt.Sprintf("Extended feeding period of %d days; evaluate marketing earlier.", a.Weights.DaysOnFeed))
	}

	profit := a.ProjectedProfit.AtCurrentMarketPrice.Profit
	if profit < 0 {
		notes = append(notes, fmt.Sprintf("Projected loss of $%.2f at the current market price.", -profit))
	}
	if profit > costs.PurchasePrice*t.StrongProfitSharePct/100 {
		notes = append(notes, fmt.Sprintf("Strong profit projection of $%.2f at the current market price.", profit))
	}

	return notes
}

func percent(v float64) float64 { return v * 100 }
