package models

import "github.com/mamadbah2/ranch/internal/domain/metric"

// CostBreakdown is the full cost picture fed to the break-even calculator.
// Per-day rates recur over DaysOnFeed; the rest is one-time. FeedCostToDate
// is feed already spent that no per-day rate covers.
type CostBreakdown struct {
	PurchasePrice        float64 `json:"purchase_price"`
	TransportationCost   float64 `json:"transportation_cost"`
	CommissionFees       float64 `json:"commission_fees"`
	FeedCostPerDay       float64 `json:"feed_cost_per_day"`
	HealthcareCostPerDay float64 `json:"healthcare_cost_per_day"`
	LaborCostPerDay      float64 `json:"labor_cost_per_day"`
	FacilityCostPerDay   float64 `json:"facility_cost_per_day"`
	DaysOnFeed           int     `json:"days_on_feed"`
	Vaccinations         float64 `json:"vaccinations"`
	Treatments           float64 `json:"treatments"`
	EquipmentAllocation  float64 `json:"equipment_allocation"`
	FeedCostToDate       float64 `json:"feed_cost_to_date"`
	AnnualInterestRate   float64 `json:"annual_interest_rate"`
}

// CostTotals itemizes total costs by category.
type CostTotals struct {
	Purchase   float64 `json:"purchase"`
	Feed       float64 `json:"feed"`
	Healthcare float64 `json:"healthcare"`
	Labor      float64 `json:"labor"`
	Facility   float64 `json:"facility"`
	Interest   float64 `json:"interest"`
	Other      float64 `json:"other"`
	Total      float64 `json:"total"`
}

// WeightMetrics describes the weight trajectory behind an analysis.
type WeightMetrics struct {
	CurrentWeight        float64      `json:"current_weight"`
	ProjectedFinalWeight float64      `json:"projected_final_weight"`
	TotalGain            float64      `json:"total_gain"`
	AverageDailyGain     metric.Value `json:"average_daily_gain"`
	DaysOnFeed           int          `json:"days_on_feed"`
	CostPerPound         metric.Value `json:"cost_per_pound"`
	CostPerPoundGain     metric.Value `json:"cost_per_pound_gain"`
	CostPerDay           metric.Value `json:"cost_per_day"`
}

// BreakEvenPoint is the price at which revenue equals total cost.
type BreakEvenPoint struct {
	PricePerPound metric.Value `json:"price_per_pound"`
	SalePrice     metric.Value `json:"sale_price"`
}

// Margin is the outcome at the current market price.
type Margin struct {
	MarketPrice float64      `json:"market_price"`
	Revenue     float64      `json:"revenue"`
	Amount      float64      `json:"amount"`
	Percentage  metric.Value `json:"percentage"`
}

// ProfitScenario is the projected profit at one price.
type ProfitScenario struct {
	Price  float64 `json:"price"`
	Profit float64 `json:"profit"`
}

// ProfitProjection holds profit at the current, target, best and worst prices.
type ProfitProjection struct {
	AtCurrentMarketPrice ProfitScenario `json:"at_current_market_price"`
	AtTargetPrice        ProfitScenario `json:"at_target_price"`
	BestCase             ProfitScenario `json:"best_case"`
	WorstCase            ProfitScenario `json:"worst_case"`
}

// BreakEvenAnalysis is the single-animal result of the calculator.
type BreakEvenAnalysis struct {
	Costs           CostTotals       `json:"costs"`
	Weights         WeightMetrics    `json:"weights"`
	BreakEven       BreakEvenPoint   `json:"break_even"`
	Margin          Margin           `json:"margin"`
	ProjectedProfit ProfitProjection `json:"projected_profit"`
	Recommendations []string         `json:"recommendations"`
}

// WeightProjection pairs the current and projected final weight of an animal.
type WeightProjection struct {
	CurrentWeight        float64 `json:"current_weight"`
	ProjectedFinalWeight float64 `json:"projected_final_weight"`
}

// GroupInfo identifies a batch and the price it is evaluated at.
type GroupInfo struct {
	BatchID     string  `json:"batch_id,omitempty"`
	Name        string  `json:"name,omitempty"`
	MarketPrice float64 `json:"market_price"`
}

// GroupAnalysis aggregates per-animal analyses into batch totals.
type GroupAnalysis struct {
	Group                 GroupInfo           `json:"group"`
	AnimalCount           int                 `json:"animal_count"`
	TotalInvestment       float64             `json:"total_investment"`
	AverageCostPerHead    metric.Value        `json:"average_cost_per_head"`
	TotalProjectedWeight  float64             `json:"total_projected_weight"`
	BreakEvenPricePerCwt  metric.Value        `json:"break_even_price_per_cwt"`
	TotalProjectedRevenue float64             `json:"total_projected_revenue"`
	ProjectedProfit       float64             `json:"projected_profit"`
	ROIPercentage         metric.Value        `json:"roi_percentage"`
	Animals               []BreakEvenAnalysis `json:"animals"`
}
