package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/ranch/internal/domain/metric"
	"github.com/mamadbah2/ranch/internal/domain/models"
	"github.com/mamadbah2/ranch/internal/service/breakeven"
)

// reportWindowDays is the trailing period covered by the herd report.
const reportWindowDays = 7

// Store is the read side the reporting service needs, plus the report archive.
type Store interface {
	GetAnimal(ctx context.Context, id string) (models.Animal, error)
	ListAnimalsByBatch(ctx context.Context, batchID string) ([]models.Animal, error)
	ListAnimalsByPen(ctx context.Context, penID string) ([]models.Animal, error)
	ListPens(ctx context.Context) ([]models.Pen, error)
	SaveHerdReport(ctx context.Context, report models.HerdReport) error
}

// CostSource is the cost allocation engine.
type CostSource interface {
	GetCattleCostSummary(ctx context.Context, cattleID string, r models.DateRange) (models.CostSummary, error)
}

// GrowthSource is the growth engine.
type GrowthSource interface {
	Metrics(ctx context.Context, cattleID string) (models.GrowthMetrics, error)
	TargetProjection(ctx context.Context, cattleID string, targetWeight float64) (models.TargetProjection, error)
}

// Assumptions are the costs the ranch does not record per animal.
type Assumptions struct {
	TransportationCost float64
	CommissionFees     float64
	LaborCostPerDay    float64
	FacilityCostPerDay float64
	AnnualInterestRate float64
}

// Service composes the engines into profitability analyses and herd reports.
type Service struct {
	store       Store
	costs       CostSource
	growth      GrowthSource
	calc        *breakeven.Calculator
	assumptions Assumptions
	logger      *zap.Logger
	now         func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(store Store, costs CostSource, growth GrowthSource, calc *breakeven.Calculator, assumptions Assumptions, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = breakeven.NewCalculator(breakeven.DefaultScenarios(), breakeven.DefaultThresholds())
	}
	return &Service{
		store:       store,
		costs:       costs,
		growth:      growth,
		calc:        calc,
		assumptions: assumptions,
		logger:      logger,
		now:         time.Now,
	}
}

// Pens lists every pen with its live occupancy and an over-capacity warning.
func (s *Service) Pens(ctx context.Context) ([]models.PenStatus, error) {
	loaded, err := s.loadPens(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PenStatus, 0, len(loaded))
	for _, p := range loaded {
		out = append(out, p.status)
	}
	return out, nil
}

type penMembers struct {
	status  models.PenStatus
	members []models.Animal
}

func (s *Service) loadPens(ctx context.Context) ([]penMembers, error) {
	pens, err := s.store.ListPens(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pens: %w", err)
	}

	out := make([]penMembers, 0, len(pens))
	for _, pen := range pens {
		members, err := s.store.ListAnimalsByPen(ctx, pen.ID)
		if err != nil {
			return nil, fmt.Errorf("load animals for pen %s: %w", pen.ID, err)
		}
		pen.Occupancy = len(members)
		status := models.PenStatus{Pen: pen}
		if pen.OverCapacity() {
			status.Warning = capacityWarning(pen)
		}
		out = append(out, penMembers{status: status, members: members})
	}
	return out, nil
}

// AnimalProfitability projects one animal to targetWeight and runs the
// break-even analysis over its whole feeding period. Without a target the
// animal is assumed sold today at its current weight.
func (s *Service) AnimalProfitability(ctx context.Context, cattleID string, marketPrice, targetWeight float64) (models.BreakEvenAnalysis, error) {
	animal, err := s.store.GetAnimal(ctx, cattleID)
	if err != nil {
		return models.BreakEvenAnalysis{}, fmt.Errorf("load animal %s: %w", cattleID, err)
	}
	costs, weights, err := s.breakdown(ctx, animal, targetWeight)
	if err != nil {
		return models.BreakEvenAnalysis{}, err
	}
	return s.calc.CalculateBreakEven(costs, weights.CurrentWeight, weights.ProjectedFinalWeight, marketPrice), nil
}

// BatchProfitability runs the group analysis over every active animal in a
// purchase batch.
func (s *Service) BatchProfitability(ctx context.Context, batchID string, marketPrice, targetWeight float64) (models.GroupAnalysis, error) {
	animals, err := s.store.ListAnimalsByBatch(ctx, batchID)
	if err != nil {
		return models.GroupAnalysis{}, fmt.Errorf("load batch %s: %w", batchID, err)
	}

	costsList := make([]models.CostBreakdown, 0, len(animals))
	weightsList := make([]models.WeightProjection, 0, len(animals))
	for _, a := range animals {
		if a.Status != "" && a.Status != models.StatusActive {
			continue
		}
		costs, weights, err := s.breakdown(ctx, a, targetWeight)
		if err != nil {
			return models.GroupAnalysis{}, err
		}
		costsList = append(costsList, costs)
		weightsList = append(weightsList, weights)
	}

	return s.calc.CalculateGroupBreakEven(costsList, weightsList, models.GroupInfo{
		BatchID:     batchID,
		Name:        batchID,
		MarketPrice: marketPrice,
	})
}

// HerdReport summarizes the last week per pen and archives the result.
func (s *Service) HerdReport(ctx context.Context) (models.HerdReport, error) {
	now := s.now()
	end := models.StartOfDay(now)
	report := models.HerdReport{
		ID:          uuid.NewString(),
		PeriodStart: end.AddDate(0, 0, -(reportWindowDays - 1)),
		PeriodEnd:   end,
		CreatedAt:   now,
	}
	period := models.DateRange{Start: report.PeriodStart, End: report.PeriodEnd}

	loaded, err := s.loadPens(ctx)
	if err != nil {
		return models.HerdReport{}, err
	}

	for _, lp := range loaded {
		pen, members := lp.status, lp.members
		snap := models.PenSnapshot{
			PenID:        pen.ID,
			Name:         pen.Name,
			HeadCount:    len(members),
			Capacity:     pen.Capacity,
			OverCapacity: pen.OverCapacity(),
		}

		var adgSum float64
		var adgCount int
		for _, a := range members {
			summary, err := s.costs.GetCattleCostSummary(ctx, a.ID, period)
			if err != nil {
				return models.HerdReport{}, err
			}
			snap.FeedCost += summary.PenFeedCost
			snap.MedicationCost += summary.PenMedicationCost

			m, err := s.growth.Metrics(ctx, a.ID)
			if err != nil {
				return models.HerdReport{}, err
			}
			if m.Lifetime != nil {
				if v, ok := m.Lifetime.ADG.Float64(); ok {
					adgSum += v
					adgCount++
				}
			}
		}
		snap.FeedCost = metric.Round(snap.FeedCost, 2)
		snap.MedicationCost = metric.Round(snap.MedicationCost, 2)
		snap.AverageADG = metric.SafeDiv(adgSum, float64(adgCount)).Round(2)

		if pen.Warning != "" {
			report.Warnings = append(report.Warnings, pen.Warning)
		}
		report.TotalHead += snap.HeadCount
		report.TotalFeedCost += snap.FeedCost
		report.TotalMedicationCost += snap.MedicationCost
		report.Pens = append(report.Pens, snap)
	}
	report.TotalFeedCost = metric.Round(report.TotalFeedCost, 2)
	report.TotalMedicationCost = metric.Round(report.TotalMedicationCost, 2)

	if err := s.store.SaveHerdReport(ctx, report); err != nil {
		// Archive failures do not fail the report.
		s.logger.Error("failed to archive herd report", zap.String("report_id", report.ID), zap.Error(err))
	}

	s.logger.Info("herd report built",
		zap.Int("pens", len(report.Pens)),
		zap.Int("total_head", report.TotalHead),
		zap.Int("warnings", len(report.Warnings)))
	return report, nil
}

// CostSummary returns an animal's lifetime variable cost.
func (s *Service) CostSummary(ctx context.Context, cattleID string) (models.CostSummary, error) {
	return s.costs.GetCattleCostSummary(ctx, cattleID, models.DateRange{})
}

// Growth returns an animal's growth metrics.
func (s *Service) Growth(ctx context.Context, cattleID string) (models.GrowthMetrics, error) {
	return s.growth.Metrics(ctx, cattleID)
}

// breakdown derives per-day rates from the costs recorded so far and extends
// the feeding period to the day the animal reaches targetWeight.
func (s *Service) breakdown(ctx context.Context, animal models.Animal, targetWeight float64) (models.CostBreakdown, models.WeightProjection, error) {
	summary, err := s.costs.GetCattleCostSummary(ctx, animal.ID, models.DateRange{})
	if err != nil {
		return models.CostBreakdown{}, models.WeightProjection{}, err
	}

	elapsed := animal.DaysOnFeed(s.now())
	current := animal.CurrentWeight()
	final := current
	days := elapsed

	if targetWeight > 0 {
		p, err := s.growth.TargetProjection(ctx, animal.ID, targetWeight)
		if err != nil {
			return models.CostBreakdown{}, models.WeightProjection{}, err
		}
		if remaining, ok := p.DaysRemaining.Float64(); ok && p.Feasible {
			days = elapsed + int(remaining+0.5)
			final = maxFloat(targetWeight, current)
		} else {
			s.logger.Info("target weight not reachable, analysing at current weight",
				zap.String("cattle_id", animal.ID),
				zap.Float64("target_weight", targetWeight))
		}
	}

	start := animal.PurchaseWeight
	if w := animal.SortedWeights(); start <= 0 && len(w) > 0 {
		start = w[0].Weight
	}

	costs := models.CostBreakdown{
		PurchasePrice:      animal.PurchasePrice,
		TransportationCost: s.assumptions.TransportationCost,
		CommissionFees:     s.assumptions.CommissionFees,
		LaborCostPerDay:    s.assumptions.LaborCostPerDay,
		FacilityCostPerDay: s.assumptions.FacilityCostPerDay,
		DaysOnFeed:         days,
		AnnualInterestRate: s.assumptions.AnnualInterestRate,
	}
	healthcare := summary.MedicationCost + summary.HealthRecordCost
	if elapsed > 0 {
		costs.FeedCostPerDay = metric.SafeDiv(summary.FeedCost, float64(elapsed)).Or(0)
		costs.HealthcareCostPerDay = metric.SafeDiv(healthcare, float64(elapsed)).Or(0)
	} else {
		// No elapsed period to derive rates from: recorded costs count once.
		costs.FeedCostToDate = summary.FeedCost
		costs.Treatments = healthcare
		if days > 0 && summary.FeedCost+healthcare > 0 {
			s.logger.Info("no feeding history to project daily costs from",
				zap.String("cattle_id", animal.ID),
				zap.Int("days_on_feed", days))
		}
	}
	return costs, models.WeightProjection{CurrentWeight: start, ProjectedFinalWeight: final}, nil
}

func capacityWarning(p models.Pen) string {
	return fmt.Sprintf("Pen %s is over capacity: %d head for %d places", p.Name, p.Occupancy, p.Capacity)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
