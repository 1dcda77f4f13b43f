package growth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/ranch/internal/domain/metric"
	"github.com/mamadbah2/ranch/internal/domain/models"
)

// AnimalReader loads an animal with its weight history.
type AnimalReader interface {
	GetAnimal(ctx context.Context, id string) (models.Animal, error)
}

// FeedHistorySource returns an animal's share of pen feed deliveries.
type FeedHistorySource interface {
	GetCattleFeedHistory(ctx context.Context, cattleID string, r models.DateRange) ([]models.FeedHistoryEntry, error)
}

// Service computes growth metrics from fresh store reads.
type Service struct {
	animals    AnimalReader
	feed       FeedHistorySource
	defaultADG float64
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires a growth service. defaultADG <= 0 uses DefaultADG.
func NewService(animals AnimalReader, feed FeedHistorySource, defaultADG float64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultADG <= 0 {
		defaultADG = DefaultADG
	}
	return &Service{
		animals:    animals,
		feed:       feed,
		defaultADG: defaultADG,
		logger:     logger,
		now:        time.Now,
	}
}

// Metrics returns lifetime and recent ADG plus lifetime feed efficiency.
func (s *Service) Metrics(ctx context.Context, cattleID string) (models.GrowthMetrics, error) {
	animal, err := s.animals.GetAnimal(ctx, cattleID)
	if err != nil {
		return models.GrowthMetrics{}, fmt.Errorf("load animal %s: %w", cattleID, err)
	}

	weights := animal.SortedWeights()
	m := models.GrowthMetrics{
		CattleID:      animal.ID,
		CurrentWeight: animal.CurrentWeight(),
		Observations:  len(weights),
		Lifetime:      Lifetime(weights),
		Recent:        Recent(weights, RecentWindowDays),
	}

	m.ADGRating = ClassifyADG(metric.NA)
	if adg, source := ChooseADG(m.Recent, m.Lifetime, 0); source != models.ADGSourceDefault {
		m.ADGRating = ClassifyADG(metric.Of(adg))
	}

	if m.Lifetime != nil {
		history, err := s.feed.GetCattleFeedHistory(ctx, animal.ID, models.DateRange{Start: m.Lifetime.Start, End: m.Lifetime.End})
		if err != nil {
			return models.GrowthMetrics{}, fmt.Errorf("load feed history for %s: %w", animal.ID, err)
		}
		var lbs, cost float64
		for _, h := range history {
			lbs += h.FeedLbs.Or(0)
			cost += h.AllocatedCost.Or(0)
		}
		eff := Efficiency(lbs, cost, m.Lifetime.Gain)
		m.Efficiency = &eff
	}

	return m, nil
}

// TargetProjection estimates days until the animal reaches targetWeight.
func (s *Service) TargetProjection(ctx context.Context, cattleID string, targetWeight float64) (models.TargetProjection, error) {
	animal, err := s.animals.GetAnimal(ctx, cattleID)
	if err != nil {
		return models.TargetProjection{}, fmt.Errorf("load animal %s: %w", cattleID, err)
	}

	weights := animal.SortedWeights()
	adg, source := ChooseADG(Recent(weights, RecentWindowDays), Lifetime(weights), s.defaultADG)
	p := DaysToTarget(targetWeight, animal.CurrentWeight(), adg, source, s.now())

	if !p.Feasible {
		s.logger.Info("target weight not reachable at current gain",
			zap.String("cattle_id", animal.ID),
			zap.Float64("adg", adg),
			zap.String("adg_source", string(source)))
	}
	return p, nil
}

// Timeline merges weights, feed deliveries and, when projectionDays > 0,
// weekly projection points from the latest weight.
func (s *Service) Timeline(ctx context.Context, cattleID string, projectionDays int) ([]models.TimelineEvent, error) {
	animal, err := s.animals.GetAnimal(ctx, cattleID)
	if err != nil {
		return nil, fmt.Errorf("load animal %s: %w", cattleID, err)
	}

	history, err := s.feed.GetCattleFeedHistory(ctx, animal.ID, models.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("load feed history for %s: %w", animal.ID, err)
	}

	weights := animal.SortedWeights()
	var projections []models.TimelineEvent
	if projectionDays > 0 {
		adg, _ := ChooseADG(Recent(weights, RecentWindowDays), Lifetime(weights), s.defaultADG)
		from := s.now()
		if len(weights) > 0 {
			from = weights[len(weights)-1].Date
		}
		projections = Projection(from, animal.CurrentWeight(), adg, projectionDays, 7)
	}

	return Timeline(weights, history, projections), nil
}
