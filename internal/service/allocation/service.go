package allocation

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/ranch/internal/domain/models"
)

// Store is the read side of the document store the engine needs.
type Store interface {
	GetAnimal(ctx context.Context, id string) (models.Animal, error)
	ListAnimalsByPen(ctx context.Context, penID string) ([]models.Animal, error)
	GetFeedAllocation(ctx context.Context, id string) (models.FeedAllocation, error)
	ListFeedAllocations(ctx context.Context, penID string, r models.DateRange) ([]models.FeedAllocation, error)
	ListPenFeedActivities(ctx context.Context, penID string, r models.DateRange) ([]models.PenFeedActivity, error)
	ListMedicationActivities(ctx context.Context, penID string, r models.DateRange) ([]models.MedicationActivity, error)
	ListHealthRecords(ctx context.Context, cattleID string, r models.DateRange) ([]models.HealthRecord, error)
}

// Service resolves an animal's pen and apportions that pen's costs to it.
// Nothing is cached; every call reads the store afresh.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a new allocation service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// GetCattleFeedCost returns the animal's share of pen feed cost in range. An
// animal without a pen costs nothing.
func (s *Service) GetCattleFeedCost(ctx context.Context, cattleID string, r models.DateRange) (float64, error) {
	animal, err := s.store.GetAnimal(ctx, cattleID)
	if err != nil {
		return 0, fmt.Errorf("load animal %s: %w", cattleID, err)
	}
	if !animal.HasPen() || r.Empty() {
		return 0, nil
	}

	allocations, activities, err := s.penFeed(ctx, animal.PenID, r)
	if err != nil {
		return 0, err
	}
	return FeedCost(allocations, activities, r), nil
}

// GetCattleMedicationCost returns the animal's share of pen medication cost.
func (s *Service) GetCattleMedicationCost(ctx context.Context, cattleID string, r models.DateRange) (float64, error) {
	animal, err := s.store.GetAnimal(ctx, cattleID)
	if err != nil {
		return 0, fmt.Errorf("load animal %s: %w", cattleID, err)
	}
	if !animal.HasPen() || r.Empty() {
		return 0, nil
	}

	activities, err := s.store.ListMedicationActivities(ctx, animal.PenID, r)
	if err != nil {
		return 0, fmt.Errorf("load medication activities for pen %s: %w", animal.PenID, err)
	}
	return MedicationCost(animal.ID, activities, r), nil
}

// GetCattleFeedHistory lists the animal's share of each pen feed record.
func (s *Service) GetCattleFeedHistory(ctx context.Context, cattleID string, r models.DateRange) ([]models.FeedHistoryEntry, error) {
	animal, err := s.store.GetAnimal(ctx, cattleID)
	if err != nil {
		return nil, fmt.Errorf("load animal %s: %w", cattleID, err)
	}
	if !animal.HasPen() || r.Empty() {
		return []models.FeedHistoryEntry{}, nil
	}

	allocations, activities, err := s.penFeed(ctx, animal.PenID, r)
	if err != nil {
		return nil, err
	}
	return FeedHistory(allocations, activities, r), nil
}

// GetCattleMedicationHistory lists the medication activities covering the animal.
func (s *Service) GetCattleMedicationHistory(ctx context.Context, cattleID string, r models.DateRange) ([]models.MedicationHistoryEntry, error) {
	animal, err := s.store.GetAnimal(ctx, cattleID)
	if err != nil {
		return nil, fmt.Errorf("load animal %s: %w", cattleID, err)
	}
	if !animal.HasPen() || r.Empty() {
		return []models.MedicationHistoryEntry{}, nil
	}

	activities, err := s.store.ListMedicationActivities(ctx, animal.PenID, r)
	if err != nil {
		return nil, fmt.Errorf("load medication activities for pen %s: %w", animal.PenID, err)
	}
	return MedicationHistory(animal.ID, activities, r), nil
}

// GetCattleCostSummary composes pen-level feed and medication cost with the
// animal's individual health records. Feed- and medication-tagged health
// records join their pen-level bucket; the rest is veterinary cost.
func (s *Service) GetCattleCostSummary(ctx context.Context, cattleID string, r models.DateRange) (models.CostSummary, error) {
	animal, err := s.store.GetAnimal(ctx, cattleID)
	if err != nil {
		return models.CostSummary{}, fmt.Errorf("load animal %s: %w", cattleID, err)
	}

	summary := models.CostSummary{CattleID: animal.ID, PenID: animal.PenID, Range: r}
	if r.Empty() {
		return summary, nil
	}

	var (
		allocations []models.FeedAllocation
		activities  []models.PenFeedActivity
		medications []models.MedicationActivity
		health      []models.HealthRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	if animal.HasPen() {
		g.Go(func() (err error) {
			allocations, err = s.store.ListFeedAllocations(gctx, animal.PenID, r)
			if err != nil {
				return fmt.Errorf("load feed allocations for pen %s: %w", animal.PenID, err)
			}
			return nil
		})
		g.Go(func() (err error) {
			activities, err = s.store.ListPenFeedActivities(gctx, animal.PenID, r)
			if err != nil {
				return fmt.Errorf("load feed activities for pen %s: %w", animal.PenID, err)
			}
			return nil
		})
		g.Go(func() (err error) {
			medications, err = s.store.ListMedicationActivities(gctx, animal.PenID, r)
			if err != nil {
				return fmt.Errorf("load medication activities for pen %s: %w", animal.PenID, err)
			}
			return nil
		})
	}
	g.Go(func() (err error) {
		health, err = s.store.ListHealthRecords(gctx, animal.ID, r)
		if err != nil {
			return fmt.Errorf("load health records for %s: %w", animal.ID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.CostSummary{}, err
	}

	buckets := PartitionHealthRecords(health, r)
	history := FeedHistory(allocations, activities, r)

	summary.PenFeedCost = FeedCost(allocations, activities, r)
	summary.IndividualFeedCost = buckets.Feed
	summary.FeedCost = summary.PenFeedCost + summary.IndividualFeedCost
	summary.PenMedicationCost = MedicationCost(animal.ID, medications, r)
	summary.IndividualMedicationCost = buckets.Medication
	summary.MedicationCost = summary.PenMedicationCost + summary.IndividualMedicationCost
	summary.HealthRecordCost = buckets.Veterinary
	summary.TotalVariableCost = summary.FeedCost + summary.MedicationCost + summary.HealthRecordCost
	summary.FeedRecords = len(history)
	summary.MedicationRecords = len(MedicationHistory(animal.ID, medications, r))
	summary.HealthRecords = buckets.Count

	s.logger.Debug("cost summary computed",
		zap.String("cattle_id", animal.ID),
		zap.String("pen_id", animal.PenID),
		zap.Float64("total_variable_cost", summary.TotalVariableCost))

	return summary, nil
}

// AllocationLedger splits a feed allocation to the cent across the animals
// currently in its pen.
func (s *Service) AllocationLedger(ctx context.Context, allocationID string) (models.AllocationLedger, error) {
	rec, err := s.store.GetFeedAllocation(ctx, allocationID)
	if err != nil {
		return models.AllocationLedger{}, fmt.Errorf("load feed allocation %s: %w", allocationID, err)
	}

	members, err := s.store.ListAnimalsByPen(ctx, rec.PenID)
	if err != nil {
		return models.AllocationLedger{}, fmt.Errorf("load animals for pen %s: %w", rec.PenID, err)
	}

	ids := make([]string, 0, len(members))
	for _, a := range members {
		ids = append(ids, a.ID)
	}

	perHead := AllocationCostPerHead(rec)
	toSplit := rec.TotalCost
	if len(ids) != rec.HeadCount {
		toSplit = math.Min(rec.TotalCost, perHead.Or(0)*float64(len(ids)))
	}

	shares := SplitCost(toSplit, ids)
	unallocated := decimal.NewFromFloat(rec.TotalCost).Sub(SumShares(shares)).Round(2)

	if len(ids) != rec.HeadCount {
		s.logger.Info("pen membership changed since feed delivery",
			zap.String("allocation_id", rec.ID),
			zap.Int("recorded_head_count", rec.HeadCount),
			zap.Int("current_members", len(ids)))
	}

	return models.AllocationLedger{
		AllocationID: rec.ID,
		PenID:        rec.PenID,
		TotalCost:    rec.TotalCost,
		HeadCount:    rec.HeadCount,
		CostPerHead:  perHead,
		Shares:       shares,
		Unallocated:  unallocated.InexactFloat64(),
	}, nil
}

func (s *Service) penFeed(ctx context.Context, penID string, r models.DateRange) ([]models.FeedAllocation, []models.PenFeedActivity, error) {
	allocations, err := s.store.ListFeedAllocations(ctx, penID, r)
	if err != nil {
		return nil, nil, fmt.Errorf("load feed allocations for pen %s: %w", penID, err)
	}
	activities, err := s.store.ListPenFeedActivities(ctx, penID, r)
	if err != nil {
		return nil, nil, fmt.Errorf("load feed activities for pen %s: %w", penID, err)
	}
	return allocations, activities, nil
}
