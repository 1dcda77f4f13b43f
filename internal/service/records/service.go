// Package records is the write boundary for pen feed, medication, health and
// weight records. Inputs are validated and derived fields computed here so the
// calculation engines only ever see well-formed records.
package records

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/ranch/internal/domain/metric"
	"github.com/mamadbah2/ranch/internal/domain/models"
)

// Store persists records.
type Store interface {
	GetAnimal(ctx context.Context, id string) (models.Animal, error)
	ListAnimalsByPen(ctx context.Context, penID string) ([]models.Animal, error)
	AppendWeight(ctx context.Context, cattleID string, w models.WeightRecord) error
	InsertFeedAllocation(ctx context.Context, rec models.FeedAllocation) error
	InsertPenFeedActivity(ctx context.Context, rec models.PenFeedActivity) error
	InsertMedicationActivity(ctx context.Context, rec models.MedicationActivity) error
	InsertHealthRecord(ctx context.Context, rec models.HealthRecord) error
}

// Stock is the inventory the record workflows draw down.
type Stock interface {
	Item(ctx context.Context, id string) (models.InventoryItem, error)
	Deduct(ctx context.Context, deductions []models.Deduction) error
	Restock(ctx context.Context, id string, qty float64) (models.InventoryItem, error)
}

// FeedLineInput is one requested feed line.
type FeedLineInput struct {
	ItemID   string  `json:"item_id" binding:"required"`
	Quantity float64 `json:"quantity"`
}

// FeedAllocationInput describes a detailed feed delivery. HeadCount defaults
// to the pen's current membership.
type FeedAllocationInput struct {
	PenID     string          `json:"-"`
	Date      time.Time       `json:"date"`
	Items     []FeedLineInput `json:"items" binding:"required"`
	HeadCount *int            `json:"head_count"`
	Notes     string          `json:"notes"`
}

// PenFeedActivityInput describes a simple feed delivery.
type PenFeedActivityInput struct {
	PenID       string    `json:"-"`
	Date        time.Time `json:"date"`
	FeedType    string    `json:"feed_type" binding:"required"`
	Quantity    float64   `json:"quantity"`
	TotalCost   float64   `json:"total_cost"`
	CattleCount *int      `json:"cattle_count"`
}

// MedicationInput describes a drug administration. A CattleID treats a single
// animal; otherwise every head in the pen is dosed.
type MedicationInput struct {
	PenID          string    `json:"pen_id" binding:"required"`
	CattleID       string    `json:"cattle_id"`
	DrugID         string    `json:"drug_id" binding:"required"`
	Date           time.Time `json:"date"`
	DosagePerHead  float64   `json:"dosage_per_head"`
	HeadCount      *int      `json:"head_count"`
	WithdrawalDays *int      `json:"withdrawal_days"`
}

// Service creates records.
type Service struct {
	store  Store
	stock  Stock
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService wires a new records service instance.
func NewService(store Store, stock Stock, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		stock:  stock,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// CreateFeedAllocation prices every line from inventory, deducts the stock and
// stores the allocation.
func (s *Service) CreateFeedAllocation(ctx context.Context, in FeedAllocationInput) (models.FeedAllocation, error) {
	if len(in.Items) == 0 {
		return models.FeedAllocation{}, fmt.Errorf("%w: feed allocation has no items", models.ErrInvalidRecord)
	}

	headCount, err := s.headCount(ctx, in.PenID, in.HeadCount)
	if err != nil {
		return models.FeedAllocation{}, err
	}

	rec := models.FeedAllocation{
		ID:        s.newID(),
		PenID:     in.PenID,
		Date:      s.dateOrToday(in.Date),
		HeadCount: headCount,
		Notes:     in.Notes,
	}

	total := decimal.Zero
	deductions := make([]models.Deduction, 0, len(in.Items))
	for _, line := range in.Items {
		if err := checkQuantity(line.ItemID, line.Quantity); err != nil {
			return models.FeedAllocation{}, err
		}
		item, err := s.stock.Item(ctx, line.ItemID)
		if err != nil {
			return models.FeedAllocation{}, err
		}
		if item.Category != models.CategoryFeed {
			return models.FeedAllocation{}, fmt.Errorf("%w: %s is not a feed item", models.ErrInvalidRecord, item.Name)
		}

		cost := decimal.NewFromFloat(line.Quantity).Mul(decimal.NewFromFloat(item.CostPerUnit)).Round(2)
		rec.Items = append(rec.Items, models.FeedLine{
			ItemID:      item.ID,
			Name:        item.Name,
			Quantity:    line.Quantity,
			CostPerUnit: item.CostPerUnit,
			TotalCost:   cost.InexactFloat64(),
		})
		rec.TotalWeight += line.Quantity
		total = total.Add(cost)
		deductions = append(deductions, models.Deduction{ItemID: item.ID, Quantity: line.Quantity})
	}
	rec.TotalCost = total.InexactFloat64()

	if perHead, ok := metric.SafeDiv(rec.TotalCost, float64(headCount)).Round(2).Float64(); ok {
		rec.CostPerHead = &perHead
	}

	if err := rec.Validate(); err != nil {
		return models.FeedAllocation{}, err
	}
	if err := s.stock.Deduct(ctx, deductions); err != nil {
		return models.FeedAllocation{}, err
	}
	if err := s.store.InsertFeedAllocation(ctx, rec); err != nil {
		s.restore(ctx, deductions)
		return models.FeedAllocation{}, fmt.Errorf("store feed allocation: %w", err)
	}

	s.logger.Info("feed allocation recorded",
		zap.String("id", rec.ID),
		zap.String("pen_id", rec.PenID),
		zap.Int("head_count", rec.HeadCount),
		zap.Float64("total_cost", rec.TotalCost))
	return rec, nil
}

// CreatePenFeedActivity stores a simple feed delivery.
func (s *Service) CreatePenFeedActivity(ctx context.Context, in PenFeedActivityInput) (models.PenFeedActivity, error) {
	count, err := s.headCount(ctx, in.PenID, in.CattleCount)
	if err != nil {
		return models.PenFeedActivity{}, err
	}

	rec := models.PenFeedActivity{
		ID:          s.newID(),
		PenID:       in.PenID,
		Date:        s.dateOrToday(in.Date),
		FeedType:    in.FeedType,
		Quantity:    in.Quantity,
		TotalCost:   in.TotalCost,
		CattleCount: count,
	}
	if err := rec.Validate(); err != nil {
		return models.PenFeedActivity{}, err
	}
	if err := s.store.InsertPenFeedActivity(ctx, rec); err != nil {
		return models.PenFeedActivity{}, fmt.Errorf("store feed activity: %w", err)
	}
	return rec, nil
}

// CreateMedicationActivity prices the dose from the drug's inventory cost,
// deducts dosage for every treated head and records the withdrawal period.
func (s *Service) CreateMedicationActivity(ctx context.Context, in MedicationInput) (models.MedicationActivity, error) {
	if err := checkQuantity("dosage per head", in.DosagePerHead); err != nil {
		return models.MedicationActivity{}, err
	}

	var headCount int
	if in.CattleID != "" {
		animal, err := s.store.GetAnimal(ctx, in.CattleID)
		if err != nil {
			return models.MedicationActivity{}, fmt.Errorf("load animal %s: %w", in.CattleID, err)
		}
		if animal.PenID != in.PenID {
			return models.MedicationActivity{}, fmt.Errorf("%w: animal %s is not in pen %s", models.ErrInvalidRecord, animal.ID, in.PenID)
		}
		headCount = 1
	} else {
		n, err := s.headCount(ctx, in.PenID, in.HeadCount)
		if err != nil {
			return models.MedicationActivity{}, err
		}
		headCount = n
	}

	drug, err := s.stock.Item(ctx, in.DrugID)
	if err != nil {
		return models.MedicationActivity{}, err
	}
	if drug.Category != models.CategoryDrug {
		return models.MedicationActivity{}, fmt.Errorf("%w: %s is not a drug", models.ErrInvalidRecord, drug.Name)
	}

	withdrawal := in.WithdrawalDays
	if withdrawal == nil && drug.WithdrawalDays > 0 {
		days := drug.WithdrawalDays
		withdrawal = &days
	}

	rec := models.MedicationActivity{
		ID:             s.newID(),
		PenID:          in.PenID,
		CattleID:       in.CattleID,
		DrugID:         drug.ID,
		Date:           s.dateOrToday(in.Date),
		DosagePerHead:  in.DosagePerHead,
		HeadCount:      headCount,
		CostPerHead:    metric.Round(in.DosagePerHead*drug.CostPerUnit, 2),
		WithdrawalDays: withdrawal,
	}
	if err := rec.Validate(); err != nil {
		return models.MedicationActivity{}, err
	}

	deductions := []models.Deduction{{ItemID: drug.ID, Quantity: in.DosagePerHead * float64(headCount)}}
	if err := s.stock.Deduct(ctx, deductions); err != nil {
		return models.MedicationActivity{}, err
	}
	if err := s.store.InsertMedicationActivity(ctx, rec); err != nil {
		s.restore(ctx, deductions)
		return models.MedicationActivity{}, fmt.Errorf("store medication activity: %w", err)
	}

	s.logger.Info("medication recorded",
		zap.String("id", rec.ID),
		zap.String("pen_id", rec.PenID),
		zap.String("drug_id", rec.DrugID),
		zap.Int("head_count", rec.HeadCount))
	return rec, nil
}

// CreateHealthRecord stores an individual cost event for one animal.
func (s *Service) CreateHealthRecord(ctx context.Context, rec models.HealthRecord) (models.HealthRecord, error) {
	if rec.Kind == "" {
		rec.Kind = models.HealthVeterinary
	}
	if err := rec.Validate(); err != nil {
		return models.HealthRecord{}, err
	}
	if _, err := s.store.GetAnimal(ctx, rec.CattleID); err != nil {
		return models.HealthRecord{}, fmt.Errorf("load animal %s: %w", rec.CattleID, err)
	}

	rec.ID = s.newID()
	rec.Date = s.dateOrToday(rec.Date)
	if err := s.store.InsertHealthRecord(ctx, rec); err != nil {
		return models.HealthRecord{}, fmt.Errorf("store health record: %w", err)
	}
	return rec, nil
}

// RecordWeight appends a weight observation and returns the updated animal.
func (s *Service) RecordWeight(ctx context.Context, cattleID string, date time.Time, weight float64) (models.Animal, error) {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return models.Animal{}, fmt.Errorf("%w: weight must be a positive number", models.ErrInvalidRecord)
	}
	if _, err := s.store.GetAnimal(ctx, cattleID); err != nil {
		return models.Animal{}, fmt.Errorf("load animal %s: %w", cattleID, err)
	}

	w := models.WeightRecord{Date: s.dateOrToday(date), Weight: weight}
	if err := s.store.AppendWeight(ctx, cattleID, w); err != nil {
		return models.Animal{}, fmt.Errorf("record weight for %s: %w", cattleID, err)
	}

	animal, err := s.store.GetAnimal(ctx, cattleID)
	if err != nil {
		return models.Animal{}, fmt.Errorf("reload animal %s: %w", cattleID, err)
	}
	return animal, nil
}

func (s *Service) headCount(ctx context.Context, penID string, explicit *int) (int, error) {
	if penID == "" {
		return 0, fmt.Errorf("%w: pen is required", models.ErrInvalidRecord)
	}
	if explicit != nil {
		if *explicit < 0 {
			return 0, fmt.Errorf("%w: negative head count %d", models.ErrInvalidRecord, *explicit)
		}
		return *explicit, nil
	}
	members, err := s.store.ListAnimalsByPen(ctx, penID)
	if err != nil {
		return 0, fmt.Errorf("load animals for pen %s: %w", penID, err)
	}
	return len(members), nil
}

func (s *Service) dateOrToday(t time.Time) time.Time {
	if t.IsZero() {
		return models.StartOfDay(s.now())
	}
	return t
}

func (s *Service) restore(ctx context.Context, deductions []models.Deduction) {
	for _, d := range deductions {
		if d.Quantity <= 0 {
			continue
		}
		if _, err := s.stock.Restock(ctx, d.ItemID, d.Quantity); err != nil {
			s.logger.Error("failed to return stock after aborted record",
				zap.String("item_id", d.ItemID),
				zap.Error(err))
		}
	}
}

func checkQuantity(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %s must be a non-negative number", models.ErrInvalidRecord, field)
	}
	return nil
}
