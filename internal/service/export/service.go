// Package export prepares pen feed records for the consulting nutritionist,
// as JSON and as rows in a shared Google Sheet.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/ranch/internal/domain/metric"
	"github.com/mamadbah2/ranch/internal/domain/models"
	repo "github.com/mamadbah2/ranch/internal/repository/sheets"
)

const (
	nutritionRange   = "Nutrition!A:G"
	exportedIDsRange = "Nutrition!A:A"
)

// ErrSheetsDisabled means no spreadsheet is configured.
var ErrSheetsDisabled = errors.New("google sheets export is not configured")

// Store is the read side the export needs.
type Store interface {
	GetPen(ctx context.Context, id string) (models.Pen, error)
	ListAnimalsByPen(ctx context.Context, penID string) ([]models.Animal, error)
	ListFeedAllocations(ctx context.Context, penID string, r models.DateRange) ([]models.FeedAllocation, error)
	ListPenFeedActivities(ctx context.Context, penID string, r models.DateRange) ([]models.PenFeedActivity, error)
}

// GrowthSource supplies per-animal growth metrics.
type GrowthSource interface {
	Metrics(ctx context.Context, cattleID string) (models.GrowthMetrics, error)
}

// Service builds nutrition exports.
type Service struct {
	store  Store
	growth GrowthSource
	sheets repo.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new export service. sheets may be nil.
func NewService(store Store, growth GrowthSource, sheets repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, growth: growth, sheets: sheets, logger: logger, now: time.Now}
}

// PenNutrition collects a pen's feed records and growth over a date range.
func (s *Service) PenNutrition(ctx context.Context, penID string, r models.DateRange) (models.NutritionExport, error) {
	pen, err := s.store.GetPen(ctx, penID)
	if err != nil {
		return models.NutritionExport{}, fmt.Errorf("load pen %s: %w", penID, err)
	}
	members, err := s.store.ListAnimalsByPen(ctx, pen.ID)
	if err != nil {
		return models.NutritionExport{}, fmt.Errorf("load animals for pen %s: %w", pen.ID, err)
	}

	out := models.NutritionExport{
		PenID:       pen.ID,
		PenName:     pen.Name,
		HeadCount:   len(members),
		Allocations: []models.FeedAllocation{},
		Activities:  []models.PenFeedActivity{},
		GeneratedAt: s.now(),
	}
	if !r.Start.IsZero() {
		start := r.Start
		out.PeriodStart = &start
	}
	if !r.End.IsZero() {
		end := r.End
		out.PeriodEnd = &end
	}
	if r.Empty() {
		return out, nil
	}

	allocations, err := s.store.ListFeedAllocations(ctx, pen.ID, r)
	if err != nil {
		return models.NutritionExport{}, fmt.Errorf("load feed allocations for pen %s: %w", pen.ID, err)
	}
	activities, err := s.store.ListPenFeedActivities(ctx, pen.ID, r)
	if err != nil {
		return models.NutritionExport{}, fmt.Errorf("load feed activities for pen %s: %w", pen.ID, err)
	}

	lbs, cost := decimal.Zero, decimal.Zero
	for _, a := range allocations {
		if !r.Contains(a.Date) {
			continue
		}
		out.Allocations = append(out.Allocations, a)
		lbs = lbs.Add(decimal.NewFromFloat(a.TotalWeight))
		cost = cost.Add(decimal.NewFromFloat(a.TotalCost))
	}
	for _, a := range activities {
		if !r.Contains(a.Date) {
			continue
		}
		out.Activities = append(out.Activities, a)
		lbs = lbs.Add(decimal.NewFromFloat(a.Quantity))
		cost = cost.Add(decimal.NewFromFloat(a.TotalCost))
	}
	out.TotalFeedLbs = lbs.InexactFloat64()
	out.TotalFeedCost = cost.Round(2).InexactFloat64()
	out.CostPerHead = metric.SafeDiv(out.TotalFeedCost, float64(out.HeadCount)).Round(2)

	var adgSum float64
	var adgCount int
	for _, a := range members {
		m, err := s.growth.Metrics(ctx, a.ID)
		if err != nil {
			return models.NutritionExport{}, err
		}
		if m.Lifetime == nil {
			continue
		}
		if v, ok := m.Lifetime.ADG.Float64(); ok {
			adgSum += v
			adgCount++
		}
	}
	out.AverageADG = metric.SafeDiv(adgSum, float64(adgCount)).Round(2)

	return out, nil
}

// PushToSheets appends the export's records to the nutrition sheet, one row
// per feed line or activity, skipping records already in the sheet. It
// returns the number of rows written.
func (s *Service) PushToSheets(ctx context.Context, e models.NutritionExport) (int, error) {
	if s.sheets == nil {
		return 0, ErrSheetsDisabled
	}

	existing, err := s.sheets.ReadRange(ctx, exportedIDsRange)
	if err != nil {
		return 0, fmt.Errorf("load exported record ids: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, row := range existing {
		if len(row) == 0 {
			continue
		}
		if id, ok := row[0].(string); ok {
			seen[id] = true
		}
	}

	var rows [][]interface{}
	for _, a := range e.Allocations {
		if seen[a.ID] {
			continue
		}
		for _, line := range a.Items {
			rows = append(rows, []interface{}{
				a.ID, a.Date.Format(models.DateLayout), e.PenName, line.Name, line.Quantity, line.TotalCost, a.HeadCount,
			})
		}
	}
	for _, a := range e.Activities {
		if seen[a.ID] {
			continue
		}
		rows = append(rows, []interface{}{
			a.ID, a.Date.Format(models.DateLayout), e.PenName, a.FeedType, a.Quantity, a.TotalCost, a.CattleCount,
		})
	}

	if len(rows) == 0 {
		s.logger.Debug("nothing new to export", zap.String("pen_id", e.PenID))
		return 0, nil
	}
	if err := s.sheets.AppendRows(ctx, nutritionRange, rows); err != nil {
		return 0, err
	}

	s.logger.Info("nutrition export pushed", zap.String("pen_id", e.PenID), zap.Int("rows", len(rows)))
	return len(rows), nil
}
