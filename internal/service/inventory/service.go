// Package inventory keeps feed and drug stock levels and tracks drug
// withdrawal periods.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/mamadbah2/ranch/internal/domain/models"
)

// ErrInsufficientStock means a deduction would drive an item below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// Store is the persistence the inventory service needs. DecrementInventory
// applies only while the stored quantity covers qty and reports whether it did.
type Store interface {
	GetInventoryItem(ctx context.Context, id string) (models.InventoryItem, error)
	DecrementInventory(ctx context.Context, id string, qty float64) (bool, error)
	IncrementInventory(ctx context.Context, id string, qty float64) error
	GetAnimal(ctx context.Context, id string) (models.Animal, error)
	ListMedicationActivities(ctx context.Context, penID string, r models.DateRange) ([]models.MedicationActivity, error)
}

// Service manages stock.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a new inventory service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Item returns one inventory item.
func (s *Service) Item(ctx context.Context, id string) (models.InventoryItem, error) {
	item, err := s.store.GetInventoryItem(ctx, id)
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("load inventory item %s: %w", id, err)
	}
	return item, nil
}

// Deduct removes every line from stock or none of them. All lines are checked
// before anything is written; a line that loses a race with another writer
// rolls back the lines already applied.
func (s *Service) Deduct(ctx context.Context, deductions []models.Deduction) error {
	totals, order, err := s.validate(ctx, deductions)
	if err != nil {
		return err
	}

	applied := make([]string, 0, len(order))
	for _, id := range order {
		qty := totals[id]
		if qty == 0 {
			continue
		}
		ok, err := s.store.DecrementInventory(ctx, id, qty)
		if err == nil && !ok {
			err = fmt.Errorf("%w: %s changed while deducting", ErrInsufficientStock, id)
		}
		if err != nil {
			s.rollback(ctx, applied, totals)
			return fmt.Errorf("deduct %s: %w", id, err)
		}
		applied = append(applied, id)
	}

	s.logger.Debug("inventory deducted", zap.Int("items", len(applied)))
	return nil
}

// Restock adds qty units to an item and returns the updated item.
func (s *Service) Restock(ctx context.Context, id string, qty float64) (models.InventoryItem, error) {
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
		return models.InventoryItem{}, fmt.Errorf("%w: restock quantity must be a positive number", models.ErrInvalidRecord)
	}
	if err := s.store.IncrementInventory(ctx, id, qty); err != nil {
		return models.InventoryItem{}, fmt.Errorf("restock %s: %w", id, err)
	}
	return s.Item(ctx, id)
}

// Withdrawal loads the animal's medication history and reports when it clears
// every withdrawal period.
func (s *Service) Withdrawal(ctx context.Context, cattleID string) (models.WithdrawalStatus, error) {
	animal, err := s.store.GetAnimal(ctx, cattleID)
	if err != nil {
		return models.WithdrawalStatus{}, fmt.Errorf("load animal %s: %w", cattleID, err)
	}
	if !animal.HasPen() {
		return models.WithdrawalStatus{CattleID: animal.ID, Drugs: []models.DrugWithdrawal{}}, nil
	}

	activities, err := s.store.ListMedicationActivities(ctx, animal.PenID, models.DateRange{})
	if err != nil {
		return models.WithdrawalStatus{}, fmt.Errorf("load medication activities for pen %s: %w", animal.PenID, err)
	}

	items := make(map[string]models.InventoryItem)
	for _, act := range activities {
		if !act.AppliesTo(animal.ID) {
			continue
		}
		if _, seen := items[act.DrugID]; seen {
			continue
		}
		item, err := s.store.GetInventoryItem(ctx, act.DrugID)
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Debug("drug missing from inventory", zap.String("drug_id", act.DrugID))
			continue
		}
		if err != nil {
			return models.WithdrawalStatus{}, fmt.Errorf("load drug %s: %w", act.DrugID, err)
		}
		items[act.DrugID] = item
	}

	return WithdrawalClearance(animal.ID, activities, items), nil
}

// WithdrawalClearance computes per-drug clear dates for the activities that
// cover cattleID. A withdrawal period stored on the activity wins over the
// drug's default.
func WithdrawalClearance(cattleID string, activities []models.MedicationActivity, items map[string]models.InventoryItem) models.WithdrawalStatus {
	status := models.WithdrawalStatus{CattleID: cattleID, Drugs: []models.DrugWithdrawal{}}
	for _, act := range activities {
		if !act.AppliesTo(cattleID) {
			continue
		}
		item := items[act.DrugID]
		days := item.WithdrawalDays
		if act.WithdrawalDays != nil {
			days = *act.WithdrawalDays
		}
		if days <= 0 {
			continue
		}

		clear := models.StartOfDay(act.Date).AddDate(0, 0, days)
		status.Drugs = append(status.Drugs, models.DrugWithdrawal{
			DrugID:    act.DrugID,
			DrugName:  item.Name,
			GivenOn:   act.Date,
			Days:      days,
			ClearDate: clear,
		})
		if status.ClearDate == nil || clear.After(*status.ClearDate) {
			c := clear
			status.ClearDate = &c
		}
	}

	sort.SliceStable(status.Drugs, func(i, j int) bool {
		return status.Drugs[i].GivenOn.Before(status.Drugs[j].GivenOn)
	})
	return status
}

func (s *Service) validate(ctx context.Context, deductions []models.Deduction) (map[string]float64, []string, error) {
	totals := make(map[string]float64, len(deductions))
	var order []string
	for _, d := range deductions {
		if d.ItemID == "" {
			return nil, nil, fmt.Errorf("%w: deduction without item", models.ErrInvalidRecord)
		}
		if math.IsNaN(d.Quantity) || math.IsInf(d.Quantity, 0) || d.Quantity < 0 {
			return nil, nil, fmt.Errorf("%w: invalid quantity for %s", models.ErrInvalidRecord, d.ItemID)
		}
		if _, seen := totals[d.ItemID]; !seen {
			order = append(order, d.ItemID)
		}
		totals[d.ItemID] += d.Quantity
	}

	for _, id := range order {
		item, err := s.store.GetInventoryItem(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("load inventory item %s: %w", id, err)
		}
		if item.Quantity < totals[id] {
			return nil, nil, fmt.Errorf("%w: %s has %.2f %s, need %.2f",
				ErrInsufficientStock, item.Name, item.Quantity, item.Unit, totals[id])
		}
	}
	return totals, order, nil
}

func (s *Service) rollback(ctx context.Context, applied []string, totals map[string]float64) {
	for _, id := range applied {
		if err := s.store.IncrementInventory(ctx, id, totals[id]); err != nil {
			s.logger.Error("failed to restore inventory after aborted deduction",
				zap.String("item_id", id),
				zap.Float64("quantity", totals[id]),
				zap.Error(err))
		}
	}
}
