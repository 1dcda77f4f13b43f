package records

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/ranch/internal/domain/models"
	"github.com/mamadbah2/ranch/internal/service/inventory"
)

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func intPtr(v int) *int { return &v }

type fakeStore struct {
	animals     map[string]models.Animal
	allocations []models.FeedAllocation
	activities  []models.PenFeedActivity
	medications []models.MedicationActivity
	health      []models.HealthRecord
	insertErr   error
}

func (f *fakeStore) GetAnimal(_ context.Context, id string) (models.Animal, error) {
	a, ok := f.animals[id]
	if !ok {
		return models.Animal{}, models.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) ListAnimalsByPen(_ context.Context, penID string) ([]models.Animal, error) {
	var out []models.Animal
	for _, a := range f.animals {
		if a.PenID == penID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) AppendWeight(_ context.Context, id string, w models.WeightRecord) error {
	a := f.animals[id]
	a.Weights = append(a.Weights, w)
	f.animals[id] = a
	return nil
}

func (f *fakeStore) InsertFeedAllocation(_ context.Context, rec models.FeedAllocation) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.allocations = append(f.allocations, rec)
	return nil
}

func (f *fakeStore) InsertPenFeedActivity(_ context.Context, rec models.PenFeedActivity) error {
	f.activities = append(f.activities, rec)
	return nil
}

func (f *fakeStore) InsertMedicationActivity(_ context.Context, rec models.MedicationActivity) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.medications = append(f.medications, rec)
	return nil
}

func (f *fakeStore) InsertHealthRecord(_ context.Context, rec models.HealthRecord) error {
	f.health = append(f.health, rec)
	return nil
}

type mockStock struct{ mock.Mock }

func (m *mockStock) Item(ctx context.Context, id string) (models.InventoryItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.InventoryItem), args.Error(1)
}

func (m *mockStock) Deduct(ctx context.Context, d []models.Deduction) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockStock) Restock(ctx context.Context, id string, qty float64) (models.InventoryItem, error) {
	args := m.Called(ctx, id, qty)
	return args.Get(0).(models.InventoryItem), args.Error(1)
}

var (
	corn = models.InventoryItem{ID: "corn", Name: "Corn", Category: models.CategoryFeed, Quantity: 5000, CostPerUnit: 0.12}
	hay  = models.InventoryItem{ID: "hay", Name: "Hay", Category: models.CategoryFeed, Quantity: 5000, CostPerUnit: 0.08}
	oxy  = models.InventoryItem{ID: "oxy", Name: "Oxytetracycline", Category: models.CategoryDrug, Quantity: 500, CostPerUnit: 0.9, WithdrawalDays: 28}
)

func newService(store *fakeStore, stock *mockStock) *Service {
	svc := NewService(store, stock, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc
}

func penFixture() *fakeStore {
	return &fakeStore{animals: map[string]models.Animal{
		"c1": {ID: "c1", PenID: "p1"},
		"c2": {ID: "c2", PenID: "p1"},
		"c3": {ID: "c3", PenID: "p1"},
		"c9": {ID: "c9", PenID: "p2"},
	}}
}

func TestCreateFeedAllocationPricesAndDeducts(t *testing.T) {
	ctx := context.Background()
	store := penFixture()
	stock := &mockStock{}
	stock.On("Item", ctx, "corn").Return(corn, nil)
	stock.On("Item", ctx, "hay").Return(hay, nil)
	stock.On("Deduct", ctx, []models.Deduction{
		{ItemID: "corn", Quantity: 600},
		{ItemID: "hay", Quantity: 400},
	}).Return(nil)

	rec, err := newService(store, stock).CreateFeedAllocation(ctx, FeedAllocationInput{
		PenID: "p1",
		Items: []FeedLineInput{{ItemID: "corn", Quantity: 600}, {ItemID: "hay", Quantity: 400}},
	})
	require.NoError(t, err)

	assert.Equal(t, "id-1", rec.ID)
	assert.Equal(t, day("2024-03-15"), rec.Date)
	assert.Equal(t, 3, rec.HeadCount, "head count defaults to pen membership")
	assert.Equal(t, 1000.0, rec.TotalWeight)
	assert.InDelta(t, 104.0, rec.TotalCost, 1e-9)
	require.NotNil(t, rec.CostPerHead)
	assert.InDelta(t, 34.67, *rec.CostPerHead, 1e-9)
	assert.Len(t, store.allocations, 1)
	stock.AssertExpectations(t)
}

func TestCreateFeedAllocationZeroHeadOmitsCostPerHead(t *testing.T) {
	ctx := context.Background()
	stock := &mockStock{}
	stock.On("Item", ctx, "corn").Return(corn, nil)
	stock.On("Deduct", ctx, mock.Anything).Return(nil)

	rec, err := newService(penFixture(), stock).CreateFeedAllocation(ctx, FeedAllocationInput{
		PenID:     "empty",
		HeadCount: intPtr(0),
		Items:     []FeedLineInput{{ItemID: "corn", Quantity: 100}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.HeadCount)
	assert.Nil(t, rec.CostPerHead)
}

func TestCreateFeedAllocationRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	stock := &mockStock{}
	stock.On("Item", ctx, "oxy").Return(oxy, nil)
	svc := newService(penFixture(), stock)

	cases := map[string]FeedAllocationInput{
		"no items":       {PenID: "p1"},
		"no pen":         {Items: []FeedLineInput{{ItemID: "corn", Quantity: 1}}},
		"negative head":  {PenID: "p1", HeadCount: intPtr(-2), Items: []FeedLineInput{{ItemID: "corn", Quantity: 1}}},
		"negative qty":   {PenID: "p1", Items: []FeedLineInput{{ItemID: "corn", Quantity: -5}}},
		"non-finite qty": {PenID: "p1", Items: []FeedLineInput{{ItemID: "corn", Quantity: math.Inf(1)}}},
		"drug as feed":   {PenID: "p1", Items: []FeedLineInput{{ItemID: "oxy", Quantity: 1}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateFeedAllocation(ctx, in)
			assert.True(t, errors.Is(err, models.ErrInvalidRecord), "got %v", err)
		})
	}
	stock.AssertNotCalled(t, "Deduct", mock.Anything, mock.Anything)
}

func TestCreateFeedAllocationInsufficientStockStoresNothing(t *testing.T) {
	ctx := context.Background()
	store := penFixture()
	stock := &mockStock{}
	stock.On("Item", ctx, "corn").Return(corn, nil)
	stock.On("Deduct", ctx, mock.Anything).Return(inventory.ErrInsufficientStock)

	_, err := newService(store, stock).CreateFeedAllocation(ctx, FeedAllocationInput{
		PenID: "p1",
		Items: []FeedLineInput{{ItemID: "corn", Quantity: 9000}},
	})
	assert.True(t, errors.Is(err, inventory.ErrInsufficientStock))
	assert.Empty(t, store.allocations)
}

func TestCreateFeedAllocationReturnsStockWhenInsertFails(t *testing.T) {
	ctx := context.Background()
	store := penFixture()
	store.insertErr = errors.New("write conflict")
	stock := &mockStock{}
	stock.On("Item", ctx, "corn").Return(corn, nil)
	stock.On("Deduct", ctx, mock.Anything).Return(nil)
	stock.On("Restock", ctx, "corn", 100.0).Return(corn, nil).Once()

	_, err := newService(store, stock).CreateFeedAllocation(ctx, FeedAllocationInput{
		PenID: "p1",
		Items: []FeedLineInput{{ItemID: "corn", Quantity: 100}},
	})
	require.Error(t, err)
	stock.AssertExpectations(t)
}

func TestCreatePenFeedActivity(t *testing.T) {
	store := penFixture()
	svc := newService(store, &mockStock{})

	rec, err := svc.CreatePenFeedActivity(context.Background(), PenFeedActivityInput{
		PenID: "p1", Date: day("2024-03-02"), FeedType: "hay", Quantity: 300, TotalCost: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, rec.CattleCount)
	assert.Equal(t, day("2024-03-02"), rec.Date)
	assert.Len(t, store.activities, 1)

	_, err = svc.CreatePenFeedActivity(context.Background(), PenFeedActivityInput{
		PenID: "p1", FeedType: "hay", TotalCost: math.NaN(),
	})
	assert.True(t, errors.Is(err, models.ErrInvalidRecord))
}

func TestCreateMedicationForPen(t *testing.T) {
	ctx := context.Background()
	store := penFixture()
	stock := &mockStock{}
	stock.On("Item", ctx, "oxy").Return(oxy, nil)
	stock.On("Deduct", ctx, []models.Deduction{{ItemID: "oxy", Quantity: 30}}).Return(nil)

	rec, err := newService(store, stock).CreateMedicationActivity(ctx, MedicationInput{
		PenID: "p1", DrugID: "oxy", DosagePerHead: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, rec.HeadCount)
	assert.InDelta(t, 9.0, rec.CostPerHead, 1e-9)
	require.NotNil(t, rec.WithdrawalDays)
	assert.Equal(t, 28, *rec.WithdrawalDays, "copied from the drug")
	stock.AssertExpectations(t)
}

func TestCreateMedicationForOneAnimal(t *testing.T) {
	ctx := context.Background()
	store := penFixture()
	stock := &mockStock{}
	stock.On("Item", ctx, "oxy").Return(oxy, nil)
	stock.On("Deduct", ctx, []models.Deduction{{ItemID: "oxy", Quantity: 12}}).Return(nil)
	svc := newService(store, stock)

	rec, err := svc.CreateMedicationActivity(ctx, MedicationInput{
		PenID: "p1", CattleID: "c2", DrugID: "oxy", DosagePerHead: 12, WithdrawalDays: intPtr(14),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.HeadCount)
	assert.Equal(t, 14, *rec.WithdrawalDays)

	_, err = svc.CreateMedicationActivity(ctx, MedicationInput{PenID: "p1", CattleID: "c9", DrugID: "oxy", DosagePerHead: 1})
	assert.True(t, errors.Is(err, models.ErrInvalidRecord), "animal must be in the pen")

	stock.On("Item", ctx, "corn").Return(corn, nil)
	_, err = svc.CreateMedicationActivity(ctx, MedicationInput{PenID: "p1", DrugID: "corn", DosagePerHead: 1})
	assert.True(t, errors.Is(err, models.ErrInvalidRecord), "feed is not a drug")
}

func TestCreateHealthRecord(t *testing.T) {
	store := penFixture()
	svc := newService(store, &mockStock{})

	rec, err := svc.CreateHealthRecord(context.Background(), models.HealthRecord{CattleID: "c1", Cost: 45})
	require.NoError(t, err)
	assert.Equal(t, models.HealthVeterinary, rec.Kind)
	assert.Equal(t, day("2024-03-15"), rec.Date)
	assert.NotEmpty(t, rec.ID)

	_, err = svc.CreateHealthRecord(context.Background(), models.HealthRecord{CattleID: "ghost", Cost: 1})
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, err = svc.CreateHealthRecord(context.Background(), models.HealthRecord{CattleID: "c1", Cost: -1})
	assert.True(t, errors.Is(err, models.ErrInvalidRecord))
}

func TestRecordWeight(t *testing.T) {
	store := penFixture()
	svc := newService(store, &mockStock{})

	animal, err := svc.RecordWeight(context.Background(), "c1", day("2024-03-01"), 812.5)
	require.NoError(t, err)
	assert.Equal(t, 812.5, animal.CurrentWeight())

	for _, bad := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		_, err := svc.RecordWeight(context.Background(), "c1", time.Time{}, bad)
		assert.True(t, errors.Is(err, models.ErrInvalidRecord), "weight %v", bad)
	}
	assert.Len(t, store.animals["c1"].Weights, 1)
}
