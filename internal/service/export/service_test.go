package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/ranch/internal/domain/metric"
	"github.com/mamadbah2/ranch/internal/domain/models"
)

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

type fakeStore struct{}

func (fakeStore) GetPen(_ context.Context, id string) (models.Pen, error) {
	if id != "p1" {
		return models.Pen{}, models.ErrNotFound
	}
	return models.Pen{ID: "p1", Name: "North", Capacity: 10}, nil
}

func (fakeStore) ListAnimalsByPen(context.Context, string) ([]models.Animal, error) {
	return []models.Animal{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}}, nil
}

func (fakeStore) ListFeedAllocations(context.Context, string, models.DateRange) ([]models.FeedAllocation, error) {
	return []models.FeedAllocation{
		{ID: "fa1", PenID: "p1", Date: day("2024-03-01"), TotalWeight: 600, TotalCost: 72.10, HeadCount: 3,
			Items: []models.FeedLine{{Name: "Corn", Quantity: 600, TotalCost: 72.10}}},
		{ID: "fa2", PenID: "p1", Date: day("2024-03-08"), TotalWeight: 1000, TotalCost: 104.20, HeadCount: 3,
			Items: []models.FeedLine{{Name: "Corn", Quantity: 600, TotalCost: 72.10}, {Name: "Hay", Quantity: 400, TotalCost: 32.10}}},
		{ID: "late", PenID: "p1", Date: day("2024-04-02"), TotalWeight: 50, TotalCost: 5},
	}, nil
}

func (fakeStore) ListPenFeedActivities(context.Context, string, models.DateRange) ([]models.PenFeedActivity, error) {
	return []models.PenFeedActivity{
		{ID: "pa1", PenID: "p1", Date: day("2024-03-15"), FeedType: "Silage", Quantity: 300, TotalCost: 45.30, CattleCount: 3},
	}, nil
}

type fakeGrowth struct{}

func (fakeGrowth) Metrics(_ context.Context, id string) (models.GrowthMetrics, error) {
	switch id {
	case "c1":
		return models.GrowthMetrics{Lifetime: &models.ADGWindow{ADG: metric.Of(3.1)}}, nil
	case "c2":
		return models.GrowthMetrics{Lifetime: &models.ADGWindow{ADG: metric.Of(2.5)}}, nil
	}
	return models.GrowthMetrics{}, nil
}

type mockSheets struct{ mock.Mock }

func (m *mockSheets) AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	return m.Called(ctx, sheetRange, rows).Error(0)
}

func (m *mockSheets) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	args := m.Called(ctx, sheetRange)
	if v := args.Get(0); v != nil {
		return v.([][]interface{}), args.Error(1)
	}
	return nil, args.Error(1)
}

func march() models.DateRange {
	return models.DateRange{Start: day("2024-03-01"), End: day("2024-03-31")}
}

func TestPenNutrition(t *testing.T) {
	svc := NewService(fakeStore{}, fakeGrowth{}, nil, nil)

	e, err := svc.PenNutrition(context.Background(), "p1", march())
	require.NoError(t, err)

	assert.Equal(t, "North", e.PenName)
	assert.Equal(t, 3, e.HeadCount)
	assert.Len(t, e.Allocations, 2, "records outside the range are dropped")
	assert.Len(t, e.Activities, 1)
	assert.Equal(t, 1900.0, e.TotalFeedLbs)
	assert.Equal(t, 221.6, e.TotalFeedCost)
	assert.InDelta(t, 73.87, e.CostPerHead.Or(0), 1e-9)
	assert.InDelta(t, 2.8, e.AverageADG.Or(0), 1e-9)
	require.NotNil(t, e.PeriodStart)
	assert.Equal(t, day("2024-03-01"), *e.PeriodStart)
}

func TestPenNutritionUnknownPen(t *testing.T) {
	_, err := NewService(fakeStore{}, fakeGrowth{}, nil, nil).PenNutrition(context.Background(), "p9", march())
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestPenNutritionEmptyRange(t *testing.T) {
	svc := NewService(fakeStore{}, fakeGrowth{}, nil, nil)
	e, err := svc.PenNutrition(context.Background(), "p1", models.DateRange{Start: day("2024-03-31"), End: day("2024-03-01")})
	require.NoError(t, err)
	assert.Empty(t, e.Allocations)
	assert.Zero(t, e.TotalFeedCost)
}

func TestPushToSheetsSkipsExportedRecords(t *testing.T) {
	ctx := context.Background()
	sheets := &mockSheets{}
	sheets.On("ReadRange", ctx, "Nutrition!A:A").Return([][]interface{}{{"allocation_id"}, {"fa1"}}, nil)
	sheets.On("AppendRows", ctx, "Nutrition!A:G", [][]interface{}{
		{"fa2", "2024-03-08", "North", "Corn", 600.0, 72.10, 3},
		{"fa2", "2024-03-08", "North", "Hay", 400.0, 32.10, 3},
		{"pa1", "2024-03-15", "North", "Silage", 300.0, 45.30, 3},
	}).Return(nil)

	svc := NewService(fakeStore{}, fakeGrowth{}, sheets, nil)
	e, err := svc.PenNutrition(ctx, "p1", march())
	require.NoError(t, err)

	n, err := svc.PushToSheets(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	sheets.AssertExpectations(t)
}

func TestPushToSheetsNothingNew(t *testing.T) {
	ctx := context.Background()
	sheets := &mockSheets{}
	sheets.On("ReadRange", ctx, "Nutrition!A:A").Return([][]interface{}{{"pa1"}}, nil)

	n, err := NewService(fakeStore{}, fakeGrowth{}, sheets, nil).PushToSheets(ctx, models.NutritionExport{
		Activities: []models.PenFeedActivity{{ID: "pa1"}},
	})
	require.NoError(t, err)
	assert.Zero(t, n)
	sheets.AssertNotCalled(t, "AppendRows", mock.Anything, mock.Anything, mock.Anything)
}

func TestPushToSheetsDisabled(t *testing.T) {
	_, err := NewService(fakeStore{}, fakeGrowth{}, nil, nil).PushToSheets(context.Background(), models.NutritionExport{})
	assert.True(t, errors.Is(err, ErrSheetsDisabled))
}
