package commands

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

type fakeAnimals map[string]models.Animal

func (f fakeAnimals) FindAnimalByTag(_ context.Context, tag string) (models.Animal, error) {
	a, ok := f[tag]
	if !ok {
		return models.Animal{}, models.ErrNotFound
	}
	return a, nil
}

type mockWeights struct{ mock.Mock }

func (m *mockWeights) RecordWeight(ctx context.Context, cattleID string, date time.Time, weight float64) (models.Animal, error) {
	args := m.Called(ctx, cattleID, date, weight)
	return args.Get(0).(models.Animal), args.Error(1)
}

type mockReporting struct{ mock.Mock }

func (m *mockReporting) CostSummary(ctx context.Context, cattleID string) (models.CostSummary, error) {
	args := m.Called(ctx, cattleID)
	return args.Get(0).(models.CostSummary), args.Error(1)
}

func (m *mockReporting) Growth(ctx context.Context, cattleID string) (models.GrowthMetrics, error) {
	args := m.Called(ctx, cattleID)
	return args.Get(0).(models.GrowthMetrics), args.Error(1)
}

func (m *mockReporting) AnimalProfitability(ctx context.Context, cattleID string, marketPrice, targetWeight float64) (models.BreakEvenAnalysis, error) {
	args := m.Called(ctx, cattleID, marketPrice, targetWeight)
	return args.Get(0).(models.BreakEvenAnalysis), args.Error(1)
}

var testNow = time.Date(2024, 4, 10, 15, 30, 0, 0, time.UTC)

func newTestService(w *mockWeights, r *mockReporting) *Service {
	animals := fakeAnimals{
		"A-102": {ID: "c1", Tag: "A-102"},
		"B-7":   {ID: "c2", Tag: "B-7"},
	}
	sessions := NewSessionManager()
	sessions.now = func() time.Time { return testNow }
	svc := NewService(animals, w, r, sessions, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func growth() models.GrowthMetrics {
	return models.GrowthMetrics{
		CurrentWeight: 820,
		Lifetime:      &models.ADGWindow{ADG: metric.Of(2.75)},
		ADGRating:     "Good",
	}
}

func TestHelp(t *testing.T) {
	svc := newTestService(&mockWeights{}, &mockReporting{})
	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/help"), "+1555")
	require.NoError(t, err)
	assert.Equal(t, HelpText, reply)
}

func TestWeighRecordsAtStartOfDay(t *testing.T) {
	ctx := context.Background()
	w, r := &mockWeights{}, &mockReporting{}
	w.On("RecordWeight", ctx, "c1", models.StartOfDay(testNow), 820.0).Return(models.Animal{ID: "c1", Tag: "A-102"}, nil)
	r.On("Growth", ctx, "c1").Return(growth(), nil)

	reply, err := newTestService(w, r).HandleCommand(ctx, models.ParseCommand("/weigh A-102 820"), "+1555")
	require.NoError(t, err)
	assert.Contains(t, reply, "Weight saved for A-102: 820 lbs.")
	assert.Contains(t, reply, "ADG 2.75 lifetime")
	w.AssertExpectations(t)
}

func TestWeighReplyWithoutGrowth(t *testing.T) {
	ctx := context.Background()
	w, r := &mockWeights{}, &mockReporting{}
	w.On("RecordWeight", ctx, "c1", mock.Anything, 700.0).Return(models.Animal{ID: "c1"}, nil)
	r.On("Growth", ctx, "c1").Return(models.GrowthMetrics{}, errors.New("boom"))

	reply, err := newTestService(w, r).HandleCommand(ctx, models.ParseCommand("weigh A-102 700"), "+1555")
	require.NoError(t, err)
	assert.Equal(t, "Weight saved for A-102: 700 lbs.", reply)
}

func TestSessionTagIsReused(t *testing.T) {
	ctx := context.Background()
	w, r := &mockWeights{}, &mockReporting{}
	r.On("CostSummary", ctx, "c2").Return(models.CostSummary{FeedCost: 120, TotalVariableCost: 120, FeedRecords: 2}, nil)
	w.On("RecordWeight", ctx, "c2", mock.Anything, 655.0).Return(models.Animal{ID: "c2", Tag: "B-7"}, nil)
	r.On("Growth", ctx, "c2").Return(growth(), nil)
	r.On("AnimalProfitability", ctx, "c2", 1.85, 0.0).Return(models.BreakEvenAnalysis{}, nil)

	svc := newTestService(w, r)
	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/cost B-7"), "+1555")
	require.NoError(t, err)
	assert.Contains(t, reply, "Costs for B-7: feed $120.00")

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("/weigh 655"), "+1555")
	require.NoError(t, err)
	assert.Contains(t, reply, "Weight saved for B-7")

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("/be 1.85"), "+1555")
	require.NoError(t, err)
	assert.Contains(t, reply, "Break-even for B-7")

	_, err = svc.HandleCommand(ctx, models.ParseCommand("/adg"), "+1999")
	assert.True(t, errors.Is(err, ErrInvalidArguments), "other senders have no session")

	r.AssertExpectations(t)
	w.AssertExpectations(t)
}

func TestSessionExpires(t *testing.T) {
	ctx := context.Background()
	r := &mockReporting{}
	r.On("Growth", ctx, "c1").Return(growth(), nil)

	svc := newTestService(&mockWeights{}, r)
	_, err := svc.HandleCommand(ctx, models.ParseCommand("/adg A-102"), "+1555")
	require.NoError(t, err)

	svc.sessions.now = func() time.Time { return testNow.Add(31 * time.Minute) }
	_, err = svc.HandleCommand(ctx, models.ParseCommand("/adg"), "+1555")
	assert.True(t, errors.Is(err, ErrInvalidArguments))
}

func TestBreakEvenArguments(t *testing.T) {
	ctx := context.Background()
	r := &mockReporting{}
	r.On("AnimalProfitability", ctx, "c1", 1.9, 1350.0).Return(models.BreakEvenAnalysis{
		BreakEven: models.BreakEvenPoint{PricePerPound: metric.Of(1.52), SalePrice: metric.Of(2052)},
		Costs:     models.CostTotals{Total: 2052},
		Margin:    models.Margin{MarketPrice: 1.9, Amount: 513, Percentage: metric.Of(25)},
	}, nil)

	reply, err := newTestService(&mockWeights{}, r).HandleCommand(ctx, models.ParseCommand("/breakeven A-102 1.9 1350"), "+1555")
	require.NoError(t, err)
	assert.Contains(t, reply, "Break-even for A-102: $1.52/lb (sale $2052.00)")
	assert.Contains(t, reply, "margin $513.00 (25.0%)")
}

func TestBreakEvenPriceAndTargetForSessionAnimal(t *testing.T) {
	ctx := context.Background()
	r := &mockReporting{}
	r.On("CostSummary", ctx, "c1").Return(models.CostSummary{}, nil)
	r.On("AnimalProfitability", ctx, "c1", 1.8, 1200.0).Return(models.BreakEvenAnalysis{
		BreakEven: models.BreakEvenPoint{PricePerPound: metric.Of(1.4), SalePrice: metric.Of(1680)},
		Margin:    models.Margin{MarketPrice: 1.8, Percentage: metric.Of(28.6)},
	}, nil)

	svc := newTestService(&mockWeights{}, r)
	_, err := svc.HandleCommand(ctx, models.ParseCommand("/cost A-102"), "+1555")
	require.NoError(t, err)

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/breakeven 1.80 1200"), "+1555")
	require.NoError(t, err)
	assert.Contains(t, reply, "Break-even for A-102: $1.40/lb")
	r.AssertExpectations(t)

	_, err = svc.HandleCommand(ctx, models.ParseCommand("/breakeven 1.80 1200"), "+1999")
	assert.True(t, errors.Is(err, models.ErrNotFound), "without a session the first argument is a tag")
}

func TestInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"weigh without args", "/weigh"},
		{"weigh too many args", "/weigh A-102 800 900"},
		{"weigh non numeric", "/weigh A-102 heavy"},
		{"weigh negative", "/weigh A-102 -5"},
		{"weigh NaN", "/weigh A-102 NaN"},
		{"breakeven without args", "/breakeven"},
		{"breakeven bad price", "/breakeven A-102 cheap"},
		{"breakeven bad target", "/breakeven A-102 1.9 0"},
		{"cost without session", "/cost"},
	}

	svc := newTestService(&mockWeights{}, &mockReporting{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.HandleCommand(context.Background(), models.ParseCommand(tt.text), "+1555")
			assert.True(t, errors.Is(err, ErrInvalidArguments), "got %v", err)
		})
	}
}

func TestUnknownTag(t *testing.T) {
	_, err := newTestService(&mockWeights{}, &mockReporting{}).HandleCommand(context.Background(), models.ParseCommand("/cost Z-1"), "+1555")
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.Contains(t, err.Error(), "Z-1")
}

func TestUnsupportedCommand(t *testing.T) {
	_, err := newTestService(&mockWeights{}, &mockReporting{}).HandleCommand(context.Background(), models.ParseCommand("sell everything"), "+1555")
	assert.True(t, errors.Is(err, ErrUnsupportedCommand))
}

func TestSessionManagerPrunesExpired(t *testing.T) {
	now := testNow
	sm := NewSessionManager()
	sm.now = func() time.Time { return now }

	sm.Remember("+1555", "A-102")
	sm.Remember("+1666", "B-7")
	assert.Equal(t, 2, len(sm.sessions))

	now = now.Add(20 * time.Minute)
	sm.Remember("+1666", "B-7")

	now = now.Add(15 * time.Minute)
	_, ok := sm.LastTag("+1555")
	assert.False(t, ok)
	sm.Remember("+1777", "A-102")
	assert.Equal(t, 2, len(sm.sessions), "the expired +1555 session is dropped")

	tag, ok := sm.LastTag("+1666")
	require.True(t, ok)
	assert.Equal(t, "B-7", tag)
}
