package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/ranch/internal/domain/models"
	"github.com/mamadbah2/ranch/internal/server/metrics"
	"github.com/mamadbah2/ranch/internal/service/records"
)

// CostService is the cost allocation engine.
type CostService interface {
	GetCattleCostSummary(ctx context.Context, cattleID string, r models.DateRange) (models.CostSummary, error)
	GetCattleFeedHistory(ctx context.Context, cattleID string, r models.DateRange) ([]models.FeedHistoryEntry, error)
	GetCattleMedicationHistory(ctx context.Context, cattleID string, r models.DateRange) ([]models.MedicationHistoryEntry, error)
	AllocationLedger(ctx context.Context, allocationID string) (models.AllocationLedger, error)
}

// GrowthService is the growth tracking engine.
type GrowthService interface {
	Metrics(ctx context.Context, cattleID string) (models.GrowthMetrics, error)
	TargetProjection(ctx context.Context, cattleID string, targetWeight float64) (models.TargetProjection, error)
	Timeline(ctx context.Context, cattleID string, projectionDays int) ([]models.TimelineEvent, error)
}

// ProfitabilityService composes the engines into analyses and reports.
type ProfitabilityService interface {
	AnimalProfitability(ctx context.Context, cattleID string, marketPrice, targetWeight float64) (models.BreakEvenAnalysis, error)
	BatchProfitability(ctx context.Context, batchID string, marketPrice, targetWeight float64) (models.GroupAnalysis, error)
	Pens(ctx context.Context) ([]models.PenStatus, error)
	HerdReport(ctx context.Context) (models.HerdReport, error)
}

// Calculator is the pure break-even calculator.
type Calculator interface {
	CalculateBreakEven(costs models.CostBreakdown, currentWeight, projectedFinalWeight, currentMarketPrice float64) models.BreakEvenAnalysis
	CalculateGroupBreakEven(costsList []models.CostBreakdown, weightsList []models.WeightProjection, group models.GroupInfo) (models.GroupAnalysis, error)
}

// InventoryService manages stock and withdrawal periods.
type InventoryService interface {
	Restock(ctx context.Context, itemID string, qty float64) (models.InventoryItem, error)
	Withdrawal(ctx context.Context, cattleID string) (models.WithdrawalStatus, error)
}

// RecordService creates records.
type RecordService interface {
	CreateFeedAllocation(ctx context.Context, in records.FeedAllocationInput) (models.FeedAllocation, error)
	CreatePenFeedActivity(ctx context.Context, in records.PenFeedActivityInput) (models.PenFeedActivity, error)
	CreateMedicationActivity(ctx context.Context, in records.MedicationInput) (models.MedicationActivity, error)
	CreateHealthRecord(ctx context.Context, rec models.HealthRecord) (models.HealthRecord, error)
	RecordWeight(ctx context.Context, cattleID string, date time.Time, weight float64) (models.Animal, error)
}

// ExportService builds nutritionist exports.
type ExportService interface {
	PenNutrition(ctx context.Context, penID string, r models.DateRange) (models.NutritionExport, error)
	PushToSheets(ctx context.Context, e models.NutritionExport) (int, error)
}

// Services groups the dependencies of the REST API.
type Services struct {
	Costs         CostService
	Growth        GrowthService
	Profitability ProfitabilityService
	Calculator    Calculator
	Inventory     InventoryService
	Records       RecordService
	Export        ExportService
}

// APIHandler serves the REST API under /api.
type APIHandler struct {
	svc     Services
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewAPIHandler constructs the REST handler. m may be nil.
func NewAPIHandler(svc Services, m *metrics.Metrics, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{svc: svc, metrics: m, logger: logger, now: time.Now}
}
