// Package reports aggregates the audit trail into the two manager-facing
// reports: the raw inventory movement report and the financial summary.
// Reports only read; they never touch counters or audits.
package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/larderhq/larder-backend/internal/audit"
	"github.com/larderhq/larder-backend/internal/authz"
	"github.com/larderhq/larder-backend/internal/catalog"
	"github.com/larderhq/larder-backend/pkg/enums"
	"github.com/larderhq/larder-backend/pkg/errors"
	"github.com/larderhq/larder-backend/pkg/logger"
	"github.com/larderhq/larder-backend/pkg/metrics"
	"github.com/larderhq/larder-backend/pkg/pagination"
)

// Service generates reports over the audit trail and live stock levels.
type Service struct {
	catalog catalog.Reader
	audits  *audit.Repository
	repo    *Repository
	metrics *metrics.LedgerMetrics
	log     *logger.Logger
}

// NewService wires the report service.
func NewService(reader catalog.Reader, audits *audit.Repository, repo *Repository, m *metrics.LedgerMetrics, log *logger.Logger) *Service {
	return &Service{
		catalog: reader,
		audits:  audits,
		repo:    repo,
		metrics: m,
		log:     log,
	}
}

// ReportInput identifies the requester, the location, and the inclusive date
// range a report covers.
type ReportInput struct {
	StaffID    uuid.UUID
	LocationID uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
	Page       pagination.Params
}

// InventoryRow is one audit trail entry emitted verbatim.
type InventoryRow struct {
	AuditID      uuid.UUID              `json:"audit_id"`
	Reason       enums.StockAuditReason `json:"reason"`
	IngredientID uuid.UUID              `json:"ingredient_id"`
	StaffID      uuid.UUID              `json:"staff_id"`
	UnitsChange  float64                `json:"units_change"`
	Cost         decimal.Decimal        `json:"cost"`
	CreatedAt    time.Time              `json:"created_at"`
}

// InventoryReport lists every stock movement at a location in a date range,
// oldest first, without aggregation.
type InventoryReport struct {
	LocationID uuid.UUID      `json:"location_id"`
	StartDate  string         `json:"start_date"`
	EndDate    string         `json:"end_date"`
	Rows       []InventoryRow `json:"rows"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// FinancialSummary totals a location's money flows for a date range plus the
// value of stock on hand at generation time.
type FinancialSummary struct {
	LocationID     uuid.UUID       `json:"location_id"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	Revenue        decimal.Decimal `json:"revenue"`
	DeliveryCost   decimal.Decimal `json:"delivery_cost"`
	WasteCost      decimal.Decimal `json:"waste_cost"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

// GenerateInventoryReport emits the stock audits for the location and range.
func (s *Service) GenerateInventoryReport(ctx context.Context, in ReportInput) (report *InventoryReport, err error) {
	defer s.observe("inventory_report", time.Now(), &err)
	ctx = s.log.WithOperation(s.log.WithStaffID(ctx, in.StaffID.String()), "inventory_report")

	from, to, err := s.authorize(ctx, in)
	if err != nil {
		return nil, err
	}

	rows, next, err := s.audits.QueryStock(ctx, audit.StockQuery{
		LocationID: in.LocationID,
		From:       from,
		To:         to,
		Page:       in.Page,
	})
	if err != nil {
		return nil, err
	}

	report = &InventoryReport{
		LocationID: in.LocationID,
		StartDate:  from.Format(time.DateOnly),
		EndDate:    to.AddDate(0, 0, -1).Format(time.DateOnly),
		Rows:       make([]InventoryRow, 0, len(rows)),
		NextCursor: next,
	}
	for _, row := range rows {
		report.Rows = append(report.Rows, InventoryRow{
			AuditID:      row.ID,
			Reason:       row.Reason,
			IngredientID: row.IngredientID,
			StaffID:      row.StaffID,
			UnitsChange:  row.UnitsChange,
			Cost:         row.Cost,
			CreatedAt:    row.CreatedAt,
		})
	}
	return report, nil
}

// GenerateFinancialSummary totals revenue, delivery cost, and waste cost over
// the range and values current stock at today's ingredient costs.
func (s *Service) GenerateFinancialSummary(ctx context.Context, in ReportInput) (summary *FinancialSummary, err error) {
	defer s.observe("financial_summary", time.Now(), &err)
	ctx = s.log.WithOperation(s.log.WithStaffID(ctx, in.StaffID.String()), "financial_summary")

	from, to, err := s.authorize(ctx, in)
	if err != nil {
		return nil, err
	}

	revenue, err := s.audits.SumSales(ctx, in.LocationID, from, to)
	if err != nil {
		return nil, err
	}
	deliveries, err := s.audits.SumStockCost(ctx, in.LocationID, enums.StockAuditReasonDelivery, from, to)
	if err != nil {
		return nil, err
	}
	waste, err := s.audits.SumStockCost(ctx, in.LocationID, enums.StockAuditReasonWaste, from, to)
	if err != nil {
		return nil, err
	}
	value, err := s.repo.InventoryValue(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}

	return &FinancialSummary{
		LocationID:     in.LocationID,
		StartDate:      from.Format(time.DateOnly),
		EndDate:        to.AddDate(0, 0, -1).Format(time.DateOnly),
		Revenue:        revenue,
		DeliveryCost:   deliveries,
		WasteCost:      waste,
		InventoryValue: value,
	}, nil
}

// authorize enforces the manager-at-location precondition and converts the
// inclusive date range into the half-open UTC window [start, end+1d).
func (s *Service) authorize(ctx context.Context, in ReportInput) (time.Time, time.Time, error) {
	staff, err := s.catalog.StaffByID(ctx, in.StaffID)
	if err != nil {
		// An unknown requester is an authorization failure, not a missing
		// resource.
		if typed := errors.As(err); typed != nil && typed.Code() == errors.CodeNotFound {
			return time.Time{}, time.Time{}, errors.New(errors.CodeForbidden, "staff member not recognized")
		}
		return time.Time{}, time.Time{}, err
	}
	if err := authz.ViewReports.Check(staff, in.LocationID); err != nil {
		return time.Time{}, time.Time{}, err
	}

	from := dayStart(in.StartDate)
	end := dayStart(in.EndDate)
	if end.Before(from) {
		return time.Time{}, time.Time{}, errors.New(errors.CodeValidation, "start date must not be after end date")
	}
	return from, end.AddDate(0, 0, 1), nil
}

func dayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) observe(operation string, start time.Time, errp *error) {
	s.metrics.ObserveDuration(operation, time.Since(start))
	if *errp == nil {
		s.metrics.IncSuccess(operation)
		return
	}
	code := string(errors.CodeInternal)
	if typed := errors.As(*errp); typed != nil {
		code = string(typed.Code())
	}
	s.metrics.IncFailure(operation, code)
}
