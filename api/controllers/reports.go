package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/larderhq/larder-backend/api/responses"
	"github.com/larderhq/larder-backend/internal/reports"
	pkgerrors "github.com/larderhq/larder-backend/pkg/errors"
	"github.com/larderhq/larder-backend/pkg/logger"
	"github.com/larderhq/larder-backend/pkg/pagination"
)

// reportQuery parses the shared report query parameters: staff_id,
// location_id, start_date, end_date (YYYY-MM-DD, inclusive).
func reportQuery(r *http.Request) (reports.ReportInput, error) {
	q := r.URL.Query()

	staffID, err := uuid.Parse(q.Get("staff_id"))
	if err != nil {
		return reports.ReportInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid staff_id")
	}
	locationID, err := uuid.Parse(q.Get("location_id"))
	if err != nil {
		return reports.ReportInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location_id")
	}
	start, err := time.Parse(time.DateOnly, q.Get("start_date"))
	if err != nil {
		return reports.ReportInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid start_date, want YYYY-MM-DD")
	}
	end, err := time.Parse(time.DateOnly, q.Get("end_date"))
	if err != nil {
		return reports.ReportInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid end_date, want YYYY-MM-DD")
	}

	var page pagination.Params
	if raw := q.Get("limit"); raw != "" {
		limit, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return reports.ReportInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, convErr, "invalid limit")
		}
		page.Limit = limit
	}
	page.Cursor = q.Get("cursor")

	return reports.ReportInput{
		StaffID:    staffID,
		LocationID: locationID,
		StartDate:  start,
		EndDate:    end,
		Page:       page,
	}, nil
}

// InventoryReport handles GET /api/v1/reports/inventory.
func InventoryReport(svc *reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		input, err := reportQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.GenerateInventoryReport(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// FinancialSummary handles GET /api/v1/reports/financial-summary.
func FinancialSummary(svc *reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		input, err := reportQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.GenerateFinancialSummary(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
