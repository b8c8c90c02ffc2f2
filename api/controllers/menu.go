package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/larderhq/larder-backend/api/responses"
	"github.com/larderhq/larder-backend/api/validators"
	"github.com/larderhq/larder-backend/internal/stockledger"
	pkgerrors "github.com/larderhq/larder-backend/pkg/errors"
	"github.com/larderhq/larder-backend/pkg/logger"
)

type sellRequest struct {
	StaffID uuid.UUID `json:"staff_id" validate:"required"`
}

// MenuSell handles POST /api/v1/menu/{menuID}/sell.
func MenuSell(svc *stockledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock ledger unavailable"))
			return
		}

		menuID, err := uuid.Parse(chi.URLParam(r, "menuID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid menu item id"))
			return
		}

		var payload sellRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SellMenuItem(r.Context(), stockledger.SaleInput{
			StaffID:    payload.StaffID,
			MenuItemID: menuID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
