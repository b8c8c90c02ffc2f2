package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/larderhq/larder-backend/api/responses"
	"github.com/larderhq/larder-backend/api/validators"
	"github.com/larderhq/larder-backend/internal/stockledger"
	pkgerrors "github.com/larderhq/larder-backend/pkg/errors"
	"github.com/larderhq/larder-backend/pkg/logger"
)

type batchItemPayload struct {
	IngredientID uuid.UUID `json:"ingredient_id" validate:"required"`
	Units        float64   `json:"units" validate:"min=0"`
}

type stockBatchRequest struct {
	StaffID    uuid.UUID          `json:"staff_id" validate:"required"`
	LocationID uuid.UUID          `json:"location_id" validate:"required"`
	Items      []batchItemPayload `json:"items" validate:"required,min=1,dive"`
}

func (r stockBatchRequest) items() []stockledger.BatchItem {
	items := make([]stockledger.BatchItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = stockledger.BatchItem{
			IngredientID: item.IngredientID,
			Units:        item.Units,
		}
	}
	return items
}

// StockDelivery handles POST /api/v1/stock/delivery.
func StockDelivery(svc *stockledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock ledger unavailable"))
			return
		}

		var payload stockBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RecordDelivery(r.Context(), stockledger.DeliveryInput{
			StaffID:    payload.StaffID,
			LocationID: payload.LocationID,
			Items:      payload.items(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// StockWaste handles POST /api/v1/stock/waste.
func StockWaste(svc *stockledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock ledger unavailable"))
			return
		}

		var payload stockBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RecordWaste(r.Context(), stockledger.WasteInput{
			StaffID:    payload.StaffID,
			LocationID: payload.LocationID,
			Items:      payload.items(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
