package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/castellanosdev/shopline-backend/api/responses"
	"github.com/castellanosdev/shopline-backend/api/validators"
	cartsvc "github.com/castellanosdev/shopline-backend/internal/cart"
	"github.com/castellanosdev/shopline-backend/pkg/db/models"
	"github.com/castellanosdev/shopline-backend/pkg/logger"
)

type addCartLineRequest struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type updateCartLineRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type cartVariantResponse struct {
	ID                 uuid.UUID `json:"id"`
	SKU                string    `json:"sku"`
	ProductName        string    `json:"product_name,omitempty"`
	PriceCents         int       `json:"price_cents"`
	DiscountPriceCents *int      `json:"discount_price_cents,omitempty"`
}

type cartLineResponse struct {
	ID        uuid.UUID            `json:"id"`
	VariantID uuid.UUID            `json:"variant_id"`
	Quantity  int                  `json:"quantity"`
	Variant   *cartVariantResponse `json:"variant,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func newCartLineResponse(line models.CartLine) cartLineResponse {
	resp := cartLineResponse{
		ID:        line.ID,
		VariantID: line.VariantID,
		Quantity:  line.Quantity,
		CreatedAt: line.CreatedAt,
		UpdatedAt: line.UpdatedAt,
	}
	if line.Variant != nil {
		variant := cartVariantResponse{
			ID:                 line.Variant.ID,
			SKU:                line.Variant.SKU,
			PriceCents:         line.Variant.PriceCents,
			DiscountPriceCents: line.Variant.DiscountPriceCents,
		}
		if line.Variant.Product != nil {
			variant.ProductName = line.Variant.Product.Name
		}
		resp.Variant = &variant
	}
	return resp
}

func newCartLineResponses(lines []models.CartLine) []cartLineResponse {
	out := make([]cartLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, newCartLineResponse(line))
	}
	return out
}

func CartList(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartLineResponses(lines))
	}
}

func CartAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.AddItem(r.Context(), userID, payload.VariantID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartLineResponse(*line))
	}
}

func CartUpdate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := uuidParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateItem(r.Context(), userID, lineID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"id": lineID, "quantity": payload.Quantity})
	}
}

func CartRemove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := uuidParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveItem(r.Context(), userID, lineID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}
