package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/castellanosdev/shopline-backend/api/responses"
	"github.com/castellanosdev/shopline-backend/api/validators"
	checkoutsvc "github.com/castellanosdev/shopline-backend/internal/checkout"
	"github.com/castellanosdev/shopline-backend/pkg/db/models"
	"github.com/castellanosdev/shopline-backend/pkg/logger"
)

type checkoutRequest struct {
	VariantIDs []uuid.UUID `json:"variant_ids" validate:"required,min=1"`
}

type cartLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
}

// Checkout converts the named cart lines into a pending order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Execute(r.Context(), userID, payload.VariantIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// OrderMoveToCart dissolves a pending order back into cart lines.
func OrderMoveToCart(svc checkoutsvc.Service, cartService cartLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MoveToCart(r.Context(), userID, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := cartService.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartLineResponses(lines))
	}
}
