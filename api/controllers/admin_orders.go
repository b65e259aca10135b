package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/castellanosdev/shopline-backend/api/responses"
	"github.com/castellanosdev/shopline-backend/api/validators"
	ordersvc "github.com/castellanosdev/shopline-backend/internal/orders"
	"github.com/castellanosdev/shopline-backend/pkg/enums"
	pkgerrors "github.com/castellanosdev/shopline-backend/pkg/errors"
	"github.com/castellanosdev/shopline-backend/pkg/logger"
)

type adminOrderVariantRequest struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type adminCreateOrderRequest struct {
	UserID     uuid.UUID                  `json:"user_id" validate:"required"`
	Variants   []adminOrderVariantRequest `json:"variants" validate:"required,min=1,dive"`
	CouponCode *string                    `json:"coupon_code"`
	Status     *string                    `json:"status"`
	Message    *string                    `json:"message"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminOrderCreate builds an order for a user directly from variant
// selections, bypassing their cart.
func AdminOrderCreate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload adminCreateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ordersvc.AdminCreateInput{
			UserID:     payload.UserID,
			CouponCode: payload.CouponCode,
			Message:    payload.Message,
		}
		for _, variant := range payload.Variants {
			input.Selections = append(input.Selections, ordersvc.VariantSelection{
				VariantID: variant.VariantID,
				Quantity:  variant.Quantity,
			})
		}
		if payload.Status != nil {
			status, err := enums.ParseOrderStatus(strings.TrimSpace(*payload.Status))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = status
		}

		order, err := svc.AdminCreate(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// AdminOrderList pages through every order, optionally including
// soft-deleted ones.
func AdminOrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		includeDeleted := r.URL.Query().Get("include_deleted") == "true"

		orders, nextCursor, err := svc.AdminList(r.Context(), includeDeleted, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderPageResponse(orders, nextCursor))
	}
}

// AdminOrderUpdateStatus drives the order state machine.
func AdminOrderUpdateStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}
