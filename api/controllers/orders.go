package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/castellanosdev/shopline-backend/api/responses"
	"github.com/castellanosdev/shopline-backend/api/validators"
	ordersvc "github.com/castellanosdev/shopline-backend/internal/orders"
	"github.com/castellanosdev/shopline-backend/pkg/db/models"
	"github.com/castellanosdev/shopline-backend/pkg/logger"
	"github.com/castellanosdev/shopline-backend/pkg/pagination"
)

type orderLineResponse struct {
	ID                           uuid.UUID `json:"id"`
	VariantID                    uuid.UUID `json:"variant_id"`
	ProductID                    uuid.UUID `json:"product_id"`
	CategoryID                   uuid.UUID `json:"category_id"`
	Quantity                     int       `json:"quantity"`
	PriceAtPurchaseCents         int       `json:"price_at_purchase_cents"`
	DiscountPriceAtPurchaseCents *int      `json:"discount_price_at_purchase_cents,omitempty"`
	TotalCents                   int       `json:"total_cents"`
}

type orderResponse struct {
	ID                uuid.UUID           `json:"id"`
	UserID            uuid.UUID           `json:"user_id"`
	Status            string              `json:"status"`
	SubtotalCents     int                 `json:"sub_total"`
	FinalTotalCents   int                 `json:"final_total"`
	CouponID          *uuid.UUID          `json:"coupon_id,omitempty"`
	ShippingAddressID *uuid.UUID          `json:"shipping_address_id,omitempty"`
	Message           *string             `json:"message,omitempty"`
	Lines             []orderLineResponse `json:"lines"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

type orderPageResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func newOrderResponse(order *models.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLineResponse{
			ID:                           line.ID,
			VariantID:                    line.VariantID,
			ProductID:                    line.ProductID,
			CategoryID:                   line.CategoryID,
			Quantity:                     line.Quantity,
			PriceAtPurchaseCents:         line.PriceAtPurchaseCents,
			DiscountPriceAtPurchaseCents: line.DiscountPriceAtPurchaseCents,
			TotalCents:                   line.TotalCents(),
		})
	}
	return orderResponse{
		ID:                order.ID,
		UserID:            order.UserID,
		Status:            string(order.Status),
		SubtotalCents:     order.SubtotalCents,
		FinalTotalCents:   order.FinalTotalCents,
		CouponID:          order.CouponID,
		ShippingAddressID: order.ShippingAddressID,
		Message:           order.Message,
		Lines:             lines,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

func newOrderPageResponse(orders []models.Order, nextCursor string) orderPageResponse {
	page := orderPageResponse{
		Orders:     make([]orderResponse, 0, len(orders)),
		NextCursor: nextCursor,
	}
	for i := range orders {
		page.Orders = append(page.Orders, newOrderResponse(&orders[i]))
	}
	return page
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}, nil
}

type updateOrderRequest struct {
	Message           *string    `json:"message"`
	ShippingAddressID *uuid.UUID `json:"shipping_address_id"`
}

func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, nextCursor, err := svc.List(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderPageResponse(orders, nextCursor))
	}
}

func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		order, err := svc.Get(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

func OrderUpdate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload updateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Update(r.Context(), userID, orderID, ordersvc.UpdateInput{
			Message:           payload.Message,
			ShippingAddressID: payload.ShippingAddressID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

func OrderDelete(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), userID, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}
