package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/castellanosdev/shopline-backend/api/responses"
	"github.com/castellanosdev/shopline-backend/api/validators"
	couponsvc "github.com/castellanosdev/shopline-backend/internal/coupons"
	"github.com/castellanosdev/shopline-backend/pkg/db/models"
	"github.com/castellanosdev/shopline-backend/pkg/enums"
	pkgerrors "github.com/castellanosdev/shopline-backend/pkg/errors"
	"github.com/castellanosdev/shopline-backend/pkg/logger"
)

type upsertCouponRequest struct {
	Code              string      `json:"code" validate:"required"`
	DiscountType      string      `json:"discount_type" validate:"required"`
	DiscountValue     int         `json:"discount_value" validate:"required,min=1"`
	Target            string      `json:"target"`
	MinimumOrderCents *int        `json:"minimum_order_cents"`
	MaxUsage          *int        `json:"max_usage"`
	StartsAt          *time.Time  `json:"starts_at"`
	EndsAt            *time.Time  `json:"ends_at"`
	ProductIDs        []uuid.UUID `json:"product_ids"`
	CategoryIDs       []uuid.UUID `json:"category_ids"`
}

type couponScopeResponse struct {
	ProductID  *uuid.UUID `json:"product_id,omitempty"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
}

type couponResponse struct {
	ID                uuid.UUID             `json:"id"`
	Code              string                `json:"code"`
	DiscountType      string                `json:"discount_type"`
	DiscountValue     int                   `json:"discount_value"`
	Target            string                `json:"target"`
	MinimumOrderCents *int                  `json:"minimum_order_cents,omitempty"`
	MaxUsage          *int                  `json:"max_usage,omitempty"`
	TimesUsed         int                   `json:"times_used"`
	StartsAt          *time.Time            `json:"starts_at,omitempty"`
	EndsAt            *time.Time            `json:"ends_at,omitempty"`
	Scopes            []couponScopeResponse `json:"scopes,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

func newCouponResponse(coupon *models.Coupon) couponResponse {
	resp := couponResponse{
		ID:                coupon.ID,
		Code:              coupon.Code,
		DiscountType:      string(coupon.DiscountType),
		DiscountValue:     coupon.DiscountValue,
		Target:            string(coupon.Target),
		MinimumOrderCents: coupon.MinimumOrderCents,
		MaxUsage:          coupon.MaxUsage,
		TimesUsed:         coupon.TimesUsed,
		StartsAt:          coupon.StartsAt,
		EndsAt:            coupon.EndsAt,
		CreatedAt:         coupon.CreatedAt,
		UpdatedAt:         coupon.UpdatedAt,
	}
	for _, scope := range coupon.Scopes {
		resp.Scopes = append(resp.Scopes, couponScopeResponse{
			ProductID:  scope.ProductID,
			CategoryID: scope.CategoryID,
		})
	}
	return resp
}

// AdminCouponUpsert creates a coupon or replaces the definition behind an
// existing code.
func AdminCouponUpsert(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload upsertCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discountType, err := enums.ParseCouponDiscountType(strings.TrimSpace(payload.DiscountType))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type"))
			return
		}

		target := enums.CouponTargetAll
		if strings.TrimSpace(payload.Target) != "" {
			target, err = enums.ParseCouponTarget(strings.TrimSpace(payload.Target))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target"))
				return
			}
		}

		coupon, err := svc.Upsert(r.Context(), couponsvc.UpsertInput{
			Code:              payload.Code,
			DiscountType:      discountType,
			DiscountValue:     payload.DiscountValue,
			Target:            target,
			MinimumOrderCents: payload.MinimumOrderCents,
			MaxUsage:          payload.MaxUsage,
			StartsAt:          payload.StartsAt,
			EndsAt:            payload.EndsAt,
			ProductIDs:        payload.ProductIDs,
			CategoryIDs:       payload.CategoryIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCouponResponse(coupon))
	}
}
