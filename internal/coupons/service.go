package coupons

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/castellanosdev/shopline-backend/pkg/db/models"
	"github.com/castellanosdev/shopline-backend/pkg/enums"
	pkgerrors "github.com/castellanosdev/shopline-backend/pkg/errors"
	"github.com/castellanosdev/shopline-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderStore is the slice of order persistence the coupon engine needs.
type OrderStore interface {
	WithTx(tx *gorm.DB) OrderStore
	FindForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	UpdatePricing(ctx context.Context, orderID uuid.UUID, finalTotalCents int, couponID *uuid.UUID) error
}

// Recommendation is one ranked entry from RecommendCoupons.
type Recommendation struct {
	Code            string `json:"code"`
	SubtotalCents   int    `json:"sub_total"`
	FinalTotalCents int    `json:"final_total"`
}

// UpsertInput carries the admin-facing coupon fields.
type UpsertInput struct {
	Code              string
	DiscountType      enums.CouponDiscountType
	DiscountValue     int
	Target            enums.CouponTarget
	MinimumOrderCents *int
	MaxUsage          *int
	StartsAt          *time.Time
	EndsAt            *time.Time
	ProductIDs        []uuid.UUID
	CategoryIDs       []uuid.UUID
}

// Service validates, applies and recommends coupons for orders.
type Service interface {
	Apply(ctx context.Context, userID, orderID uuid.UUID, code string) (*models.Order, error)
	Remove(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	Recommend(ctx context.Context, userID, orderID uuid.UUID) ([]Recommendation, error)
	Upsert(ctx context.Context, input UpsertInput) (*models.Coupon, error)
}

type service struct {
	repo    Repository
	orders  OrderStore
	tx      txRunner
	metrics *metrics.StorefrontMetrics
	now     func() time.Time
}

// NewService builds the coupon service.
func NewService(repo Repository, orders OrderStore, tx txRunner, m *metrics.StorefrontMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		orders:  orders,
		tx:      tx,
		metrics: m,
		now:     time.Now,
	}, nil
}

// Validate runs the eligibility checks in their fixed order: existence is the
// caller's concern (the coupon is already loaded), then validity window,
// usage cap, minimum amount, and target intersection.
func Validate(coupon *models.Coupon, order *models.Order, now time.Time) error {
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon is not active yet")
	}
	if coupon.EndsAt != nil && now.After(*coupon.EndsAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired")
	}
	if coupon.MaxUsage != nil && coupon.TimesUsed >= *coupon.MaxUsage {
		return pkgerrors.New(pkgerrors.CodeConflict, "coupon usage limit reached")
	}
	if coupon.MinimumOrderCents != nil && order.SubtotalCents < *coupon.MinimumOrderCents {
		return pkgerrors.New(pkgerrors.CodeValidation, "order total below coupon minimum")
	}
	if coupon.Target == enums.CouponTargetSingle && !appliesToOrder(coupon, order) {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon does not apply to any item in the order")
	}
	return nil
}

// DiscountCents computes the discount against the stored subtotal. Percentage
// discounts floor toward zero; fixed discounts never exceed the subtotal.
func DiscountCents(coupon *models.Coupon, subtotalCents int) int {
	var discount int
	switch coupon.DiscountType {
	case enums.CouponDiscountTypePercentage:
		discount = subtotalCents * coupon.DiscountValue / 100
	case enums.CouponDiscountTypeFixed:
		discount = coupon.DiscountValue
	}
	if discount > subtotalCents {
		discount = subtotalCents
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

func appliesToOrder(coupon *models.Coupon, order *models.Order) bool {
	for _, line := range order.Lines {
		for _, scope := range coupon.Scopes {
			if scope.Matches(line.ProductID, line.CategoryID) {
				return true
			}
		}
	}
	return false
}

func (s *service) Apply(ctx context.Context, userID, orderID uuid.UUID, code string) (*models.Order, error) {
	order, err := s.apply(ctx, userID, orderID, code)
	if err != nil {
		s.metrics.IncCouponApply("rejected")
		return nil, err
	}
	s.metrics.IncCouponApply("applied")
	return order, nil
}

func (s *service) apply(ctx context.Context, userID, orderID uuid.UUID, code string) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orders := s.orders.WithTx(tx)

		order, err := orders.FindForUser(ctx, userID, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "coupons can only change on pending orders")
		}

		coupon, err := repo.FindByCode(ctx, code)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
		}

		// Revert any previously applied coupon first so a usage counter is
		// never charged twice for the same order. Re-applying the same code
		// nets out to no counter change.
		if order.CouponID != nil {
			if err := repo.DecrementUsage(ctx, *order.CouponID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revert previous coupon usage")
			}
			if *order.CouponID == coupon.ID && coupon.TimesUsed > 0 {
				coupon.TimesUsed--
			}
			order.CouponID = nil
			order.FinalTotalCents = order.SubtotalCents
		}

		if err := Validate(coupon, order, s.now()); err != nil {
			return err
		}

		bumped, err := repo.IncrementUsage(ctx, coupon.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment coupon usage")
		}
		if !bumped {
			return pkgerrors.New(pkgerrors.CodeConflict, "coupon usage limit reached")
		}

		discount := DiscountCents(coupon, order.SubtotalCents)
		order.FinalTotalCents = order.SubtotalCents - discount
		order.CouponID = &coupon.ID

		if err := orders.UpdatePricing(ctx, order.ID, order.FinalTotalCents, order.CouponID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store discounted total")
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Remove(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orders := s.orders.WithTx(tx)

		order, err := orders.FindForUser(ctx, userID, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "coupons can only change on pending orders")
		}
		if order.CouponID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "order has no coupon applied")
		}

		if err := repo.DecrementUsage(ctx, *order.CouponID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revert coupon usage")
		}

		order.CouponID = nil
		order.FinalTotalCents = order.SubtotalCents
		if err := orders.UpdatePricing(ctx, order.ID, order.FinalTotalCents, nil); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore order total")
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCouponApply("removed")
	return result, nil
}

// Recommend returns the coupons that would lower the order's total, best
// savings first. Nothing is mutated.
func (s *service) Recommend(ctx context.Context, userID, orderID uuid.UUID) ([]Recommendation, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.orders.FindForUser(ctx, userID, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	now := s.now()
	candidates, err := s.repo.ListCurrent(ctx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}

	recommendations := make([]Recommendation, 0, len(candidates))
	for i := range candidates {
		coupon := &candidates[i]
		if err := Validate(coupon, order, now); err != nil {
			continue
		}
		finalTotal := order.SubtotalCents - DiscountCents(coupon, order.SubtotalCents)
		if finalTotal >= order.SubtotalCents {
			continue
		}
		recommendations = append(recommendations, Recommendation{
			Code:            coupon.Code,
			SubtotalCents:   order.SubtotalCents,
			FinalTotalCents: finalTotal,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].FinalTotalCents < recommendations[j].FinalTotalCents
	})
	return recommendations, nil
}

func (s *service) Upsert(ctx context.Context, input UpsertInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if !input.DiscountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon target")
	}
	if input.DiscountValue <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}
	if input.DiscountType == enums.CouponDiscountTypePercentage {
		if input.DiscountValue > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
		}
		if input.Target == enums.CouponTargetSingle && input.MinimumOrderCents != nil && *input.MinimumOrderCents > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum order bound for scoped percentage coupons cannot exceed 100")
		}
	}
	if input.MaxUsage != nil && *input.MaxUsage <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max usage must be positive when set")
	}
	if input.StartsAt != nil && input.EndsAt != nil && input.EndsAt.Before(*input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon window ends before it starts")
	}
	if input.Target == enums.CouponTargetSingle && len(input.ProductIDs) == 0 && len(input.CategoryIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scoped coupons need at least one product or category")
	}

	var result *models.Coupon
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		scopes := buildScopes(input)

		existing, err := repo.FindByCode(ctx, code)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
		}

		if existing == nil {
			coupon := &models.Coupon{
				Code:              code,
				DiscountType:      input.DiscountType,
				DiscountValue:     input.DiscountValue,
				Target:            input.Target,
				MinimumOrderCents: input.MinimumOrderCents,
				MaxUsage:          input.MaxUsage,
				StartsAt:          input.StartsAt,
				EndsAt:            input.EndsAt,
				Scopes:            scopes,
			}
			created, err := repo.Create(ctx, coupon)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
			}
			result = created
			return nil
		}

		existing.DiscountType = input.DiscountType
		existing.DiscountValue = input.DiscountValue
		existing.Target = input.Target
		existing.MinimumOrderCents = input.MinimumOrderCents
		existing.MaxUsage = input.MaxUsage
		existing.StartsAt = input.StartsAt
		existing.EndsAt = input.EndsAt
		existing.Scopes = scopes
		for i := range existing.Scopes {
			existing.Scopes[i].CouponID = existing.ID
		}

		updated, err := repo.Update(ctx, existing)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func buildScopes(input UpsertInput) []models.CouponScope {
	if input.Target != enums.CouponTargetSingle {
		return nil
	}
	scopes := make([]models.CouponScope, 0, len(input.ProductIDs)+len(input.CategoryIDs))
	for _, id := range input.ProductIDs {
		productID := id
		scopes = append(scopes, models.CouponScope{ProductID: &productID})
	}
	for _, id := range input.CategoryIDs {
		categoryID := id
		scopes = append(scopes, models.CouponScope{CategoryID: &categoryID})
	}
	return scopes
}
