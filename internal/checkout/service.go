package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/castellanosdev/shopline-backend/internal/cart"
	"github.com/castellanosdev/shopline-backend/internal/coupons"
	"github.com/castellanosdev/shopline-backend/internal/inventory"
	"github.com/castellanosdev/shopline-backend/internal/orders"
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

// Service converts cart lines into pending orders and back. Both directions
// are all-or-nothing: a single unavailable variant fails the whole call.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, variantIDs []uuid.UUID) (*models.Order, error)
	MoveToCart(ctx context.Context, userID, orderID uuid.UUID) error
}

type service struct {
	carts   cart.Repository
	orders  orders.Repository
	stock   inventory.Ledger
	coupons coupons.Repository
	tx      txRunner
	metrics *metrics.StorefrontMetrics
	now     func() time.Time
}

// NewService builds the checkout service. Metrics may be nil.
func NewService(
	carts cart.Repository,
	orderRepo orders.Repository,
	stock inventory.Ledger,
	couponRepo coupons.Repository,
	tx txRunner,
	m *metrics.StorefrontMetrics,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if couponRepo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		carts:   carts,
		orders:  orderRepo,
		stock:   stock,
		coupons: couponRepo,
		tx:      tx,
		metrics: m,
		now:     time.Now,
	}, nil
}

// Execute turns the named cart lines into a pending order: reserve stock,
// snapshot prices, create the order and clear the converted lines, all in
// one transaction.
func (s *service) Execute(ctx context.Context, userID uuid.UUID, variantIDs []uuid.UUID) (*models.Order, error) {
	start := s.now()
	order, err := s.execute(ctx, userID, variantIDs)
	s.metrics.ObserveCheckout(checkoutOutcome(err), time.Since(start))
	return order, err
}

// checkoutOutcome separates reservation conflicts from other failures so
// overselling pressure shows up as its own series.
func checkoutOutcome(err error) string {
	if err == nil {
		return "success"
	}
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
		return "conflict"
	}
	return "failure"
}

func (s *service) execute(ctx context.Context, userID uuid.UUID, variantIDs []uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(variantIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one variant required")
	}
	for _, id := range variantIDs {
		if id == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
		}
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)

		lines, err := carts.FindByUserAndVariants(ctx, userID, variantIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart lines")
		}
		found := make(map[uuid.UUID]bool, len(lines))
		for _, line := range lines {
			found[line.VariantID] = true
		}
		for _, id := range variantIDs {
			if !found[id] {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("variant %s is not in the cart", id))
			}
		}

		requests := make([]inventory.ReservationRequest, 0, len(lines))
		for _, line := range lines {
			requests = append(requests, inventory.ReservationRequest{VariantID: line.VariantID, Qty: line.Quantity})
		}
		reservations, err := s.stock.Reserve(ctx, tx, requests)
		if err != nil {
			return err
		}
		if failed := failedReservations(reservations); len(failed) > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").WithDetails(failed)
		}

		orderLines := make([]models.OrderLine, 0, len(lines))
		for _, line := range lines {
			if line.Variant == nil {
				return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("variant %s missing for cart line", line.VariantID))
			}
			orderLines = append(orderLines, orders.SnapshotLine(*line.Variant, line.Quantity))
		}
		subtotal := orders.SumLineTotals(orderLines)

		order := &models.Order{
			UserID:          userID,
			Status:          enums.OrderStatusPending,
			SubtotalCents:   subtotal,
			FinalTotalCents: subtotal,
			DeletionState:   enums.DeletionStateActive,
			Lines:           orderLines,
		}
		created, err := s.orders.WithTx(tx).Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if err := carts.DeleteByUserAndVariants(ctx, userID, variantIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart lines")
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MoveToCart dissolves a pending order back into the cart: stock returns to
// the shelves, any coupon use is reverted, the lines merge into existing
// cart lines and the order is removed.
func (s *service) MoveToCart(ctx context.Context, userID, orderID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)

		order, err := orderRepo.FindForUser(ctx, userID, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can move back to the cart")
		}

		carts := s.carts.WithTx(tx)
		for _, line := range order.Lines {
			if err := s.stock.Release(ctx, tx, line.VariantID, line.Quantity); err != nil {
				return err
			}
			if _, err := carts.MergeLine(ctx, userID, line.VariantID, line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart line")
			}
		}
		if order.CouponID != nil {
			if err := s.coupons.WithTx(tx).DecrementUsage(ctx, *order.CouponID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revert coupon usage")
			}
		}
		if err := orderRepo.HardDelete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

func failedReservations(results []inventory.ReservationResult) []inventory.ReservationResult {
	var failed []inventory.ReservationResult
	for _, res := range results {
		if !res.Reserved {
			failed = append(failed, res)
		}
	}
	return failed
}
