package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/castellanosdev/shopline-backend/internal/catalog"
	"github.com/castellanosdev/shopline-backend/internal/coupons"
	"github.com/castellanosdev/shopline-backend/internal/inventory"
	"github.com/castellanosdev/shopline-backend/pkg/db/models"
	"github.com/castellanosdev/shopline-backend/pkg/enums"
	pkgerrors "github.com/castellanosdev/shopline-backend/pkg/errors"
	"github.com/castellanosdev/shopline-backend/pkg/metrics"
	"github.com/castellanosdev/shopline-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// UpdateInput carries the only order fields a user may edit while pending.
type UpdateInput struct {
	Message           *string
	ShippingAddressID *uuid.UUID
}

// VariantSelection names a variant and how many units of it to order.
type VariantSelection struct {
	VariantID uuid.UUID
	Quantity  int
}

// AdminCreateInput captures a back-office order created on a user's behalf.
type AdminCreateInput struct {
	UserID     uuid.UUID
	Selections []VariantSelection
	CouponCode *string
	Status     enums.OrderStatus
	Message    *string
}

// Service owns the order state machine and deletion rules.
type Service interface {
	Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	Update(ctx context.Context, userID, orderID uuid.UUID, input UpdateInput) (*models.Order, error)
	Delete(ctx context.Context, userID, orderID uuid.UUID) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error)
	AdminList(ctx context.Context, includeDeleted bool, params pagination.Params) ([]models.Order, string, error)
	AdminCreate(ctx context.Context, input AdminCreateInput) (*models.Order, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	stock    inventory.Ledger
	coupons  coupons.Repository
	variants catalog.VariantRepository
	metrics  *metrics.StorefrontMetrics
	now      func() time.Time
}

// NewService builds the order service. Metrics may be nil.
func NewService(
	repo Repository,
	tx txRunner,
	stock inventory.Ledger,
	couponRepo coupons.Repository,
	variants catalog.VariantRepository,
	m *metrics.StorefrontMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if couponRepo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		stock:    stock,
		coupons:  couponRepo,
		variants: variants,
		metrics:  m,
		now:      time.Now,
	}, nil
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindForUser(ctx, userID, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	if userID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListByUser(ctx, userID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return trimPage(rows, pagination.NormalizeLimit(params.Limit))
}

func (s *service) Update(ctx context.Context, userID, orderID uuid.UUID, input UpdateInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Message == nil && input.ShippingAddressID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindForUser(ctx, userID, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be edited")
		}

		updates := map[string]any{}
		if input.Message != nil {
			order.Message = input.Message
			updates["message"] = *input.Message
		}
		if input.ShippingAddressID != nil {
			order.ShippingAddressID = input.ShippingAddressID
			updates["shipping_address_id"] = *input.ShippingAddressID
		}
		if err := repo.UpdateFields(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete purges pending orders outright, returning their stock and coupon
// use; anything further along is soft-deleted and kept for admin views.
func (s *service) Delete(ctx context.Context, userID, orderID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindForUser(ctx, userID, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.Status != enums.OrderStatusPending {
			if err := repo.SoftDelete(ctx, order.ID, s.now()); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "soft delete order")
			}
			return nil
		}

		for _, line := range order.Lines {
			if err := s.stock.Release(ctx, tx, line.VariantID, line.Quantity); err != nil {
				return err
			}
		}
		if order.CouponID != nil {
			if err := s.coupons.WithTx(tx).DecrementUsage(ctx, *order.CouponID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revert coupon usage")
			}
		}
		if err := repo.HardDelete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

// UpdateStatus moves an order along the state machine. Transitions into
// cancelled hand the reserved stock back.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == target {
			result = order
			return nil
		}
		if !order.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, target))
		}

		if target == enums.OrderStatusCancelled {
			for _, line := range order.Lines {
				if err := s.stock.Release(ctx, tx, line.VariantID, line.Quantity); err != nil {
					return err
				}
			}
		}

		if err := repo.UpdateFields(ctx, order.ID, map[string]any{"status": target}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.Status = target
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncOrderTransition(target.String())
	return result, nil
}

func (s *service) AdminList(ctx context.Context, includeDeleted bool, params pagination.Params) ([]models.Order, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListAll(ctx, includeDeleted, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return trimPage(rows, pagination.NormalizeLimit(params.Limit))
}

// AdminCreate builds an order for a user directly from variant selections,
// reserving stock and optionally charging a coupon, all in one transaction.
func (s *service) AdminCreate(ctx context.Context, input AdminCreateInput) (*models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if len(input.Selections) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one variant required")
	}
	for _, sel := range input.Selections {
		if sel.VariantID == uuid.Nil || sel.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant selections need an id and a positive quantity")
		}
	}
	status := input.Status
	if status == "" {
		status = enums.OrderStatusPending
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		variants := s.variants.WithTx(tx)

		ids := make([]uuid.UUID, 0, len(input.Selections))
		for _, sel := range input.Selections {
			ids = append(ids, sel.VariantID)
		}
		found, err := variants.FindByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variants")
		}
		byID := make(map[uuid.UUID]models.Variant, len(found))
		for _, variant := range found {
			byID[variant.ID] = variant
		}
		for _, sel := range input.Selections {
			if _, ok := byID[sel.VariantID]; !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("variant %s not found", sel.VariantID))
			}
		}

		requests := make([]inventory.ReservationRequest, 0, len(input.Selections))
		for _, sel := range input.Selections {
			requests = append(requests, inventory.ReservationRequest{VariantID: sel.VariantID, Qty: sel.Quantity})
		}
		reservations, err := s.stock.Reserve(ctx, tx, requests)
		if err != nil {
			return err
		}
		if failed := failedReservations(reservations); len(failed) > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").WithDetails(failed)
		}

		lines := make([]models.OrderLine, 0, len(input.Selections))
		for _, sel := range input.Selections {
			lines = append(lines, SnapshotLine(byID[sel.VariantID], sel.Quantity))
		}
		subtotal := SumLineTotals(lines)

		order := &models.Order{
			UserID:          input.UserID,
			Status:          status,
			SubtotalCents:   subtotal,
			FinalTotalCents: subtotal,
			Message:         input.Message,
			DeletionState:   enums.DeletionStateActive,
			Lines:           lines,
		}

		if input.CouponCode != nil && strings.TrimSpace(*input.CouponCode) != "" {
			couponRepo := s.coupons.WithTx(tx)
			coupon, err := couponRepo.FindByCode(ctx, *input.CouponCode)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
			}
			if err := coupons.Validate(coupon, order, s.now()); err != nil {
				return err
			}
			bumped, err := couponRepo.IncrementUsage(ctx, coupon.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment coupon usage")
			}
			if !bumped {
				return pkgerrors.New(pkgerrors.CodeConflict, "coupon usage limit reached")
			}
			order.FinalTotalCents = subtotal - coupons.DiscountCents(coupon, subtotal)
			order.CouponID = &coupon.ID
		}

		created, err := repo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
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

func trimPage(rows []models.Order, limit int) ([]models.Order, string, error) {
	if len(rows) <= limit {
		return rows, "", nil
	}
	page := rows[:limit]
	last := page[len(page)-1]
	next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	return page, next, nil
}
