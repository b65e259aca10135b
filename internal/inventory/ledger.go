package inventory

import (
	"context"
	"fmt"

	pkgerrors "github.com/castellanosdev/shopline-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservationRequest asks for qty units of a variant to be taken from stock.
type ReservationRequest struct {
	VariantID uuid.UUID
	Qty       int
}

// ReservationResult reports the outcome per variant. Reason is set only when
// the reservation did not go through.
type ReservationResult struct {
	VariantID uuid.UUID
	Reserved  bool
	Reason    string
}

// Ledger moves stock in and out of variants inside a caller-owned transaction.
type Ledger interface {
	Reserve(ctx context.Context, tx *gorm.DB, requests []ReservationRequest) ([]ReservationResult, error)
	Release(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int) error
}

type ledger struct{}

// NewLedger exposes the default stock ledger implementation.
func NewLedger() Ledger {
	return ledger{}
}

// Reserve decrements stock per request with a conditional update so two
// concurrent checkouts can never take the same unit. Requests that lose the
// race come back with Reserved=false rather than failing the batch.
func (ledger) Reserve(ctx context.Context, tx *gorm.DB, requests []ReservationRequest) ([]ReservationResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock reservation")
	}
	for _, req := range requests {
		if req.VariantID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
		}
		if req.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid quantity %d for variant %s", req.Qty, req.VariantID))
		}
	}

	results := make([]ReservationResult, 0, len(requests))
	for _, req := range requests {
		res := tx.WithContext(ctx).Exec(`
			UPDATE variants
			SET stock = stock - ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND stock >= ? AND deleted_at IS NULL
		`, req.Qty, req.VariantID, req.Qty)
		if res.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve stock")
		}
		result := ReservationResult{VariantID: req.VariantID, Reserved: res.RowsAffected > 0}
		if !result.Reserved {
			result.Reason = "insufficient stock"
		}
		results = append(results, result)
	}
	return results, nil
}

// Release returns qty units to the variant's stock.
func (ledger) Release(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock release")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE variants
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, variantID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release stock")
	}
	return nil
}
