package cart

import (
	"context"
	"fmt"

	"github.com/castellanosdev/shopline-backend/internal/catalog"
	"github.com/castellanosdev/shopline-backend/pkg/db/models"
	pkgerrors "github.com/castellanosdev/shopline-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxLineQuantity caps how many units a single cart line can hold.
const MaxLineQuantity = 99

// Service exposes cart operations for the storefront.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	AddItem(ctx context.Context, userID, variantID uuid.UUID, qty int) (*models.CartLine, error)
	UpdateItem(ctx context.Context, userID, lineID uuid.UUID, qty int) error
	RemoveItem(ctx context.Context, userID, lineID uuid.UUID) error
}

type service struct {
	repo     Repository
	variants catalog.VariantRepository
}

// NewService builds the cart service.
func NewService(repo Repository, variants catalog.VariantRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	return &service{repo: repo, variants: variants}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	lines, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}
	return lines, nil
}

func (s *service) AddItem(ctx context.Context, userID, variantID uuid.UUID, qty int) (*models.CartLine, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id required")
	}
	if qty <= 0 || qty > MaxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", MaxLineQuantity))
	}

	variant, err := s.variants.FindByID(ctx, variantID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if variant.Stock <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "variant is out of stock")
	}

	line, err := s.repo.MergeLine(ctx, userID, variantID, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart line")
	}
	if line.Quantity > MaxLineQuantity {
		if err := s.repo.UpdateQuantity(ctx, userID, line.ID, MaxLineQuantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clamp cart line quantity")
		}
		line.Quantity = MaxLineQuantity
	}
	return line, nil
}

func (s *service) UpdateItem(ctx context.Context, userID, lineID uuid.UUID, qty int) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if lineID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart line id required")
	}
	if qty <= 0 || qty > MaxLineQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", MaxLineQuantity))
	}

	if err := s.repo.UpdateQuantity(ctx, userID, lineID, qty); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if lineID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart line id required")
	}

	if err := s.repo.DeleteLine(ctx, userID, lineID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
	}
	return nil
}
