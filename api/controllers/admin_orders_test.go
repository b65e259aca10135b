package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	ordersvc "github.com/castellanosdev/shopline-backend/internal/orders"
	"github.com/castellanosdev/shopline-backend/pkg/db/models"
	"github.com/castellanosdev/shopline-backend/pkg/enums"
	"github.com/castellanosdev/shopline-backend/pkg/pagination"
)

type stubOrderService struct {
	adminCreateFn  func(ctx context.Context, input ordersvc.AdminCreateInput) (*models.Order, error)
	adminListFn    func(ctx context.Context, includeDeleted bool, params pagination.Params) ([]models.Order, string, error)
	updateStatusFn func(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error)
}

func (s stubOrderService) Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (s stubOrderService) List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	panic("unimplemented")
}

func (s stubOrderService) Update(ctx context.Context, userID, orderID uuid.UUID, input ordersvc.UpdateInput) (*models.Order, error) {
	panic("unimplemented")
}

func (s stubOrderService) Delete(ctx context.Context, userID, orderID uuid.UUID) error {
	panic("unimplemented")
}

func (s stubOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, orderID, target)
	}
	return &models.Order{ID: orderID, Status: target}, nil
}

func (s stubOrderService) AdminList(ctx context.Context, includeDeleted bool, params pagination.Params) ([]models.Order, string, error) {
	if s.adminListFn != nil {
		return s.adminListFn(ctx, includeDeleted, params)
	}
	return nil, "", nil
}

func (s stubOrderService) AdminCreate(ctx context.Context, input ordersvc.AdminCreateInput) (*models.Order, error) {
	if s.adminCreateFn != nil {
		return s.adminCreateFn(ctx, input)
	}
	return &models.Order{}, nil
}

func TestAdminOrderCreateMapsPayload(t *testing.T) {
	userID := uuid.New()
	variantID := uuid.New()
	svc := stubOrderService{
		adminCreateFn: func(ctx context.Context, input ordersvc.AdminCreateInput) (*models.Order, error) {
			if input.UserID != userID {
				t.Fatalf("unexpected user %s", input.UserID)
			}
			if len(input.Selections) != 1 || input.Selections[0].VariantID != variantID || input.Selections[0].Quantity != 2 {
				t.Fatalf("unexpected selections %v", input.Selections)
			}
			if input.CouponCode == nil || *input.CouponCode != "10OFF" {
				t.Fatalf("unexpected coupon %v", input.CouponCode)
			}
			if input.Status != enums.OrderStatusProcessing {
				t.Fatalf("unexpected status %s", input.Status)
			}
			return &models.Order{
				ID:              uuid.New(),
				UserID:          userID,
				Status:          enums.OrderStatusProcessing,
				SubtotalCents:   2000,
				FinalTotalCents: 1800,
			}, nil
		},
	}

	body := `{"user_id":"` + userID.String() + `","variants":[{"variant_id":"` + variantID.String() + `","quantity":2}],"coupon_code":"10OFF","status":"processing"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AdminOrderCreate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data orderResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.FinalTotalCents != 1800 {
		t.Fatalf("unexpected final total %d", envelope.Data.FinalTotalCents)
	}
}

func TestAdminOrderCreateRejectsEmptyVariants(t *testing.T) {
	body := `{"user_id":"` + uuid.NewString() + `","variants":[]}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AdminOrderCreate(stubOrderService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminOrderCreateRejectsUnknownStatus(t *testing.T) {
	body := `{"user_id":"` + uuid.NewString() + `","variants":[{"variant_id":"` + uuid.NewString() + `","quantity":1}],"status":"shipped"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AdminOrderCreate(stubOrderService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminOrderListPassesIncludeDeleted(t *testing.T) {
	var gotInclude bool
	svc := stubOrderService{
		adminListFn: func(ctx context.Context, includeDeleted bool, params pagination.Params) ([]models.Order, string, error) {
			gotInclude = includeDeleted
			return []models.Order{{ID: uuid.New()}}, "cursor123", nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/?include_deleted=true", nil)
	resp := httptest.NewRecorder()
	AdminOrderList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !gotInclude {
		t.Fatal("expected include_deleted to reach the service")
	}
	var envelope struct {
		Data orderPageResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.NextCursor != "cursor123" {
		t.Fatalf("unexpected cursor %q", envelope.Data.NextCursor)
	}
}

func TestAdminOrderUpdateStatus(t *testing.T) {
	orderID := uuid.New()
	svc := stubOrderService{
		updateStatusFn: func(ctx context.Context, gotID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
			if gotID != orderID || target != enums.OrderStatusDelivered {
				t.Fatalf("unexpected args %s %s", gotID, target)
			}
			return &models.Order{ID: orderID, Status: target}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"delivered"}`))
	req = withParam(req, "orderId", orderID.String())
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AdminOrderUpdateStatus(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAdminOrderUpdateStatusRejectsUnknown(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"lost"}`))
	req = withParam(req, "orderId", uuid.NewString())
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AdminOrderUpdateStatus(stubOrderService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
