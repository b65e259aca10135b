package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/castellanosdev/shopline-backend/api/middleware"
	"github.com/castellanosdev/shopline-backend/pkg/db/models"
)

type stubCartService struct {
	listFn   func(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	addFn    func(ctx context.Context, userID, variantID uuid.UUID, qty int) (*models.CartLine, error)
	updateFn func(ctx context.Context, userID, lineID uuid.UUID, qty int) error
	removeFn func(ctx context.Context, userID, lineID uuid.UUID) error
}

func (s stubCartService) List(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	if s.listFn != nil {
		return s.listFn(ctx, userID)
	}
	return nil, nil
}

func (s stubCartService) AddItem(ctx context.Context, userID, variantID uuid.UUID, qty int) (*models.CartLine, error) {
	if s.addFn != nil {
		return s.addFn(ctx, userID, variantID, qty)
	}
	return &models.CartLine{}, nil
}

func (s stubCartService) UpdateItem(ctx context.Context, userID, lineID uuid.UUID, qty int) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, userID, lineID, qty)
	}
	return nil
}

func (s stubCartService) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) error {
	if s.removeFn != nil {
		return s.removeFn(ctx, userID, lineID)
	}
	return nil
}

func withUser(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithUserID(r.Context(), userID.String()))
}

func withParam(r *http.Request, name string, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(name, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCartListReturnsLines(t *testing.T) {
	userID := uuid.New()
	variantID := uuid.New()
	svc := stubCartService{
		listFn: func(ctx context.Context, gotUser uuid.UUID) ([]models.CartLine, error) {
			if gotUser != userID {
				t.Fatalf("unexpected user %s", gotUser)
			}
			return []models.CartLine{{
				ID:        uuid.New(),
				UserID:    userID,
				VariantID: variantID,
				Quantity:  2,
				Variant:   &models.Variant{ID: variantID, SKU: "TEE-M", PriceCents: 1000},
			}}, nil
		},
	}

	handler := CartList(svc, nil)
	req := withUser(httptest.NewRequest(http.MethodGet, "/", nil), userID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data []cartLineResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].VariantID != variantID {
		t.Fatalf("unexpected payload %v", envelope.Data)
	}
	if envelope.Data[0].Variant == nil || envelope.Data[0].Variant.SKU != "TEE-M" {
		t.Fatalf("expected variant snapshot in response")
	}
}

func TestCartListRequiresUser(t *testing.T) {
	handler := CartList(stubCartService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddCreatesLine(t *testing.T) {
	userID := uuid.New()
	variantID := uuid.New()
	svc := stubCartService{
		addFn: func(ctx context.Context, gotUser, gotVariant uuid.UUID, qty int) (*models.CartLine, error) {
			if gotUser != userID || gotVariant != variantID || qty != 3 {
				t.Fatalf("unexpected args %s %s %d", gotUser, gotVariant, qty)
			}
			return &models.CartLine{ID: uuid.New(), VariantID: variantID, Quantity: 3}, nil
		},
	}

	body := `{"variant_id":"` + variantID.String() + `","quantity":3}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), userID)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	CartAdd(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestCartAddRejectsZeroQuantity(t *testing.T) {
	userID := uuid.New()
	body := `{"variant_id":"` + uuid.NewString() + `","quantity":0}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), userID)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	CartAdd(stubCartService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartUpdateChangesQuantity(t *testing.T) {
	userID := uuid.New()
	lineID := uuid.New()
	called := false
	svc := stubCartService{
		updateFn: func(ctx context.Context, gotUser, gotLine uuid.UUID, qty int) error {
			called = true
			if gotLine != lineID || qty != 5 {
				t.Fatalf("unexpected args %s %d", gotLine, qty)
			}
			return nil
		},
	}

	req := withUser(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"quantity":5}`)), userID)
	req = withParam(req, "lineId", lineID.String())
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	CartUpdate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !called {
		t.Fatal("expected UpdateItem to be called")
	}
}

func TestCartUpdateRejectsBadLineID(t *testing.T) {
	userID := uuid.New()
	req := withUser(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"quantity":5}`)), userID)
	req = withParam(req, "lineId", "not-a-uuid")
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	CartUpdate(stubCartService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartRemoveReturnsNoContent(t *testing.T) {
	userID := uuid.New()
	lineID := uuid.New()
	req := withUser(httptest.NewRequest(http.MethodDelete, "/", nil), userID)
	req = withParam(req, "lineId", lineID.String())
	resp := httptest.NewRecorder()
	CartRemove(stubCartService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
}
