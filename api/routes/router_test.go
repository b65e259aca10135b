package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/castellanosdev/shopline-backend/internal/auth"
	"github.com/castellanosdev/shopline-backend/internal/coupons"
	"github.com/castellanosdev/shopline-backend/internal/orders"
	"github.com/castellanosdev/shopline-backend/internal/users"
	pkgauth "github.com/castellanosdev/shopline-backend/pkg/auth"
	"github.com/castellanosdev/shopline-backend/pkg/config"
	"github.com/castellanosdev/shopline-backend/pkg/db/models"
	"github.com/castellanosdev/shopline-backend/pkg/enums"
	"github.com/castellanosdev/shopline-backend/pkg/logger"
	"github.com/castellanosdev/shopline-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	return &users.UserDTO{ID: uuid.New(), Email: req.Email, Role: enums.UserRoleCustomer}, nil
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{AccessToken: "token"}, nil
}

type stubCartService struct{}

func (stubCartService) List(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	return []models.CartLine{}, nil
}

func (stubCartService) AddItem(ctx context.Context, userID, variantID uuid.UUID, qty int) (*models.CartLine, error) {
	panic("unimplemented")
}

func (stubCartService) UpdateItem(ctx context.Context, userID, lineID uuid.UUID, qty int) error {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) error {
	panic("unimplemented")
}

type stubCheckoutService struct{}

func (stubCheckoutService) Execute(ctx context.Context, userID uuid.UUID, variantIDs []uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubCheckoutService) MoveToCart(ctx context.Context, userID, orderID uuid.UUID) error {
	panic("unimplemented")
}

type stubCouponService struct{}

func (stubCouponService) Apply(ctx context.Context, userID, orderID uuid.UUID, code string) (*models.Order, error) {
	panic("unimplemented")
}

func (stubCouponService) Remove(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubCouponService) Recommend(ctx context.Context, userID, orderID uuid.UUID) ([]coupons.Recommendation, error) {
	panic("unimplemented")
}

func (stubCouponService) Upsert(ctx context.Context, input coupons.UpsertInput) (*models.Coupon, error) {
	panic("unimplemented")
}

type stubOrdersService struct {
	list func(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
}

func (s stubOrdersService) Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (s stubOrdersService) List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	if s.list != nil {
		return s.list(ctx, userID, params)
	}
	return []models.Order{}, "", nil
}

func (s stubOrdersService) Update(ctx context.Context, userID, orderID uuid.UUID, input orders.UpdateInput) (*models.Order, error) {
	panic("unimplemented")
}

func (s stubOrdersService) Delete(ctx context.Context, userID, orderID uuid.UUID) error {
	panic("unimplemented")
}

func (s stubOrdersService) UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	panic("unimplemented")
}

func (s stubOrdersService) AdminList(ctx context.Context, includeDeleted bool, params pagination.Params) ([]models.Order, string, error) {
	return []models.Order{}, "", nil
}

func (s stubOrdersService) AdminCreate(ctx context.Context, input orders.AdminCreateInput) (*models.Order, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil,
		nil,
		stubAuthService{},
		stubCartService{},
		stubCheckoutService{},
		stubCouponService{},
		stubOrdersService{},
	)
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for cart list got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders/", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders/", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestOrderListPassesPagination(t *testing.T) {
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	var gotLimit int
	svc := stubOrdersService{
		list: func(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
			gotLimit = params.Limit
			return []models.Order{}, "", nil
		},
	}
	router := NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil,
		nil,
		stubAuthService{},
		stubCartService{},
		stubCheckoutService{},
		stubCouponService{},
		svc,
	)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/?limit=5", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for order list got %d", resp.Code)
	}
	if gotLimit != 5 {
		t.Fatalf("expected limit 5 got %d", gotLimit)
	}
}

func TestAuthRoutesArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/auth/v1/login", nil)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code == http.StatusUnauthorized {
		t.Fatalf("login should not require a token, got %d", resp.Code)
	}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
