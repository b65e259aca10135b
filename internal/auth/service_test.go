package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/castellanosdev/shopline-backend/internal/users"
	pkgauth "github.com/castellanosdev/shopline-backend/pkg/auth"
	"github.com/castellanosdev/shopline-backend/pkg/config"
	"github.com/castellanosdev/shopline-backend/pkg/db/models"
	"github.com/castellanosdev/shopline-backend/pkg/enums"
	pkgerrors "github.com/castellanosdev/shopline-backend/pkg/errors"
	"github.com/castellanosdev/shopline-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	byEmail   map[string]*models.User
	created   []users.CreateUserDTO
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: map[string]*models.User{}}
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, dto)
	user := dto.ToModel()
	user.ID = uuid.New()
	s.byEmail[dto.Email] = user
	return user, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "shopline-test",
		ExpirationMinutes: 15,
	}
}

func newTestService(t *testing.T, repo *stubUserRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:  repo,
		JWTConfig: testJWTConfig(),
	})
	require.NoError(t, err)
	return svc
}

func TestRegisterCreatesCustomer(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	svc := newTestService(t, repo)

	dto, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "  Shopper@Example.COM ",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "shopper@example.com", dto.Email)
	assert.Equal(t, enums.UserRoleCustomer, dto.Role)

	require.Len(t, repo.created, 1)
	valid, err := security.VerifyPassword("correct horse", repo.created[0].PasswordHash)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	svc := newTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "shopper@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "shopper@example.com", Password: "another pass"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestRegisterMapsUniqueViolationToConflict(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "idx_users_email"`)
	svc := newTestService(t, repo)

	// a concurrent registration can slip past the email pre-check and
	// land on the unique index instead
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "shopper@example.com", Password: "correct horse"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubUserRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "  ", Password: "correct horse"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "shopper@example.com", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestLoginMintsParsableToken(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "shopper@example.com", Password: "correct horse"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: "Shopper@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, enums.UserRoleCustomer, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "shopper@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "shopper@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = svc.Login(ctx, LoginRequest{Email: "unknown@example.com", Password: "correct horse"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}
