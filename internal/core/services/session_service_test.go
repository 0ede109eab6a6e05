package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"sourcehub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func testSessionConfig() SessionConfig {
	return SessionConfig{
		JWTSecret:           "test-secret",
		SessionTTL:          time.Hour,
		ServiceAccountEmail: "service@example.com",
		ServiceAccountPass:  "service-password",
		DefaultRoute:        "/",
	}
}

func newTestSessionService(t *testing.T) (*sessionService, *MockAccountRepository, *MockNotifier) {
	t.Helper()

	accounts := new(MockAccountRepository)
	notifier := new(MockNotifier)
	svc := NewSessionService(accounts, notifier, testSessionConfig()).(*sessionService)
	return svc, accounts, notifier
}

func serviceAccount(t *testing.T) *domain.Account {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("service-password"), bcrypt.MinCost)
	require.NoError(t, err)

	return &domain.Account{
		ID:           "svc-account-id",
		Email:        "service@example.com",
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
}

func TestBootstrap_ExistingSessionReused(t *testing.T) {
	svc, accounts, _ := newTestSessionService(t)

	account := serviceAccount(t)
	token, err := svc.issueToken(account)
	require.NoError(t, err)

	accounts.On("GetByEmail", mock.Anything, account.Email).Return(account, nil)

	result, err := svc.Bootstrap(context.Background(), token, "/sources")

	assert.NoError(t, err)
	assert.Empty(t, result.Token, "an existing session should be reused, not replaced")
	assert.Equal(t, "/sources", result.Route)

	// No credential exchange should have happened.
	accounts.AssertNumberOfCalls(t, "GetByEmail", 1)
	accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBootstrap_NoTokenSignsIn(t *testing.T) {
	svc, accounts, _ := newTestSessionService(t)

	account := serviceAccount(t)
	accounts.On("GetByEmail", mock.Anything, account.Email).Return(account, nil)

	result, err := svc.Bootstrap(context.Background(), "", "/sources")

	assert.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "/sources", result.Route)

	claims, err := svc.parseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
}

func TestBootstrap_InvalidTokenTreatedAsAbsent(t *testing.T) {
	svc, accounts, _ := newTestSessionService(t)

	account := serviceAccount(t)
	accounts.On("GetByEmail", mock.Anything, account.Email).Return(account, nil)

	result, err := svc.Bootstrap(context.Background(), "not-a-jwt", "/sources")

	assert.NoError(t, err)
	assert.NotEmpty(t, result.Token, "invalid token should fall through to sign-in")
}

func TestBootstrap_SignUpThenRetrySignIn(t *testing.T) {
	svc, accounts, _ := newTestSessionService(t)

	// First lookup: account does not exist yet. After Create, it does.
	accounts.On("GetByEmail", mock.Anything, "service@example.com").Return(nil, domain.ErrAccountNotFound).Once()
	accounts.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).Return(nil).Once()
	accounts.On("GetByEmail", mock.Anything, "service@example.com").Return(serviceAccount(t), nil).Once()

	result, err := svc.Bootstrap(context.Background(), "", "/sources")

	assert.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	accounts.AssertCalled(t, "Create", mock.Anything, mock.AnythingOfType("*domain.Account"))
}

func TestBootstrap_RetrySignInFailureStopsChain(t *testing.T) {
	svc, accounts, notifier := newTestSessionService(t)

	// The account is created, but the retried sign-in still fails its
	// credential check. The chain must stop with AuthFailed, not loop.
	stale := serviceAccount(t)
	wrongHash, err := bcrypt.GenerateFromPassword([]byte("a-different-password"), bcrypt.MinCost)
	require.NoError(t, err)
	stale.PasswordHash = string(wrongHash)

	accounts.On("GetByEmail", mock.Anything, "service@example.com").Return(nil, domain.ErrAccountNotFound).Once()
	accounts.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).Return(nil).Once()
	accounts.On("GetByEmail", mock.Anything, "service@example.com").Return(stale, nil).Once()
	notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	result, err := svc.Bootstrap(context.Background(), "", "/sources")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAuthFailed)
	notifier.AssertCalled(t, "Notify", mock.Anything, mock.Anything, "Authentication failed", "Sign-in failed after account creation.")
	accounts.AssertNumberOfCalls(t, "GetByEmail", 2)
}

func TestBootstrap_SignUpFailureStopsChain(t *testing.T) {
	svc, accounts, notifier := newTestSessionService(t)

	accounts.On("GetByEmail", mock.Anything, "service@example.com").Return(nil, domain.ErrAccountNotFound)
	accounts.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).Return(errors.New("store offline"))
	notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	result, err := svc.Bootstrap(context.Background(), "", "/sources")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAuthFailed)
	notifier.AssertCalled(t, "Notify", mock.Anything, mock.Anything, "Authentication failed", mock.Anything)
}

func TestBootstrap_SessionQueryInfraFailure(t *testing.T) {
	svc, accounts, notifier := newTestSessionService(t)

	account := serviceAccount(t)
	token, err := svc.issueToken(account)
	require.NoError(t, err)

	accounts.On("GetByEmail", mock.Anything, account.Email).Return(nil, errors.New("connection refused"))
	notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	result, err := svc.Bootstrap(context.Background(), token, "/sources")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrSessionQuery)
	notifier.AssertCalled(t, "Notify", mock.Anything, mock.Anything, "Session check failed", mock.Anything)
}

func TestBootstrap_RouteFallsBackToDefault(t *testing.T) {
	svc, accounts, _ := newTestSessionService(t)

	account := serviceAccount(t)
	accounts.On("GetByEmail", mock.Anything, account.Email).Return(account, nil)

	for _, returnTo := range []string{"", "//evil.example.com", "relative/path", "/ok\r\nSet-Cookie: x"} {
		result, err := svc.Bootstrap(context.Background(), "", returnTo)
		require.NoError(t, err, "return_to=%q", returnTo)
		assert.Equal(t, "/", result.Route, "return_to=%q", returnTo)
	}
}

func TestValidateSession(t *testing.T) {
	svc, accounts, _ := newTestSessionService(t)

	account := serviceAccount(t)
	token, err := svc.issueToken(account)
	require.NoError(t, err)

	accounts.On("GetByEmail", mock.Anything, account.Email).Return(account, nil)

	claims, err := svc.ValidateSession(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, account.Email, claims.Email)
}

func TestValidateSession_AccountGone(t *testing.T) {
	svc, accounts, _ := newTestSessionService(t)

	account := serviceAccount(t)
	token, err := svc.issueToken(account)
	require.NoError(t, err)

	accounts.On("GetByEmail", mock.Anything, account.Email).Return(nil, domain.ErrAccountNotFound)

	_, err = svc.ValidateSession(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestValidateSession_BadToken(t *testing.T) {
	svc, _, _ := newTestSessionService(t)

	_, err := svc.ValidateSession(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignIn_WrongPassword(t *testing.T) {
	svc, accounts, _ := newTestSessionService(t)

	account := serviceAccount(t)
	accounts.On("GetByEmail", mock.Anything, account.Email).Return(account, nil)

	_, err := svc.SignIn(context.Background(), account.Email, "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSignUp_RejectsInvalidEmail(t *testing.T) {
	svc, accounts, _ := newTestSessionService(t)

	_, err := svc.SignUp(context.Background(), "not-an-email", "password123")
	assert.Error(t, err)
	accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
