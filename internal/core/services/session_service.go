package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sourcehub/internal/core/domain"
	"sourcehub/internal/core/ports"
	"sourcehub/pkg/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	// ErrSessionQuery marks an infrastructure failure while checking the
	// current session, as opposed to a merely absent or invalid session.
	ErrSessionQuery = errors.New("session query failed")
	ErrAuthFailed   = errors.New("authentication failed")
)

type SessionService interface {
	// Bootstrap ensures the caller ends up with a valid session and a route
	// to continue at. See BootstrapResult.
	Bootstrap(ctx context.Context, token, returnTo string) (*BootstrapResult, error)
	ValidateSession(ctx context.Context, token string) (*SessionClaims, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	SignUp(ctx context.Context, email, password string) (*domain.Account, error)
}

type SessionClaims struct {
	AccountID domain.AccountID `json:"account_id"`
	Email     string           `json:"email"`
	jwt.RegisteredClaims
}

// BootstrapResult carries the session token (empty when an existing session
// was reused) and the route the caller should continue at.
type BootstrapResult struct {
	Token string
	Route string
}

// SessionConfig holds the credential material for the session service.
// The service account replaces per-user authentication: one fixed identity,
// created on demand.
type SessionConfig struct {
	JWTSecret           string
	SessionTTL          time.Duration
	ServiceAccountEmail string
	ServiceAccountPass  string
	DefaultRoute        string
}

type sessionService struct {
	accounts ports.AccountRepository
	notifier ports.Notifier
	cfg      SessionConfig
}

func NewSessionService(accounts ports.AccountRepository, notifier ports.Notifier, cfg SessionConfig) SessionService {
	return &sessionService{
		accounts: accounts,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Bootstrap runs a linear fallback chain: reuse the current session if one
// exists, otherwise sign in with the service account, otherwise create that
// account and retry the sign-in exactly once. Each failure transitions to
// exactly one alternate path; nothing is retried beyond the single retry.
func (s *sessionService) Bootstrap(ctx context.Context, token, returnTo string) (*BootstrapResult, error) {
	route := s.resolveRoute(returnTo)

	claims, err := s.querySession(ctx, token)
	if err != nil {
		s.notifier.Notify(ctx, ports.SeverityError, "Session check failed", "Could not verify the current session.")
		return nil, fmt.Errorf("%w: %v", ErrSessionQuery, err)
	}
	if claims != nil {
		return &BootstrapResult{Route: route}, nil
	}

	newToken, err := s.SignIn(ctx, s.cfg.ServiceAccountEmail, s.cfg.ServiceAccountPass)
	if err == nil {
		return &BootstrapResult{Token: newToken, Route: route}, nil
	}

	if _, err := s.SignUp(ctx, s.cfg.ServiceAccountEmail, s.cfg.ServiceAccountPass); err != nil {
		s.notifier.Notify(ctx, ports.SeverityError, "Authentication failed", "Could not create the service account.")
		return nil, fmt.Errorf("%w: sign-up: %v", ErrAuthFailed, err)
	}

	newToken, err = s.SignIn(ctx, s.cfg.ServiceAccountEmail, s.cfg.ServiceAccountPass)
	if err != nil {
		s.notifier.Notify(ctx, ports.SeverityError, "Authentication failed", "Sign-in failed after account creation.")
		return nil, fmt.Errorf("%w: retry sign-in: %v", ErrAuthFailed, err)
	}

	return &BootstrapResult{Token: newToken, Route: route}, nil
}

// querySession reports the current session's claims, (nil, nil) when no
// usable session is present, and an error only on infrastructure failure.
func (s *sessionService) querySession(ctx context.Context, token string) (*SessionClaims, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := s.parseToken(token)
	if err != nil {
		// An invalid or expired token is an absent session, not a failure.
		return nil, nil
	}

	_, err = s.accounts.GetByEmail(ctx, claims.Email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *sessionService) ValidateSession(ctx context.Context, token string) (*SessionClaims, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}

	_, err = s.accounts.GetByEmail(ctx, claims.Email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, domain.ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionQuery, err)
	}
	return claims, nil
}

func (s *sessionService) SignIn(ctx context.Context, email, password string) (string, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	return s.issueToken(account)
}

func (s *sessionService) SignUp(ctx context.Context, email, password string) (*domain.Account, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		ID:           domain.AccountID(uuid.New().String()),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *sessionService) issueToken(account *domain.Account) (string, error) {
	claims := &SessionClaims{
		AccountID: account.ID,
		Email:     account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *sessionService) parseToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// resolveRoute picks the route to continue at after bootstrap. An unusable
// return-to value falls back to the default route.
func (s *sessionService) resolveRoute(returnTo string) string {
	if validation.ValidateReturnTo(returnTo) {
		return returnTo
	}
	return s.cfg.DefaultRoute
}
