// Package service provides the business logic layer (use cases).
// Services orchestrate the domain calculators against the storage ports
// and emit notifications and metrics as side effects.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

const (
	bcryptCost        = 12
	minPasswordLength = 8
)

// AuthService orchestrates registration, login and token rotation.
type AuthService struct {
	store      port.Store
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store port.Store, jwtSecret string, accessTTL, refreshTTL time.Duration, metrics *observability.Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:      store,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		metrics:    metrics,
		logger:     logger,
	}
}

// ============================================================
// Register — POST /v1/auth/register
// ============================================================

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, &domain.ErrValidation{Field: "email", Message: "valid email is required"}
	}
	if len(req.Password) < minPasswordLength {
		return nil, &domain.ErrValidation{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// The unique index on email is the authoritative duplicate guard.
	user, err := s.store.CreateUser(ctx, &domain.User{
		Email:    email,
		Name:     strings.TrimSpace(req.Name),
		Password: string(hash),
	})
	if err != nil {
		var dup *domain.ErrDuplicate
		if errors.As(err, &dup) {
			return nil, &domain.ErrConflict{Message: "email already registered"}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)

	return s.issueTokens(ctx, user)
}

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			s.metrics.IncrLogin("failure")
			return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.metrics.IncrLogin("failure")
		s.logger.Warn("login: failed password attempt", zap.String("user_id", user.ID))
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	s.metrics.IncrLogin("success")
	return s.issueTokens(ctx, user)
}

// ============================================================
// ChangePassword — PUT /v1/auth/password
// ============================================================

// ChangePassword verifies the current password, replaces the hash, and
// revokes every refresh token so other sessions must log in again.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	if len(req.NewPassword) < minPasswordLength {
		return &domain.ErrValidation{Field: "newPassword", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return &domain.ErrUnauthorized{Message: "current password is incorrect"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.store.RevokeAllRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}
