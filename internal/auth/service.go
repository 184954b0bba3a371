package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/internal/users"
	pkgauth "github.com/vastralane/storefront-backend/pkg/auth"
	"github.com/vastralane/storefront-backend/pkg/auth/session"
	"github.com/vastralane/storefront-backend/pkg/config"
	"github.com/vastralane/storefront-backend/pkg/db"
	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/enums"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
	"github.com/vastralane/storefront-backend/pkg/security"
)

const emailConstraint = "email"

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	UserRepo *users.Repository
	Sessions *session.Manager
	JWT      config.JWTConfig
	Password config.PasswordConfig
}

// Service exposes account registration and session lifecycle.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (SessionDTO, error)
	Login(ctx context.Context, input LoginInput) (SessionDTO, error)
	Refresh(ctx context.Context, input RefreshInput) (SessionDTO, error)
	Logout(ctx context.Context, accessID string) error
	Me(ctx context.Context, userID uuid.UUID) (AuthUserDTO, error)
}

type service struct {
	userRepo *users.Repository
	sessions *session.Manager
	jwt      config.JWTConfig
	password config.PasswordConfig
}

// NewService builds an auth service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "jwt config is required")
	}
	return &service{
		userRepo: params.UserRepo,
		sessions: params.Sessions,
		jwt:      params.JWT,
		password: params.Password,
	}, nil
}

// Register creates a customer account and opens a session.
func (s *service) Register(ctx context.Context, input RegisterInput) (SessionDTO, error) {
	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "hash password")
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, emailConstraint) {
			return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.openSession(ctx, user)
}

// Login verifies credentials and opens a session.
func (s *service) Login(ctx context.Context, input LoginInput) (SessionDTO, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SessionDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if !user.IsActive {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "account is disabled")
	}

	return s.openSession(ctx, user)
}

// Refresh rotates the session tied to an expired access token.
func (s *service) Refresh(ctx context.Context, input RefreshInput) (SessionDTO, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwt, input.AccessToken)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, input.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
		}
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "account no longer exists")
	}
	if !user.IsActive {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "account is disabled")
	}

	access, err := pkgauth.MintAccessToken(s.jwt, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return SessionDTO{
		User:         userDTO(user),
		AccessToken:  access,
		RefreshToken: newRefresh,
	}, nil
}

// Logout revokes the session for the provided access ID.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// Me returns the authenticated account's profile.
func (s *service) Me(ctx context.Context, userID uuid.UUID) (AuthUserDTO, error) {
	if userID == uuid.Nil {
		return AuthUserDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthUserDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return AuthUserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return userDTO(user), nil
}

func (s *service) openSession(ctx context.Context, user *models.User) (SessionDTO, error) {
	accessID := session.NewAccessID()
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session")
	}

	access, err := pkgauth.MintAccessToken(s.jwt, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return SessionDTO{
		User:         userDTO(user),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func userDTO(user *models.User) AuthUserDTO {
	return AuthUserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
