package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/enums"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

// ServiceParams groups dependencies for the account management service.
type ServiceParams struct {
	UserRepo *Repository
}

// Service exposes admin account management.
type Service interface {
	ListUsers(ctx context.Context, cursor string, limit int) (UsersPageDTO, error)
	UpdateRole(ctx context.Context, userID uuid.UUID, input UpdateRoleInput) (UserDTO, error)
	SetActive(ctx context.Context, userID uuid.UUID, active bool) (UserDTO, error)
	DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error
}

type service struct {
	userRepo *Repository
}

// NewService builds an account management service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	return &service{userRepo: params.UserRepo}, nil
}

// ListUsers returns the paginated account directory.
func (s *service) ListUsers(ctx context.Context, cursor string, limit int) (UsersPageDTO, error) {
	return s.userRepo.List(ctx, cursor, limit)
}

// UpdateRole changes an account's role to one of the known values.
func (s *service) UpdateRole(ctx context.Context, userID uuid.UUID, input UpdateRoleInput) (UserDTO, error) {
	role, err := enums.ParseUserRole(input.Role)
	if err != nil {
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}

	user.Role = role
	if err := s.userRepo.Save(ctx, user); err != nil {
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}

	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}, nil
}

// SetActive enables or disables an account.
func (s *service) SetActive(ctx context.Context, userID uuid.UUID, active bool) (UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}

	user.IsActive = active
	if err := s.userRepo.Save(ctx, user); err != nil {
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update account status")
	}

	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}, nil
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (s *service) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if actorID == userID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete your own account")
	}
	if _, err := s.load(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	found, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return found, nil
}
