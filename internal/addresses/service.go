package addresses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/pkg/config"
	"github.com/vastralane/storefront-backend/pkg/db"
	"github.com/vastralane/storefront-backend/pkg/db/models"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

// ServiceParams groups dependencies for the address-book service.
type ServiceParams struct {
	AddressRepo *Repository
	DB          *db.Client
	Policy      config.AddressConfig
}

// Service exposes business rules for the buyer address book.
type Service interface {
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error)
	CreateAddress(ctx context.Context, userID uuid.UUID, input CreateAddressInput) (AddressDTO, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input UpdateAddressInput) (AddressDTO, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) (AddressDTO, error)
}

type service struct {
	addressRepo *Repository
	dbClient    *db.Client
	policy      config.AddressConfig
}

// NewService builds an address-book service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.AddressRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address repo is required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	return &service{
		addressRepo: params.AddressRepo,
		dbClient:    params.DB,
		policy:      params.Policy,
	}, nil
}

// ListAddresses returns the buyer's address book.
func (s *service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}
	records, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addresses")
	}
	items := make([]AddressDTO, 0, len(records))
	for _, record := range records {
		items = append(items, dtoFromModel(&record))
	}
	return items, nil
}

// CreateAddress saves a new address. The first saved address always becomes
// the default; an explicit default demotes the previous one atomically.
func (s *service) CreateAddress(ctx context.Context, userID uuid.UUID, input CreateAddressInput) (AddressDTO, error) {
	if userID == uuid.Nil {
		return AddressDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}

	record := &models.Address{
		UserID:       userID,
		Name:         input.Name,
		FullName:     input.FullName,
		Phone:        input.Phone,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		PinCode:      input.PinCode,
		IsDefault:    input.IsDefault,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.addressRepo.WithTx(tx)

		existing, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			record.IsDefault = true
		} else if record.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		return repo.Create(ctx, record)
	})
	if err != nil {
		return AddressDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}

	return dtoFromModel(record), nil
}

// UpdateAddress applies a partial update after an ownership check.
func (s *service) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input UpdateAddressInput) (AddressDTO, error) {
	var updated models.Address

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.addressRepo.WithTx(tx)

		record, err := repo.FindOwned(ctx, userID, addressID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			record.Name = *input.Name
		}
		if input.FullName != nil {
			record.FullName = *input.FullName
		}
		if input.Phone != nil {
			record.Phone = *input.Phone
		}
		if input.AddressLine1 != nil {
			record.AddressLine1 = *input.AddressLine1
		}
		if input.AddressLine2 != nil {
			record.AddressLine2 = *input.AddressLine2
		}
		if input.City != nil {
			record.City = *input.City
		}
		if input.State != nil {
			record.State = *input.State
		}
		if input.PinCode != nil {
			record.PinCode = *input.PinCode
		}
		if input.IsDefault != nil && *input.IsDefault && !record.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
			record.IsDefault = true
		}

		if err := repo.Save(ctx, record); err != nil {
			return err
		}
		updated = *record
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AddressDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "address not found")
		}
		return AddressDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}

	return dtoFromModel(&updated), nil
}

// DeleteAddress removes an address. Deleting the default either promotes the
// most recent remaining address or leaves the book without a default,
// depending on policy.
func (s *service) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.addressRepo.WithTx(tx)

		record, err := repo.FindOwned(ctx, userID, addressID)
		if err != nil {
			return err
		}
		wasDefault := record.IsDefault

		if err := repo.Delete(ctx, userID, addressID); err != nil {
			return err
		}

		if wasDefault && s.policy.PromoteDefaultOnDelete {
			next, err := repo.MostRecent(ctx, userID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			next.IsDefault = true
			return repo.Save(ctx, next)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "address not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	return nil
}

// SetDefault flips the default flag to the provided address atomically.
func (s *service) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (AddressDTO, error) {
	var updated models.Address

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.addressRepo.WithTx(tx)

		record, err := repo.FindOwned(ctx, userID, addressID)
		if err != nil {
			return err
		}
		if record.IsDefault {
			updated = *record
			return nil
		}
		if err := repo.ClearDefault(ctx, userID); err != nil {
			return err
		}
		record.IsDefault = true
		if err := repo.Save(ctx, record); err != nil {
			return err
		}
		updated = *record
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AddressDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "address not found")
		}
		return AddressDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default address")
	}

	return dtoFromModel(&updated), nil
}

func dtoFromModel(record *models.Address) AddressDTO {
	return AddressDTO{
		ID:           record.ID,
		Name:         record.Name,
		FullName:     record.FullName,
		Phone:        record.Phone,
		AddressLine1: record.AddressLine1,
		AddressLine2: record.AddressLine2,
		City:         record.City,
		State:        record.State,
		PinCode:      record.PinCode,
		IsDefault:    record.IsDefault,
		CreatedAt:    record.CreatedAt,
	}
}
