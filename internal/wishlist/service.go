package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/internal/catalog"
	dbpkg "github.com/vastralane/storefront-backend/pkg/db"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

const wishlistConstraint = "user_product"

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo *Repository
	ProductRepo  *catalog.Repository
}

// Service exposes business rules for wishlist management.
type Service interface {
	GetWishlist(ctx context.Context, userID uuid.UUID, cursor string, limit int) (WishlistPageDTO, error)
	GetWishlistIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
}

type service struct {
	wishlistRepo *Repository
	productRepo  *catalog.Repository
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{
		wishlistRepo: params.WishlistRepo,
		productRepo:  params.ProductRepo,
	}, nil
}

// GetWishlist returns the paginated wishlist for a buyer.
func (s *service) GetWishlist(ctx context.Context, userID uuid.UUID, cursor string, limit int) (WishlistPageDTO, error) {
	if userID == uuid.Nil {
		return WishlistPageDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}
	return s.wishlistRepo.ListItems(ctx, userID, cursor, limit)
}

// GetWishlistIDs returns all wishlisted product IDs for the buyer.
func (s *service) GetWishlistIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}
	ids, err := s.wishlistRepo.ListItemIDs(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}
	return ids, nil
}

// AddItem ensures the product exists and adds it to the wishlist once.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.wishlistRepo.AddItem(ctx, userID, productID); err != nil {
		if dbpkg.IsUniqueViolation(err, wishlistConstraint) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "Product already in wishlist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	return nil
}

// RemoveItem drops the wishlist entry regardless of prior state.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}
	if err := s.wishlistRepo.RemoveItem(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return nil
}
