package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/pkg/db"
	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/enums"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

const skuConstraint = "sku"

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	ProductRepo *Repository
}

// Service exposes business rules for catalog management.
type Service interface {
	ListProducts(ctx context.Context, filter ListFilter, cursor string, limit int) (ProductsPageDTO, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (ProductDetail, error)
	CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (ProductDetail, error)
	UpdateProduct(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID, input UpdateProductInput) (ProductDetail, error)
	DeleteProduct(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID) error
}

type service struct {
	productRepo *Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{productRepo: params.ProductRepo}, nil
}

// ListProducts returns the storefront catalog page.
func (s *service) ListProducts(ctx context.Context, filter ListFilter, cursor string, limit int) (ProductsPageDTO, error) {
	return s.productRepo.List(ctx, filter, cursor, limit)
}

// GetProduct loads the full product view.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (ProductDetail, error) {
	if productID == uuid.Nil {
		return ProductDetail{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return detailFromModel(product), nil
}

// CreateProduct validates and registers a new listing for the seller.
func (s *service) CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (ProductDetail, error) {
	if sellerID == uuid.Nil {
		return ProductDetail{}, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}

	category, err := enums.ParseProductCategory(input.Category)
	if err != nil {
		return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	sizes, err := parseSizes(category, input.Sizes)
	if err != nil {
		return ProductDetail{}, err
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return ProductDetail{}, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if len(input.Images) == 0 {
		return ProductDetail{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one image is required")
	}

	product := &models.Product{
		SellerID:    sellerID,
		Name:        input.Name,
		Description: input.Description,
		Category:    category,
		Price:       input.Price,
		SKU:         input.SKU,
		Stock:       input.Stock,
		Sizes:       sizes,
		Images:      input.Images,
		Rating:      decimal.Zero,
		IsActive:    true,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, skuConstraint) {
			return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "SKU already exists")
		}
		return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	return detailFromModel(product), nil
}

// UpdateProduct applies a partial update after an ownership check.
func (s *service) UpdateProduct(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID, input UpdateProductInput) (ProductDetail, error) {
	product, err := s.loadOwned(ctx, actorID, actorRole, productID)
	if err != nil {
		return ProductDetail{}, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		category, err := enums.ParseProductCategory(*input.Category)
		if err != nil {
			return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		product.Category = category
	}
	if input.Sizes != nil {
		sizes, err := parseSizes(product.Category, input.Sizes)
		if err != nil {
			return ProductDetail{}, err
		}
		product.Sizes = sizes
	}
	if input.Price != nil {
		if input.Price.LessThanOrEqual(decimal.Zero) {
			return ProductDetail{}, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		product.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return ProductDetail{}, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.Images != nil {
		if len(input.Images) == 0 {
			return ProductDetail{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one image is required")
		}
		product.Images = input.Images
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	return detailFromModel(product), nil
}

// DeleteProduct removes the listing after an ownership check.
func (s *service) DeleteProduct(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, actorID, actorRole, productID); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) loadOwned(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if actorRole != enums.UserRoleAdmin && product.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another seller")
	}
	return product, nil
}

func parseSizes(category enums.ProductCategory, raw []string) ([]enums.ProductSize, error) {
	sizes := make([]enums.ProductSize, 0, len(raw))
	for _, value := range raw {
		size, err := enums.ParseProductSize(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size")
		}
		if !size.AllowedForCategory(category) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size "+size.String()+" is not offered for category "+category.String())
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}
