package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/internal/catalog"
	"github.com/vastralane/storefront-backend/pkg/config"
	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/enums"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	CartRepo    *Repository
	ProductRepo *catalog.Repository
	Checkout    config.CheckoutConfig
}

// Service exposes business rules for the server-side cart.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (CartDTO, error)
	Quote(ctx context.Context, userID uuid.UUID, promoCode string) (Quote, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (CartDTO, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (CartDTO, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	cartRepo    *Repository
	productRepo *catalog.Repository
	checkout    config.CheckoutConfig
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{
		cartRepo:    params.CartRepo,
		productRepo: params.ProductRepo,
		checkout:    params.Checkout,
	}, nil
}

// GetCart returns the cart with pricing computed from live product data.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (CartDTO, error) {
	if userID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}
	return s.buildCart(ctx, userID, "")
}

// Quote prices the current cart, optionally applying a promo code.
func (s *service) Quote(ctx context.Context, userID uuid.UUID, promoCode string) (Quote, error) {
	dto, err := s.buildCart(ctx, userID, promoCode)
	if err != nil {
		return Quote{}, err
	}
	return dto.Pricing, nil
}

// AddItem inserts a line or bumps the quantity of the matching (product, size).
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (CartDTO, error) {
	if userID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}
	if input.Quantity <= 0 {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.loadSellableProduct(ctx, input.ProductID)
	if err != nil {
		return CartDTO{}, err
	}

	size, err := resolveSize(product, input.Size)
	if err != nil {
		return CartDTO{}, err
	}

	existing, err := s.cartRepo.FindByProductAndSize(ctx, userID, product.ID, size)
	switch {
	case err == nil:
		newQuantity := existing.Quantity + input.Quantity
		if newQuantity > product.Stock {
			return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds available stock")
		}
		if err := s.cartRepo.UpdateQuantity(ctx, existing.ID, newQuantity); err != nil {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if input.Quantity > product.Stock {
			return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds available stock")
		}
		line := &models.CartItem{
			UserID:    userID,
			ProductID: product.ID,
			Size:      size,
			Quantity:  input.Quantity,
		}
		if err := s.cartRepo.Create(ctx, line); err != nil {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart line")
		}
	default:
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}

	return s.buildCart(ctx, userID, "")
}

// UpdateItem replaces the quantity on a line the buyer owns. Setting
// the quantity to zero removes the line.
func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (CartDTO, error) {
	if input.Quantity < 0 {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	line, err := s.cartRepo.FindLine(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart item not found")
		}
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if input.Quantity == 0 {
		if err := s.cartRepo.Delete(ctx, userID, line.ID); err != nil {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
		}
		return s.buildCart(ctx, userID, "")
	}
	if line.Product != nil && input.Quantity > line.Product.Stock {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds available stock")
	}

	if err := s.cartRepo.UpdateQuantity(ctx, line.ID, input.Quantity); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	return s.buildCart(ctx, userID, "")
}

// RemoveItem deletes a line the buyer owns.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (CartDTO, error) {
	if err := s.cartRepo.Delete(ctx, userID, itemID); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return s.buildCart(ctx, userID, "")
}

// Clear drops the whole cart.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) buildCart(ctx context.Context, userID uuid.UUID, promoCode string) (CartDTO, error) {
	lines, err := s.cartRepo.ListItems(ctx, userID)
	if err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	items := make([]CartItemDTO, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		dto := CartItemDTO{
			ID:        line.ID,
			ProductID: line.ProductID,
			Size:      line.Size,
			Quantity:  line.Quantity,
		}
		if line.Product != nil {
			dto.Name = line.Product.Name
			dto.UnitPrice = line.Product.Price
			dto.Stock = line.Product.Stock
			dto.IsAvailable = line.Product.IsActive && line.Product.Stock >= line.Quantity
			if len(line.Product.Images) > 0 {
				dto.ImageURL = line.Product.Images[0]
			}
			dto.LineTotal = line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(dto.LineTotal)
		}
		items = append(items, dto)
	}

	quote, err := ComputeQuote(s.checkout, subtotal, promoCode)
	if err != nil {
		return CartDTO{}, err
	}

	return CartDTO{Items: items, Pricing: quote}, nil
}

func (s *service) loadSellableProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
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
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is no longer available")
	}
	return product, nil
}

func resolveSize(product *models.Product, raw string) (enums.ProductSize, error) {
	if raw == "" {
		if len(product.Sizes) > 0 {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "size is required for this product")
		}
		return "", nil
	}
	size, err := enums.ParseProductSize(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size")
	}
	for _, offered := range product.Sizes {
		if offered == size {
			return size, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "size not offered for this product")
}
