package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/internal/addresses"
	"github.com/vastralane/storefront-backend/internal/cart"
	"github.com/vastralane/storefront-backend/internal/catalog"
	"github.com/vastralane/storefront-backend/pkg/config"
	dbpkg "github.com/vastralane/storefront-backend/pkg/db"
	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/enums"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
	redispkg "github.com/vastralane/storefront-backend/pkg/redis"
	"github.com/vastralane/storefront-backend/pkg/types"
)

const (
	checkoutScope       = "checkout"
	checkoutPendingMark = "pending"
	idempotencyTTL      = 24 * time.Hour
)

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	OrderRepo   *Repository
	CartRepo    *cart.Repository
	ProductRepo *catalog.Repository
	AddressRepo *addresses.Repository
	DB          *dbpkg.Client
	Idempotency redispkg.IdempotencyStore
	Checkout    config.CheckoutConfig
}

// Service exposes business rules for checkout and order management.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, idempotencyKey string, input CheckoutInput) (OrderDTO, error)
	GetOrder(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (OrderDTO, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID, cursor string, limit int) (OrdersPageDTO, error)
	ListOrders(ctx context.Context, filter ListFilter, cursor string, limit int) (OrdersPageDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (OrderDTO, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (OrderDTO, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	orderRepo   *Repository
	cartRepo    *cart.Repository
	productRepo *catalog.Repository
	addressRepo *addresses.Repository
	dbClient    *dbpkg.Client
	idempotency redispkg.IdempotencyStore
	checkoutCfg config.CheckoutConfig
	now         func() time.Time
}

// NewService builds an order service with the required dependencies. The
// idempotency store is optional; without it checkout replay is disabled.
func NewService(params ServiceParams) (Service, error) {
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.CartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.AddressRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address repo is required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	return &service{
		orderRepo:   params.OrderRepo,
		cartRepo:    params.CartRepo,
		productRepo: params.ProductRepo,
		addressRepo: params.AddressRepo,
		dbClient:    params.DB,
		idempotency: params.Idempotency,
		checkoutCfg: params.Checkout,
		now:         time.Now,
	}, nil
}

// Checkout places an order from the buyer's cart in one transaction:
// prices the cart server-side, snapshots the shipping address and lines,
// reserves stock, and clears the cart. An Idempotency-Key makes retries
// return the original order instead of placing a duplicate.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, idempotencyKey string, input CheckoutInput) (OrderDTO, error) {
	if userID == uuid.Nil {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}

	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	storageKey, replay, err := s.claimIdempotencyKey(ctx, userID, idempotencyKey)
	if err != nil {
		return OrderDTO{}, err
	}
	if replay != nil {
		return *replay, nil
	}

	shippingAddress, err := s.resolveShippingAddress(ctx, userID, input)
	if err != nil {
		s.releaseIdempotencyKey(ctx, storageKey)
		return OrderDTO{}, err
	}

	order := &models.Order{
		UserID:          userID,
		Status:          enums.OrderStatusProcessing,
		PaymentMethod:   method,
		PaymentStatus:   enums.PaymentStatusPending,
		ShippingAddress: shippingAddress,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		cartItems, err := cartRepo.ListItems(ctx, userID)
		if err != nil {
			return err
		}
		lines, subtotal, err := BuildOrderLines(cartItems)
		if err != nil {
			return err
		}
		quote, err := cart.ComputeQuote(s.checkoutCfg, subtotal, input.PromoCode)
		if err != nil {
			return err
		}

		for _, line := range lines {
			if err := productRepo.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for "+line.Name)
				}
				return err
			}
		}

		order.Subtotal = quote.Subtotal
		order.ShippingFee = quote.ShippingFee
		order.Discount = quote.Discount
		order.Total = quote.Total
		order.Items = lines

		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		return cartRepo.Clear(ctx, userID)
	})
	if err != nil {
		s.releaseIdempotencyKey(ctx, storageKey)
		if typed := pkgerrors.As(err); typed != nil {
			return OrderDTO{}, err
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	s.recordIdempotentResult(ctx, storageKey, order.ID)
	return dtoFromModel(order), nil
}

// GetOrder loads one order. Buyers see their own orders; admins see any.
func (s *service) GetOrder(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (OrderDTO, error) {
	var (
		order *models.Order
		err   error
	)
	if actorRole == enums.UserRoleAdmin {
		order, err = s.orderRepo.FindByID(ctx, orderID)
	} else {
		order, err = s.orderRepo.FindOwned(ctx, actorID, orderID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return dtoFromModel(order), nil
}

// ListMyOrders returns the buyer's orders, newest first.
func (s *service) ListMyOrders(ctx context.Context, userID uuid.UUID, cursor string, limit int) (OrdersPageDTO, error) {
	if userID == uuid.Nil {
		return OrdersPageDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}
	return s.orderRepo.List(ctx, ListFilter{UserID: &userID}, cursor, limit)
}

// ListOrders returns a filtered admin listing across all buyers.
func (s *service) ListOrders(ctx context.Context, filter ListFilter, cursor string, limit int) (OrdersPageDTO, error) {
	return s.orderRepo.List(ctx, filter, cursor, limit)
}

// UpdateStatus advances an order through the fulfillment state machine.
// Cancelling returns reserved stock.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (OrderDTO, error) {
	next, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
	}

	var updated models.Order
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		order, err := orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := ApplyTransition(order, next, s.now()); err != nil {
			return err
		}
		if next == enums.OrderStatusCancelled {
			if err := restoreOrderStock(ctx, productRepo, order.Items); err != nil {
				return err
			}
		}
		if err := orderRepo.Save(ctx, order); err != nil {
			return err
		}
		updated = *order
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return OrderDTO{}, err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	return dtoFromModel(&updated), nil
}

// CancelOrder lets a buyer cancel their own order before fulfillment
// starts. Reserved stock is returned.
func (s *service) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (OrderDTO, error) {
	if userID == uuid.Nil {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}

	var updated models.Order
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		order, err := orderRepo.FindOwned(ctx, userID, orderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusProcessing {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
		}
		if err := ApplyTransition(order, enums.OrderStatusCancelled, s.now()); err != nil {
			return err
		}
		if err := restoreOrderStock(ctx, productRepo, order.Items); err != nil {
			return err
		}
		if err := orderRepo.Save(ctx, order); err != nil {
			return err
		}
		updated = *order
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return OrderDTO{}, err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	return dtoFromModel(&updated), nil
}

// DeleteOrder removes an order record outright. Stock is not restored;
// cancellation is the path for returning inventory.
func (s *service) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

// resolveShippingAddress snapshots the requested saved address, persists an
// inline address into the book, or falls back to the buyer's default.
func (s *service) resolveShippingAddress(ctx context.Context, userID uuid.UUID, input CheckoutInput) (types.AddressSnapshot, error) {
	if input.AddressID != nil {
		record, err := s.addressRepo.FindOwned(ctx, userID, *input.AddressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.AddressSnapshot{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "address not found")
			}
			return types.AddressSnapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}
		return record.Snapshot(), nil
	}

	if input.Address != nil {
		return s.saveInlineAddress(ctx, userID, *input.Address)
	}

	record, err := s.addressRepo.FindDefault(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.AddressSnapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
		}
		return types.AddressSnapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default address")
	}
	return record.Snapshot(), nil
}

// saveInlineAddress persists a checkout-supplied address so the buyer can
// reuse it. The first saved address becomes the default.
func (s *service) saveInlineAddress(ctx context.Context, userID uuid.UUID, input addresses.CreateAddressInput) (types.AddressSnapshot, error) {
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
	}
	if _, err := s.addressRepo.FindDefault(ctx, userID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return types.AddressSnapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default address")
		}
		record.IsDefault = true
	}
	if err := s.addressRepo.Create(ctx, record); err != nil {
		return types.AddressSnapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save address")
	}
	return record.Snapshot(), nil
}

// claimIdempotencyKey reserves the caller's key. It returns the stored
// order when the key already completed, and a reuse error when another
// checkout with the same key is still in flight.
func (s *service) claimIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (string, *OrderDTO, error) {
	if key == "" || s.idempotency == nil {
		return "", nil, nil
	}

	storageKey := s.idempotency.IdempotencyKey(checkoutScope, userID.String()+":"+key)
	claimed, err := s.idempotency.SetNX(ctx, storageKey, checkoutPendingMark, idempotencyTTL)
	if err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key")
	}
	if claimed {
		return storageKey, nil, nil
	}

	stored, err := s.idempotency.Get(ctx, storageKey)
	if err != nil && !errors.Is(err, goredis.Nil) {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read idempotency key")
	}
	if stored == "" || stored == checkoutPendingMark {
		return "", nil, pkgerrors.New(pkgerrors.CodeIdempotency, "a checkout with this idempotency key is already in progress")
	}

	orderID, err := uuid.Parse(stored)
	if err != nil {
		return "", nil, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused")
	}
	order, err := s.orderRepo.FindOwned(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused")
		}
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	dto := dtoFromModel(order)
	return "", &dto, nil
}

func (s *service) recordIdempotentResult(ctx context.Context, storageKey string, orderID uuid.UUID) {
	if storageKey == "" || s.idempotency == nil {
		return
	}
	// Best effort: a lost write only costs the retry a duplicate-key error.
	_ = s.idempotency.Set(ctx, storageKey, orderID.String(), idempotencyTTL)
}

func (s *service) releaseIdempotencyKey(ctx context.Context, storageKey string) {
	if storageKey == "" || s.idempotency == nil {
		return
	}
	_ = s.idempotency.Del(ctx, storageKey)
}

func restoreOrderStock(ctx context.Context, productRepo *catalog.Repository, items []models.OrderItem) error {
	for _, item := range items {
		if err := productRepo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}
