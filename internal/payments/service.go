package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/enums"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
	"github.com/vastralane/storefront-backend/pkg/razorpay"
	"github.com/vastralane/storefront-backend/pkg/types"
)

// Gateway is the payment-gateway surface the service needs.
type Gateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*razorpay.Order, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	KeyID() string
}

// OrderStore is the order persistence surface the service needs.
type OrderStore interface {
	FindOwned(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
}

// GatewayOrderDTO is what the storefront needs to open the payment widget.
type GatewayOrderDTO struct {
	Key            string          `json:"key"`
	GatewayOrderID string          `json:"gateway_order_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
}

// VerifyPaymentInput carries the gateway callback fields to check.
type VerifyPaymentInput struct {
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Orders  OrderStore
	Gateway Gateway
}

// Service exposes online payment collection for gateway-backed orders.
type Service interface {
	CreateGatewayOrder(ctx context.Context, userID, orderID uuid.UUID) (GatewayOrderDTO, error)
	VerifyPayment(ctx context.Context, userID uuid.UUID, input VerifyPaymentInput) error
	PublishableKey() (string, error)
}

type service struct {
	orders  OrderStore
	gateway Gateway
	now     func() time.Time
}

// NewService builds a payment service. The gateway may be nil when no
// credentials are configured; calls then fail with a dependency error.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order store is required")
	}
	return &service{
		orders:  params.Orders,
		gateway: params.Gateway,
		now:     time.Now,
	}, nil
}

// PublishableKey returns the gateway key id the storefront embeds in its
// payment widget.
func (s *service) PublishableKey() (string, error) {
	if s.gateway == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "payment gateway not configured")
	}
	return s.gateway.KeyID(), nil
}

// CreateGatewayOrder registers the order with the payment gateway and
// returns what the client needs to collect payment. Calling it again for
// the same order returns the existing gateway order.
func (s *service) CreateGatewayOrder(ctx context.Context, userID, orderID uuid.UUID) (GatewayOrderDTO, error) {
	if userID == uuid.Nil {
		return GatewayOrderDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}
	if s.gateway == nil {
		return GatewayOrderDTO{}, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway not configured")
	}

	order, err := s.orders.FindOwned(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GatewayOrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return GatewayOrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !order.PaymentMethod.RequiresGateway() {
		return GatewayOrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "order does not use the payment gateway")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return GatewayOrderDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	if order.Status == enums.OrderStatusCancelled {
		return GatewayOrderDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order is cancelled")
	}

	if order.GatewayOrderID != nil && *order.GatewayOrderID != "" {
		return GatewayOrderDTO{
			Key:            s.gateway.KeyID(),
			GatewayOrderID: *order.GatewayOrderID,
			Amount:         order.Total,
			Currency:       "INR",
		}, nil
	}

	receipt := fmt.Sprintf("order_%s", order.ID)
	gatewayOrder, err := s.gateway.CreateOrder(ctx, order.Total, receipt)
	if err != nil {
		return GatewayOrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway order")
	}

	order.GatewayOrderID = &gatewayOrder.ID
	if err := s.orders.Save(ctx, order); err != nil {
		return GatewayOrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store gateway order id")
	}

	return GatewayOrderDTO{
		Key:            s.gateway.KeyID(),
		GatewayOrderID: gatewayOrder.ID,
		Amount:         order.Total,
		Currency:       gatewayOrder.Currency,
	}, nil
}

// VerifyPayment checks the gateway signature and settles the order. A bad
// signature leaves the order untouched.
func (s *service) VerifyPayment(ctx context.Context, userID uuid.UUID, input VerifyPaymentInput) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}
	if s.gateway == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "payment gateway not configured")
	}

	order, err := s.orders.FindByGatewayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	if !s.gateway.VerifySignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment signature")
	}

	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil
	}

	paidAt := s.now()
	order.PaymentStatus = enums.PaymentStatusPaid
	order.PaymentDetails = &types.PaymentDetails{
		GatewayOrderID:   input.GatewayOrderID,
		GatewayPaymentID: input.GatewayPaymentID,
		Signature:        input.Signature,
		PaidAt:           paidAt,
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle order")
	}
	return nil
}
