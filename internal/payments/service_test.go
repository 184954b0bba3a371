package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vastralane/storefront-backend/pkg/db/models"
	"github.com/vastralane/storefront-backend/pkg/enums"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
	"github.com/vastralane/storefront-backend/pkg/razorpay"
)

type stubGateway struct {
	created    []decimal.Decimal
	nextID     string
	verifyWith string
}

func (s *stubGateway) CreateOrder(_ context.Context, amount decimal.Decimal, _ string) (*razorpay.Order, error) {
	s.created = append(s.created, amount)
	return &razorpay.Order{ID: s.nextID, Currency: "INR", Status: "created"}, nil
}

func (s *stubGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return signature == s.verifyWith
}

func (s *stubGateway) KeyID() string { return "rzp_test_key" }

type stubOrderStore struct {
	orders map[uuid.UUID]*models.Order
	saved  int
}

func newStubOrderStore(orders ...*models.Order) *stubOrderStore {
	store := &stubOrderStore{orders: map[uuid.UUID]*models.Order{}}
	for _, order := range orders {
		store.orders[order.ID] = order
	}
	return store
}

func (s *stubOrderStore) FindOwned(_ context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrderStore) FindByGatewayOrderID(_ context.Context, gatewayOrderID string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.GatewayOrderID != nil && *order.GatewayOrderID == gatewayOrderID {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderStore) Save(_ context.Context, order *models.Order) error {
	s.saved++
	s.orders[order.ID] = order
	return nil
}

func gatewayOrderFixture(userID uuid.UUID) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        enums.OrderStatusProcessing,
		PaymentMethod: enums.PaymentMethodCard,
		PaymentStatus: enums.PaymentStatusPending,
		Total:         decimal.RequireFromString("1049.00"),
	}
}

func TestCreateGatewayOrderStoresID(t *testing.T) {
	userID := uuid.New()
	order := gatewayOrderFixture(userID)
	store := newStubOrderStore(order)
	gateway := &stubGateway{nextID: "order_rzp_123"}

	svc, err := NewService(ServiceParams{Orders: store, Gateway: gateway})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	dto, err := svc.CreateGatewayOrder(context.Background(), userID, order.ID)
	if err != nil {
		t.Fatalf("CreateGatewayOrder: %v", err)
	}
	if dto.GatewayOrderID != "order_rzp_123" {
		t.Errorf("gateway order id = %q", dto.GatewayOrderID)
	}
	if dto.Key != "rzp_test_key" {
		t.Errorf("key = %q", dto.Key)
	}
	if order.GatewayOrderID == nil || *order.GatewayOrderID != "order_rzp_123" {
		t.Errorf("gateway order id not persisted on order")
	}
	if len(gateway.created) != 1 || !gateway.created[0].Equal(order.Total) {
		t.Errorf("gateway charged %v, want %s", gateway.created, order.Total)
	}
}

func TestCreateGatewayOrderIsIdempotent(t *testing.T) {
	userID := uuid.New()
	order := gatewayOrderFixture(userID)
	existing := "order_rzp_existing"
	order.GatewayOrderID = &existing
	store := newStubOrderStore(order)
	gateway := &stubGateway{nextID: "order_rzp_new"}

	svc, _ := NewService(ServiceParams{Orders: store, Gateway: gateway})
	dto, err := svc.CreateGatewayOrder(context.Background(), userID, order.ID)
	if err != nil {
		t.Fatalf("CreateGatewayOrder: %v", err)
	}
	if dto.GatewayOrderID != existing {
		t.Errorf("gateway order id = %q, want existing %q", dto.GatewayOrderID, existing)
	}
	if len(gateway.created) != 0 {
		t.Errorf("gateway order recreated %d times", len(gateway.created))
	}
}

func TestCreateGatewayOrderRejectsCOD(t *testing.T) {
	userID := uuid.New()
	order := gatewayOrderFixture(userID)
	order.PaymentMethod = enums.PaymentMethodCOD
	svc, _ := NewService(ServiceParams{Orders: newStubOrderStore(order), Gateway: &stubGateway{}})

	_, err := svc.CreateGatewayOrder(context.Background(), userID, order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for COD order, got %v", err)
	}
}

func TestCreateGatewayOrderWithoutGateway(t *testing.T) {
	userID := uuid.New()
	order := gatewayOrderFixture(userID)
	svc, _ := NewService(ServiceParams{Orders: newStubOrderStore(order)})

	_, err := svc.CreateGatewayOrder(context.Background(), userID, order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error without gateway, got %v", err)
	}
}

func TestPublishableKey(t *testing.T) {
	userID := uuid.New()
	order := gatewayOrderFixture(userID)

	svc, _ := NewService(ServiceParams{Orders: newStubOrderStore(order), Gateway: &stubGateway{}})
	key, err := svc.PublishableKey()
	if err != nil {
		t.Fatalf("PublishableKey: %v", err)
	}
	if key != "rzp_test_key" {
		t.Fatalf("expected gateway key id, got %q", key)
	}

	svc, _ = NewService(ServiceParams{Orders: newStubOrderStore(order)})
	if _, err := svc.PublishableKey(); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error without gateway, got %v", err)
	}
}

func TestVerifyPaymentSettlesOrder(t *testing.T) {
	userID := uuid.New()
	order := gatewayOrderFixture(userID)
	gatewayID := "order_rzp_123"
	order.GatewayOrderID = &gatewayID
	store := newStubOrderStore(order)
	gateway := &stubGateway{verifyWith: "good-signature"}

	svc, _ := NewService(ServiceParams{Orders: store, Gateway: gateway})
	err := svc.VerifyPayment(context.Background(), userID, VerifyPaymentInput{
		GatewayOrderID:   gatewayID,
		GatewayPaymentID: "pay_abc",
		Signature:        "good-signature",
	})
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if order.PaymentStatus != enums.PaymentStatusPaid {
		t.Errorf("payment status = %s, want paid", order.PaymentStatus)
	}
	if order.PaymentDetails == nil || order.PaymentDetails.GatewayPaymentID != "pay_abc" {
		t.Errorf("payment details not recorded: %+v", order.PaymentDetails)
	}
}

func TestVerifyPaymentBadSignatureLeavesOrderUntouched(t *testing.T) {
	userID := uuid.New()
	order := gatewayOrderFixture(userID)
	gatewayID := "order_rzp_123"
	order.GatewayOrderID = &gatewayID
	store := newStubOrderStore(order)
	gateway := &stubGateway{verifyWith: "good-signature"}

	svc, _ := NewService(ServiceParams{Orders: store, Gateway: gateway})
	err := svc.VerifyPayment(context.Background(), userID, VerifyPaymentInput{
		GatewayOrderID:   gatewayID,
		GatewayPaymentID: "pay_abc",
		Signature:        "tampered",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if order.PaymentStatus != enums.PaymentStatusPending {
		t.Errorf("order mutated on bad signature: %s", order.PaymentStatus)
	}
	if store.saved != 0 {
		t.Errorf("order saved %d times on bad signature", store.saved)
	}
}

func TestVerifyPaymentOtherUsersOrder(t *testing.T) {
	order := gatewayOrderFixture(uuid.New())
	gatewayID := "order_rzp_123"
	order.GatewayOrderID = &gatewayID
	svc, _ := NewService(ServiceParams{Orders: newStubOrderStore(order), Gateway: &stubGateway{verifyWith: "sig"}})

	err := svc.VerifyPayment(context.Background(), uuid.New(), VerifyPaymentInput{
		GatewayOrderID:   gatewayID,
		GatewayPaymentID: "pay_abc",
		Signature:        "sig",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}
}
