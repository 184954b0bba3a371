package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vastralane/storefront-backend/internal/addresses"
	authsvc "github.com/vastralane/storefront-backend/internal/auth"
	"github.com/vastralane/storefront-backend/internal/cart"
	"github.com/vastralane/storefront-backend/internal/catalog"
	"github.com/vastralane/storefront-backend/internal/media"
	"github.com/vastralane/storefront-backend/internal/orders"
	"github.com/vastralane/storefront-backend/internal/payments"
	"github.com/vastralane/storefront-backend/internal/reporting"
	"github.com/vastralane/storefront-backend/internal/reviews"
	"github.com/vastralane/storefront-backend/internal/users"
	"github.com/vastralane/storefront-backend/internal/wishlist"
	pkgauth "github.com/vastralane/storefront-backend/pkg/auth"
	"github.com/vastralane/storefront-backend/pkg/auth/session"
	"github.com/vastralane/storefront-backend/pkg/config"
	"github.com/vastralane/storefront-backend/pkg/enums"
	"github.com/vastralane/storefront-backend/pkg/imagekit"
	"github.com/vastralane/storefront-backend/pkg/logger"
	"github.com/vastralane/storefront-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, input authsvc.RegisterInput) (authsvc.SessionDTO, error) {
	return authsvc.SessionDTO{}, nil
}

func (stubAuthService) Login(ctx context.Context, input authsvc.LoginInput) (authsvc.SessionDTO, error) {
	return authsvc.SessionDTO{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, input authsvc.RefreshInput) (authsvc.SessionDTO, error) {
	return authsvc.SessionDTO{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

func (stubAuthService) Me(ctx context.Context, userID uuid.UUID) (authsvc.AuthUserDTO, error) {
	return authsvc.AuthUserDTO{}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) ListProducts(ctx context.Context, filter catalog.ListFilter, cursor string, limit int) (catalog.ProductsPageDTO, error) {
	return catalog.ProductsPageDTO{}, nil
}

func (stubCatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (catalog.ProductDetail, error) {
	panic("unimplemented")
}

func (stubCatalogService) CreateProduct(ctx context.Context, sellerID uuid.UUID, input catalog.CreateProductInput) (catalog.ProductDetail, error) {
	panic("unimplemented")
}

func (stubCatalogService) UpdateProduct(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID, input catalog.UpdateProductInput) (catalog.ProductDetail, error) {
	panic("unimplemented")
}

func (stubCatalogService) DeleteProduct(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, productID uuid.UUID) error {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (cart.CartDTO, error) {
	return cart.CartDTO{}, nil
}

func (stubCartService) Quote(ctx context.Context, userID uuid.UUID, promoCode string) (cart.Quote, error) {
	panic("unimplemented")
}

func (stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cart.AddItemInput) (cart.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input cart.UpdateItemInput) (cart.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (cart.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	panic("unimplemented")
}

type stubAddressService struct{}

func (stubAddressService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]addresses.AddressDTO, error) {
	return nil, nil
}

func (stubAddressService) CreateAddress(ctx context.Context, userID uuid.UUID, input addresses.CreateAddressInput) (addresses.AddressDTO, error) {
	panic("unimplemented")
}

func (stubAddressService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input addresses.UpdateAddressInput) (addresses.AddressDTO, error) {
	panic("unimplemented")
}

func (stubAddressService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	panic("unimplemented")
}

func (stubAddressService) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (addresses.AddressDTO, error) {
	panic("unimplemented")
}

type stubWishlistService struct{}

func (stubWishlistService) GetWishlist(ctx context.Context, userID uuid.UUID, cursor string, limit int) (wishlist.WishlistPageDTO, error) {
	return wishlist.WishlistPageDTO{}, nil
}

func (stubWishlistService) GetWishlistIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (stubWishlistService) AddItem(ctx context.Context, userID, productID uuid.UUID) error {
	return nil
}

func (stubWishlistService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return nil
}

type stubReviewService struct{}

func (stubReviewService) ListReviews(ctx context.Context, productID uuid.UUID) ([]reviews.ReviewDTO, error) {
	return nil, nil
}

func (stubReviewService) CreateReview(ctx context.Context, authorID, productID uuid.UUID, input reviews.CreateReviewInput) (reviews.ReviewDTO, error) {
	panic("unimplemented")
}

func (stubReviewService) UpdateReview(ctx context.Context, actorID uuid.UUID, reviewID uuid.UUID, input reviews.UpdateReviewInput) (reviews.ReviewDTO, error) {
	panic("unimplemented")
}

func (stubReviewService) DeleteReview(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, reviewID uuid.UUID) error {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) Checkout(ctx context.Context, userID uuid.UUID, idempotencyKey string, input orders.CheckoutInput) (orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) GetOrder(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) ListMyOrders(ctx context.Context, userID uuid.UUID, cursor string, limit int) (orders.OrdersPageDTO, error) {
	return orders.OrdersPageDTO{}, nil
}

func (stubOrdersService) ListOrders(ctx context.Context, filter orders.ListFilter, cursor string, limit int) (orders.OrdersPageDTO, error) {
	return orders.OrdersPageDTO{}, nil
}

func (stubOrdersService) UpdateStatus(ctx context.Context, orderID uuid.UUID, input orders.UpdateStatusInput) (orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrdersService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	panic("unimplemented")
}

type stubPaymentsService struct{}

func (stubPaymentsService) CreateGatewayOrder(ctx context.Context, userID, orderID uuid.UUID) (payments.GatewayOrderDTO, error) {
	panic("unimplemented")
}

func (stubPaymentsService) VerifyPayment(ctx context.Context, userID uuid.UUID, input payments.VerifyPaymentInput) error {
	panic("unimplemented")
}

func (stubPaymentsService) PublishableKey() (string, error) {
	return "rzp_test_key", nil
}

type stubMediaService struct{}

func (stubMediaService) UploadImage(ctx context.Context, input media.UploadInput) (media.MediaDTO, error) {
	panic("unimplemented")
}

func (stubMediaService) DeleteImage(ctx context.Context, fileID string) error {
	panic("unimplemented")
}

func (stubMediaService) AuthParams(now time.Time) (imagekit.AuthParams, error) {
	return imagekit.AuthParams{}, nil
}

type stubUsersService struct{}

func (stubUsersService) ListUsers(ctx context.Context, cursor string, limit int) (users.UsersPageDTO, error) {
	return users.UsersPageDTO{}, nil
}

func (stubUsersService) UpdateRole(ctx context.Context, userID uuid.UUID, input users.UpdateRoleInput) (users.UserDTO, error) {
	panic("unimplemented")
}

func (stubUsersService) SetActive(ctx context.Context, userID uuid.UUID, active bool) (users.UserDTO, error) {
	panic("unimplemented")
}

func (stubUsersService) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	panic("unimplemented")
}

type stubReportingService struct{}

func (stubReportingService) Dashboard(ctx context.Context) (reporting.DashboardDTO, error) {
	return reporting.DashboardDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	reg := prometheus.NewRegistry()
	return NewRouter(Deps{
		Config:    cfg,
		Logger:    logg,
		DB:        stubPinger{},
		Redis:     nil,
		Sessions:  stubSessionChecker{},
		Registry:  reg,
		Metrics:   metrics.NewHTTPMetrics(reg),
		Auth:      stubAuthService{},
		Catalog:   stubCatalogService{},
		Cart:      stubCartService{},
		Addresses: stubAddressService{},
		Wishlist:  stubWishlistService{},
		Reviews:   stubReviewService{},
		Orders:    stubOrdersService{},
		Payments:  stubPaymentsService{},
		Media:     stubMediaService{},
		Users:     stubUsersService{},
		Reporting: stubReportingService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public product list got %d", resp.Code)
	}
}

func TestPaymentKeyNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/key", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public payment key got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProtectedGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for cart fetch got %d", resp.Code)
	}
}

func TestSellerRoutesRejectCustomers(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/media/auth", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer on seller route got %d", resp.Code)
	}

	seller := httptest.NewRequest(http.MethodGet, "/api/v1/media/auth", nil)
	seller.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleSeller))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, seller)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for seller got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/dashboard", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/dashboard", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}
