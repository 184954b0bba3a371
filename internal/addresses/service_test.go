package addresses

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/vastralane/storefront-backend/pkg/config"
	"github.com/vastralane/storefront-backend/pkg/db/dbtest"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

func newAddressService(t *testing.T, policy config.AddressConfig) Service {
	t.Helper()

	client := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		AddressRepo: NewRepository(client.DB()),
		DB:          client,
		Policy:      policy,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func addressInput(name string, isDefault bool) CreateAddressInput {
	return CreateAddressInput{
		Name:         name,
		FullName:     "Asha Rao",
		Phone:        "9876543210",
		AddressLine1: "14 MG Road",
		City:         "Bengaluru",
		State:        "Karnataka",
		PinCode:      "560001",
		IsDefault:    isDefault,
	}
}

func defaultCount(t *testing.T, svc Service, userID uuid.UUID) (int, uuid.UUID) {
	t.Helper()
	book, err := svc.ListAddresses(context.Background(), userID)
	if err != nil {
		t.Fatalf("list addresses: %v", err)
	}
	count := 0
	var defaultID uuid.UUID
	for _, addr := range book {
		if addr.IsDefault {
			count++
			defaultID = addr.ID
		}
	}
	return count, defaultID
}

func TestFirstAddressBecomesDefault(t *testing.T) {
	svc := newAddressService(t, config.AddressConfig{})
	userID := uuid.New()

	created, err := svc.CreateAddress(context.Background(), userID, addressInput("home", false))
	if err != nil {
		t.Fatalf("create address: %v", err)
	}
	if !created.IsDefault {
		t.Fatal("first address must become the default")
	}
	if count, _ := defaultCount(t, svc, userID); count != 1 {
		t.Fatalf("expected exactly one default, got %d", count)
	}
}

func TestCreateExplicitDefaultDemotesPrevious(t *testing.T) {
	svc := newAddressService(t, config.AddressConfig{})
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.CreateAddress(ctx, userID, addressInput("home", false)); err != nil {
		t.Fatalf("create home: %v", err)
	}
	office, err := svc.CreateAddress(ctx, userID, addressInput("office", true))
	if err != nil {
		t.Fatalf("create office: %v", err)
	}

	count, defaultID := defaultCount(t, svc, userID)
	if count != 1 || defaultID != office.ID {
		t.Fatalf("expected office as sole default, got count=%d default=%s", count, defaultID)
	}
}

func TestSetDefaultMovesFlagAtomically(t *testing.T) {
	svc := newAddressService(t, config.AddressConfig{})
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.CreateAddress(ctx, userID, addressInput("home", false)); err != nil {
		t.Fatalf("create home: %v", err)
	}
	office, err := svc.CreateAddress(ctx, userID, addressInput("office", false))
	if err != nil {
		t.Fatalf("create office: %v", err)
	}

	if _, err := svc.SetDefault(ctx, userID, office.ID); err != nil {
		t.Fatalf("set default: %v", err)
	}
	count, defaultID := defaultCount(t, svc, userID)
	if count != 1 || defaultID != office.ID {
		t.Fatalf("expected office as sole default, got count=%d default=%s", count, defaultID)
	}

	// Setting the current default again must not disturb anything.
	if _, err := svc.SetDefault(ctx, userID, office.ID); err != nil {
		t.Fatalf("re-set default: %v", err)
	}
	if count, _ := defaultCount(t, svc, userID); count != 1 {
		t.Fatalf("expected exactly one default, got %d", count)
	}
}

func TestUpdateToDefaultKeepsSingleDefault(t *testing.T) {
	svc := newAddressService(t, config.AddressConfig{})
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.CreateAddress(ctx, userID, addressInput("home", false)); err != nil {
		t.Fatalf("create home: %v", err)
	}
	office, err := svc.CreateAddress(ctx, userID, addressInput("office", false))
	if err != nil {
		t.Fatalf("create office: %v", err)
	}

	makeDefault := true
	if _, err := svc.UpdateAddress(ctx, userID, office.ID, UpdateAddressInput{IsDefault: &makeDefault}); err != nil {
		t.Fatalf("update address: %v", err)
	}
	count, defaultID := defaultCount(t, svc, userID)
	if count != 1 || defaultID != office.ID {
		t.Fatalf("expected office as sole default, got count=%d default=%s", count, defaultID)
	}
}

func TestDeleteDefaultLeavesNoDefaultWhenPolicyOff(t *testing.T) {
	svc := newAddressService(t, config.AddressConfig{PromoteDefaultOnDelete: false})
	ctx := context.Background()
	userID := uuid.New()

	home, err := svc.CreateAddress(ctx, userID, addressInput("home", false))
	if err != nil {
		t.Fatalf("create home: %v", err)
	}
	if _, err := svc.CreateAddress(ctx, userID, addressInput("office", false)); err != nil {
		t.Fatalf("create office: %v", err)
	}

	if err := svc.DeleteAddress(ctx, userID, home.ID); err != nil {
		t.Fatalf("delete default: %v", err)
	}
	if count, _ := defaultCount(t, svc, userID); count != 0 {
		t.Fatalf("expected no default after policy-off delete, got %d", count)
	}
}

func TestDeleteDefaultPromotesNewestWhenPolicyOn(t *testing.T) {
	svc := newAddressService(t, config.AddressConfig{PromoteDefaultOnDelete: true})
	ctx := context.Background()
	userID := uuid.New()

	home, err := svc.CreateAddress(ctx, userID, addressInput("home", false))
	if err != nil {
		t.Fatalf("create home: %v", err)
	}
	if _, err := svc.CreateAddress(ctx, userID, addressInput("office", false)); err != nil {
		t.Fatalf("create office: %v", err)
	}
	parents, err := svc.CreateAddress(ctx, userID, addressInput("parents", false))
	if err != nil {
		t.Fatalf("create parents: %v", err)
	}

	if err := svc.DeleteAddress(ctx, userID, home.ID); err != nil {
		t.Fatalf("delete default: %v", err)
	}
	count, defaultID := defaultCount(t, svc, userID)
	if count != 1 || defaultID != parents.ID {
		t.Fatalf("expected newest address as sole default, got count=%d default=%s", count, defaultID)
	}
}

func TestAddressOwnershipChecks(t *testing.T) {
	svc := newAddressService(t, config.AddressConfig{})
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.CreateAddress(ctx, owner, addressInput("home", false))
	if err != nil {
		t.Fatalf("create address: %v", err)
	}

	stranger := uuid.New()
	if _, err := svc.SetDefault(ctx, stranger, created.ID); err == nil {
		t.Fatal("expected error for foreign address")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error code: %v", err)
	}
	if err := svc.DeleteAddress(ctx, stranger, created.ID); err == nil {
		t.Fatal("expected error deleting foreign address")
	}
}
