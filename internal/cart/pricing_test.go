package cart

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vastralane/storefront-backend/pkg/config"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

var testCheckout = config.CheckoutConfig{
	FreeShippingThreshold: 999,
	FlatShippingFee:       99,
	PromoPercents:         map[string]int64{"WELCOME10": 10, "FESTIVE20": 20},
}

func TestComputeQuoteBelowThresholdChargesShipping(t *testing.T) {
	t.Parallel()

	quote, err := ComputeQuote(testCheckout, decimal.RequireFromString("998.99"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.ShippingFee.Equal(decimal.NewFromInt(99)) {
		t.Fatalf("expected shipping fee 99, got %s", quote.ShippingFee)
	}
	if !quote.Total.Equal(decimal.RequireFromString("1097.99")) {
		t.Fatalf("expected total 1097.99, got %s", quote.Total)
	}
}

func TestComputeQuoteAtThresholdShipsFree(t *testing.T) {
	t.Parallel()

	quote, err := ComputeQuote(testCheckout, decimal.NewFromInt(999), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.ShippingFee.IsZero() {
		t.Fatalf("expected free shipping, got %s", quote.ShippingFee)
	}
	if !quote.Total.Equal(decimal.NewFromInt(999)) {
		t.Fatalf("expected total 999, got %s", quote.Total)
	}
}

func TestComputeQuoteEmptyCartHasNoShipping(t *testing.T) {
	t.Parallel()

	quote, err := ComputeQuote(testCheckout, decimal.Zero, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.ShippingFee.IsZero() || !quote.Total.IsZero() {
		t.Fatalf("expected zero quote, got %+v", quote)
	}
}

func TestComputeQuoteAppliesPromoPercent(t *testing.T) {
	t.Parallel()

	quote, err := ComputeQuote(testCheckout, decimal.NewFromInt(2000), "welcome10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.Discount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected discount 200, got %s", quote.Discount)
	}
	if !quote.Total.Equal(decimal.NewFromInt(1800)) {
		t.Fatalf("expected total 1800, got %s", quote.Total)
	}
	if quote.PromoCode != "WELCOME10" {
		t.Fatalf("expected normalized promo code, got %q", quote.PromoCode)
	}
}

func TestComputeQuoteRejectsUnknownPromo(t *testing.T) {
	t.Parallel()

	_, err := ComputeQuote(testCheckout, decimal.NewFromInt(2000), "BOGUS50")
	if err == nil {
		t.Fatal("expected error for unknown promo code")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestComputeQuoteHonorsConfiguredRates(t *testing.T) {
	t.Parallel()

	cfg := config.CheckoutConfig{FreeShippingThreshold: 500, FlatShippingFee: 49}

	quote, err := ComputeQuote(cfg, decimal.RequireFromString("499.99"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.ShippingFee.Equal(decimal.NewFromInt(49)) {
		t.Fatalf("expected shipping fee 49, got %s", quote.ShippingFee)
	}

	quote, err = ComputeQuote(cfg, decimal.NewFromInt(500), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.ShippingFee.IsZero() {
		t.Fatalf("expected free shipping at threshold 500, got %s", quote.ShippingFee)
	}
}

func TestComputeQuoteRejectsPromoWhenNoneConfigured(t *testing.T) {
	t.Parallel()

	cfg := config.CheckoutConfig{FreeShippingThreshold: 999, FlatShippingFee: 99}
	_, err := ComputeQuote(cfg, decimal.NewFromInt(2000), "WELCOME10")
	if err == nil {
		t.Fatal("expected error when the promo allow-list is empty")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestComputeQuoteInvariantHolds(t *testing.T) {
	t.Parallel()

	for _, subtotal := range []string{"1.00", "500.50", "998.99", "999.00", "12345.67"} {
		quote, err := ComputeQuote(testCheckout, decimal.RequireFromString(subtotal), "FESTIVE20")
		if err != nil {
			t.Fatalf("unexpected error for subtotal %s: %v", subtotal, err)
		}
		expected := quote.Subtotal.Add(quote.ShippingFee).Sub(quote.Discount)
		if !quote.Total.Equal(expected) {
			t.Fatalf("total %s != subtotal+shipping-discount %s", quote.Total, expected)
		}
	}
}
