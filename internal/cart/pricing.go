package cart

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vastralane/storefront-backend/pkg/config"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

// Quote is the server-computed pricing for a cart or order.
// Total always equals Subtotal + ShippingFee - Discount.
type Quote struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	PromoCode   string          `json:"promo_code,omitempty"`
}

// ComputeQuote prices a subtotal: shipping is free at or above the
// configured threshold, and an optional promo code from the configured
// allow-list discounts the subtotal.
func ComputeQuote(cfg config.CheckoutConfig, subtotal decimal.Decimal, promoCode string) (Quote, error) {
	if subtotal.IsNegative() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "subtotal cannot be negative")
	}

	shipping := decimal.Zero
	if subtotal.IsPositive() && subtotal.LessThan(decimal.NewFromInt(cfg.FreeShippingThreshold)) {
		shipping = decimal.NewFromInt(cfg.FlatShippingFee)
	}

	discount := decimal.Zero
	code := strings.ToUpper(strings.TrimSpace(promoCode))
	if code != "" {
		percent, ok := cfg.PromoPercents[code]
		if !ok {
			return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown promo code")
		}
		discount = subtotal.Mul(decimal.NewFromInt(percent)).Div(decimal.NewFromInt(100)).Round(2)
	}

	return Quote{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Discount:    discount,
		Total:       subtotal.Add(shipping).Sub(discount),
		PromoCode:   code,
	}, nil
}
