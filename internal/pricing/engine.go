package pricing

import (
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/voucher"
)

// Money represents a monetary value stored in minor units (whole Rupiah).
type Money = int64

// codSurchargeBps is the cash-on-delivery surcharge, applied to the
// post-discount, post-shipping base. 200 basis points == 2%.
const codSurchargeBps = 200

// PaymentType enumerates the supported payment flows.
type PaymentType string

const (
	PaymentAutomatic PaymentType = "automatic"
	PaymentManual    PaymentType = "manual"
	PaymentCOD       PaymentType = "cod"
)

// Item describes a line item used for totals calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Summary aggregates computed order totals.
type Summary struct {
	Subtotal     Money `json:"subtotal"`
	Discount     Money `json:"discount"`
	Shipping     Money `json:"shipping"`
	CODSurcharge Money `json:"codSurcharge"`
	Total        Money `json:"total"`
}

// ResolvePrice computes the effective unit price of a (product, variant, size)
// combination. Deltas are additive; an absent level contributes zero. Pure and
// total: it never fails.
func ResolvePrice(p catalog.Product, v *catalog.Variant, s *catalog.Size) Money {
	price := p.Price
	if v != nil {
		price += v.PriceDelta
	}
	if s != nil {
		price += s.PriceDelta
	}
	return price
}

// ResolveStock computes the effective available quantity for the same
// combination. Stock overrides rather than accumulates: the deepest selected
// level that carries a value wins, with no blending.
func ResolveStock(p catalog.Product, v *catalog.Variant, s *catalog.Size) int {
	if s != nil && s.Stock != nil {
		return *s.Stock
	}
	if v != nil && v.Stock != nil {
		return *v.Stock
	}
	return p.Stock
}

// Compute derives order totals from a cart snapshot, an optional voucher, the
// selected shipping cost and the payment type. Pure function of its inputs.
func Compute(items []Item, v *voucher.Voucher, shipping Money, payment PaymentType) Summary {
	var subtotal Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal += Money(it.Qty) * it.UnitPrice
	}
	if shipping < 0 {
		shipping = 0
	}
	discount := v.Discount(subtotal)

	var surcharge Money
	if payment == PaymentCOD {
		base := subtotal - discount + shipping
		surcharge = roundHalfUpBps(base, codSurchargeBps)
	}

	return Summary{
		Subtotal:     subtotal,
		Discount:     discount,
		Shipping:     shipping,
		CODSurcharge: surcharge,
		Total:        subtotal - discount + shipping + surcharge,
	}
}

// roundHalfUpBps applies a basis-point rate with round-half-up at the integer
// currency boundary.
func roundHalfUpBps(base Money, bps int64) Money {
	if base <= 0 || bps <= 0 {
		return 0
	}
	return (base*bps + 5000) / 10000
}
