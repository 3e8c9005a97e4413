package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/voucher"
)

func intPtr(v int) *int { return &v }

func TestResolvePriceAdditive(t *testing.T) {
	p := catalog.Product{ID: 1, Price: 150000}
	v := &catalog.Variant{ID: 10, ProductID: 1, PriceDelta: 20000}
	s := &catalog.Size{ID: 100, VariantID: 10, PriceDelta: 5000}

	require.Equal(t, int64(150000), ResolvePrice(p, nil, nil))
	require.Equal(t, int64(170000), ResolvePrice(p, v, nil))
	require.Equal(t, int64(175000), ResolvePrice(p, v, s))

	v.PriceDelta = -10000
	require.Equal(t, int64(140000), ResolvePrice(p, v, nil))
}

func TestResolveStockOverridePrecedence(t *testing.T) {
	p := catalog.Product{ID: 1, Stock: 50}
	v := &catalog.Variant{ID: 10, ProductID: 1, Stock: intPtr(8)}
	s := &catalog.Size{ID: 100, VariantID: 10, Stock: intPtr(3)}

	require.Equal(t, 50, ResolveStock(p, nil, nil))
	require.Equal(t, 8, ResolveStock(p, v, nil))
	require.Equal(t, 3, ResolveStock(p, v, s))

	// A level without its own stock inherits from the level above.
	s.Stock = nil
	require.Equal(t, 8, ResolveStock(p, v, s))
	v.Stock = nil
	require.Equal(t, 50, ResolveStock(p, v, s))

	// Zero is a real value, not an absence.
	s.Stock = intPtr(0)
	require.Equal(t, 0, ResolveStock(p, v, s))
}

func TestComputeManualPayment(t *testing.T) {
	items := []Item{{Qty: 2, UnitPrice: 150000}}
	got := Compute(items, nil, 15000, PaymentManual)

	require.Equal(t, Summary{
		Subtotal: 300000,
		Shipping: 15000,
		Total:    315000,
	}, got)
}

func TestComputePercentageVoucher(t *testing.T) {
	items := []Item{{Qty: 2, UnitPrice: 150000}}
	v := &voucher.Voucher{Kind: voucher.KindPercentage, Percent: 10}
	got := Compute(items, v, 15000, PaymentManual)

	require.Equal(t, int64(30000), got.Discount)
	require.Equal(t, int64(285000), got.Total)
}

func TestComputeCODSurcharge(t *testing.T) {
	items := []Item{{Qty: 2, UnitPrice: 150000}}
	v := &voucher.Voucher{Kind: voucher.KindFixed, Amount: 50000}
	got := Compute(items, v, 15000, PaymentCOD)

	require.Equal(t, int64(50000), got.Discount)
	// 2% of 300000-50000+15000 = 265000.
	require.Equal(t, int64(5300), got.CODSurcharge)
	require.Equal(t, int64(270300), got.Total)
}

func TestComputeCODSurchargeRoundsHalfUp(t *testing.T) {
	// 2% of 275 is 5.5, which rounds up to 6.
	got := Compute([]Item{{Qty: 1, UnitPrice: 275}}, nil, 0, PaymentCOD)
	require.Equal(t, int64(6), got.CODSurcharge)

	// 2% of 260 is 5.2, which rounds down to 5.
	got = Compute([]Item{{Qty: 1, UnitPrice: 260}}, nil, 0, PaymentCOD)
	require.Equal(t, int64(5), got.CODSurcharge)
}

func TestComputeNoSurchargeForAutomatic(t *testing.T) {
	got := Compute([]Item{{Qty: 1, UnitPrice: 100000}}, nil, 15000, PaymentAutomatic)
	require.Zero(t, got.CODSurcharge)
	require.Equal(t, int64(115000), got.Total)
}

func TestComputeDiscountNeverExceedsSubtotal(t *testing.T) {
	v := &voucher.Voucher{Kind: voucher.KindFixed, Amount: 1000000}
	got := Compute([]Item{{Qty: 1, UnitPrice: 40000}}, v, 10000, PaymentManual)

	require.Equal(t, int64(40000), got.Discount)
	// Shipping survives the clamp; totals never go negative on its account.
	require.Equal(t, int64(10000), got.Total)
}

func TestComputeEmptyCart(t *testing.T) {
	got := Compute(nil, &voucher.Voucher{Kind: voucher.KindPercentage, Percent: 50}, 0, PaymentCOD)
	require.Equal(t, Summary{}, got)
}

func TestComputeNegativeShippingTreatedAsZero(t *testing.T) {
	got := Compute([]Item{{Qty: 1, UnitPrice: 5000}}, nil, -100, PaymentManual)
	require.Equal(t, int64(0), got.Shipping)
	require.Equal(t, int64(5000), got.Total)
}

func TestComputeDeterministic(t *testing.T) {
	items := []Item{{Qty: 3, UnitPrice: 12345}, {Qty: 1, UnitPrice: 99999}}
	v := &voucher.Voucher{Kind: voucher.KindPercentage, Percent: 7}
	first := Compute(items, v, 22000, PaymentCOD)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Compute(items, v, 22000, PaymentCOD))
	}
}
