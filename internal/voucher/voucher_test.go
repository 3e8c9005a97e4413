package voucher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscountNilVoucher(t *testing.T) {
	var v *Voucher
	require.Zero(t, v.Discount(100000))
}

func TestDiscountFixed(t *testing.T) {
	v := &Voucher{Kind: KindFixed, Amount: 25000}
	require.Equal(t, int64(25000), v.Discount(100000))
}

func TestDiscountFixedClampedToSubtotal(t *testing.T) {
	v := &Voucher{Kind: KindFixed, Amount: 150000}
	require.Equal(t, int64(100000), v.Discount(100000))
}

func TestDiscountNegativeAmountIsZero(t *testing.T) {
	v := &Voucher{Kind: KindFixed, Amount: -5000}
	require.Zero(t, v.Discount(100000))
}

func TestDiscountPercentageRoundsHalfUp(t *testing.T) {
	cases := []struct {
		name     string
		percent  int
		subtotal int64
		want     int64
	}{
		{"exact", 10, 300000, 30000},
		{"rounds up at half", 5, 1010, 51},      // 50.5 -> 51
		{"rounds down below half", 3, 1010, 30}, // 30.3 -> 30
		{"full percent", 100, 45000, 45000},
		{"over hundred clamps", 150, 45000, 45000},
		{"negative percent clamps", -10, 45000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := &Voucher{Kind: KindPercentage, Percent: tc.percent}
			require.Equal(t, tc.want, v.Discount(tc.subtotal))
		})
	}
}

func TestDiscountZeroSubtotal(t *testing.T) {
	v := &Voucher{Kind: KindPercentage, Percent: 50}
	require.Zero(t, v.Discount(0))
	require.Zero(t, v.Discount(-100))
}
