package voucher

// Kind discriminates the two supported discount rules.
type Kind string

const (
	// KindFixed discounts a fixed currency amount.
	KindFixed Kind = "fixed"
	// KindPercentage discounts a percentage of the subtotal.
	KindPercentage Kind = "percentage"
)

// Voucher is a resolved discount rule. Resolution by code happens at the
// remote collaborator; this core only consumes the resolved object.
type Voucher struct {
	ID      int64  `json:"id"`
	Code    string `json:"code"`
	Kind    Kind   `json:"kind"`
	Amount  int64  `json:"amount,omitempty"`
	Percent int    `json:"percent,omitempty"`
}

// Discount computes the voucher's discount against the given subtotal.
// A nil voucher discounts nothing. The result is always within
// [0, subtotal]; percentage discounts round half-up exactly once.
func (v *Voucher) Discount(subtotal int64) int64 {
	if v == nil || subtotal <= 0 {
		return 0
	}
	var discount int64
	switch v.Kind {
	case KindPercentage:
		pct := int64(v.Percent)
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		discount = (subtotal*pct + 50) / 100
	default:
		discount = v.Amount
	}
	if discount < 0 {
		return 0
	}
	if discount > subtotal {
		return subtotal
	}
	return discount
}
