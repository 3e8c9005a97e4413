package checkout

import (
	"context"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/config"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/shipping"
	"github.com/noah-isme/toko-storefront/internal/voucher"
)

// Request is the single, immutable checkout payload handed to the order
// collaborator once every gate has passed.
type Request struct {
	Contact    Contact             `json:"contact"`
	Courier    string              `json:"courier"`
	Shipping   shipping.Rate       `json:"shipping"`
	Payment    pricing.PaymentType `json:"payment"`
	VoucherIDs []int64             `json:"voucherIds,omitempty"`
	Items      []cart.LineItem     `json:"items"`
	Totals     pricing.Summary     `json:"totals"`
}

// Input bundles everything the assembler reconciles for one attempt.
type Input struct {
	Items    []cart.LineItem
	View     *catalog.View
	Voucher  *voucher.Voucher
	Selector *shipping.Selector
	Payment  pricing.PaymentType
	Contact  Contact
}

// Assembler validates cart, contact and shipping state and builds checkout
// requests. It never mutates the cart.
type Assembler struct {
	Validator   *validator.Validate
	PricePolicy config.PricePolicy
}

// Assemble runs the four gates in order and, on success, returns the request
// plus any notices for auto-resolved conditions.
func (a *Assembler) Assemble(in Input) (Request, []Notice, error) {
	if len(in.Items) == 0 {
		gateFail("empty")
		return Request{}, nil, &GateError{Reason: ReasonEmptyCart}
	}

	// Stock gate. Re-resolve against the freshest catalog view rather than
	// trusting the per-line snapshots taken at add time.
	items := make([]cart.LineItem, len(in.Items))
	copy(items, in.Items)
	for i, item := range items {
		p, v, s, err := in.View.Lookup(item.ProductID, item.VariantID, item.SizeID)
		if err != nil {
			gateFail("stock")
			return Request{}, nil, &GateError{Reason: ReasonOutOfStock, LineKey: item.Key, Err: err}
		}
		stock := pricing.ResolveStock(p, v, s)
		if stock <= 0 || item.Quantity > stock {
			gateFail("stock")
			return Request{}, nil, &GateError{Reason: ReasonOutOfStock, LineKey: item.Key}
		}
		if a.PricePolicy == config.PricePolicyReprice {
			items[i].UnitPrice = pricing.ResolvePrice(p, v, s)
		}
	}

	// Contact gate.
	v := a.Validator
	if v == nil {
		v = NewValidator()
	}
	if fields := validateContact(v, in.Contact); len(fields) > 0 {
		gateFail("contact")
		return Request{}, nil, &GateError{Reason: ReasonInvalidContactField, Fields: fields}
	}

	// Shipping gate.
	if in.Selector == nil || !in.Selector.Complete() {
		gateFail("shipping")
		return Request{}, nil, &GateError{Reason: ReasonMissingShippingSelection}
	}
	rate, _ := in.Selector.Selected()
	courier := in.Selector.Courier()

	// Consistency gate: the international tariff cannot carry cash on
	// delivery. Downgrade instead of failing and tell the caller.
	var notices []Notice
	payment := in.Payment
	if payment == "" {
		payment = pricing.PaymentAutomatic
	}
	if shipping.IsInternational(courier) && payment == pricing.PaymentCOD {
		payment = pricing.PaymentAutomatic
		notices = append(notices, Notice{
			Kind:   NoticePaymentDowngraded,
			Detail: "cash on delivery is unavailable for international shipping; switched to automatic payment",
		})
	}

	pricingItems := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		pricingItems = append(pricingItems, pricing.Item{Qty: it.Quantity, UnitPrice: it.UnitPrice})
	}
	totals := pricing.Compute(pricingItems, in.Voucher, rate.Cost, payment)

	var voucherIDs []int64
	if in.Voucher != nil {
		voucherIDs = append(voucherIDs, in.Voucher.ID)
	}

	return Request{
		Contact:    in.Contact,
		Courier:    courier,
		Shipping:   rate,
		Payment:    payment,
		VoucherIDs: voucherIDs,
		Items:      items,
		Totals:     totals,
	}, notices, nil
}

// Ack is the order collaborator's confirmation of a created order.
type Ack struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// OrderCreator is the external order-creation collaborator.
type OrderCreator interface {
	Create(ctx context.Context, req Request) (Ack, error)
}

func gateFail(gate string) {
	if obs.CheckoutGateFailTotal != nil {
		obs.CheckoutGateFailTotal.WithLabelValues(gate).Inc()
	}
}
