package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/config"
	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/shipping"
	"github.com/noah-isme/toko-storefront/internal/voucher"
)

func validContact() Contact {
	return Contact{
		Name:         "Budi Santoso",
		Phone:        "081234567890",
		Email:        "budi@example.com",
		AddressLine1: "Jl. Sudirman No. 1",
		City:         "Jakarta",
		PostalCode:   "10110",
	}
}

func testViewStock(stock int) *catalog.View {
	return catalog.NewView(
		[]catalog.Product{{ID: 1, Name: "Kemeja", Price: 150000, Stock: stock}},
		nil,
		nil,
	)
}

func testItems(qty int) []cart.LineItem {
	return []cart.LineItem{{
		Key:       cart.Key(1, 0, 0),
		ProductID: 1,
		UnitPrice: 150000,
		Quantity:  qty,
	}}
}

func domesticSelector() *shipping.Selector {
	s := &shipping.Selector{}
	s.SetCourier("jne")
	s.SetOptions([]shipping.Rate{{Courier: "jne", Service: "REG", Cost: 15000, ETD: "2-3"}})
	return s
}

func internationalSelector() *shipping.Selector {
	s := &shipping.Selector{}
	s.SetCourier(shipping.CourierInternational)
	s.SetOptions(shipping.InternationalRates()[:1])
	return s
}

func TestAssembleHappyPath(t *testing.T) {
	a := &Assembler{Validator: NewValidator()}
	req, notices, err := a.Assemble(Input{
		Items:    testItems(2),
		View:     testViewStock(10),
		Selector: domesticSelector(),
		Payment:  pricing.PaymentManual,
		Contact:  validContact(),
	})
	require.NoError(t, err)
	require.Empty(t, notices)
	require.Equal(t, "jne", req.Courier)
	require.Equal(t, pricing.PaymentManual, req.Payment)
	require.Equal(t, int64(300000), req.Totals.Subtotal)
	require.Equal(t, int64(315000), req.Totals.Total)
}

func TestAssembleEmptyCart(t *testing.T) {
	a := &Assembler{Validator: NewValidator()}
	_, _, err := a.Assemble(Input{Contact: validContact(), Selector: domesticSelector()})

	var gateErr *GateError
	require.ErrorAs(t, err, &gateErr)
	require.Equal(t, ReasonEmptyCart, gateErr.Reason)
}

func TestAssembleStockGate(t *testing.T) {
	a := &Assembler{Validator: NewValidator()}

	// Quantity above current stock.
	_, _, err := a.Assemble(Input{
		Items:    testItems(5),
		View:     testViewStock(2),
		Selector: domesticSelector(),
		Contact:  validContact(),
	})
	var gateErr *GateError
	require.ErrorAs(t, err, &gateErr)
	require.Equal(t, ReasonOutOfStock, gateErr.Reason)
	require.Equal(t, cart.Key(1, 0, 0), gateErr.LineKey)

	// Product vanished from the catalog entirely.
	_, _, err = a.Assemble(Input{
		Items:    testItems(1),
		View:     catalog.NewView(nil, nil, nil),
		Selector: domesticSelector(),
		Contact:  validContact(),
	})
	require.ErrorAs(t, err, &gateErr)
	require.Equal(t, ReasonOutOfStock, gateErr.Reason)
}

func TestAssembleContactGate(t *testing.T) {
	a := &Assembler{Validator: NewValidator()}
	contact := validContact()
	contact.Phone = "12345"
	contact.Email = ""

	_, _, err := a.Assemble(Input{
		Items:    testItems(1),
		View:     testViewStock(10),
		Selector: domesticSelector(),
		Contact:  contact,
	})
	var gateErr *GateError
	require.ErrorAs(t, err, &gateErr)
	require.Equal(t, ReasonInvalidContactField, gateErr.Reason)
	require.Len(t, gateErr.Fields, 2)

	fields := map[string]string{}
	for _, fe := range gateErr.Fields {
		fields[fe.Field] = fe.Detail
	}
	require.Equal(t, "must be a valid mobile number", fields["Phone"])
	require.Equal(t, "required", fields["Email"])
}

func TestAssembleShippingGate(t *testing.T) {
	a := &Assembler{Validator: NewValidator()}

	// No selector at all.
	_, _, err := a.Assemble(Input{
		Items:   testItems(1),
		View:    testViewStock(10),
		Contact: validContact(),
	})
	var gateErr *GateError
	require.ErrorAs(t, err, &gateErr)
	require.Equal(t, ReasonMissingShippingSelection, gateErr.Reason)

	// Courier chosen but no rate picked.
	selector := &shipping.Selector{}
	selector.SetCourier("jne")
	selector.SetOptions([]shipping.Rate{
		{Service: "REG", Cost: 15000},
		{Service: "YES", Cost: 30000},
	})
	_, _, err = a.Assemble(Input{
		Items:    testItems(1),
		View:     testViewStock(10),
		Selector: selector,
		Contact:  validContact(),
	})
	require.ErrorAs(t, err, &gateErr)
	require.Equal(t, ReasonMissingShippingSelection, gateErr.Reason)
}

func TestAssembleInternationalCODDowngrade(t *testing.T) {
	a := &Assembler{Validator: NewValidator()}
	req, notices, err := a.Assemble(Input{
		Items:    testItems(1),
		View:     testViewStock(10),
		Selector: internationalSelector(),
		Payment:  pricing.PaymentCOD,
		Contact:  validContact(),
	})
	require.NoError(t, err)
	require.Equal(t, pricing.PaymentAutomatic, req.Payment)
	require.Len(t, notices, 1)
	require.Equal(t, NoticePaymentDowngraded, notices[0].Kind)
	// Automatic payment carries no COD surcharge.
	require.Zero(t, req.Totals.CODSurcharge)
}

func TestAssembleDomesticCODKeepsSurcharge(t *testing.T) {
	a := &Assembler{Validator: NewValidator()}
	selector := &shipping.Selector{}
	selector.SetCourier(shipping.CourierCOD)
	selector.SetOptions(shipping.CODRates()[:1])

	req, notices, err := a.Assemble(Input{
		Items:    testItems(2),
		View:     testViewStock(10),
		Selector: selector,
		Payment:  pricing.PaymentCOD,
		Contact:  validContact(),
		Voucher:  &voucher.Voucher{ID: 7, Kind: voucher.KindFixed, Amount: 50000},
	})
	require.NoError(t, err)
	require.Empty(t, notices)
	require.Equal(t, pricing.PaymentCOD, req.Payment)
	require.Equal(t, []int64{7}, req.VoucherIDs)
	// 2% of 300000-50000+10000 = 260000.
	require.Equal(t, int64(5200), req.Totals.CODSurcharge)
	require.Equal(t, int64(265200), req.Totals.Total)
}

func TestAssembleFrozenPolicyKeepsAddTimePrice(t *testing.T) {
	a := &Assembler{Validator: NewValidator(), PricePolicy: config.PricePolicyFrozen}
	view := catalog.NewView([]catalog.Product{{ID: 1, Price: 999999, Stock: 10}}, nil, nil)

	req, _, err := a.Assemble(Input{
		Items:    testItems(1),
		View:     view,
		Selector: domesticSelector(),
		Contact:  validContact(),
	})
	require.NoError(t, err)
	require.Equal(t, int64(150000), req.Items[0].UnitPrice)
	require.Equal(t, int64(150000), req.Totals.Subtotal)
}

func TestAssembleRepricePolicyUsesCatalogPrice(t *testing.T) {
	a := &Assembler{Validator: NewValidator(), PricePolicy: config.PricePolicyReprice}
	view := catalog.NewView([]catalog.Product{{ID: 1, Price: 180000, Stock: 10}}, nil, nil)

	req, _, err := a.Assemble(Input{
		Items:    testItems(1),
		View:     view,
		Selector: domesticSelector(),
		Contact:  validContact(),
	})
	require.NoError(t, err)
	require.Equal(t, int64(180000), req.Items[0].UnitPrice)
	require.Equal(t, int64(180000), req.Totals.Subtotal)
}

func TestAssembleDoesNotMutateInput(t *testing.T) {
	a := &Assembler{Validator: NewValidator(), PricePolicy: config.PricePolicyReprice}
	items := testItems(1)
	view := catalog.NewView([]catalog.Product{{ID: 1, Price: 180000, Stock: 10}}, nil, nil)

	_, _, err := a.Assemble(Input{
		Items:    items,
		View:     view,
		Selector: domesticSelector(),
		Contact:  validContact(),
	})
	require.NoError(t, err)
	require.Equal(t, int64(150000), items[0].UnitPrice)
}
