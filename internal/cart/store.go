package cart

import (
	"errors"
	"fmt"

	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/pricing"
)

var (
	// ErrOutOfStock indicates the effective stock for the combination is exhausted.
	ErrOutOfStock = errors.New("cart: out of stock")
	// ErrNotFound indicates no line item exists for the given key.
	ErrNotFound = errors.New("cart: line item not found")
	// ErrInvalidInput is returned when the provided arguments are invalid.
	ErrInvalidInput = errors.New("cart: invalid input")
)

// Key is the composite identity of a cart line: product, variant and size ids
// joined with dashes. An absent size uses the zero sentinel. Two adds with the
// same triple always merge into one line; keys never merge across triples.
func Key(productID, variantID, sizeID int64) string {
	return fmt.Sprintf("%d-%d-%d", productID, variantID, sizeID)
}

// LineItem is one row in the cart. UnitPrice is frozen at add time; StockAtAdd
// is the effective stock snapshot used for clamping and may go stale relative
// to the catalog.
type LineItem struct {
	Key          string `json:"key"`
	ProductID    int64  `json:"productId"`
	VariantID    int64  `json:"variantId"`
	SizeID       int64  `json:"sizeId,omitempty"`
	Name         string `json:"name"`
	CategoryName string `json:"categoryName"`
	Image        string `json:"image,omitempty"`
	UnitPrice    int64  `json:"unitPrice"`
	Quantity     int    `json:"quantity"`
	StockAtAdd   int    `json:"stockAtAdd"`
}

// Store is the session-scoped cart state container. It is not safe for
// concurrent use: mutations are serialised by the single-writer request flow
// that owns the session.
type Store struct {
	items map[string]*LineItem
	order []string
}

// NewStore constructs an empty cart.
func NewStore() *Store {
	return &Store{items: make(map[string]*LineItem)}
}

// AddItem merges qty units of the (product, variant, size) combination into
// the cart, creating the line on first add. Price and stock are resolved at
// call time; the quantity is clamped to the refreshed stock snapshot.
func (s *Store) AddItem(p catalog.Product, v *catalog.Variant, sz *catalog.Size, qty int) (*LineItem, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	if v != nil && v.ProductID != p.ID {
		return nil, fmt.Errorf("variant does not belong to product: %w", ErrInvalidInput)
	}
	if sz != nil {
		if v == nil {
			return nil, fmt.Errorf("size requires a variant: %w", ErrInvalidInput)
		}
		if sz.VariantID != v.ID {
			return nil, fmt.Errorf("size does not belong to variant: %w", ErrInvalidInput)
		}
	}

	stock := pricing.ResolveStock(p, v, sz)
	if stock <= 0 {
		return nil, ErrOutOfStock
	}

	key := Key(p.ID, variantID(v), sizeID(sz))
	if existing, ok := s.items[key]; ok {
		existing.StockAtAdd = stock
		existing.Quantity = clamp(existing.Quantity+qty, 1, stock)
		return existing, nil
	}

	item := &LineItem{
		Key:          key,
		ProductID:    p.ID,
		VariantID:    variantID(v),
		SizeID:       sizeID(sz),
		Name:         lineName(p, v, sz),
		CategoryName: p.CategoryName,
		Image:        lineImage(p, v),
		UnitPrice:    pricing.ResolvePrice(p, v, sz),
		Quantity:     clamp(qty, 1, stock),
		StockAtAdd:   stock,
	}
	s.items[key] = item
	s.order = append(s.order, key)
	return item, nil
}

// IncreaseItemQuantity bumps the quantity by one, capped at the stock
// snapshot. The ceiling is enforced here even though the UI disables the
// control at the cap.
func (s *Store) IncreaseItemQuantity(key string) (*LineItem, error) {
	item, ok := s.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	if item.Quantity < item.StockAtAdd {
		item.Quantity++
	}
	return item, nil
}

// RefreshStock updates the stock snapshot of an existing line, re-clamping its
// quantity. Used when a fresher catalog view is available at increase time.
func (s *Store) RefreshStock(key string, stock int) (*LineItem, error) {
	item, ok := s.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	item.StockAtAdd = stock
	if stock >= 1 {
		item.Quantity = clamp(item.Quantity, 1, stock)
	}
	return item, nil
}

// DecreaseItemQuantity lowers the quantity by one with a floor of one. A line
// is never removed implicitly; removal is an explicit action.
func (s *Store) DecreaseItemQuantity(key string) (*LineItem, error) {
	item, ok := s.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	if item.Quantity > 1 {
		item.Quantity--
	}
	return item, nil
}

// RemoveItem deletes the line with the given key.
func (s *Store) RemoveItem(key string) error {
	if _, ok := s.items[key]; !ok {
		return ErrNotFound
	}
	delete(s.items, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear empties the cart. Idempotent; invoked only after a confirmed checkout.
func (s *Store) Clear() {
	s.items = make(map[string]*LineItem)
	s.order = nil
}

// Len returns the number of line items.
func (s *Store) Len() int {
	return len(s.items)
}

// Item returns the line with the given key.
func (s *Store) Item(key string) (LineItem, bool) {
	item, ok := s.items[key]
	if !ok {
		return LineItem{}, false
	}
	return *item, true
}

// Items returns a copy of all lines in insertion order.
func (s *Store) Items() []LineItem {
	out := make([]LineItem, 0, len(s.order))
	for _, key := range s.order {
		if item, ok := s.items[key]; ok {
			out = append(out, *item)
		}
	}
	return out
}

// ProductIDs returns the distinct product ids present, in insertion order.
func (s *Store) ProductIDs() []int64 {
	seen := make(map[int64]bool, len(s.order))
	var out []int64
	for _, item := range s.Items() {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			out = append(out, item.ProductID)
		}
	}
	return out
}

// Group is a read-side view of the cart lines sharing one product.
type Group struct {
	ProductID int64      `json:"productId"`
	Items     []LineItem `json:"items"`
}

// GroupByProduct groups lines by product id preserving insertion order. This
// is purely presentational: lines with different keys are never merged.
func (s *Store) GroupByProduct() []Group {
	index := make(map[int64]int)
	var groups []Group
	for _, item := range s.Items() {
		i, ok := index[item.ProductID]
		if !ok {
			index[item.ProductID] = len(groups)
			groups = append(groups, Group{ProductID: item.ProductID})
			i = len(groups) - 1
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// PricingItems converts the cart snapshot into totals-engine line items.
func (s *Store) PricingItems() []pricing.Item {
	items := s.Items()
	out := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		out = append(out, pricing.Item{Qty: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return out
}

func variantID(v *catalog.Variant) int64 {
	if v == nil {
		return 0
	}
	return v.ID
}

func sizeID(s *catalog.Size) int64 {
	if s == nil {
		return 0
	}
	return s.ID
}

func lineName(p catalog.Product, v *catalog.Variant, s *catalog.Size) string {
	name := p.Name
	if v != nil && v.Name != "" {
		name += " " + v.Name
	}
	if s != nil && s.Name != "" {
		name += " " + s.Name
	}
	return name
}

func lineImage(p catalog.Product, v *catalog.Variant) string {
	if v != nil && v.Image != "" {
		return v.Image
	}
	return p.Image
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
