package catalog

// The catalog hierarchy is product -> variant -> size. Price deltas accumulate
// down the hierarchy while stock overrides: the deepest level that carries a
// stock value wins outright.

// Product is the root of the catalog hierarchy.
type Product struct {
	ID           int64
	Name         string
	CategoryName string
	Price        int64
	MarkupPrice  *int64
	Stock        int
	Image        string
}

// Variant belongs to a product. A nil Stock inherits the product stock.
type Variant struct {
	ID         int64
	ProductID  int64
	Name       string
	PriceDelta int64
	Stock      *int
	Image      string
}

// Size belongs to a variant. A nil Stock inherits the variant (or product) stock.
type Size struct {
	ID         int64
	VariantID  int64
	Name       string
	PriceDelta int64
	Stock      *int
}

// productDTO mirrors the loosely-shaped remote payload. Optional fields stay
// pointers here and are resolved exactly once in normalize.
type productDTO struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	CategoryName string  `json:"categoryName"`
	Price        *int64  `json:"price"`
	MarkupPrice  *int64  `json:"markupPrice"`
	Stock        *int    `json:"stock"`
	Image        *string `json:"image"`
}

type variantDTO struct {
	ID         int64   `json:"id"`
	ProductID  int64   `json:"productId"`
	Name       string  `json:"name"`
	PriceDelta *int64  `json:"priceDelta"`
	Stock      *int    `json:"stock"`
	Image      *string `json:"image"`
}

type sizeDTO struct {
	ID         int64  `json:"id"`
	VariantID  int64  `json:"variantId"`
	Name       string `json:"name"`
	PriceDelta *int64 `json:"priceDelta"`
	Stock      *int   `json:"stock"`
}

func (d productDTO) normalize() Product {
	p := Product{
		ID:           d.ID,
		Name:         d.Name,
		CategoryName: d.CategoryName,
		MarkupPrice:  d.MarkupPrice,
	}
	if d.Price != nil && *d.Price > 0 {
		p.Price = *d.Price
	}
	if d.Stock != nil && *d.Stock > 0 {
		p.Stock = *d.Stock
	}
	if d.Image != nil {
		p.Image = *d.Image
	}
	return p
}

func (d variantDTO) normalize() Variant {
	v := Variant{
		ID:        d.ID,
		ProductID: d.ProductID,
		Name:      d.Name,
		Stock:     d.Stock,
	}
	if d.PriceDelta != nil {
		v.PriceDelta = *d.PriceDelta
	}
	if d.Image != nil {
		v.Image = *d.Image
	}
	return v
}

func (d sizeDTO) normalize() Size {
	s := Size{
		ID:        d.ID,
		VariantID: d.VariantID,
		Name:      d.Name,
		Stock:     d.Stock,
	}
	if d.PriceDelta != nil {
		s.PriceDelta = *d.PriceDelta
	}
	return s
}
