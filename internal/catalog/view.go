package catalog

import (
	"context"
	"fmt"
)

// View is the most recently fetched catalog state relevant to a cart. Price
// and stock snapshots are re-resolved against it synchronously; it is only
// ever replaced wholesale by Refresh, never patched in place.
type View struct {
	products map[int64]Product
	variants map[int64]Variant
	sizes    map[int64]Size
}

// NewView builds a view from already-fetched catalog entities.
func NewView(products []Product, variants []Variant, sizes []Size) *View {
	v := &View{
		products: make(map[int64]Product, len(products)),
		variants: make(map[int64]Variant, len(variants)),
		sizes:    make(map[int64]Size, len(sizes)),
	}
	for _, p := range products {
		v.products[p.ID] = p
	}
	for _, vr := range variants {
		v.variants[vr.ID] = vr
	}
	for _, s := range sizes {
		v.sizes[s.ID] = s
	}
	return v
}

// Product looks up a product by id.
func (v *View) Product(id int64) (Product, bool) {
	if v == nil {
		return Product{}, false
	}
	p, ok := v.products[id]
	return p, ok
}

// Variant looks up a variant by id.
func (v *View) Variant(id int64) (Variant, bool) {
	if v == nil {
		return Variant{}, false
	}
	vr, ok := v.variants[id]
	return vr, ok
}

// Size looks up a size by id.
func (v *View) Size(id int64) (Size, bool) {
	if v == nil {
		return Size{}, false
	}
	s, ok := v.sizes[id]
	return s, ok
}

// Lookup resolves the (product, variant, size) triple for a cart line. Variant
// and size come back nil when the respective id is zero.
func (v *View) Lookup(productID, variantID, sizeID int64) (Product, *Variant, *Size, error) {
	p, ok := v.Product(productID)
	if !ok {
		return Product{}, nil, nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	var variant *Variant
	if variantID != 0 {
		vr, ok := v.Variant(variantID)
		if !ok || vr.ProductID != productID {
			return Product{}, nil, nil, fmt.Errorf("variant %d: %w", variantID, ErrNotFound)
		}
		variant = &vr
	}
	var size *Size
	if sizeID != 0 {
		if variant == nil {
			return Product{}, nil, nil, fmt.Errorf("size %d without variant: %w", sizeID, ErrNotFound)
		}
		s, ok := v.Size(sizeID)
		if !ok || s.VariantID != variant.ID {
			return Product{}, nil, nil, fmt.Errorf("size %d: %w", sizeID, ErrNotFound)
		}
		size = &s
	}
	return p, variant, size, nil
}

// FetchView loads the full hierarchy for the given product ids from the
// remote catalog. Used to refresh the view right before checkout, shrinking
// the staleness window where it matters most.
func FetchView(ctx context.Context, client Client, productIDs []int64) (*View, error) {
	var (
		products []Product
		variants []Variant
		sizes    []Size
	)
	seen := make(map[int64]bool, len(productIDs))
	for _, id := range productIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		p, err := client.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
		vs, err := client.GetVariants(ctx, id)
		if err != nil {
			return nil, err
		}
		variants = append(variants, vs...)
		for _, vr := range vs {
			ss, err := client.GetSizes(ctx, vr.ID)
			if err != nil {
				return nil, err
			}
			sizes = append(sizes, ss...)
		}
	}
	return NewView(products, variants, sizes), nil
}
