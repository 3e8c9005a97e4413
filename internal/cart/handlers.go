package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/voucher"
)

// Handler wires cart sessions to HTTP.
type Handler struct {
	Sessions *Sessions
	Catalog  catalog.Client
	Vouchers voucher.Resolver
}

// Create allocates a new guest cart session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := h.Sessions.Create(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to create cart session", nil)
		return
	}
	common.JSONData(w, http.StatusCreated, map[string]any{"sessionId": session.ID})
}

// Get returns cart contents, grouped rows and a totals preview.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	h.writeCart(w, r.Context(), http.StatusOK, session)
}

type addItemPayload struct {
	ProductID int64 `json:"productId"`
	VariantID int64 `json:"variantId"`
	SizeID    int64 `json:"sizeId"`
	Qty       int   `json:"qty"`
}

// AddItem merges a (product, variant, size) combination into the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	var payload addItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if payload.Qty <= 0 {
		payload.Qty = 1
	}
	if payload.ProductID <= 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "productId is required", nil)
		return
	}

	p, v, s, err := h.lookup(r.Context(), payload.ProductID, payload.VariantID, payload.SizeID)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	if _, err := session.Store.AddItem(p, v, s, payload.Qty); err != nil {
		cartOp("add", "rejected")
		h.writeStoreError(w, err, Key(payload.ProductID, payload.VariantID, payload.SizeID))
		return
	}
	cartOp("add", "ok")
	if err := h.Sessions.Save(r.Context(), session); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to persist cart", nil)
		return
	}
	h.writeCart(w, r.Context(), http.StatusCreated, session)
}

type updateItemPayload struct {
	Op string `json:"op"`
}

// UpdateItem increases or decreases a line quantity by one.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")
	var payload updateItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	var err error
	switch strings.ToLower(strings.TrimSpace(payload.Op)) {
	case "increase":
		// Refresh the stock snapshot before bumping so the ceiling reflects
		// the currently loaded catalog state, not the one from add time.
		if item, found := session.Store.Item(key); found {
			if p, v, s, lookupErr := h.lookup(r.Context(), item.ProductID, item.VariantID, item.SizeID); lookupErr == nil {
				_, _ = session.Store.RefreshStock(key, pricing.ResolveStock(p, v, s))
			}
		}
		_, err = session.Store.IncreaseItemQuantity(key)
		cartOpOutcome("increase", err)
	case "decrease":
		_, err = session.Store.DecreaseItemQuantity(key)
		cartOpOutcome("decrease", err)
	default:
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "op must be increase or decrease", nil)
		return
	}
	if err != nil {
		h.writeStoreError(w, err, key)
		return
	}
	if err := h.Sessions.Save(r.Context(), session); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to persist cart", nil)
		return
	}
	h.writeCart(w, r.Context(), http.StatusOK, session)
}

// RemoveItem deletes one line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")
	if err := session.Store.RemoveItem(key); err != nil {
		cartOp("remove", "rejected")
		h.writeStoreError(w, err, key)
		return
	}
	cartOp("remove", "ok")
	if err := h.Sessions.Save(r.Context(), session); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to persist cart", nil)
		return
	}
	h.writeCart(w, r.Context(), http.StatusOK, session)
}

// Clear empties the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	session.Store.Clear()
	session.VoucherCode = ""
	cartOp("clear", "ok")
	if err := h.Sessions.Save(r.Context(), session); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to persist cart", nil)
		return
	}
	h.writeCart(w, r.Context(), http.StatusOK, session)
}

type voucherPayload struct {
	Code string `json:"code"`
}

// ApplyVoucher resolves a code and attaches it to the session.
func (h *Handler) ApplyVoucher(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	var payload voucherPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Code) == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "voucher code is required", nil)
		return
	}
	resolved, err := h.Vouchers.Resolve(r.Context(), payload.Code)
	if err != nil {
		if errors.Is(err, voucher.ErrUnknownCode) {
			common.JSONError(w, http.StatusNotFound, "VOUCHER_UNKNOWN", "voucher code not recognised", nil)
			return
		}
		common.WriteAppError(w, common.Upstream("unable to resolve voucher", err))
		return
	}
	session.VoucherCode = resolved.Code
	if err := h.Sessions.Save(r.Context(), session); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to persist cart", nil)
		return
	}
	h.writeCart(w, r.Context(), http.StatusOK, session)
}

// RemoveVoucher detaches any applied voucher.
func (h *Handler) RemoveVoucher(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	session.VoucherCode = ""
	if err := h.Sessions.Save(r.Context(), session); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to persist cart", nil)
		return
	}
	h.writeCart(w, r.Context(), http.StatusOK, session)
}

func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (Session, bool) {
	id := chi.URLParam(r, "id")
	session, err := h.Sessions.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart session not found", nil)
		} else {
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load cart session", nil)
		}
		return Session{}, false
	}
	return session, true
}

// lookup fetches and pins the (product, variant, size) triple from the catalog.
func (h *Handler) lookup(ctx context.Context, productID, variantID, sizeID int64) (catalog.Product, *catalog.Variant, *catalog.Size, error) {
	p, err := h.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return catalog.Product{}, nil, nil, err
	}
	var v *catalog.Variant
	if variantID != 0 {
		variants, err := h.Catalog.GetVariants(ctx, productID)
		if err != nil {
			return catalog.Product{}, nil, nil, err
		}
		for i := range variants {
			if variants[i].ID == variantID {
				v = &variants[i]
				break
			}
		}
		if v == nil {
			return catalog.Product{}, nil, nil, catalog.ErrNotFound
		}
	}
	var s *catalog.Size
	if sizeID != 0 {
		if v == nil {
			return catalog.Product{}, nil, nil, catalog.ErrNotFound
		}
		sizes, err := h.Catalog.GetSizes(ctx, v.ID)
		if err != nil {
			return catalog.Product{}, nil, nil, err
		}
		for i := range sizes {
			if sizes[i].ID == sizeID {
				s = &sizes[i]
				break
			}
		}
		if s == nil {
			return catalog.Product{}, nil, nil, catalog.ErrNotFound
		}
	}
	return p, v, s, nil
}

func (h *Handler) writeCart(w http.ResponseWriter, ctx context.Context, status int, session Session) {
	var applied *voucher.Voucher
	if session.VoucherCode != "" && h.Vouchers != nil {
		if resolved, err := h.Vouchers.Resolve(ctx, session.VoucherCode); err == nil {
			applied = &resolved
		}
	}
	totals := pricing.Compute(session.Store.PricingItems(), applied, 0, pricing.PaymentAutomatic)
	if obs.CartItems != nil {
		obs.CartItems.Observe(float64(session.Store.Len()))
	}
	common.JSONData(w, status, map[string]any{
		"sessionId": session.ID,
		"items":     session.Store.Items(),
		"groups":    session.Store.GroupByProduct(),
		"voucher":   applied,
		"totals":    totals,
	})
}

func (h *Handler) writeCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "catalog entity not found", nil)
		return
	}
	common.WriteAppError(w, common.Upstream("unable to reach catalog", err))
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error, key string) {
	switch {
	case errors.Is(err, ErrOutOfStock):
		common.WriteAppError(w, common.Conflict("OUT_OF_STOCK", "no stock available for this combination", map[string]any{"lineKey": key}))
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "line item not found", map[string]any{"lineKey": key})
	case errors.Is(err, ErrInvalidInput):
		common.WriteAppError(w, common.BadRequest("BAD_REQUEST", err.Error(), nil))
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart operation failed", nil)
	}
}

func cartOp(op, result string) {
	if obs.CartOpsTotal != nil {
		obs.CartOpsTotal.WithLabelValues(op, result).Inc()
	}
}

func cartOpOutcome(op string, err error) {
	if err != nil {
		cartOp(op, "rejected")
		return
	}
	cartOp(op, "ok")
}
