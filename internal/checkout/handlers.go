package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/shipping"
	"github.com/noah-isme/toko-storefront/internal/voucher"
)

// Handler drives the checkout flow over HTTP.
type Handler struct {
	Sessions   *cart.Sessions
	Catalog    catalog.Client
	Vouchers   voucher.Resolver
	Shipping   shipping.Client
	Origin     string
	AutoSelect bool
	Submitter  *Submitter
	Events     *events.Bus
	Log        zerolog.Logger
}

type submitPayload struct {
	Contact     Contact `json:"contact"`
	Courier     string  `json:"courier"`
	Service     string  `json:"service"`
	Destination string  `json:"destination"`
	WeightGram  int     `json:"weightGram"`
	Payment     string  `json:"payment"`
}

// Submit runs a full checkout attempt for the session.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	session, err := h.Sessions.Load(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, cart.ErrSessionNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart session not found", nil)
		} else {
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load cart session", nil)
		}
		return
	}

	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	in, err := h.buildInput(r, session, payload)
	if err != nil {
		h.writeFlowError(w, err)
		return
	}

	ack, notices, err := h.Submitter.Submit(r.Context(), sessionID, in)
	if err != nil {
		h.writeFlowError(w, err)
		return
	}

	// Only a confirmed success empties the cart.
	session.Store.Clear()
	session.VoucherCode = ""
	if err := h.Sessions.Save(r.Context(), session); err != nil {
		h.Log.Error().Err(err).Str("session_id", sessionID).Msg("cart clear after order confirmation failed")
	}
	if h.Events != nil {
		_ = h.Events.Emit(r.Context(), events.TopicCartCleared, events.Payload{"sessionId": sessionID})
	}

	common.JSONData(w, http.StatusCreated, map[string]any{
		"order":   ack,
		"notices": notices,
	})
}

// Cancel expires any in-flight submission for the session, so a response that
// arrives afterwards is discarded instead of creating a surprise order state.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	h.Submitter.Generations.Invalidate(sessionID)
	common.JSONData(w, http.StatusOK, map[string]any{"sessionId": sessionID, "status": "cancelled"})
}

func (h *Handler) buildInput(r *http.Request, session cart.Session, payload submitPayload) (Input, error) {
	ctx := r.Context()

	view, err := catalog.FetchView(ctx, h.Catalog, session.Store.ProductIDs())
	if err != nil {
		return Input{}, &GateError{Reason: ReasonRemoteFailure, Err: err}
	}

	var applied *voucher.Voucher
	if session.VoucherCode != "" && h.Vouchers != nil {
		resolved, err := h.Vouchers.Resolve(ctx, session.VoucherCode)
		if err != nil {
			if !errors.Is(err, voucher.ErrUnknownCode) {
				return Input{}, &GateError{Reason: ReasonRemoteFailure, Err: err}
			}
			// A voucher withdrawn since it was applied degrades to no discount.
			h.Log.Warn().Str("code", session.VoucherCode).Msg("applied voucher no longer resolvable")
		} else {
			applied = &resolved
		}
	}

	selector := &shipping.Selector{AutoSelect: h.AutoSelect}
	if payload.Courier != "" {
		selector.SetCourier(payload.Courier)
		weight := payload.WeightGram
		if weight <= 0 {
			weight = 1000
		}
		options, err := shipping.OptionsFor(ctx, h.Shipping, shipping.RateReq{
			Origin:      h.Origin,
			Destination: payload.Destination,
			WeightGram:  weight,
			Courier:     payload.Courier,
		})
		if err != nil {
			return Input{}, &GateError{Reason: ReasonRemoteFailure, Err: err}
		}
		selector.SetOptions(options)
		if payload.Service != "" {
			if err := selector.Select(payload.Service); err != nil {
				return Input{}, &GateError{Reason: ReasonMissingShippingSelection, Err: err}
			}
		}
	}

	return Input{
		Items:    session.Store.Items(),
		View:     view,
		Voucher:  applied,
		Selector: selector,
		Payment:  pricing.PaymentType(payload.Payment),
		Contact:  payload.Contact,
	}, nil
}

func (h *Handler) writeFlowError(w http.ResponseWriter, err error) {
	var gateErr *GateError
	if !errors.As(err, &gateErr) {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout failed", nil)
		return
	}

	details := map[string]any{}
	if gateErr.LineKey != "" {
		details["lineKey"] = gateErr.LineKey
	}
	if len(gateErr.Fields) > 0 {
		details["fields"] = gateErr.Fields
	}
	if len(details) == 0 {
		details = nil
	}

	status := http.StatusBadRequest
	switch gateErr.Reason {
	case ReasonOutOfStock, ReasonSuperseded:
		status = http.StatusConflict
	case ReasonInvalidContactField:
		status = http.StatusUnprocessableEntity
	case ReasonRemoteFailure:
		status = http.StatusBadGateway
	}
	common.JSONError(w, status, string(gateErr.Reason), gateErr.Error(), details)
}
