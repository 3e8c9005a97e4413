package shipping

import (
	"net/http"
	"strings"

	"github.com/noah-isme/toko-storefront/internal/common"
)

// Handler exposes rate quoting over HTTP.
type Handler struct {
	Client Client
	Origin string
}

// Rates quotes options for ?courier=&destination=&weight=. Destination and
// weight are required only for dynamically quoted couriers.
func (h *Handler) Rates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	courier := strings.TrimSpace(q.Get("courier"))
	if courier == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "courier is required", nil)
		return
	}

	req := RateReq{
		Origin:      h.Origin,
		Destination: strings.TrimSpace(q.Get("destination")),
		WeightGram:  common.AtoiDefault(q.Get("weight"), 1000),
		Courier:     courier,
	}
	if courier != CourierCOD && courier != CourierInternational && req.Destination == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "destination is required for this courier", nil)
		return
	}

	rates, err := OptionsFor(r.Context(), h.Client, req)
	if err != nil {
		common.WriteAppError(w, common.Upstream("unable to quote shipping rates", err))
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"courier": courier, "rates": rates})
}
