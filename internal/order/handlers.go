package order

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/toko-storefront/internal/common"
)

// Handler proxies order tracking lookups.
type Handler struct {
	Client *Client
}

// Track returns the collaborator's status for a placed order.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if orderID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "orderId is required", nil)
		return
	}
	status, err := h.Client.Track(r.Context(), orderID)
	if err != nil {
		common.WriteAppError(w, common.Upstream("unable to fetch order status", err))
		return
	}
	common.JSONData(w, http.StatusOK, status)
}
