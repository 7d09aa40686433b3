package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/montoanel/deliveryweb-backend/internal/modules/addon"
	"github.com/montoanel/deliveryweb-backend/internal/modules/catalog"
)

// Handler exposes order HTTP endpoints. Payments against an open cash
// session go through the settlement routes instead of these.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", h.placeOrder)
		r.Get("/", h.listOrders)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}/items", h.replaceItems)
		r.Delete("/{id}", h.cancelOrder)
		r.Post("/addon-preview/{product_id}", h.previewAddons)
	})
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.PlaceOrder(r.Context(), req)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) replaceItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req ReplaceItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.ReplaceItems(r.Context(), id, req)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.CancelOrder(r.Context(), id)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) previewAddons(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req struct {
		Selections []int64 `json:"selections"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	allocations, err := h.service.PreviewAddons(r.Context(), productID, req.Selections)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, allocations)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrPaymentNotFound),
		errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, catalog.ErrNeighborhoodNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrOrderAlreadySettled), errors.Is(err, ErrOrderCancelled),
		errors.Is(err, ErrOverpaymentNotAllowed), errors.Is(err, ErrHasPayments),
		errors.Is(err, addon.ErrInvalidAddonSelection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
