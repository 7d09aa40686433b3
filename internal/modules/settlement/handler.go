package settlement

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/montoanel/deliveryweb-backend/internal/modules/cashier"
	"github.com/montoanel/deliveryweb-backend/internal/modules/order"
)

// Handler exposes the settlement HTTP endpoint.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/orders/{id}/settle", h.settlePayment)
}

func (h *Handler) settlePayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req struct {
		OperatorID string  `json:"operator_id"`
		Amount     float64 `json:"amount"`
		MethodID   int64   `json:"method_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	operatorID, err := uuid.Parse(req.OperatorID)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := h.service.SettleSalePayment(r.Context(), orderID, operatorID, req.Amount, req.MethodID)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, result)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoActiveSession), errors.Is(err, cashier.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, order.ErrOverpaymentNotAllowed), errors.Is(err, order.ErrOrderAlreadySettled),
		errors.Is(err, order.ErrOrderCancelled):
		return http.StatusUnprocessableEntity
	case errors.Is(err, order.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
