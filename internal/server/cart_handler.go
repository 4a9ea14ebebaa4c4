package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ageinghippy/cncart/internal/domain"
	"github.com/ageinghippy/cncart/internal/service"
)

type CartHandler struct {
	service *service.CartService
	log     *slog.Logger
}

func NewCartHandler(svc *service.CartService, log *slog.Logger) *CartHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CartHandler{
		service: svc,
		log:     log,
	}
}

// NewRouter mounts one endpoint per cart operation, all scoped to the owner
// in the path. Identity resolution is the caller's problem; the owner ID is
// taken at face value.
func NewRouter(h *CartHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/carts/{ownerID}", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items/{productID}", h.AddItem)
		r.Delete("/items/{productID}", h.RemoveItem)
		r.Delete("/lines/{lineID}", h.RemoveLine)
		r.Put("/lines/{lineID}", h.UpdateAmount)
	})

	return r
}

type CartResponseDTO struct {
	ID      int64         `json:"id"`
	OwnerID string        `json:"owner_id"`
	Items   []CartItemDTO `json:"items"`
	Updated time.Time     `json:"updated_at"`
}

type CartItemDTO struct {
	ID        int64  `json:"id"`
	ProductID string `json:"product_id"`
	Amount    int32  `json:"amount"`
}

type UpdateAmountRequestDTO struct {
	Amount int32 `json:"amount"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	if ownerID == "" {
		respondError(w, http.StatusBadRequest, "invalid_owner_id", "owner ID is required")
		return
	}

	cart, err := h.service.GetCartByOwnerID(r.Context(), ownerID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartDTO(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product ID must be a UUID")
		return
	}

	cart, err := h.service.AddItem(r.Context(), ownerID, productID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toCartDTO(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product ID must be a UUID")
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), ownerID, productID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartDTO(cart))
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	lineID, err := strconv.ParseInt(chi.URLParam(r, "lineID"), 10, 64)
	if err != nil || lineID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_line_id", "line ID must be a positive integer")
		return
	}

	cart, err := h.service.RemoveCartLine(r.Context(), ownerID, lineID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartDTO(cart))
}

func (h *CartHandler) UpdateAmount(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	lineID, err := strconv.ParseInt(chi.URLParam(r, "lineID"), 10, 64)
	if err != nil || lineID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_line_id", "line ID must be a positive integer")
		return
	}

	var req UpdateAmountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cart, err := h.service.UpdateAmount(r.Context(), ownerID, lineID, req.Amount)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartDTO(cart))
}

func (h *CartHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.ErrorContext(r.Context(), "cart operation failed",
		slog.String("path", r.URL.Path),
		slog.Any("err", err))
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func toCartDTO(cart domain.Cart) CartResponseDTO {
	items := make([]CartItemDTO, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID.String(),
			Amount:    item.Amount,
		})
	}

	return CartResponseDTO{
		ID:      cart.ID,
		OwnerID: cart.OwnerID,
		Items:   items,
		Updated: cart.UpdatedAt,
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.Any("err", err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
