package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Iamabhih/storefront-cart/internal/domain"
	"github.com/Iamabhih/storefront-cart/internal/service"
	"github.com/go-chi/chi/v5"
)

// CartService is what the handlers need from the cart core. Consumers define
// this interface, not the service implementation.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*service.CartView, error)
	AddItem(ctx context.Context, userID, productID, variantID string, quantity int, notes string) (*service.CartView, error)
	UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) (*service.CartView, error)
	AdjustQuantity(ctx context.Context, userID, lineID string, direction int) (*service.CartView, error)
	RemoveItem(ctx context.Context, userID, lineID string) (*service.CartView, error)
	UpdateItemNotes(ctx context.Context, userID, lineID, notes string) (*service.CartView, error)
	ClearCart(ctx context.Context, userID string) error
	ApplyCoupon(ctx context.Context, userID, code string) (*service.CartView, error)
	RemoveCoupon(ctx context.Context, userID string) (*service.CartView, error)
	ShareCode(ctx context.Context, userID string) (string, error)
	ImportShared(ctx context.Context, userID, code string) (*service.CartView, error)
	CheckoutSnapshot(ctx context.Context, userID string) (*domain.CheckoutSnapshot, error)
	SaveForLater(ctx context.Context, userID, name string) (*domain.SavedCart, error)
	ListSavedCarts(ctx context.Context, userID string) ([]domain.SavedCart, error)
	LoadSavedCart(ctx context.Context, userID, id string) (*service.CartView, error)
	DeleteSavedCart(ctx context.Context, userID, id string) error
}

type CartHandler struct {
	service CartService
}

func NewCartHandler(svc CartService) *CartHandler {
	return &CartHandler{service: svc}
}

// Routes mounts the cart API under the given router.
func (h *CartHandler) Routes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{line_id}", h.UpdateQuantity)
		r.Post("/items/{line_id}/increment", h.Increment)
		r.Post("/items/{line_id}/decrement", h.Decrement)
		r.Put("/items/{line_id}/notes", h.UpdateNotes)
		r.Delete("/items/{line_id}", h.RemoveItem)
		r.Post("/coupon", h.ApplyCoupon)
		r.Delete("/coupon", h.RemoveCoupon)
		r.Get("/share", h.ShareCode)
		r.Post("/share", h.ImportShared)
		r.Get("/checkout", h.CheckoutSnapshot)
	})
	r.Route("/saved-carts", func(r chi.Router) {
		r.Post("/", h.SaveForLater)
		r.Get("/", h.ListSavedCarts)
		r.Post("/{id}/restore", h.RestoreSavedCart)
		r.Delete("/{id}", h.DeleteSavedCart)
	})
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type NotesRequestDTO struct {
	Notes string `json:"notes"`
}

type CouponRequestDTO struct {
	Code string `json:"code"`
}

type ShareRequestDTO struct {
	Code string `json:"code"`
}

type SaveCartRequestDTO struct {
	Name string `json:"name"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not be negative")
		return
	}

	view, err := h.service.AddItem(r.Context(), userID, req.ProductID, req.VariantID, req.Quantity, req.Notes)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	view, err := h.service.UpdateQuantity(r.Context(), userID, chi.URLParam(r, "line_id"), req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, +1)
}

func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, -1)
}

func (h *CartHandler) adjust(w http.ResponseWriter, r *http.Request, direction int) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.service.AdjustQuantity(r.Context(), userID, chi.URLParam(r, "line_id"), direction)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req NotesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	view, err := h.service.UpdateItemNotes(r.Context(), userID, chi.URLParam(r, "line_id"), req.Notes)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.service.RemoveItem(r.Context(), userID, chi.URLParam(r, "line_id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.ClearCart(r.Context(), userID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	view, err := h.service.ApplyCoupon(r.Context(), userID, req.Code)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.service.RemoveCoupon(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) ShareCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	code, err := h.service.ShareCode(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"code": code})
}

func (h *CartHandler) ImportShared(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ShareRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	view, err := h.service.ImportShared(r.Context(), userID, req.Code)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) CheckoutSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	snapshot, err := h.service.CheckoutSnapshot(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

func (h *CartHandler) SaveForLater(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req SaveCartRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	saved, err := h.service.SaveForLater(r.Context(), userID, req.Name)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

func (h *CartHandler) ListSavedCarts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	saved, err := h.service.ListSavedCarts(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if saved == nil {
		saved = []domain.SavedCart{}
	}
	respondJSON(w, http.StatusOK, saved)
}

func (h *CartHandler) RestoreSavedCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.service.LoadSavedCart(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) DeleteSavedCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSavedCart(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return "", false
	}
	return userID, true
}
