package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deadpool750/list7/internal/cart"
)

type AddCartItemDTO struct {
	ItemUID string `json:"item_uid"`
}

type UpdateQuantityDTO struct {
	Quantity int `json:"quantity"`
}

type CartDTO struct {
	Lines []cart.Line `json:"lines"`
	Total float64     `json:"total"`
}

func (s *Server) GetCart(w http.ResponseWriter, r *http.Request) {
	c := s.carts.For(getUserID(r.Context()))
	respondJSON(w, http.StatusOK, CartDTO{Lines: c.Lines(), Total: c.Total()})
}

// AddCartItem adds one unit of an item, decrementing remote stock.
// Repeated calls bump the quantity of the existing line.
func (s *Server) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ItemUID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "item_uid is required")
		return
	}

	userID := getUserID(r.Context())
	if _, err := s.catalog.AddToCart(r.Context(), userID, req.ItemUID); err != nil {
		handleServiceError(w, err)
		return
	}

	c := s.carts.For(userID)
	respondJSON(w, http.StatusCreated, CartDTO{Lines: c.Lines(), Total: c.Total()})
}

// UpdateCartQuantity edits the local line only; remote stock is
// reconciled at checkout.
func (s *Server) UpdateCartQuantity(w http.ResponseWriter, r *http.Request) {
	itemUID := chi.URLParam(r, "item_uid")

	var req UpdateQuantityDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not be negative")
		return
	}

	c := s.carts.For(getUserID(r.Context()))
	c.SetQuantity(itemUID, req.Quantity)
	respondJSON(w, http.StatusOK, CartDTO{Lines: c.Lines(), Total: c.Total()})
}

func (s *Server) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c := s.carts.For(getUserID(r.Context()))
	c.Remove(chi.URLParam(r, "item_uid"))
	respondJSON(w, http.StatusOK, CartDTO{Lines: c.Lines(), Total: c.Total()})
}

func (s *Server) ClearCart(w http.ResponseWriter, r *http.Request) {
	c := s.carts.For(getUserID(r.Context()))
	c.Clear()
	respondJSON(w, http.StatusOK, CartDTO{Lines: c.Lines(), Total: c.Total()})
}
