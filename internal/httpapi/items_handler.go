package httpapi

import (
	"encoding/json"
	"net/http"
)

// CreateItemDTO carries the form fields as typed by the user; price
// and quantity arrive as strings and are validated server side.
type CreateItemDTO struct {
	Name     string `json:"itemName"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
	UID      string `json:"uid"`
}

func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.ListItems(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	id, err := s.catalog.CreateItem(r.Context(), req.Name, req.Price, req.Quantity, req.UID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}
