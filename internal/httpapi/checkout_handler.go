package httpapi

import (
	"net/http"
)

// Checkout runs the whole purchase in one call. The result carries
// the terminal state; a failed purchase also maps to an error status.
func (s *Server) Checkout(w http.ResponseWriter, r *http.Request) {
	result, err := s.checkout.Purchase(r.Context(), getUserID(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
