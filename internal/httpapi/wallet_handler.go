package httpapi

import (
	"encoding/json"
	"net/http"
)

type AddFundsDTO struct {
	CardNumber string  `json:"card_number"`
	Expiry     string  `json:"expiry"`
	CVV        string  `json:"cvv"`
	Amount     float64 `json:"amount"`
}

type BalanceDTO struct {
	Balance float64 `json:"balance"`
}

func (s *Server) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.wallet.Balance(r.Context(), getUserID(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, BalanceDTO{Balance: balance})
}

func (s *Server) AddFunds(w http.ResponseWriter, r *http.Request) {
	var req AddFundsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	newBalance, err := s.wallet.AddFunds(r.Context(), getUserID(r.Context()),
		req.CardNumber, req.Expiry, req.CVV, req.Amount)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, BalanceDTO{Balance: newBalance})
}
