package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/deadpool750/list7/internal/domain"
)

type ProfileDTO struct {
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	DateOfBirth string `json:"dateOfBirth"`
	Age         int    `json:"age"`
}

func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profile.Load(r.Context(), getUserID(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ProfileDTO{
		Name:        p.Name,
		Surname:     p.Surname,
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
		Address:     p.Address,
		DateOfBirth: p.DateOfBirth,
		Age:         p.Age(time.Now()),
	})
}

func (s *Server) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := s.profile.Save(r.Context(), getUserID(r.Context()), domain.UserProfile{
		Name:        req.Name,
		Surname:     req.Surname,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.profile.DeleteAll(ctx, getUserID(ctx), getToken(ctx)); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
