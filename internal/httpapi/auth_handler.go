package httpapi

import (
	"encoding/json"
	"net/http"
)

type CredentialsDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionDTO struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	userID, err := s.identity.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// Signing up signs in, like the mobile flow does.
	token, err := s.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, SessionDTO{Token: token, UserID: userID})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	token, err := s.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	userID, err := s.identity.UserID(r.Context(), token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SessionDTO{Token: token, UserID: userID})
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.identity.SignOut(r.Context(), getToken(r.Context())); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
