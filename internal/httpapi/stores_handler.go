package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deadpool750/list7/internal/stores"
)

func (s *Server) ListStores(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, stores.All())
}

func (s *Server) GetStore(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	location, ok := stores.Find(name)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "no store named "+name)
		return
	}
	respondJSON(w, http.StatusOK, location)
}
