package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/kintree/pkg/family"
)

func (s *Server) listRelationships(w http.ResponseWriter, r *http.Request) {
	rels, err := s.store.ListRelationships(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rels)
}

func (s *Server) createRelationship(w http.ResponseWriter, r *http.Request) {
	var rel family.Relationship
	if err := json.NewDecoder(r.Body).Decode(&rel); err != nil {
		badRequest(w, s.logger, "decode relationship: %v", err)
		return
	}

	stored, err := s.store.UpsertRelationship(r.Context(), rel)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	if err := s.Rebuild(r.Context()); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) deleteRelationship(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRelationship(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, s.logger, err)
		return
	}

	if err := s.Rebuild(r.Context()); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
