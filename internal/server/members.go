package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/kintree/pkg/family"
)

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.store.ListMembers(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) getMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) createMember(w http.ResponseWriter, r *http.Request) {
	var m family.Member
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		badRequest(w, s.logger, "decode member: %v", err)
		return
	}

	stored, err := s.store.UpsertMember(r.Context(), m)
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

func (s *Server) updateMember(w http.ResponseWriter, r *http.Request) {
	var m family.Member
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		badRequest(w, s.logger, "decode member: %v", err)
		return
	}
	m.ID = chi.URLParam(r, "id")

	stored, err := s.store.UpsertMember(r.Context(), m)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	if err := s.Rebuild(r.Context()); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) deleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, s.logger, err)
		return
	}

	if err := s.Rebuild(r.Context()); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
