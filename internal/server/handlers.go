package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/observation/internal/errors"
	"github.com/vango-dev/observation/internal/suspect"
)

// patchRequest is the body of PATCH /suspects/{id}. Absent fields are left
// unchanged.
type patchRequest struct {
	Name           *string `json:"name"`
	Suspiciousness *int    `json:"suspiciousness"`
}

type reportResponse struct {
	ID     string `json:"id"`
	Report string `json:"report"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	suspects := s.store.List()
	out := make([]suspect.Snapshot, 0, len(suspects))
	for _, sus := range suspects {
		out = append(out, sus.Snapshot())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sus, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sus.Snapshot())
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	sus, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req patchRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, errors.New("E221").Wrap(err))
		return
	}

	if req.Name != nil {
		sus.SetName(*req.Name)
	}
	if req.Suspiciousness != nil {
		sus.SetSuspiciousness(*req.Suspiciousness)
	}
	s.logger.Info("suspect updated", "id", sus.ID())

	writeJSON(w, http.StatusOK, sus.Snapshot())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sus, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{ID: sus.ID(), Report: sus.Report()})
}

// lookup resolves the {id} URL parameter, writing a 404 if it is unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*suspect.Suspect, bool) {
	sus, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sus, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.HasCode(err, "E220"):
		status = http.StatusNotFound
	case errors.HasCode(err, "E221"):
		status = http.StatusBadRequest
	case errors.HasCode(err, "E222"):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
