package api

import (
	"net/http"

	"github.com/kjannette/quotegraph/internal/loader"
	"go.uber.org/zap"
)

type sourcesResponse struct {
	Options []string `json:"options"`
	Active  string   `json:"active"`
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	_, options, _ := s.view()
	out := sourcesResponse{Options: options}
	if out.Options == nil {
		out.Options = []string{}
	}
	if s.ctrl != nil {
		out.Active = s.ctrl.Snapshot().Source
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if s.ctrl == nil {
		writeControllerError(w, loader.ErrNoData)
		return
	}

	name := r.PathValue("name")
	if err := s.ctrl.OnSourceSelected(r.Context(), name); err != nil {
		s.log.Warn("select failed", zap.String("source", name), zap.Error(err))
		writeControllerError(w, err)
		return
	}

	d, _, _ := s.view()
	writeJSON(w, http.StatusOK, d)
}
