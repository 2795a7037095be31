package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  healthServices `json:"services"`
}

type healthServices struct {
	Backend string `json:"backend"`
	Data    string `json:"data"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	svc := healthServices{Backend: "none", Data: "unavailable"}
	if s.ctrl != nil {
		snap := s.ctrl.Snapshot()
		if snap.Backend != "" {
			svc.Backend = snap.Backend
			svc.Data = "available"
			if snap.Failed {
				svc.Data = "failed"
			}
		}
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  svc,
	})
}
