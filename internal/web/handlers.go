package web

import (
	"net/http"

	"github.com/JonMunkholm/dataingest/internal/core"
)

// RootResponse describes the API at "/".
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, RootResponse{
		Name:    APIName,
		Version: core.Version,
		Status:  "operational",
	})
}

// handleHealth always answers 200; database_connected carries the ping result.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Health(r.Context()))
}
