package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/dataingest/internal/core"
)

// createDatasetRequest is the POST /data/datasets body.
type createDatasetRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	FileType    string  `json:"file_type"`
}

// handleCreateDataset registers a dataset in pending state.
func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)

	var req createDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondServiceError(w, r, fmt.Errorf("%w: %v", errBadBody, err))
		return
	}

	ds, err := s.service.CreateDataset(r.Context(), core.CreateDatasetParams{
		Name:        req.Name,
		Description: req.Description,
		FileType:    core.FileType(req.FileType),
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	writeJSON(w, ds)
}

// handleListDatasets returns datasets newest first, paged by skip and limit.
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	skip, err := parseIntParam(r, "skip", 0)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	limit, err := parseIntParam(r, "limit", core.DefaultPageLimit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	list, err := s.service.ListDatasets(r.Context(), skip, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []core.Dataset{}
	}

	writeJSON(w, list)
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id, err := parseDatasetID(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	ds, err := s.service.GetDataset(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	writeJSON(w, ds)
}

// handleDeleteDataset removes a dataset with its rows and upload sessions.
func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id, err := parseDatasetID(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if err := s.service.DeleteDataset(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	writeJSON(w, map[string]string{
		"message": fmt.Sprintf("Dataset %d deleted", id),
	})
}

// handlePreviewDataset returns the first rows of a dataset in file order.
func (s *Server) handlePreviewDataset(w http.ResponseWriter, r *http.Request) {
	id, err := parseDatasetID(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	limit, err := parseIntParam(r, "limit", core.DefaultPageLimit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	rows, err := s.service.PreviewDataset(r.Context(), id, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if rows == nil {
		rows = []core.Record{}
	}

	writeJSON(w, rows)
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	id, err := parseDatasetID(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	sessions, err := s.service.ListUploadSessions(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []core.UploadSession{}
	}

	writeJSON(w, sessions)
}
