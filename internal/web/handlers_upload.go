package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/dataingest/internal/core"
)

// multipartMemory is how much of a multipart form is held in memory before
// parts spill to temporary files.
const multipartMemory = 32 << 20

// multipartOverhead allows for boundaries and part headers on top of the
// file itself.
const multipartOverhead = 1 << 20

// UploadResponse is returned after a file has been ingested.
type UploadResponse struct {
	Message   string `json:"message"`
	DatasetID int64  `json:"dataset_id"`
	UploadID  string `json:"upload_id"`
	RowCount  int64  `json:"row_count"`
	FileSize  int64  `json:"file_size"`
}

// handleUpload ingests the multipart "file" field into a pending dataset.
// The request blocks until every row is stored or the dataset has failed.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	id, err := parseDatasetID(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondServiceError(w, r, fileTooLarge(maxSize))
			return
		}
		respondServiceError(w, r, fmt.Errorf("%w: invalid multipart form: %v", core.ErrValidation, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondServiceError(w, r, errNoFile)
		return
	}
	defer file.Close()

	if header.Size > maxSize {
		respondServiceError(w, r, fileTooLarge(maxSize))
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.UploadFile(ctx, core.UploadParams{
		DatasetID:   id,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	writeJSON(w, UploadResponse{
		Message:   "File uploaded and processed successfully",
		DatasetID: result.DatasetID,
		UploadID:  result.UploadID,
		RowCount:  result.RowCount,
		FileSize:  result.FileSize,
	})
}

func fileTooLarge(max int64) error {
	return fmt.Errorf("%w: file too large (max %d bytes)", core.ErrValidation, max)
}
