// Package web provides HTTP handlers for the ingestion API.
// This file contains request parsing helpers shared across handlers.
package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/dataingest/internal/core"
)

// maxJSONBodySize bounds request bodies other than file uploads.
const maxJSONBodySize = 1 << 20

// parseIntParam parses an integer query parameter with a default value.
// A value that is not an integer is reported as out of range.
func parseIntParam(r *http.Request, name string, defaultVal int) (int, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", core.ErrOutOfRange, name, val)
	}
	return i, nil
}

// parseDatasetID reads the {id} URL parameter.
func parseDatasetID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid dataset id %q", core.ErrOutOfRange, raw)
	}
	return id, nil
}
