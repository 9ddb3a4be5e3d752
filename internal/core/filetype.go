package core

import (
	"fmt"
	"mime"
	"strings"
)

// allowedContentTypes lists the MIME types accepted for each file type.
var allowedContentTypes = map[FileType][]string{
	FileTypeCSV:   {"text/csv", "application/csv"},
	FileTypeExcel: {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/vnd.ms-excel"},
	FileTypeJSON:  {"application/json"},
}

// ParseFileType validates a client-supplied file type.
func ParseFileType(s string) (FileType, error) {
	ft := FileType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := allowedContentTypes[ft]; !ok {
		return "", validationError("invalid file_type %q: must be one of csv, excel, json", s)
	}
	return ft, nil
}

// AllowedContentTypes returns the MIME allow-list for a file type, or nil if
// the type is unknown.
func AllowedContentTypes(ft FileType) []string {
	return allowedContentTypes[ft]
}

// ValidateFileType checks that ft has a parser and reports whether
// contentType is on its allow-list. Parameters such as charset are ignored.
// An unknown file type returns ErrUnsupportedFileType.
func ValidateFileType(ft FileType, contentType string) (bool, error) {
	allowed, ok := allowedContentTypes[ft]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ft)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false, nil
	}
	for _, a := range allowed {
		if mediaType == a {
			return true, nil
		}
	}
	return false, nil
}
