package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped) by Service and Store operations.
var (
	ErrNotFound            = errors.New("dataset not found")
	ErrValidation          = errors.New("invalid request")
	ErrConflict            = errors.New("dataset already ingested or in progress")
	ErrParse               = errors.New("could not parse file")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// ErrOutOfRange marks a numeric query parameter outside its allowed range.
// It also matches ErrValidation.
var ErrOutOfRange = fmt.Errorf("value out of range: %w", ErrValidation)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func rangeError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrOutOfRange, fmt.Sprintf(format, args...))
}

func parseError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}
