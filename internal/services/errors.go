// Package services defines the error taxonomy shared by the exporter
// pipeline and the surfaces that report on it.
//
// Components tag failures with a sentinel marker through Wrap; the CLI maps
// markers to exit codes without inspecting error text.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrArchiveOpen marks containers that cannot be parsed at all. Fatal to
	// the run.
	ErrArchiveOpen = errors.New("archive open error")
	// ErrArchiveRead marks entry-level I/O corruption. Recorded per entry,
	// never fatal.
	ErrArchiveRead = errors.New("archive read error")
	// ErrDecode marks records whose pixel data is present but malformed.
	ErrDecode = errors.New("decode error")
	// ErrNoRecords marks runs that materialized zero DICOM records.
	ErrNoRecords = errors.New("no qualifying records")
	// ErrValidation marks caller or environment preconditions that failed.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Exit codes surfaced to the CLI layer.
const (
	ExitSuccess           = 0
	ExitFailure           = 1
	ExitNoRecords         = 2
	ExitArchiveUnreadable = 3
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a run error to the process exit status convention:
// 0 success, 2 no qualifying records, 3 archive unreadable, 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrNoRecords):
		return ExitNoRecords
	case errors.Is(err, ErrArchiveOpen):
		return ExitArchiveUnreadable
	default:
		return ExitFailure
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
