package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyQuestion    = errors.New("question is required")
	ErrUnsupportedInput = errors.New("unsupported document type")
)

// ArchiveError aborts a whole upload: the archive could not be expanded.
type ArchiveError struct {
	Reason string
	Err    error
}

func (e *ArchiveError) Error() string {
	if e.Err == nil {
		return "invalid archive: " + e.Reason
	}
	return fmt.Sprintf("invalid archive: %s: %v", e.Reason, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// DocumentExtractionError is reported for a single file and never aborts its siblings.
type DocumentExtractionError struct {
	Path string
	Err  error
}

func (e *DocumentExtractionError) Error() string {
	return fmt.Sprintf("failed to process %s: %v", e.Path, e.Err)
}

func (e *DocumentExtractionError) Unwrap() error { return e.Err }

// RemoteServiceError is terminal for one question: authentication failure,
// timeout, rate limiting or a malformed reply from the hosted model.
type RemoteServiceError struct {
	Provider   string
	Model      string
	StatusCode int
	ErrorType  string
	Timeout    bool
	Err        error
}

func (e *RemoteServiceError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Provider)
	sb.WriteString(" request failed")
	if e.Timeout {
		sb.WriteString(" (timeout)")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " status=%d", e.StatusCode)
	}
	if e.ErrorType != "" {
		fmt.Fprintf(&sb, " type=%s", e.ErrorType)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// Diagnostic renders the full error chain, one cause per line.
func Diagnostic(err error) string {
	var lines []string
	for err != nil {
		lines = append(lines, fmt.Sprintf("%T: %s", err, err.Error()))
		err = errors.Unwrap(err)
	}
	return strings.Join(lines, "\n")
}
