package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport reports that the source could not be reached or read at
	// all (DNS, connection refused, timeout, missing file).
	ErrTransport = errors.New("source unreachable")

	// ErrNotArray reports a payload that is not an array of objects,
	// including payloads that are not valid JSON.
	ErrNotArray = errors.New("payload is not an array of records")
)

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d from %s", e.Code, e.URL)
}

// Kind classifies a load failure.
type Kind int

const (
	KindNone Kind = iota
	KindTransport
	KindStatus
	KindNotArray
	KindOther
)

// Classify maps err onto one of the failure kinds. The HTTP status code is
// returned for KindStatus.
func Classify(err error) (Kind, int) {
	if err == nil {
		return KindNone, 0
	}
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return KindStatus, se.Code
	case errors.Is(err, ErrNotArray):
		return KindNotArray, 0
	case errors.Is(err, ErrTransport):
		return KindTransport, 0
	default:
		return KindOther, 0
	}
}

func notArray(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotArray, fmt.Sprintf(format, args...))
}
