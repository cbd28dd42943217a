package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNetwork         = errors.New("network failure")
	ErrServerRejected  = errors.New("server rejected request")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedResponse means the server accepted the request but its reply could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// ServerError is a non-success response. Message is the server supplied text, if any.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server rejected request: status %d", e.Status)
	}
	return fmt.Sprintf("server rejected request: status %d: %s", e.Status, e.Message)
}

func (e *ServerError) Is(target error) bool {
	return target == ErrServerRejected
}

// FieldErrors maps form field names to the message shown next to them.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, k := range fields {
		parts = append(parts, k+": "+f[k])
	}
	return "invalid argument: " + strings.Join(parts, "; ")
}

func (f FieldErrors) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Failure pairs a cause with the text shown to the user for it.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// UserMessage returns the text to show for err: a Failure message, the server
// supplied message, or fallback.
func UserMessage(err error, fallback string) string {
	var fl *Failure
	if errors.As(err, &fl) && fl.Message != "" {
		return fl.Message
	}
	var se *ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}
