package qrs

import (
	"errors"
	"fmt"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
)

var (
	// ErrNotFound is returned when the repository reports an entity as absent.
	ErrNotFound = errors.New("entity not found")

	ErrUnsupportedObjectType = model.ErrUnsupportedObjectType
)

// NotFoundError names the missing entity. It matches ErrNotFound.
type NotFoundError struct {
	EntityType string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.EntityType, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// APIError is a non-2xx response from the repository service.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// TransportError wraps failures below HTTP: TLS, DNS, timeouts, bad JSON.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
