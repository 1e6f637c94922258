package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/evently-client/internal/common"
)

// BackendError is a non-2xx answer carrying the backend's message.
type BackendError struct {
	StatusCode int
	Message    string
	// Kind narrows the failure, e.g. common.ErrInvalidCredentials for a
	// rejected login. Nil means a generic rejection.
	Kind error
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend rejected request: status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend rejected request: status %d: %s", e.StatusCode, e.Message)
}

// Is makes every BackendError match common.ErrBackendRejected, plus its Kind.
func (e *BackendError) Is(target error) bool {
	if target == common.ErrBackendRejected {
		return true
	}
	return e.Kind != nil && errors.Is(e.Kind, target)
}

// MessageOf returns the backend's message carried by err, or "".
func MessageOf(err error) string {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Message
	}
	return ""
}
