package galachain

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidAddress is returned for addresses without a client| or eth| prefix.
	ErrInvalidAddress = errors.New("expected a GalaChain wallet address like client|… or eth|…")
	// ErrEmptyPublicKey is returned when a response carries no public key.
	ErrEmptyPublicKey = errors.New("missing public key in response")
)

// maxErrorBody bounds how much of a response body a StatusError keeps.
const maxErrorBody = 256

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GetPublicKey returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("GetPublicKey returned status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed when repeated.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

func newStatusError(code int, body []byte) *StatusError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &StatusError{StatusCode: code, Body: string(body)}
}
