// internal/gateway/errors.go
package gateway

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned by calls that need a token before Login or after
// Logout.
var ErrNoSession = errors.New("gateway: no active session")

// APIError is a non-2xx response carrying the server's error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    any
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("gateway: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// DBError is a storage constraint violation reported by the server. Message
// is the driver message, for example one naming a check constraint.
type DBError struct {
	Message string
	Details string
	Hint    string
	Code    string
}

func (e *DBError) Error() string {
	return e.Message
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
