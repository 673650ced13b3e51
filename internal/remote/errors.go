package remote

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNetwork      Kind = "network"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindRateLimited  Kind = "rate_limited"
	KindServer       Kind = "server"
	KindGeneric      Kind = "generic"
)

const (
	msgNetwork         = "Unable to connect to server. Please check your connection or try again later."
	msgRefused         = "Server is not responding. Please try again later."
	msgNetworkFailed   = "Network request failed. Please check your connection."
	msgSessionExpired  = "Your session has expired. Please sign in again."
	msgForbidden       = "Access denied"
	msgRateLimited     = "Too many requests. Please wait a moment and try again."
	msgServer          = "Server error. Please try again later."
	msgUnexpected      = "An unexpected error occurred"
	msgSelfDeactivate  = "You cannot deactivate your own account"
	msgSelfRoleChange  = "You cannot change your own role"
	msgSelfDelete      = "You cannot delete your own account"
	msgBulkActivateIDs = "Please provide an array of user IDs to activate"
	msgUserIDRequired  = "User id is required"
)

var (
	ErrValidation = errors.New("invalid request")
	ErrSelfTarget = errors.New("operation targets the signed-in user")
)

// APIError is a classified upstream failure. Message is what the user was told.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("upstream %s (%d): %s", e.Kind, e.Status, e.Message)
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// rejection is a request refused before it left the process. It prints as the bare
// user-facing message and matches its sentinel with errors.Is.
type rejection struct {
	sentinel error
	message  string
}

func (r *rejection) Error() string { return r.message }
func (r *rejection) Unwrap() error { return r.sentinel }

func reject(sentinel error, message string) error {
	return &rejection{sentinel: sentinel, message: message}
}
