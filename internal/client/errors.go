package client

import (
	"encoding/json"
	"fmt"
)

// APIError is a non-2xx response from the backend that the pipeline does not
// interpret. The body has already been camelCased.
type APIError struct {
	StatusCode int
	Message    string
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	if e == nil {
		return "eralove client: api error"
	}
	if e.Message != "" {
		return fmt.Sprintf("eralove client: api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("eralove client: api error %d", e.StatusCode)
}

// AuthExpiredError indicates a 401 that could not be resolved by refresh:
// either no refresh token was available or the refresh call itself failed.
// The credential store has been cleared by the time callers see it.
type AuthExpiredError struct {
	Cause error
}

func (e *AuthExpiredError) Error() string {
	if e == nil || e.Cause == nil {
		return "eralove client: session expired"
	}
	return fmt.Sprintf("eralove client: session expired: %v", e.Cause)
}

func (e *AuthExpiredError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
