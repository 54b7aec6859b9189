package gateway

import "fmt"

// AuthError indicates the token endpoint rejected the client credentials.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("failed to get gateway access token: status %d: %s", e.StatusCode, e.Body)
}

// RequestError indicates a gateway operation returned a non-success status.
// Body carries the raw gateway response.
type RequestError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("gateway %s failed: status %d: %s", e.Operation, e.StatusCode, e.Body)
}
