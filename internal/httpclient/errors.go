package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Fallback texts shown when the backend gives no usable message.
const (
	GenericClientMessage = "Something went wrong. Please try again."
	ServerErrorMessage   = "Server error. Please try again later."
)

// NetworkError means no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-2xx response.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Body    []byte
	// LoginRedirect is set when the 401 triggered navigation to the login screen.
	LoginRedirect bool
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

func IsClientError(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && apiErr.Status >= 400 && apiErr.Status < 500
}

func IsServerError(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && apiErr.Status >= 500
}

func IsUnauthorized(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && apiErr.Status == http.StatusUnauthorized
}

func IsLoginRedirect(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && apiErr.LoginRedirect
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Status
	}
	return 0
}

// Message turns err into the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if IsNetwork(err) {
		return ServerErrorMessage
	}
	if apiErr, ok := asAPIError(err); ok {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Status >= 500 {
			return ServerErrorMessage
		}
		return GenericClientMessage
	}
	return err.Error()
}

// bodyMessage pulls a human-readable message out of an error body.
func bodyMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error", "msg"} {
		if value, ok := payload[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
