package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrUnreachable wraps transport-level failures where no HTTP status was
// received at all.
var ErrUnreachable = errors.New("cannot reach server")

// APIError is a non-success HTTP response from the hotel API.
type APIError struct {
	StatusCode int
	Message    string
	// Errors holds structured validation messages from a 400 response,
	// already flattened to strings.
	Errors []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return strings.Join(e.Errors, "; ")
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// parseError extracts the most useful message the response body offers.
// The API is not consistent: some endpoints answer {"message": ...}, some
// {"error": ...}, validation failures carry an errors list or map.
func parseError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}

	var payload struct {
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return e
	}

	e.Message = payload.Message
	if e.Message == "" {
		e.Message = payload.Error
	}

	if len(payload.Errors) > 0 {
		var list []string
		if err := json.Unmarshal(payload.Errors, &list); err == nil {
			e.Errors = list
		} else {
			var byField map[string]string
			if err := json.Unmarshal(payload.Errors, &byField); err == nil {
				for field, msg := range byField {
					e.Errors = append(e.Errors, field+": "+msg)
				}
				sort.Strings(e.Errors)
			}
		}
	}
	return e
}

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports a 401 response.
func IsUnauthorized(err error) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == http.StatusUnauthorized
}

// IsForbidden reports a 403 response.
func IsForbidden(err error) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == http.StatusForbidden
}

// Message renders err for the user: the server-supplied message when one
// exists, a connectivity note for transport failures, else the
// action-specific fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrUnreachable) {
		return "Cannot reach the server. Please try again."
	}
	var e *APIError
	if errors.As(err, &e) && (e.Message != "" || len(e.Errors) > 0) {
		return e.Error()
	}
	return fallback
}
