package apiclient

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a non-2xx answer from the registration API
type APIError struct {
	StatusCode int
	// Message is the body's "error" field, empty when the body had none
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("registration API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("registration API returned status %d: %s", e.StatusCode, e.Message)
}

// MalformedResponseError is a 2xx answer whose body does not have the expected shape
type MalformedResponseError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.Endpoint, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

type errorBody struct {
	Error string `json:"error"`
}

// errorMessage extracts the "error" field of a JSON error body
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return strings.TrimSpace(eb.Error)
}
