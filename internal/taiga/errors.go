package taiga

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api error: %d: %s", e.StatusCode, e.Detail)
}

// IsUnauthorized reports whether err is an API 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// newAPIError extracts Taiga's "_error_message" or "detail" from body.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		ErrorMessage string `json:"_error_message"`
		Detail       string `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		detail = payload.ErrorMessage
		if detail == "" {
			detail = payload.Detail
		}
	}
	return &APIError{StatusCode: status, Detail: strings.TrimSpace(detail)}
}
