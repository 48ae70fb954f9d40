package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
)

// Common storage API errors.
var (
	// ErrUnauthorized indicates an invalid or missing service key.
	ErrUnauthorized = errors.New("supabase: unauthorised (invalid key)")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("supabase: rate limit exceeded")
)

// APIError is the JSON error body returned by the storage API. The API
// reports some conditions as HTTP 400 with the real status in StatusCode.
type APIError struct {
	HTTPStatus int    `json:"-"`
	StatusCode string `json:"statusCode"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase: %d %s: %s", e.status(), e.Code, e.Message)
}

// status returns the effective status code.
func (e *APIError) status() int {
	if n, err := strconv.Atoi(e.StatusCode); err == nil && n > 0 {
		return n
	}
	return e.HTTPStatus
}

// Unwrap maps the status onto domain errors.
func (e *APIError) Unwrap() error {
	switch e.status() {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrAlreadyExists
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}

// readError builds an APIError from a non-2xx response.
func readError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{HTTPStatus: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = string(body)
	}
	apiErr.HTTPStatus = resp.StatusCode
	return apiErr
}
