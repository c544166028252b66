package bmrs

import (
	"encoding/json"
	"fmt"
	"strings"

	"elexon/internal/errs"
)

// HTTPError is a response with a status of 400 or above.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
	// Detail is the decoded JSON body, nil when the body is not JSON.
	Detail any
}

func newHTTPError(statusCode int, url string, body []byte) *HTTPError {
	e := &HTTPError{StatusCode: statusCode, URL: url, Body: string(body)}
	var detail any
	if json.Unmarshal(body, &detail) == nil {
		e.Detail = detail
	}
	return e
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	if body == "" {
		return fmt.Sprintf("GET %s returned %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s returned %d: %s", e.URL, e.StatusCode, body)
}

func (e *HTTPError) Unwrap() error {
	return errs.ErrHTTPStatus
}

// RetryExhaustedError is returned when every attempt got a retryable status.
// Last holds the final response.
type RetryExhaustedError struct {
	Attempts int
	Last     *HTTPError
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("maximum retries exceeded after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() []error {
	return []error{errs.ErrRetriesExhausted, e.Last}
}
