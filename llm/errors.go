package llm

import (
	"fmt"
	"net/http"
	"time"
)

// APIError is a structured non-2xx response from the model service.
type APIError struct {
	StatusCode int            `json:"-"`
	Code       string         `json:"code,omitempty"`
	Message    string         `json:"message,omitempty"`
	Raw        map[string]any `json:"-"`
	RequestID  string         `json:"-"`
}

func (e *APIError) Error() string {
	var sb []string
	sb = append(sb, fmt.Sprintf("status=%d", e.StatusCode))
	if e.Code != "" {
		sb = append(sb, "code="+e.Code)
	}
	if e.RequestID != "" {
		sb = append(sb, "request_id="+e.RequestID)
	}
	if e.Message != "" {
		sb = append(sb, "message="+e.Message)
	}
	out := "api error:"
	for _, s := range sb {
		out += " " + s
	}
	return out
}

// AuthError indicates authentication failures (401/403).
type AuthError struct{ *APIError }

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.APIError.Error())
}

// RateLimitError indicates 429 responses, with Retry-After when the
// provider sent one.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: wait about %ds before retrying: %s",
			int(e.RetryAfter.Seconds()), e.APIError.Error())
	}
	return fmt.Sprintf("rate limited: %s", e.APIError.Error())
}

// BadRequestError indicates a 400 validation problem with the call.
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("bad request: %s", e.APIError.Error())
}

// ServerError indicates 5xx errors from the provider.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string {
	return fmt.Sprintf("provider error: %s", e.APIError.Error())
}

// classify maps an APIError onto the typed error taxonomy.
func classify(apiErr *APIError, resp *http.Response) error {
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		return &AuthError{APIError: apiErr}
	case apiErr.StatusCode == http.StatusTooManyRequests:
		var ra time.Duration
		if v := resp.Header.Get("Retry-After"); v != "" {
			if d, ok := parseRetryAfter(v); ok {
				ra = d
			}
		}
		return &RateLimitError{APIError: apiErr, RetryAfter: ra}
	case apiErr.StatusCode == http.StatusBadRequest:
		return &BadRequestError{APIError: apiErr}
	case apiErr.StatusCode >= 500:
		return &ServerError{APIError: apiErr}
	}
	return apiErr
}
