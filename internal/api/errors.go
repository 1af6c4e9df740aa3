package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"
)

// Error kinds. Every error returned by RiotClient matches exactly one of them
// with errors.Is.
var (
	ErrForbidden = errors.New("riot api: forbidden")
	ErrNotFound  = errors.New("riot api: not found")
	ErrTransient = errors.New("riot api: transient failure")
)

// ErrMissingRiotID is wrapped when account-v1 answers without a game name or tag line.
var ErrMissingRiotID = errors.New("account has no riot id")

type APIError struct {
	Endpoint   string
	StatusCode int // 0 when no response was received
	RetryAfter time.Duration
	Body       string
	Err        error

	kind error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Endpoint, e.kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.Err}
}

// Kind returns the sentinel this error classifies as.
func (e *APIError) Kind() error {
	return e.kind
}

func transientError(endpoint string, err error) *APIError {
	return &APIError{Endpoint: endpoint, Err: err, kind: ErrTransient}
}

// statusError classifies a non-2xx response. 401 and 403 both mean the key
// lacks entitlement; anything that is not 403/404 is retried next cycle.
func statusError(endpoint string, code int, retryAfter time.Duration, body []byte) *APIError {
	e := &APIError{
		Endpoint:   endpoint,
		StatusCode: code,
		RetryAfter: retryAfter,
		Body:       truncate(string(body), 256),
	}
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.kind = ErrForbidden
	case http.StatusNotFound:
		e.kind = ErrNotFound
	default:
		e.kind = ErrTransient
	}
	return e
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
