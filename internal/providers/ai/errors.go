package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a provider failure. Retry gating and user-facing
// messages match on it instead of sniffing message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindNotFound
	KindRateLimit
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not-found"
	case KindRateLimit:
		return "rate-limit"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// APIError is the structured failure every adapter produces.
type APIError struct {
	Provider string
	Kind     Kind
	Status   int
	Message  string
	Err      error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (http %d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status >= http.StatusInternalServerError:
		return KindTransport
	default:
		return KindUnknown
	}
}

// newStatusError builds an APIError from a non-2xx response body,
// pulling the provider's error message out when the body is JSON.
func newStatusError(provider string, status int, body []byte) *APIError {
	msg := string(body)
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		msg = envelope.Error.Message
	}
	return &APIError{
		Provider: provider,
		Kind:     classifyStatus(status),
		Status:   status,
		Message:  msg,
	}
}

func transportError(provider string, err error) *APIError {
	return &APIError{
		Provider: provider,
		Kind:     KindTransport,
		Message:  err.Error(),
		Err:      err,
	}
}

// IsAuth reports whether err is auth-classified. It gates the single
// refresh-and-retry in the adapters.
func IsAuth(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Kind == KindAuth
}

// UserMessage renders a provider failure as the reply text shown in the
// conversation, naming the cause where the taxonomy knows it.
func UserMessage(err error) string {
	var ae *APIError
	if !errors.As(err, &ae) {
		return fmt.Sprintf("⚠️ Something went wrong talking to the model: %v", err)
	}
	switch ae.Kind {
	case KindAuth:
		return fmt.Sprintf("⚠️ Authentication with %s failed. Check the configured credentials.", ae.Provider)
	case KindNotFound:
		return fmt.Sprintf("⚠️ The %s endpoint or selected model was not found.", ae.Provider)
	case KindRateLimit:
		return fmt.Sprintf("⚠️ %s is rate limiting requests. Wait a moment and try again.", ae.Provider)
	default:
		return fmt.Sprintf("⚠️ %s returned an error: %s", ae.Provider, ae.Message)
	}
}
