package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration        = errors.New("configuration error")
	ErrAuthenticationFailed = errors.New("gateway authentication failed")
	ErrCallbackNotActivated = errors.New("gateway callback url not activated")
	ErrValidationFailed     = errors.New("validation failed")
	ErrGatewayUnavailable   = errors.New("gateway unavailable")
	ErrGatewayRejected      = errors.New("gateway rejected request")
	ErrNotFound             = errors.New("not found")
)

// GatewayError carries the gateway's answer for a failed call. Kind is one of
// the sentinel errors above so callers can match it with errors.Is.
type GatewayError struct {
	Kind       error
	Operation  string
	StatusCode int
	Message    string
	Messages   []string
}

func (e *GatewayError) Error() string {
	var b strings.Builder
	b.WriteString(e.Operation)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (http %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, ", "))
	}
	return b.String()
}

func (e *GatewayError) Unwrap() error {
	return e.Kind
}

// ValidationError is returned for locally rejected input.
type ValidationError struct {
	Messages []string
}

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// FieldMessages extracts the per-field messages of a validation failure,
// whether it was raised locally or by the gateway.
func FieldMessages(err error) []string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Messages
	}
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return gerr.Messages
	}
	return nil
}
