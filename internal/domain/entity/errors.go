package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Standard domain errors
var (
	ErrUserExists         = errors.New("username_or_email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrStoreNotConfigured = errors.New("user store is not configured")
	ErrSessionNotFound    = errors.New("session not found or expired")
)

// LLMError kinds, matching the failure taxonomy of the generation gateway.
const (
	LLMNotConfigured     = "not_configured"
	LLMModelNotFound     = "model_not_found"
	LLMHTTPError         = "http_error"
	LLMException         = "exception"
	LLMMalformedResponse = "malformed_response"
)

// LLMError is the structured failure returned by the generation gateway.
// Extra holds whatever diagnostic payload the gateway could salvage (the
// raw response body, or a models-list snapshot on model_not_found) and is
// never parsed by callers.
type LLMError struct {
	Kind       string
	Detail     string
	StatusCode int
	Extra      json.RawMessage
}

func (e *LLMError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm %s (status %d): %s", e.Kind, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("llm %s: %s", e.Kind, e.Detail)
}
