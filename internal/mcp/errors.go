package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/plantree/internal/domain"
)

// Error codes returned to MCP and JSON-RPC clients.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeAccessDenied  = "ACCESS_DENIED"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeStorage       = "STORAGE_ERROR"
	CodeUnknownMethod = "UNKNOWN_METHOD"
)

// ErrUnknownMethod is returned by Handle for method names it does not serve.
var ErrUnknownMethod = errors.New("unknown method")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. It returns nil for errors
// outside the domain taxonomy.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch domain.Kind(err) {
	case domain.ErrValidation:
		apiErr := &APIError{Code: CodeValidation, Message: err.Error(), RecoveryHint: "Fix the named field and retry"}
		var verr *domain.ValidationError
		if errors.As(err, &verr) && verr.Field != "" {
			apiErr.Details = map[string]string{"field": verr.Field}
		}
		return apiErr
	case domain.ErrAccessDenied:
		return &APIError{Code: CodeAccessDenied, Message: err.Error(), RecoveryHint: "Ask the project owner to add you as a member"}
	case domain.ErrNotFound:
		return &APIError{Code: CodeNotFound, Message: err.Error(), RecoveryHint: "Check ID spelling"}
	case domain.ErrConflict:
		return &APIError{Code: CodeConflict, Message: err.Error(), RecoveryHint: "Reload the object and retry with its current version"}
	case domain.ErrStorage:
		return &APIError{Code: CodeStorage, Message: "storage failure", RecoveryHint: "Retry later"}
	}
	if errors.Is(err, ErrUnknownMethod) {
		return &APIError{Code: CodeUnknownMethod, Message: err.Error(), RecoveryHint: "Call tools/list for the supported tools"}
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
