package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Study session errors
	CodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"
	CodeQuizNotStarted     ErrorCode = "QUIZ_NOT_STARTED"
	CodeFlashcardsNotReady ErrorCode = "FLASHCARDS_NOT_READY"

	// LLM provider errors. Overloaded is the one failure users can retry.
	CodeLLMOverloaded   ErrorCode = "LLM_OVERLOADED"
	CodeLLMServiceError ErrorCode = "LLM_SERVICE_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a detail that is returned to the client.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewSessionNotFoundError(sessionID string) *DomainError {
	return NewError(CodeSessionNotFound, fmt.Sprintf("Study session not found: %s", sessionID), nil).
		WithContext("session_id", sessionID)
}

func NewQuizNotStartedError(sessionID string) *DomainError {
	return NewError(CodeQuizNotStarted, "Generate a quiz before submitting answers", nil).
		WithContext("session_id", sessionID)
}

func NewFlashcardsNotReadyError(sessionID string) *DomainError {
	return NewError(CodeFlashcardsNotReady, "Generate flashcards before exporting them", nil).
		WithContext("session_id", sessionID)
}

func NewLLMOverloadedError(err error) *DomainError {
	return NewError(CodeLLMOverloaded, "The AI model is currently overloaded. Please try again in a moment.", err)
}

func NewLLMServiceError(err error) *DomainError {
	return NewError(CodeLLMServiceError, "Failed to process with LLM service", err)
}

// IsCode reports whether err is a DomainError carrying code.
func IsCode(err error, code ErrorCode) bool {
	de, ok := AsDomainError(err)
	return ok && de.Code == code
}
