package domain

import (
	"context"
	"errors"
	"strings"
)

// Media is a binary attachment sent alongside a prompt, such as an uploaded PDF.
type Media struct {
	MIMEType string
	Data     []byte
}

// LLMRequest is a single prompt sent to the provider.
type LLMRequest struct {
	Prompt     string
	Media      []Media
	JSONOutput bool
}

// LLMClient is the port every study flow talks to.
type LLMClient interface {
	Generate(ctx context.Context, req LLMRequest) (string, error)
	// SupportsMedia reports whether Media parts are understood by the provider.
	SupportsMedia() bool
	Name() string
}

var overloadedMarkers = []string{
	"503",
	"overloaded",
	"resource exhausted",
	"resource_exhausted",
	"429",
	"rate limit",
	"request body is too large",
}

// IsOverloaded reports whether err means the provider is temporarily
// unable to serve the request.
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range overloadedMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// ClassifyLLMError turns a provider failure into LLM_OVERLOADED or
// LLM_SERVICE_ERROR. Errors that are already DomainErrors pass through.
func ClassifyLLMError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsDomainError(err); ok {
		return err
	}
	if IsOverloaded(err) {
		return NewLLMOverloadedError(err)
	}
	return NewLLMServiceError(err)
}
