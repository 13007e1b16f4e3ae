package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input, such as empty
	// text handed to an embedding call or an overlap >= chunk size.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the provider rejected the API credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrStorage indicates a chunk store failure. Storage errors abort the
	// calling operation and are not retried.
	ErrStorage = errors.New("storage error")

	// ErrNoRelevantContext indicates nothing could ground an answer: either
	// retrieval produced no usable hits, or citation validation exhausted
	// its attempt budget.
	ErrNoRelevantContext = errors.New("no relevant context")

	// ErrRerankingFailed indicates the LLM-judged reranking call itself
	// failed. Statistical strategies never raise this.
	ErrRerankingFailed = errors.New("reranking failed")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)

// ProviderError is a structured embedding/LLM provider failure carrying the
// HTTP status code and the provider's message. It surfaces to the user as a
// single error with the provider message intact.
type ProviderError struct {
	// StatusCode is the HTTP status returned by the provider, 0 for
	// transport-level failures.
	StatusCode int

	// Message is the provider-supplied error message.
	Message string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("provider error: %s", e.Message)
	}
	return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
}

// NewProviderError creates a ProviderError with the given status and message.
func NewProviderError(statusCode int, message string) *ProviderError {
	return &ProviderError{StatusCode: statusCode, Message: message}
}
