package sdk

import "github.com/kailas-cloud/hybridsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrInvalidMode            = domain.ErrInvalidMode
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrEmbeddingUnavailable   = domain.ErrEmbeddingUnavailable
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrMalformedResponse      = domain.ErrMalformedResponse
	ErrIndexUnavailable       = domain.ErrIndexUnavailable
	ErrQueueUnavailable       = domain.ErrQueueUnavailable
	ErrExtractionTooShort     = domain.ErrExtractionTooShort
	ErrFetchFailed            = domain.ErrFetchFailed
)
