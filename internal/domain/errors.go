package domain

import "errors"

var (
	// ErrInvalidRequest signals malformed or out-of-bounds input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidMode signals an unknown retrieval mode.
	ErrInvalidMode = errors.New("invalid search mode")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrEmbeddingUnavailable signals the embedding capability is absent or not ready.
	ErrEmbeddingUnavailable = errors.New("embedding model not available")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrMalformedResponse signals an unparseable upstream response.
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrIndexUnavailable signals the search index store cannot be reached.
	ErrIndexUnavailable = errors.New("search index unavailable")
	// ErrQueueUnavailable signals the crawl queue store cannot be reached.
	ErrQueueUnavailable = errors.New("crawl queue unavailable")

	// ErrExtractionTooShort signals extracted text below the indexing threshold.
	ErrExtractionTooShort = errors.New("extracted text too short")
	// ErrFetchFailed signals a source that could not be retrieved.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrIngestBusy signals that no ingestion worker is free.
	ErrIngestBusy = errors.New("ingestion workers busy")
)
