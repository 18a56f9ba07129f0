package errors

import "net/http"

// Document service errors (service code 20).
var (
	// ErrNoFile indicates an upload request without a file part.
	ErrNoFile = Register(New(MakeCode(ServiceDocs, CategoryRequest, 1), http.StatusBadRequest, "No file uploaded"))

	// ErrBadSourceType indicates a source type outside the supported set.
	ErrBadSourceType = Register(New(MakeCode(ServiceDocs, CategoryRequest, 2), http.StatusBadRequest, "Unsupported source type"))

	// ErrDocumentNotFound indicates the document does not exist or is not owned by the caller.
	ErrDocumentNotFound = Register(New(MakeCode(ServiceDocs, CategoryResource, 1), http.StatusNotFound, "Document not found"))
)

// Chat service errors (service code 21).
var (
	// ErrEmptyQuery indicates an empty or whitespace-only chat query.
	ErrEmptyQuery = Register(New(MakeCode(ServiceChat, CategoryRequest, 1), http.StatusBadRequest, "Query is required"))

	// ErrMissingCredential indicates no completion API key is available,
	// neither per-request nor server-configured.
	ErrMissingCredential = Register(New(MakeCode(ServiceChat, CategoryAuth, 1), http.StatusUnauthorized,
		"API key missing. Provide one in the request header or configure the server default."))

	// ErrSearch indicates the vector-index search call failed. The chat turn
	// cannot be answered without retrieval context.
	ErrSearch = Register(New(MakeCode(ServiceChat, CategoryNetwork, 1), http.StatusBadGateway, "Search failed"))
)

// External dependency errors (service codes 90-92). These terminate an
// ingestion run; they are persisted as document status, never surfaced as a
// failed upload request.
var (
	// ErrExtraction indicates the extraction service call failed.
	ErrExtraction = Register(New(MakeCode(ServiceExtraction, CategoryNetwork, 1), http.StatusBadGateway, "Extraction failed"))

	// ErrIndexing indicates the vector registration call failed.
	ErrIndexing = Register(New(MakeCode(ServiceIndex, CategoryNetwork, 1), http.StatusBadGateway, "Vector indexing failed"))

	// ErrCompletion indicates the completion provider call failed. Chat
	// degrades rather than failing when this occurs after retrieval.
	ErrCompletion = Register(New(MakeCode(ServiceCompletion, CategoryNetwork, 1), http.StatusBadGateway, "Completion failed"))
)
