package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/secondbrain-io/secondbrain/internal/model"
)

// DocumentStore persists document records.
type DocumentStore interface {
	// Insert creates a new document record and returns its ID.
	Insert(ctx context.Context, doc *model.Document) (primitive.ObjectID, error)

	// Get returns the document with the given ID, scoped to the owner.
	Get(ctx context.Context, ownerID string, id primitive.ObjectID) (*model.Document, error)

	// ListByOwner returns all documents belonging to the owner,
	// newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Document, error)

	// GetByIDs returns documents for the given IDs without owner
	// scoping, used to resolve titles for search results.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Document, error)

	// UpdateStatus moves a document out of the processing state. It
	// fails if the transition is not allowed.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, extra map[string]any) error

	// Delete removes the document, scoped to the owner. Returns the
	// deleted document so callers can cascade.
	Delete(ctx context.Context, ownerID string, id primitive.ObjectID) (*model.Document, error)

	// CountByOwner returns the number of documents the owner has.
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

// ChunkStore persists extracted chunks.
type ChunkStore interface {
	// InsertMany creates chunk records in document order and returns
	// their IDs in the same order.
	InsertMany(ctx context.Context, chunks []*model.Chunk) ([]primitive.ObjectID, error)

	// GetByIDs returns chunks for the given IDs. Order follows ids;
	// missing chunks are skipped.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Chunk, error)

	// DeleteByDocument removes all chunks of a document and returns
	// how many were removed.
	DeleteByDocument(ctx context.Context, docID primitive.ObjectID) (int64, error)

	// CountByDocument returns the number of chunks a document has.
	CountByDocument(ctx context.Context, docID primitive.ObjectID) (int64, error)
}

// Store aggregates the stores behind a single factory.
type Store interface {
	Documents() DocumentStore
	Chunks() ChunkStore
}
