package biz

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/secondbrain-io/secondbrain/internal/model"
	"github.com/secondbrain-io/secondbrain/internal/secondbrain/metrics"
	"github.com/secondbrain-io/secondbrain/internal/secondbrain/store"
	"github.com/secondbrain-io/secondbrain/pkg/component/extractor"
	"github.com/secondbrain-io/secondbrain/pkg/component/groq"
	"github.com/secondbrain-io/secondbrain/pkg/component/vectorindex"
)

// Extractor turns an uploaded file into embedded text fragments.
type Extractor interface {
	Extract(ctx context.Context, docID, filename, sourceType string, file []byte) ([]extractor.Fragment, error)
}

// VectorIndex registers chunk embeddings and answers similarity queries.
type VectorIndex interface {
	Register(ctx context.Context, vectors []vectorindex.Vector) error
	Search(ctx context.Context, query string, topK int) ([]vectorindex.Match, error)
}

// Completer produces a chat completion from labeled context.
type Completer interface {
	ChatCompletion(ctx context.Context, apiKey string, messages []groq.Message) (string, error)
	HasDefaultKey() bool
}

// Service defines the business operations of the SecondBrain service.
type Service interface {
	// Ingest accepts an upload, creates the document record, and kicks
	// off background processing. It returns the processing document.
	Ingest(ctx context.Context, req *IngestRequest) (*model.Document, error)

	// ListDocuments returns the owner's documents, newest first.
	ListDocuments(ctx context.Context, ownerID string) ([]*model.Document, error)

	// GetDocument returns one document with its chunk count.
	GetDocument(ctx context.Context, ownerID string, id primitive.ObjectID) (*DocumentDetail, error)

	// DeleteDocument removes a document and all of its chunks.
	DeleteDocument(ctx context.Context, ownerID string, id primitive.ObjectID) (*DeleteResult, error)

	// Chat answers a question from the owner's documents.
	Chat(ctx context.Context, req *ChatRequest) (*model.QueryResult, error)

	// Stats returns service statistics for the owner.
	Stats(ctx context.Context, ownerID string) (map[string]any, error)
}

// SecondBrain composes the ingestion and chat pipelines.
type SecondBrain struct {
	ingestor *Ingestor
	chatter  *Chatter
	store    store.Store
	metrics  *metrics.Metrics
}

// Config carries business layer configuration.
type Config struct {
	Ingest *IngestConfig
	Chat   *ChatConfig
	Cache  *QueryCacheConfig
}

// New creates the business service.
func New(
	st store.Store,
	ext Extractor,
	index VectorIndex,
	completer Completer,
	cache *QueryCache,
	config *Config,
	submit func(func()) error,
) *SecondBrain {
	if config == nil {
		config = &Config{}
	}
	m := metrics.Get()
	return &SecondBrain{
		ingestor: NewIngestor(st, ext, index, config.Ingest, submit),
		chatter:  NewChatter(st, index, completer, cache, config.Chat),
		store:    st,
		metrics:  m,
	}
}

// Ingest starts processing an uploaded document.
func (s *SecondBrain) Ingest(ctx context.Context, req *IngestRequest) (*model.Document, error) {
	return s.ingestor.Ingest(ctx, req)
}

// ListDocuments returns the owner's documents.
func (s *SecondBrain) ListDocuments(ctx context.Context, ownerID string) ([]*model.Document, error) {
	return s.store.Documents().ListByOwner(ctx, ownerID)
}

// DocumentDetail is a document with its chunk count.
type DocumentDetail struct {
	*model.Document
	ChunkCount int64 `json:"chunk_count"`
}

// GetDocument returns one document with its chunk count.
func (s *SecondBrain) GetDocument(ctx context.Context, ownerID string, id primitive.ObjectID) (*DocumentDetail, error) {
	doc, err := s.store.Documents().Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Chunks().CountByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DocumentDetail{Document: doc, ChunkCount: count}, nil
}

// DeleteResult reports what a delete removed.
type DeleteResult struct {
	DocumentID    string `json:"document_id"`
	ChunksDeleted int64  `json:"chunks_deleted"`
}

// DeleteDocument removes a document and cascades to its chunks.
// Index entries for the removed chunks become dangling; search hits on
// them are dropped during hydration.
func (s *SecondBrain) DeleteDocument(ctx context.Context, ownerID string, id primitive.ObjectID) (*DeleteResult, error) {
	doc, err := s.store.Documents().Delete(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	deleted, err := s.store.Chunks().DeleteByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return &DeleteResult{DocumentID: doc.ID.Hex(), ChunksDeleted: deleted}, nil
}

// Chat answers a question from the owner's documents.
func (s *SecondBrain) Chat(ctx context.Context, req *ChatRequest) (*model.QueryResult, error) {
	return s.chatter.Chat(ctx, req)
}

// Stats returns service statistics for the owner.
func (s *SecondBrain) Stats(ctx context.Context, ownerID string) (map[string]any, error) {
	docCount, err := s.store.Documents().CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := map[string]any{
		"documents": docCount,
		"metrics":   s.metrics.Stats(),
	}
	if s.chatter.cache != nil {
		if cacheStats, err := s.chatter.cache.Stats(ctx); err == nil {
			stats["cache"] = cacheStats
		}
	}
	return stats, nil
}

var _ Service = (*SecondBrain)(nil)
