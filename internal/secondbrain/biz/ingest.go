package biz

import (
	"context"
	"strconv"
	"time"

	"github.com/kart-io/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/secondbrain-io/secondbrain/internal/model"
	"github.com/secondbrain-io/secondbrain/internal/secondbrain/metrics"
	"github.com/secondbrain-io/secondbrain/internal/secondbrain/store"
	"github.com/secondbrain-io/secondbrain/pkg/component/vectorindex"
	"github.com/secondbrain-io/secondbrain/pkg/utils/errors"
)

// IngestConfig configures the ingestion pipeline.
type IngestConfig struct {
	// ProcessTimeout bounds the whole background pipeline for one
	// document: extraction, persistence, and index registration.
	ProcessTimeout time.Duration
}

// NewIngestConfig returns ingestion defaults.
func NewIngestConfig() *IngestConfig {
	return &IngestConfig{
		ProcessTimeout: 5 * time.Minute,
	}
}

// IngestRequest is one upload to process.
type IngestRequest struct {
	OwnerID    string
	Title      string
	Filename   string
	SourceType string
	Tags       []string
	File       []byte
}

// Ingestor runs the document ingestion pipeline.
type Ingestor struct {
	store   store.Store
	ext     Extractor
	index   VectorIndex
	config  *IngestConfig
	metrics *metrics.Metrics

	// submit hands a task to the background pool. When nil the task
	// runs synchronously, which tests rely on.
	submit func(func()) error
}

// NewIngestor creates an ingestor.
func NewIngestor(st store.Store, ext Extractor, index VectorIndex, config *IngestConfig, submit func(func()) error) *Ingestor {
	if config == nil {
		config = NewIngestConfig()
	}
	return &Ingestor{
		store:   st,
		ext:     ext,
		index:   index,
		config:  config,
		metrics: metrics.Get(),
		submit:  submit,
	}
}

// Ingest validates the upload, creates the document in the processing
// state, and schedules background processing. The returned document is
// still processing; callers poll its status.
func (i *Ingestor) Ingest(ctx context.Context, req *IngestRequest) (*model.Document, error) {
	if len(req.File) == 0 {
		return nil, errors.ErrNoFile
	}

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = model.SourceTypeForFilename(req.Filename)
	}
	if !model.ValidSourceType(sourceType) {
		return nil, errors.ErrBadSourceType.WithMessagef("unknown source type %q", sourceType)
	}

	title := req.Title
	if title == "" {
		title = req.Filename
	}

	doc := &model.Document{
		OwnerID:          req.OwnerID,
		Title:            title,
		OriginalFilename: req.Filename,
		SourceType:       sourceType,
		Tags:             req.Tags,
		Status:           model.StatusProcessing,
		UploadedAt:       time.Now().UTC(),
	}

	id, err := i.store.Documents().Insert(ctx, doc)
	if err != nil {
		return nil, err
	}

	file := req.File
	task := func() {
		i.process(id, doc.OriginalFilename, sourceType, file)
	}

	if i.submit == nil {
		task()
		return doc, nil
	}

	if err := i.submit(task); err != nil {
		// The record exists but nothing will process it; fail it now
		// rather than leaving it processing forever.
		logger.Errorw("Failed to schedule ingestion", "doc_id", id.Hex(), "error", err.Error())
		i.markError(id, err)
		return nil, errors.ErrInternal.WithCause(err)
	}

	logger.Infow("Document ingestion scheduled",
		"doc_id", id.Hex(),
		"owner_id", req.OwnerID,
		"source_type", sourceType,
		"size_bytes", len(file),
	)
	return doc, nil
}

// process runs the pipeline for one document. It owns the status: the
// document leaves processing exactly once, here.
func (i *Ingestor) process(id primitive.ObjectID, filename, sourceType string, file []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), i.config.ProcessTimeout)
	defer cancel()

	fragments, err := i.ext.Extract(ctx, id.Hex(), filename, sourceType, file)
	if err != nil {
		logger.Errorw("Extraction failed", "doc_id", id.Hex(), "error", err.Error())
		i.markError(id, errors.ErrExtraction.WithCause(err))
		i.metrics.RecordIngest(0, err)
		return
	}
	if len(fragments) == 0 {
		logger.Warnw("Extraction produced no content", "doc_id", id.Hex())
		i.markError(id, errors.ErrExtraction.WithMessage("no content extracted"))
		i.metrics.RecordIngest(0, errors.ErrExtraction)
		return
	}

	chunks := make([]*model.Chunk, len(fragments))
	for idx, frag := range fragments {
		chunks[idx] = &model.Chunk{
			DocID:      id,
			Text:       frag.Text,
			Embedding:  frag.Embedding,
			ChunkIndex: idx,
		}
	}

	ids, err := i.store.Chunks().InsertMany(ctx, chunks)
	if err != nil {
		logger.Errorw("Failed to persist chunks", "doc_id", id.Hex(), "error", err.Error())
		i.markError(id, err)
		i.metrics.RecordIngest(0, err)
		return
	}

	vectors := make([]vectorindex.Vector, len(ids))
	for idx, chunkID := range ids {
		vectors[idx] = vectorindex.Vector{
			ChunkID:   chunkID.Hex(),
			Embedding: fragments[idx].Embedding,
		}
	}

	// Index registration failure leaves the persisted chunks in place.
	// The document is marked failed so the owner can retry the upload.
	if err := i.index.Register(ctx, vectors); err != nil {
		logger.Errorw("Failed to register vectors", "doc_id", id.Hex(), "error", err.Error())
		i.markError(id, errors.ErrIndexing.WithCause(err))
		i.metrics.RecordIngest(0, err)
		return
	}

	// Metadata values are strings in the document model.
	extra := map[string]any{"metadata.chunk_count": strconv.Itoa(len(ids))}
	if err := i.store.Documents().UpdateStatus(ctx, id, model.StatusReady, extra); err != nil {
		logger.Errorw("Failed to mark document ready", "doc_id", id.Hex(), "error", err.Error())
		i.metrics.RecordIngest(0, err)
		return
	}

	i.metrics.RecordIngest(len(ids), nil)
	logger.Infow("Document ingested", "doc_id", id.Hex(), "chunks", len(ids))
}

func (i *Ingestor) markError(id primitive.ObjectID, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	extra := map[string]any{"metadata.error": cause.Error()}
	if err := i.store.Documents().UpdateStatus(ctx, id, model.StatusError, extra); err != nil {
		logger.Errorw("Failed to mark document errored", "doc_id", id.Hex(), "error", err.Error())
	}
}
