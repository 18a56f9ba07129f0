package biz

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/secondbrain-io/secondbrain/internal/model"
	"github.com/secondbrain-io/secondbrain/internal/secondbrain/store"
	"github.com/secondbrain-io/secondbrain/pkg/component/extractor"
	"github.com/secondbrain-io/secondbrain/pkg/component/groq"
	"github.com/secondbrain-io/secondbrain/pkg/component/vectorindex"
	"github.com/secondbrain-io/secondbrain/pkg/utils/errors"
)

// fakeStore is an in-memory store.Store for biz tests.
type fakeStore struct {
	mu     sync.Mutex
	docs   map[primitive.ObjectID]*model.Document
	chunks map[primitive.ObjectID]*model.Chunk

	insertChunksErr error
	updateStatusErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:   map[primitive.ObjectID]*model.Document{},
		chunks: map[primitive.ObjectID]*model.Chunk{},
	}
}

func (s *fakeStore) Documents() store.DocumentStore { return (*fakeDocStore)(s) }
func (s *fakeStore) Chunks() store.ChunkStore       { return (*fakeChunkStore)(s) }

type fakeDocStore fakeStore

func (s *fakeDocStore) Insert(_ context.Context, doc *model.Document) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := primitive.NewObjectID()
	doc.ID = id
	cp := *doc
	s.docs[id] = &cp
	return id, nil
}

func (s *fakeDocStore) Get(_ context.Context, ownerID string, id primitive.ObjectID) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return nil, errors.ErrDocumentNotFound
	}
	cp := *doc
	return &cp, nil
}

func (s *fakeDocStore) ListByOwner(_ context.Context, ownerID string) ([]*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Document
	for _, doc := range s.docs {
		if doc.OwnerID == ownerID {
			cp := *doc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeDocStore) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Document
	for _, id := range ids {
		if doc, ok := s.docs[id]; ok {
			cp := *doc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeDocStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status string, extra map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateStatusErr != nil {
		return s.updateStatusErr
	}
	doc, ok := s.docs[id]
	if !ok || doc.Status != model.StatusProcessing {
		return errors.ErrDocumentNotFound
	}
	if !model.CanTransition(doc.Status, status) {
		return errors.ErrInvalidParam
	}
	doc.Status = status
	if msg, ok := extra["metadata.error"].(string); ok {
		if doc.Metadata == nil {
			doc.Metadata = map[string]string{}
		}
		doc.Metadata["error"] = msg
	}
	if n, ok := extra["metadata.chunk_count"].(string); ok {
		if doc.Metadata == nil {
			doc.Metadata = map[string]string{}
		}
		doc.Metadata["chunk_count"] = n
	}
	return nil
}

func (s *fakeDocStore) Delete(_ context.Context, ownerID string, id primitive.ObjectID) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return nil, errors.ErrDocumentNotFound
	}
	delete(s.docs, id)
	return doc, nil
}

func (s *fakeDocStore) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, doc := range s.docs {
		if doc.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

type fakeChunkStore fakeStore

func (s *fakeChunkStore) InsertMany(_ context.Context, chunks []*model.Chunk) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertChunksErr != nil {
		return nil, s.insertChunksErr
	}
	ids := make([]primitive.ObjectID, len(chunks))
	for i, ch := range chunks {
		id := primitive.NewObjectID()
		ch.ID = id
		ch.CreatedAt = time.Now()
		cp := *ch
		s.chunks[id] = &cp
		ids[i] = id
	}
	return ids, nil
}

func (s *fakeChunkStore) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]*model.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Chunk
	for _, id := range ids {
		if ch, ok := s.chunks[id]; ok {
			cp := *ch
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeChunkStore) DeleteByDocument(_ context.Context, docID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, ch := range s.chunks {
		if ch.DocID == docID {
			delete(s.chunks, id)
			n++
		}
	}
	return n, nil
}

func (s *fakeChunkStore) CountByDocument(_ context.Context, docID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, ch := range s.chunks {
		if ch.DocID == docID {
			n++
		}
	}
	return n, nil
}

// fakeExtractor returns canned fragments or an error.
type fakeExtractor struct {
	fragments []extractor.Fragment
	err       error
	calls     int
}

func (f *fakeExtractor) Extract(_ context.Context, _, _, _ string, _ []byte) ([]extractor.Fragment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.fragments, nil
}

// fakeIndex records registrations and serves canned matches.
type fakeIndex struct {
	mu          sync.Mutex
	registered  []vectorindex.Vector
	registerErr error
	matches     []vectorindex.Match
	searchErr   error
	searchCalls int
}

func (f *fakeIndex) Register(_ context.Context, vectors []vectorindex.Vector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, vectors...)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _ int) ([]vectorindex.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.matches, nil
}

// fakeCompleter returns a canned answer and records the key it saw.
type fakeCompleter struct {
	answer     string
	err        error
	hasDefault bool
	lastKey    string
	lastPrompt string
}

func (f *fakeCompleter) ChatCompletion(_ context.Context, apiKey string, messages []groq.Message) (string, error) {
	f.lastKey = apiKey
	if len(messages) > 0 {
		f.lastPrompt = messages[len(messages)-1].Content
	}
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeCompleter) HasDefaultKey() bool { return f.hasDefault }
