package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/secondbrain-io/secondbrain/internal/model"
	"github.com/secondbrain-io/secondbrain/pkg/component/mongodb"
	"github.com/secondbrain-io/secondbrain/pkg/utils/errors"
)

// mongoStore implements Store on top of the mongodb component.
type mongoStore struct {
	docs   *documentStore
	chunks *chunkStore
}

// NewMongoStore creates a Store backed by the given MongoDB client.
func NewMongoStore(client *mongodb.Client) Store {
	return &mongoStore{
		docs:   &documentStore{coll: client.Collection(model.Document{}.CollectionName())},
		chunks: &chunkStore{coll: client.Collection(model.Chunk{}.CollectionName())},
	}
}

func (s *mongoStore) Documents() DocumentStore { return s.docs }
func (s *mongoStore) Chunks() ChunkStore       { return s.chunks }

type documentStore struct {
	coll *mongo.Collection
}

func (s *documentStore) Insert(ctx context.Context, doc *model.Document) (primitive.ObjectID, error) {
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	if err := doc.Validate(); err != nil {
		return primitive.NilObjectID, errors.ErrInvalidParam.WithCause(err)
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, errors.ErrDatabase.WithCause(err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.ErrDatabase.WithMessage("unexpected inserted ID type")
	}
	doc.ID = id
	return id, nil
}

func (s *documentStore) Get(ctx context.Context, ownerID string, id primitive.ObjectID) (*model.Document, error) {
	var doc model.Document
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.ErrDocumentNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &doc, nil
}

func (s *documentStore) ListByOwner(ctx context.Context, ownerID string) ([]*model.Document, error) {
	opts := mongoopts.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	defer cursor.Close(ctx)

	docs := []*model.Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return docs, nil
}

func (s *documentStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	defer cursor.Close(ctx)

	docs := []*model.Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return docs, nil
}

// UpdateStatus moves a document from processing to a terminal status.
// The filter includes the current status so concurrent writers cannot
// overwrite a terminal state.
func (s *documentStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, extra map[string]any) error {
	if !model.CanTransition(model.StatusProcessing, status) {
		return errors.ErrInvalidParam.WithMessagef("invalid status transition to %q", status)
	}

	set := bson.M{"status": status}
	for k, v := range extra {
		set[k] = v
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": model.StatusProcessing},
		bson.M{"$set": set},
	)
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	if res.MatchedCount == 0 {
		return errors.ErrDocumentNotFound.WithMessage(
			fmt.Sprintf("document %s is not in processing state", id.Hex()))
	}
	return nil
}

func (s *documentStore) Delete(ctx context.Context, ownerID string, id primitive.ObjectID) (*model.Document, error) {
	var doc model.Document
	err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.ErrDocumentNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &doc, nil
}

func (s *documentStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, errors.ErrDatabase.WithCause(err)
	}
	return count, nil
}

type chunkStore struct {
	coll *mongo.Collection
}

// InsertMany writes chunks in their slice order. Ordered inserts keep
// ChunkIndex and insertion order aligned.
func (s *chunkStore) InsertMany(ctx context.Context, chunks []*model.Chunk) ([]primitive.ObjectID, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(chunks))
	for i, ch := range chunks {
		if ch.CreatedAt.IsZero() {
			ch.CreatedAt = now
		}
		docs[i] = ch
	}

	res, err := s.coll.InsertMany(ctx, docs, mongoopts.InsertMany().SetOrdered(true))
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	ids := make([]primitive.ObjectID, len(res.InsertedIDs))
	for i, raw := range res.InsertedIDs {
		id, ok := raw.(primitive.ObjectID)
		if !ok {
			return nil, errors.ErrDatabase.WithMessage("unexpected inserted ID type")
		}
		ids[i] = id
		chunks[i].ID = id
	}
	return ids, nil
}

// GetByIDs preserves the order of ids in its result so retrieval ranking
// survives hydration.
func (s *chunkStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	defer cursor.Close(ctx)

	found := []*model.Chunk{}
	if err := cursor.All(ctx, &found); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	byID := make(map[primitive.ObjectID]*model.Chunk, len(found))
	for _, ch := range found {
		byID[ch.ID] = ch
	}

	ordered := make([]*model.Chunk, 0, len(ids))
	for _, id := range ids {
		if ch, ok := byID[id]; ok {
			ordered = append(ordered, ch)
		}
	}
	return ordered, nil
}

func (s *chunkStore) DeleteByDocument(ctx context.Context, docID primitive.ObjectID) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"doc_id": docID})
	if err != nil {
		return 0, errors.ErrDatabase.WithCause(err)
	}
	return res.DeletedCount, nil
}

func (s *chunkStore) CountByDocument(ctx context.Context, docID primitive.ObjectID) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"doc_id": docID})
	if err != nil {
		return 0, errors.ErrDatabase.WithCause(err)
	}
	return count, nil
}
