package biz

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/secondbrain-io/secondbrain/internal/model"
	"github.com/secondbrain-io/secondbrain/pkg/component/vectorindex"
	"github.com/secondbrain-io/secondbrain/pkg/utils/errors"
)

func seedDoc(st *fakeStore, ownerID, title string) primitive.ObjectID {
	id, _ := st.Documents().Insert(context.Background(), &model.Document{
		OwnerID:    ownerID,
		Title:      title,
		SourceType: model.SourceText,
		Status:     model.StatusReady,
	})
	return id
}

func seedChunk(st *fakeStore, docID primitive.ObjectID, text string, index int) primitive.ObjectID {
	ids, _ := st.Chunks().InsertMany(context.Background(), []*model.Chunk{
		{DocID: docID, Text: text, Embedding: []float32{0.1}, ChunkIndex: index},
	})
	return ids[0]
}

func TestChatEmptyQuery(t *testing.T) {
	chatter := NewChatter(newFakeStore(), &fakeIndex{}, &fakeCompleter{hasDefault: true}, nil, nil)

	_, err := chatter.Chat(context.Background(), &ChatRequest{OwnerID: "user-1", Query: "   "})
	assert.True(t, errors.IsCode(err, errors.ErrEmptyQuery.Code))
}

func TestChatMissingCredentialFailsBeforeSearch(t *testing.T) {
	idx := &fakeIndex{}
	chatter := NewChatter(newFakeStore(), idx, &fakeCompleter{hasDefault: false}, nil, nil)

	_, err := chatter.Chat(context.Background(), &ChatRequest{OwnerID: "user-1", Query: "what is raft"})
	assert.True(t, errors.IsCode(err, errors.ErrMissingCredential.Code))
	assert.Zero(t, idx.searchCalls)
}

func TestChatUserKeyPrecedence(t *testing.T) {
	st := newFakeStore()
	docID := seedDoc(st, "user-1", "Raft Paper")
	chunkID := seedChunk(st, docID, "raft is a consensus algorithm", 0)

	idx := &fakeIndex{matches: []vectorindex.Match{{ChunkID: chunkID.Hex(), Score: 0.9}}}
	completer := &fakeCompleter{answer: "Raft is consensus.", hasDefault: true}
	chatter := NewChatter(st, idx, completer, nil, nil)

	_, err := chatter.Chat(context.Background(), &ChatRequest{
		OwnerID:    "user-1",
		Query:      "what is raft",
		UserAPIKey: "user-key",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-key", completer.lastKey)
}

func TestChatHappyPathPreservesRankingOrder(t *testing.T) {
	st := newFakeStore()
	docID := seedDoc(st, "user-1", "Raft Paper")
	c1 := seedChunk(st, docID, "first chunk text", 0)
	c2 := seedChunk(st, docID, "second chunk text", 1)
	c3 := seedChunk(st, docID, "third chunk text", 2)

	// The index ranks c1, c3, c2; hydration must keep that order.
	idx := &fakeIndex{matches: []vectorindex.Match{
		{ChunkID: c1.Hex(), Score: 0.95},
		{ChunkID: c3.Hex(), Score: 0.80},
		{ChunkID: c2.Hex(), Score: 0.60},
	}}
	completer := &fakeCompleter{answer: "The answer.", hasDefault: true}
	chatter := NewChatter(st, idx, completer, nil, nil)

	result, err := chatter.Chat(context.Background(), &ChatRequest{OwnerID: "user-1", Query: "order?"})
	require.NoError(t, err)
	assert.Equal(t, "The answer.", result.Answer)
	assert.False(t, result.Degraded)

	require.Len(t, result.Sources, 3)
	assert.Equal(t, c1.Hex(), result.Sources[0].ID)
	assert.Equal(t, c3.Hex(), result.Sources[1].ID)
	assert.Equal(t, c2.Hex(), result.Sources[2].ID)
	assert.Equal(t, "Raft Paper", result.Sources[0].Title)

	// Labeled context blocks appear in the prompt, in rank order.
	assert.Contains(t, completer.lastPrompt, "[Source 1: Raft Paper]\nfirst chunk text")
	assert.Contains(t, completer.lastPrompt, "[Source 2: Raft Paper]\nthird chunk text")
	assert.Contains(t, completer.lastPrompt, "[Source 3: Raft Paper]\nsecond chunk text")
}

func TestChatSnippetTruncationIsDisplayOnly(t *testing.T) {
	st := newFakeStore()
	docID := seedDoc(st, "user-1", "Long Doc")
	longText := strings.Repeat("abcdefghij", 20)
	chunkID := seedChunk(st, docID, longText, 0)

	idx := &fakeIndex{matches: []vectorindex.Match{{ChunkID: chunkID.Hex(), Score: 0.9}}}
	completer := &fakeCompleter{answer: "ok", hasDefault: true}
	chatter := NewChatter(st, idx, completer, nil, nil)

	result, err := chatter.Chat(context.Background(), &ChatRequest{OwnerID: "user-1", Query: "q"})
	require.NoError(t, err)

	require.Len(t, result.Sources, 1)
	assert.Equal(t, longText[:50]+"...", result.Sources[0].Text)
	// The completion still sees the full chunk.
	assert.Contains(t, completer.lastPrompt, longText)
}

func TestChatDegradedAnswerOnCompletionFailure(t *testing.T) {
	st := newFakeStore()
	docID := seedDoc(st, "user-1", "Raft Paper")
	chunkID := seedChunk(st, docID, "raft elects a leader", 0)

	idx := &fakeIndex{matches: []vectorindex.Match{{ChunkID: chunkID.Hex(), Score: 0.9}}}
	completer := &fakeCompleter{err: fmt.Errorf("api down"), hasDefault: true}
	chatter := NewChatter(st, idx, completer, nil, nil)

	result, err := chatter.Chat(context.Background(), &ChatRequest{OwnerID: "user-1", Query: "q"})
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Contains(t, result.Answer, "raft elects a leader")
	assert.Contains(t, result.Answer, "unavailable")
	require.Len(t, result.Sources, 1)
}

func TestChatDegradedAnswerTruncatesContext(t *testing.T) {
	st := newFakeStore()
	docID := seedDoc(st, "user-1", "Big Doc")
	chunkID := seedChunk(st, docID, strings.Repeat("x", 2000), 0)

	idx := &fakeIndex{matches: []vectorindex.Match{{ChunkID: chunkID.Hex(), Score: 0.9}}}
	completer := &fakeCompleter{err: fmt.Errorf("api down"), hasDefault: true}
	chatter := NewChatter(st, idx, completer, nil, nil)

	result, err := chatter.Chat(context.Background(), &ChatRequest{OwnerID: "user-1", Query: "q"})
	require.NoError(t, err)

	// 500 chars of context plus the fixed note.
	assert.Less(t, len(result.Answer), 700)
	assert.True(t, result.Degraded)
}

func TestChatNoMatches(t *testing.T) {
	chatter := NewChatter(newFakeStore(), &fakeIndex{}, &fakeCompleter{hasDefault: true}, nil, nil)

	result, err := chatter.Chat(context.Background(), &ChatRequest{OwnerID: "user-1", Query: "anything"})
	require.NoError(t, err)
	assert.Contains(t, result.Answer, "couldn't find")
	assert.Empty(t, result.Sources)
}

func TestChatSearchFailure(t *testing.T) {
	idx := &fakeIndex{searchErr: fmt.Errorf("index down")}
	chatter := NewChatter(newFakeStore(), idx, &fakeCompleter{hasDefault: true}, nil, nil)

	_, err := chatter.Chat(context.Background(), &ChatRequest{OwnerID: "user-1", Query: "q"})
	assert.True(t, errors.IsCode(err, errors.ErrSearch.Code))
}

func TestChatDropsOtherOwnersChunks(t *testing.T) {
	st := newFakeStore()
	mine := seedDoc(st, "user-1", "Mine")
	theirs := seedDoc(st, "user-2", "Theirs")
	myChunk := seedChunk(st, mine, "my text", 0)
	theirChunk := seedChunk(st, theirs, "their text", 0)

	idx := &fakeIndex{matches: []vectorindex.Match{
		{ChunkID: theirChunk.Hex(), Score: 0.99},
		{ChunkID: myChunk.Hex(), Score: 0.50},
	}}
	completer := &fakeCompleter{answer: "ok", hasDefault: true}
	chatter := NewChatter(st, idx, completer, nil, nil)

	result, err := chatter.Chat(context.Background(), &ChatRequest{OwnerID: "user-1", Query: "q"})
	require.NoError(t, err)

	require.Len(t, result.Sources, 1)
	assert.Equal(t, myChunk.Hex(), result.Sources[0].ID)
	assert.NotContains(t, completer.lastPrompt, "their text")
}

func TestSnippetKeepsMultibyteTextValid(t *testing.T) {
	text := strings.Repeat("a", 49) + "étail"

	got := snippet(text, 50)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 49)+"é...", got)

	// Short input passes through untouched.
	assert.Equal(t, "héllo", snippet("héllo", 50))
}

func TestChatDegradedAnswerKeepsMultibyteTextValid(t *testing.T) {
	st := newFakeStore()
	docID := seedDoc(st, "user-1", "Notes")
	chunkID := seedChunk(st, docID, strings.Repeat("é", 600), 0)

	idx := &fakeIndex{matches: []vectorindex.Match{{ChunkID: chunkID.Hex(), Score: 0.9}}}
	completer := &fakeCompleter{err: fmt.Errorf("provider down"), hasDefault: true}
	chatter := NewChatter(st, idx, completer, nil, nil)

	result, err := chatter.Chat(context.Background(), &ChatRequest{OwnerID: "user-1", Query: "q"})
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.True(t, utf8.ValidString(result.Answer))
}

func TestChatCapsSourcesAtTopK(t *testing.T) {
	st := newFakeStore()
	docID := seedDoc(st, "user-1", "Notes")

	var matches []vectorindex.Match
	for i := 0; i < 8; i++ {
		chunkID := seedChunk(st, docID, fmt.Sprintf("chunk %d", i), i)
		matches = append(matches, vectorindex.Match{ChunkID: chunkID.Hex(), Score: 1.0 - float64(i)*0.1})
	}

	idx := &fakeIndex{matches: matches}
	completer := &fakeCompleter{answer: "ok", hasDefault: true}
	cfg := NewChatConfig()
	cfg.TopK = 5
	chatter := NewChatter(st, idx, completer, nil, cfg)

	result, err := chatter.Chat(context.Background(), &ChatRequest{OwnerID: "user-1", Query: "q"})
	require.NoError(t, err)

	require.Len(t, result.Sources, 5)
	assert.Contains(t, completer.lastPrompt, "chunk 4")
	assert.NotContains(t, completer.lastPrompt, "chunk 5")
}

func TestChatKeepsChunksWithMissingParent(t *testing.T) {
	st := newFakeStore()
	danglingChunk := seedChunk(st, primitive.NewObjectID(), "dangling text", 0)

	idx := &fakeIndex{matches: []vectorindex.Match{{ChunkID: danglingChunk.Hex(), Score: 0.9}}}
	completer := &fakeCompleter{answer: "ok", hasDefault: true}
	chatter := NewChatter(st, idx, completer, nil, nil)

	result, err := chatter.Chat(context.Background(), &ChatRequest{OwnerID: "user-1", Query: "q"})
	require.NoError(t, err)

	require.Len(t, result.Sources, 1)
	assert.Equal(t, "Unknown Document", result.Sources[0].Title)
	assert.Contains(t, completer.lastPrompt, "dangling text")
}

func TestChatUnknownDocumentTitleFallback(t *testing.T) {
	st := newFakeStore()
	docID := seedDoc(st, "user-1", "")
	chunkID := seedChunk(st, docID, "orphan text", 0)

	idx := &fakeIndex{matches: []vectorindex.Match{{ChunkID: chunkID.Hex(), Score: 0.9}}}
	completer := &fakeCompleter{answer: "ok", hasDefault: true}
	chatter := NewChatter(st, idx, completer, nil, nil)

	result, err := chatter.Chat(context.Background(), &ChatRequest{OwnerID: "user-1", Query: "q"})
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "Unknown Document", result.Sources[0].Title)
}
