package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/secondbrain-io/secondbrain/internal/model"
	"github.com/secondbrain-io/secondbrain/internal/secondbrain/metrics"
	"github.com/secondbrain-io/secondbrain/internal/secondbrain/store"
	"github.com/secondbrain-io/secondbrain/pkg/component/groq"
	"github.com/secondbrain-io/secondbrain/pkg/component/vectorindex"
	"github.com/secondbrain-io/secondbrain/pkg/utils/errors"
)

const defaultSystemPrompt = `You are a helpful assistant that answers questions using only the provided document excerpts.
If the excerpts do not contain the answer, say you could not find it in the documents.
Cite the source labels when you use them.`

// ChatConfig configures the chat pipeline.
type ChatConfig struct {
	// TopK is how many chunks to retrieve per question.
	TopK int

	// SystemPrompt is the instruction prepended to every completion.
	SystemPrompt string

	// SnippetLength bounds source snippets in the response. Display
	// only; the full chunk text still feeds the completion.
	SnippetLength int

	// DegradedContextLength bounds the raw context returned when the
	// completion API is unavailable.
	DegradedContextLength int
}

// NewChatConfig returns chat defaults.
func NewChatConfig() *ChatConfig {
	return &ChatConfig{
		TopK:                  5,
		SystemPrompt:          defaultSystemPrompt,
		SnippetLength:         50,
		DegradedContextLength: 500,
	}
}

// ChatRequest is one question from an owner.
type ChatRequest struct {
	OwnerID string
	Query   string

	// UserAPIKey is the key supplied with the request. It takes
	// precedence over the server-level key.
	UserAPIKey string
}

// Chatter runs the retrieval-augmented chat pipeline.
type Chatter struct {
	store     store.Store
	index     VectorIndex
	completer Completer
	cache     *QueryCache
	config    *ChatConfig
	metrics   *metrics.Metrics
}

// NewChatter creates a chatter.
func NewChatter(st store.Store, index VectorIndex, completer Completer, cache *QueryCache, config *ChatConfig) *Chatter {
	if config == nil {
		config = NewChatConfig()
	}
	if config.SystemPrompt == "" {
		config.SystemPrompt = defaultSystemPrompt
	}
	return &Chatter{
		store:     st,
		index:     index,
		completer: completer,
		cache:     cache,
		config:    config,
		metrics:   metrics.Get(),
	}
}

// Chat answers one question. Credentials are checked before any
// retrieval work so a missing key fails fast.
func (c *Chatter) Chat(ctx context.Context, req *ChatRequest) (*model.QueryResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		c.metrics.RecordChat(false, errors.ErrEmptyQuery)
		return nil, errors.ErrEmptyQuery
	}
	if req.UserAPIKey == "" && !c.completer.HasDefaultKey() {
		c.metrics.RecordChat(false, errors.ErrMissingCredential)
		return nil, errors.ErrMissingCredential
	}

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, req.OwnerID, query); err == nil && cached != nil {
			c.metrics.RecordCache(true)
			c.metrics.RecordChat(false, nil)
			return cached, nil
		}
		c.metrics.RecordCache(false)
	}

	matches, err := c.index.Search(ctx, query, c.config.TopK)
	c.metrics.RecordSearch(err)
	if err != nil {
		c.metrics.RecordChat(false, err)
		return nil, errors.ErrSearch.WithCause(err)
	}

	if len(matches) == 0 {
		c.metrics.RecordChat(false, nil)
		return &model.QueryResult{
			Answer:  "I couldn't find anything relevant in your documents.",
			Sources: []model.Source{},
		}, nil
	}
	// The cap holds even if the index returns more than asked for.
	if len(matches) > c.config.TopK {
		matches = matches[:c.config.TopK]
	}

	chunks, titles, err := c.hydrate(ctx, req.OwnerID, matches)
	if err != nil {
		c.metrics.RecordChat(false, err)
		return nil, err
	}
	if len(chunks) == 0 {
		c.metrics.RecordChat(false, nil)
		return &model.QueryResult{
			Answer:  "I couldn't find anything relevant in your documents.",
			Sources: []model.Source{},
		}, nil
	}

	contextText := buildContext(chunks, titles)
	sources := c.buildSources(chunks, titles)

	answer, err := c.complete(ctx, req.UserAPIKey, query, contextText)
	if err != nil {
		logger.Warnw("Completion failed, returning degraded answer",
			"owner_id", req.OwnerID,
			"error", err.Error(),
		)
		c.metrics.RecordChat(true, nil)
		return &model.QueryResult{
			Answer:   c.degradedAnswer(contextText),
			Sources:  sources,
			Degraded: true,
		}, nil
	}

	result := &model.QueryResult{
		Answer:  answer,
		Sources: sources,
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, req.OwnerID, query, result)
	}

	c.metrics.RecordChat(false, nil)
	return result, nil
}

// hydrate loads the matched chunks in ranking order and resolves their
// parent document titles. Chunks whose parent belongs to another owner
// are dropped. Chunks whose parent no longer exists are kept and shown
// as "Unknown Document" so a dangling index entry is visible instead of
// silently vanishing from the context.
func (c *Chatter) hydrate(ctx context.Context, ownerID string, matches []vectorindex.Match) ([]*model.Chunk, map[primitive.ObjectID]string, error) {
	ids := make([]primitive.ObjectID, 0, len(matches))
	for _, m := range matches {
		id, err := primitive.ObjectIDFromHex(m.ChunkID)
		if err != nil {
			logger.Warnw("Search returned malformed chunk ID", "chunk_id", m.ChunkID)
			continue
		}
		ids = append(ids, id)
	}

	chunks, err := c.store.Chunks().GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	docIDs := make([]primitive.ObjectID, 0, len(chunks))
	seen := make(map[primitive.ObjectID]bool)
	for _, ch := range chunks {
		if !seen[ch.DocID] {
			seen[ch.DocID] = true
			docIDs = append(docIDs, ch.DocID)
		}
	}

	docs, err := c.store.Documents().GetByIDs(ctx, docIDs)
	if err != nil {
		return nil, nil, err
	}

	titles := make(map[primitive.ObjectID]string, len(docs))
	foreign := make(map[primitive.ObjectID]bool)
	for _, doc := range docs {
		if doc.OwnerID != ownerID {
			foreign[doc.ID] = true
			continue
		}
		titles[doc.ID] = doc.Title
	}

	kept := make([]*model.Chunk, 0, len(chunks))
	for _, ch := range chunks {
		if foreign[ch.DocID] {
			continue
		}
		kept = append(kept, ch)
	}
	return kept, titles, nil
}

func buildContext(chunks []*model.Chunk, titles map[primitive.ObjectID]string) string {
	var sb strings.Builder
	for i, ch := range chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("[Source %d: %s]\n%s", i+1, titleFor(ch, titles), ch.Text))
	}
	return sb.String()
}

func (c *Chatter) buildSources(chunks []*model.Chunk, titles map[primitive.ObjectID]string) []model.Source {
	sources := make([]model.Source, len(chunks))
	for i, ch := range chunks {
		sources[i] = model.Source{
			ID:    ch.ID.Hex(),
			Title: titleFor(ch, titles),
			Text:  snippet(ch.Text, c.config.SnippetLength),
		}
	}
	return sources
}

func titleFor(ch *model.Chunk, titles map[primitive.ObjectID]string) string {
	if title, ok := titles[ch.DocID]; ok && title != "" {
		return title
	}
	return "Unknown Document"
}

// snippet truncates on rune boundaries so multibyte text stays valid.
func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func (c *Chatter) complete(ctx context.Context, apiKey, query, contextText string) (string, error) {
	messages := []groq.Message{
		{Role: "system", Content: c.config.SystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, query)},
	}

	start := time.Now()
	answer, err := c.completer.ChatCompletion(ctx, apiKey, messages)
	c.metrics.RecordCompletion(time.Since(start), err)
	return answer, err
}

// degradedAnswer returns a slice of the raw context when the completion
// API is down, so the caller still gets something useful.
func (c *Chatter) degradedAnswer(contextText string) string {
	truncated := contextText
	if runes := []rune(truncated); len(runes) > c.config.DegradedContextLength {
		truncated = string(runes[:c.config.DegradedContextLength])
	}
	return truncated + "\n\n(Answer generation is currently unavailable; the text above is raw context from your documents.)"
}
