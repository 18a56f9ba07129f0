package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/secondbrain-io/secondbrain/internal/pkg/httputils"
	"github.com/secondbrain-io/secondbrain/internal/pkg/middleware"
	"github.com/secondbrain-io/secondbrain/internal/secondbrain/biz"
	"github.com/secondbrain-io/secondbrain/pkg/utils/errors"
)

// apiKeyHeader carries a per-request completion API key, which takes
// precedence over the server default.
const apiKeyHeader = "X-Groq-Api-Key"

// chatTimeout bounds one chat turn end to end.
const chatTimeout = 60 * time.Second

// ChatHandler handles chat HTTP requests.
type ChatHandler struct {
	service biz.Service
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(service biz.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// ChatRequest is the chat request body.
type ChatRequest struct {
	Query string `json:"query" binding:"required"`
}

// Chat answers a question from the owner's documents.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrEmptyQuery.WithCause(err), nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), chatTimeout)
	defer cancel()

	result, err := h.service.Chat(ctx, &biz.ChatRequest{
		OwnerID:    middleware.OwnerID(c),
		Query:      req.Query,
		UserAPIKey: c.GetHeader(apiKeyHeader),
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			httputils.WriteResponse(c, errors.ErrTimeout.WithMessage("chat timed out"), nil)
			return
		}
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, result)
}
