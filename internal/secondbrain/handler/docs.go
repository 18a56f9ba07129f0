// Package handler provides HTTP handlers for the SecondBrain service.
package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/secondbrain-io/secondbrain/internal/pkg/httputils"
	"github.com/secondbrain-io/secondbrain/internal/pkg/middleware"
	"github.com/secondbrain-io/secondbrain/internal/secondbrain/biz"
	"github.com/secondbrain-io/secondbrain/pkg/utils/errors"
)

// maxUploadBytes bounds uploaded file size (32 MiB).
const maxUploadBytes = 32 << 20

// DocsHandler handles document HTTP requests.
type DocsHandler struct {
	service biz.Service
}

// NewDocsHandler creates a DocsHandler.
func NewDocsHandler(service biz.Service) *DocsHandler {
	return &DocsHandler{service: service}
}

// Upload accepts a multipart upload and schedules ingestion. The response
// is 202: the document is still processing when it returns.
func (h *DocsHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		httputils.WriteResponse(c, errors.ErrNoFile.WithCause(err), nil)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage("file too large"), nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httputils.WriteResponse(c, errors.ErrInternal.WithCause(err), nil)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		httputils.WriteResponse(c, errors.ErrInternal.WithCause(err), nil)
		return
	}

	var tags []string
	if raw := c.PostForm("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	doc, err := h.service.Ingest(c.Request.Context(), &biz.IngestRequest{
		OwnerID:    middleware.OwnerID(c),
		Title:      c.PostForm("title"),
		Filename:   fileHeader.Filename,
		SourceType: c.PostForm("source_type"),
		Tags:       tags,
		File:       content,
	})
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteAccepted(c, doc)
}

// List returns the owner's documents, newest first.
func (h *DocsHandler) List(c *gin.Context) {
	docs, err := h.service.ListDocuments(c.Request.Context(), middleware.OwnerID(c))
	httputils.WriteResponse(c, err, docs)
}

// Get returns one document with its chunk count.
func (h *DocsHandler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage("malformed document ID"), nil)
		return
	}

	detail, err := h.service.GetDocument(c.Request.Context(), middleware.OwnerID(c), id)
	httputils.WriteResponse(c, err, detail)
}

// Delete removes a document and its chunks.
func (h *DocsHandler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage("malformed document ID"), nil)
		return
	}

	result, err := h.service.DeleteDocument(c.Request.Context(), middleware.OwnerID(c), id)
	httputils.WriteResponse(c, err, result)
}

// Stats returns service statistics for the owner.
func (h *DocsHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), middleware.OwnerID(c))
	httputils.WriteResponse(c, err, stats)
}
