// Package model provides data models for the SecondBrain service.
package model

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document status values. A document starts in StatusProcessing and moves
// exactly once to StatusReady or StatusError.
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusError      = "error"
)

// Document source types.
const (
	SourcePDF        = "pdf"
	SourceDOCX       = "docx"
	SourceText       = "text"
	SourceTranscript = "transcript"
	SourceURL        = "url"
)

// ValidSourceType reports whether s is a recognized source type.
func ValidSourceType(s string) bool {
	switch s {
	case SourcePDF, SourceDOCX, SourceText, SourceTranscript, SourceURL:
		return true
	}
	return false
}

// SourceTypeForFilename derives the source type from a filename extension.
// Unknown extensions fall back to SourceText.
func SourceTypeForFilename(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			switch filename[i+1:] {
			case "pdf":
				return SourcePDF
			case "docx", "doc":
				return SourceDOCX
			case "vtt", "srt":
				return SourceTranscript
			}
			break
		}
	}
	return SourceText
}

// CanTransition reports whether a document status may move from old to new.
// Only the processing state has outgoing edges; ready and error are final.
func CanTransition(old, new string) bool {
	if old != StatusProcessing {
		return false
	}
	return new == StatusReady || new == StatusError
}

// Document is an uploaded source document owned by a single user.
type Document struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID          string             `bson:"owner_id" json:"owner_id"`
	Title            string             `bson:"title" json:"title"`
	OriginalFilename string             `bson:"original_filename" json:"original_filename"`
	SourceType       string             `bson:"source_type" json:"source_type"`
	Pages            int                `bson:"pages,omitempty" json:"pages,omitempty"`
	Metadata         map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Tags             []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Status           string             `bson:"status" json:"status"`
	UploadedAt       time.Time          `bson:"uploaded_at" json:"uploaded_at"`
}

// CollectionName returns the MongoDB collection for documents.
func (Document) CollectionName() string {
	return "documents"
}

// Validate checks document fields before persistence.
func (d *Document) Validate() error {
	if d.OwnerID == "" {
		return fmt.Errorf("document owner cannot be empty")
	}
	if !ValidSourceType(d.SourceType) {
		return fmt.Errorf("unknown source type %q", d.SourceType)
	}
	switch d.Status {
	case StatusProcessing, StatusReady, StatusError:
	default:
		return fmt.Errorf("unknown status %q", d.Status)
	}
	return nil
}

// Chunk is one extracted fragment of a document, ordered by ChunkIndex.
type Chunk struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DocID      primitive.ObjectID `bson:"doc_id" json:"doc_id"`
	Text       string             `bson:"text" json:"text"`
	Embedding  []float32          `bson:"embedding" json:"-"`
	ChunkIndex int                `bson:"chunk_index" json:"chunk_index"`
	Page       int                `bson:"page,omitempty" json:"page,omitempty"`
	StartChar  int                `bson:"start_char,omitempty" json:"start_char,omitempty"`
	EndChar    int                `bson:"end_char,omitempty" json:"end_char,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// CollectionName returns the MongoDB collection for chunks.
func (Chunk) CollectionName() string {
	return "chunks"
}
