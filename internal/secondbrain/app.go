package secondbrain

import (
	"github.com/secondbrain-io/secondbrain/pkg/app"
)

const (
	appName        = "secondbrain"
	appDescription = `SecondBrain Document Chat Service

A personal knowledge base you can talk to.

This server provides:
  - Document upload with background text extraction and chunking
  - Semantic similarity search over your documents
  - Retrieval-augmented question answering with source citations`
)

// NewApp creates a new application instance.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}
