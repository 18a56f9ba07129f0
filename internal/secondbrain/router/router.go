// Package router provides SecondBrain service routing.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/secondbrain-io/secondbrain/internal/pkg/middleware"
	"github.com/secondbrain-io/secondbrain/internal/secondbrain/handler"
	"github.com/secondbrain-io/secondbrain/pkg/app"
)

// Register wires the service routes onto the gin engine. Everything
// under /v1 requires a bearer token; /healthz does not.
func Register(engine *gin.Engine, docs *handler.DocsHandler, chat *handler.ChatHandler, signingKey string, healthy func() error) {
	logger.Info("Registering routes...")

	engine.GET("/healthz", func(c *gin.Context) {
		if healthy != nil {
			if err := healthy(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unhealthy",
					"error":  err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": app.GetVersion(),
		})
	})

	v1 := engine.Group("/v1", middleware.Auth(signingKey))
	{
		docsGroup := v1.Group("/docs")
		{
			docsGroup.POST("/upload", docs.Upload)
			docsGroup.GET("", docs.List)
			docsGroup.GET("/:id", docs.Get)
			docsGroup.DELETE("/:id", docs.Delete)
		}

		v1.POST("/chat", chat.Chat)
		v1.GET("/stats", docs.Stats)
	}

	logger.Info("HTTP routes registered")
}
