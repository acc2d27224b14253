package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"ffclip/config"
	"ffclip/task"
)

func SetupRouter(tm *task.Manager, executor Executor, prober Prober, cfg *config.Config, logger zerolog.Logger) *gin.Engine {
	log := logger.With().Str("component", "api").Logger()

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))
	h := NewHandler(tm, executor, prober, cfg, log)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.Use(AuthMiddleware(cfg))
	{
		// Runs one operation inline, bypassing the queue and its limit.
		v1.POST("/call", h.handleSyncCall)

		v1.POST("/tasks", h.handleCreateTasks)
		v1.GET("/tasks", h.handleListTasks)
		v1.GET("/tasks/:taskId", h.handleGetTaskStatus)
		v1.PATCH("/tasks/:taskId/cancel", h.handleCancelTask)

		v1.GET("/stats", h.handleStats)
		v1.POST("/cleanup", h.handleCleanup)
		v1.PUT("/concurrency", h.handleSetConcurrency)

		v1.POST("/probe", h.handleProbe)
		v1.GET("/formats", h.handleFormats)
		v1.GET("/events", h.handleEvents)
	}
	return r
}

// WithCORS wraps handler with CORS handling for the configured origins. With
// no origins configured the handler is returned unchanged.
func WithCORS(handler http.Handler, cfg *config.Config) http.Handler {
	if len(cfg.CORSOrigins) == 0 {
		return handler
	}
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(handler)
}
