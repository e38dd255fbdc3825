package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"member-info-api/internal/middleware"
)

// NewGinEngine builds the local development server. Every route other than
// /health falls through to the member router, so unknown paths get the same
// 404 the Lambda function returns.
func NewGinEngine(c *Container) *gin.Engine {
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	engine.Use(middleware.Recovery(c.Logger))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.StructuredLogger(c.Logger))
	engine.Use(middleware.RateLimiter(c.Config.RateLimit.RequestsPerSecond, c.Config.RateLimit.Burst, c.Logger))

	engine.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"store":     c.Config.Store.Type,
			"timestamp": time.Now().UTC(),
		})
	})

	engine.NoRoute(c.Router.GinHandler())

	return engine
}
