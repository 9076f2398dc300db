package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	// Health and status endpoints
	r.GET("/health", handler.HealthCheck)
	r.GET("/stats", handler.GetStats)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Cache endpoints (conditionally guarded with authentication)
	cache := r.Group("/")
	if apiAccessKey != "" {
		cache.Use(authMiddleware(apiAccessKey))
		log.Printf("Cache endpoints enabled with authentication")
	} else {
		log.Printf("Cache endpoints enabled without authentication (API_ACCESS_KEY not set)")
	}
	{
		cache.GET("/feeds", handler.ListFeeds)
		cache.GET("/feeds/:id/unread", handler.GetFeedUnread)
		cache.POST("/feeds/read", handler.MarkFeedsRead)
		cache.POST("/feeds/refresh", handler.RefreshFeeds)

		cache.GET("/stories", handler.GetStories)
		cache.GET("/stories/next_unread", handler.NextUnread)
		cache.POST("/stories/:hash/read", handler.MarkStoryRead)
		cache.DELETE("/stories/:hash/read", handler.MarkStoryUnread)
		cache.POST("/stories/:hash/star", handler.SaveStory)
		cache.DELETE("/stories/:hash/star", handler.UnsaveStory)

		cache.PUT("/prefs", handler.SetPrefs)
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"health":      "/health",
			"stats":       "/stats",
			"metrics":     "/metrics",
			"feeds":       "/feeds",
			"stories":     "/stories?feed=<id>",
			"next_unread": "/stories/next_unread?feed=<id>&from=<position>",
		}

		c.JSON(200, gin.H{
			"service":     "StoryCache",
			"description": "Local story cache and synchronization engine for feed readers",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get API key from X-API-Key header
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// Check if API key is provided and matches
		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		// Continue to next middleware/handler
		c.Next()
	}
}
