// Package server exposes the query pipeline over HTTP. It is deliberately
// thin: validation of the inbound query, the response envelope, and nothing
// else — all routing and tool logic lives behind [Dispatcher]. No internal
// error ever reaches the caller raw; the envelope always answers.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agentrouter/agentrouter/core/router"
)

// MaxQueryLength bounds the inbound query; longer payloads are rejected at
// the boundary before any external call is made.
const MaxQueryLength = 1000

// Dispatcher is the slice of the router the server depends on.
type Dispatcher interface {
	Route(ctx context.Context, query string) router.Result
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// QueryResponse is the envelope every /query call returns.
type QueryResponse struct {
	Query    string `json:"query"`
	ToolUsed string `json:"tool_used"`
	Result   string `json:"result"`
}

// ErrorResponse is the body of 4xx/5xx replies.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Server holds the handler dependencies.
type Server struct {
	dispatcher Dispatcher
	logger     *slog.Logger
	appName    string
	appVersion string
}

// New creates a Server. The logger may be nil.
func New(dispatcher Dispatcher, appName, appVersion string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		dispatcher: dispatcher,
		logger:     logger,
		appName:    appName,
		appVersion: appVersion,
	}
}

// Handler builds the gin engine with all routes and middleware registered.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(s.requestLogger(), s.recovery())

	engine.GET("/", s.handleRoot)
	engine.GET("/health", s.handleHealth)
	engine.POST("/query", s.handleQuery)

	return engine
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        s.appName,
		"version":     s.appVersion,
		"description": "An intelligent agent that routes queries to specialized tools",
		"endpoints": gin.H{
			"health": "GET /health - Health check",
			"query":  "POST /query - Process a user query",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Detail: err.Error()})
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Query cannot be empty"})
		return
	}
	if len(req.Query) > MaxQueryLength {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Query too long", Detail: "queries are limited to 1000 characters"})
		return
	}

	if s.dispatcher == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Agent not initialized"})
		return
	}

	start := time.Now()
	result := s.dispatcher.Route(c.Request.Context(), req.Query)

	status := "success"
	if !result.Success {
		status = "error"
	}
	s.logger.InfoContext(c.Request.Context(), "tool execution completed",
		slog.String("tool", result.ToolName),
		slog.Duration("duration", time.Since(start)),
		slog.String("status", status),
	)

	c.JSON(http.StatusOK, QueryResponse{
		Query:    req.Query,
		ToolUsed: result.ToolName,
		Result:   result.Result,
	})
}

// requestLogger attaches a correlation id to each request and logs its
// start and completion.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)

		logger := s.logger.With(slog.String("request_id", requestID))

		start := time.Now()
		logger.Info("request started",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)

		c.Next()

		logger.Info("request completed",
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// recovery converts panics into a 500 envelope. Panics are reserved for
// truly unexpected host-level failures; the pipeline itself never panics.
func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("unhandled panic", slog.Any("panic", rec))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:  "Internal server error",
					Detail: "An unexpected error occurred",
				})
			}
		}()
		c.Next()
	}
}
