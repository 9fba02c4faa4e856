package server

import (
	"embed"
	"io/fs"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/arengifoc/logsort/internal/aggregator"
	"github.com/arengifoc/logsort/internal/hub"
	"github.com/arengifoc/logsort/internal/pipeline"
	"github.com/arengifoc/logsort/internal/report"
)

//go:embed all:web
var webFS embed.FS

// Server exposes the pipeline dashboard: live event stream, run summaries,
// and the latest report.
type Server struct {
	engine     *gin.Engine
	hub        *hub.Hub
	aggregator *aggregator.Aggregator
	reportPath string
	port       string

	mu      sync.RWMutex
	lastRun *pipeline.Result
}

// New creates a dashboard server.
func New(h *hub.Hub, agg *aggregator.Aggregator, reportPath, port string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	// Disable automatic redirects that cause 301 issues.
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine:     engine,
		hub:        h,
		aggregator: agg,
		reportPath: reportPath,
		port:       port,
	}

	s.setupRoutes()
	return s
}

// SetLastRun records the most recent pipeline result for /api/summary.
func (s *Server) SetLastRun(res *pipeline.Result) {
	s.mu.Lock()
	s.lastRun = res
	s.mu.Unlock()
}

// serveEmbedded reads a file from the embedded FS and writes it with the given content type.
func serveEmbedded(webContent fs.FS, name string, contentType string) gin.HandlerFunc {
	// Pre-read the file at startup so we don't read on every request.
	data, err := fs.ReadFile(webContent, name)
	return func(c *gin.Context) {
		if err != nil {
			c.String(http.StatusNotFound, "file not found: %s", name)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func (s *Server) setupRoutes() {
	webContent, _ := fs.Sub(webFS, "web")

	// Dashboard — serve embedded files directly with correct content types.
	s.engine.GET("/", serveEmbedded(webContent, "index.html", "text/html; charset=utf-8"))
	s.engine.GET("/style.css", serveEmbedded(webContent, "style.css", "text/css; charset=utf-8"))
	s.engine.GET("/app.js", serveEmbedded(webContent, "app.js", "application/javascript; charset=utf-8"))

	// Health check.
	s.engine.GET("/healthz", func(c *gin.Context) {
		stats := s.aggregator.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"uptime":         stats.Uptime,
			"eps":            stats.EPS,
			"dropped_events": stats.DroppedEvents,
		})
	})

	// Metrics API.
	s.engine.GET("/api/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.aggregator.Snapshot())
	})

	// Last completed run.
	s.engine.GET("/api/summary", func(c *gin.Context) {
		s.mu.RLock()
		last := s.lastRun
		s.mu.RUnlock()

		if last == nil {
			c.JSON(http.StatusOK, gin.H{"state": "idle"})
			return
		}
		c.JSON(http.StatusOK, last)
	})

	// Latest report contents.
	s.engine.GET("/api/report", func(c *gin.Context) {
		lines, err := report.Read(s.reportPath)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, lines)
	})

	// WebSocket event stream.
	s.engine.GET("/ws", s.handleWebSocket)
}

// Start runs the server. Blocks until the server is stopped.
func (s *Server) Start() error {
	return s.engine.Run(":" + s.port)
}
