// Package httpapi exposes the verification pipeline over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hyperifyio/gofactcheck/internal/metrics"
)

// Options configures the HTTP server.
type Options struct {
	Addr         string
	AllowOrigins []string
	// RequestTimeout bounds one whole verification request. Zero disables.
	RequestTimeout time.Duration
	// MaxTextChars rejects oversized inputs before any model call. Zero
	// means the default limit.
	MaxTextChars int
}

// Server owns the gin engine and its http.Server.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
}

// New assembles the router with middleware and routes attached.
func New(opts Options, p Pipeline, m *metrics.Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(m))

	corsCfg := cors.DefaultConfig()
	if len(opts.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = opts.AllowOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	h := &Handlers{
		Pipeline:       p,
		RequestTimeout: opts.RequestTimeout,
		MaxTextChars:   opts.MaxTextChars,
	}
	r.GET("/health", h.Health)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	r.POST("/verify", h.Verify)
	r.POST("/verify-citations", h.VerifyCitations)

	return &Server{
		engine: r,
		srv: &http.Server{
			Addr:              opts.Addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
