// Package server exposes the translation service over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ZaguanLabs/transcache"
	"github.com/ZaguanLabs/transcache/cache"
	"github.com/ZaguanLabs/transcache/metrics"
	"github.com/ZaguanLabs/transcache/store"
	"github.com/ZaguanLabs/transcache/vault"
)

const (
	// MaxBatchSize bounds POST /api/v1/translate/batch.
	MaxBatchSize = 50

	// MinAPIKeyLength rejects obviously truncated keys before probing upstream.
	MinAPIKeyLength = 10

	shutdownTimeout = 10 * time.Second
	recordTimeout   = 5 * time.Second
)

// Server is the HTTP front end. Routes under /api/v1 require a bearer token.
type Server struct {
	svc     *transcache.Service
	cache   *cache.Store
	records *store.Store
	vault   *vault.Vault
	auth    *Authenticator
	log     transcache.Logger
	origins []string

	engine *gin.Engine

	// background history writes
	wg sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithCacheStore enables GET /api/v1/stats/cache and cache health.
func WithCacheStore(c *cache.Store) Option {
	return func(s *Server) {
		s.cache = c
	}
}

// WithRecords enables history, API key and user stats routes.
func WithRecords(r *store.Store) Option {
	return func(s *Server) {
		s.records = r
	}
}

// WithVault sets the cipher used to store user API keys.
func WithVault(v *vault.Vault) Option {
	return func(s *Server) {
		s.vault = v
	}
}

// WithLogger sets the logger.
func WithLogger(l transcache.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCORSOrigins restricts cross-origin access.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// New builds the server and its routes.
func New(svc *transcache.Service, auth *Authenticator, opts ...Option) *Server {
	s := &Server{
		svc:  svc,
		auth: auth,
		log:  transcache.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(s.log), metrics.HTTPMetrics(), CORS(s.origins))

	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(s.auth.Middleware())
	{
		api.POST("/translate", s.handleTranslate)
		api.POST("/translate/batch", s.handleTranslateBatch)
		api.GET("/providers", s.handleProviders)
		api.GET("/stats/cache", s.handleCacheStats)

		api.GET("/history", s.handleHistory)
		api.DELETE("/history/:id", s.handleDeleteHistory)

		api.POST("/user/api-keys", s.handleAddAPIKey)
		api.GET("/user/api-keys", s.handleListAPIKeys)
		api.DELETE("/user/api-keys/:provider", s.handleDeleteAPIKey)

		api.GET("/stats/user", s.handleUserStats)
	}

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully and
// waits for pending history writes.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", transcache.Fields{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("server shutting down", nil)
	err := srv.Shutdown(shutdownCtx)
	s.wg.Wait()
	return err
}

// background runs fn detached from the request with its own deadline.
func (s *Server) background(c *gin.Context, op string, fn func(ctx context.Context) error) {
	ctx := context.WithoutCancel(c.Request.Context())
	requestID := c.GetString(ctxRequestID)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, recordTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.log.Warn("background write failed", transcache.Fields{
				"op":         op,
				"request_id": requestID,
				"error":      err.Error(),
			})
		}
	}()
}
