package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gtreg/internal/config"
	"gtreg/internal/images"
	"gtreg/internal/ingest"
	"gtreg/internal/logging"
	"gtreg/internal/store"
)

// maxDocumentBytes bounds the size of one submission document.
const maxDocumentBytes = 32 << 20

// Server exposes the coordinator and image registrar over HTTP.
type Server struct {
	bind      string
	logger    *slog.Logger
	store     *store.Store
	coord     *ingest.Coordinator
	registrar *images.Registrar
	engine    *gin.Engine

	listener net.Listener
	server   *http.Server
}

// New wires a server for cfg. The store must stay open for the server's lifetime.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Server {
	logger = logging.NewComponentLogger(logger, "httpapi")
	s := &Server{
		bind:      strings.TrimSpace(cfg.Paths.APIBind),
		logger:    logger,
		store:     st,
		coord:     ingest.New(st, cfg, logger),
		registrar: images.NewRegistrar(st, cfg.Resolution.MaxUniquenessRetries, logger),
	}
	s.engine = s.routes()
	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestContext())
	_ = engine.SetTrustedProxies(nil)

	engine.GET("/health", s.handleHealth)
	v1 := engine.Group("/v1")
	v1.POST("/submissions", s.handleSubmissions)
	v1.POST("/images/:id/duplicates", s.handleDuplicate)
	v1.GET("/images", s.handleListImages)
	return engine
}

// Start listens on the configured bind address and serves until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api server shutdown", logging.Error(err))
	}
}
