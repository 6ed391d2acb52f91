package gin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	ginlib "github.com/gin-gonic/gin"

	"order_backend/internal/config"
	"order_backend/internal/interfaces/http/middleware"
	"order_backend/pkg/logger"
)

type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	log             logger.Logger
}

func NewEngine(log logger.Logger) *ginlib.Engine {
	r := ginlib.New()
	r.Use(ginlib.Recovery(), middleware.RequestID(), middleware.AccessLog(log))
	return r
}

func NewServer(cfg config.ServerConfig, engine *ginlib.Engine, log logger.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              cfg.Address(),
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             log,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	if s.http.Handler == nil {
		return fmt.Errorf("gin engine is nil")
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", logger.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.log.Info("http server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
