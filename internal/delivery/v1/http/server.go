package http

import (
	"context"
	"net"
	"net/http"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
)

const maxHeaderBytes = 1 << 16

type Server struct {
	httpServer *http.Server
}

func NewServer(handler http.Handler, cfg *cfg.HTTPConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort("", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			MaxHeaderBytes:    maxHeaderBytes,
		},
	}
}

// Start слушает порт из конфигурации. После Stop возвращает http.ErrServerClosed.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Serve(lis net.Listener) error {
	return s.httpServer.Serve(lis)
}

// Stop ждёт завершения активных запросов до отмены ctx, затем рвёт оставшиеся соединения.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		_ = s.httpServer.Close()
		return err
	}

	return nil
}
