package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/imagedrive/internal/logging"
)

// Server runs the endpoint over plain HTTP. Every operation arrives on one
// POST route; the handler multiplexes on the envelope kind.
type Server struct {
	address         string
	shutdownTimeout time.Duration
	handler         *Handler
	logger          logging.Logger
}

func NewServer(a string, shutdownTimeout time.Duration, h *Handler, l logging.Logger) *Server {
	return &Server{
		address:         a,
		shutdownTimeout: shutdownTimeout,
		handler:         h,
		logger:          l.With("module", "api_server"),
	}
}

func (s *Server) Run(ctx context.Context) error {

	mux := http.NewServeMux()
	mux.Handle("/", s.handler)

	srv := &http.Server{
		Addr:    s.address,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
