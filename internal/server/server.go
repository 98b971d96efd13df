package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"api-test-generator/internal/executor"
	"api-test-generator/internal/history"
	"api-test-generator/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// JavaChecker reports whether a Java toolchain is usable
type JavaChecker interface {
	CheckJava(ctx context.Context) executor.JavaStatus
}

// Options wires the collaborators behind the API. Execute, Java and History
// are optional; the matching endpoints report that they are unavailable.
type Options struct {
	Execute    executor.ExecuteFunc
	Java       JavaChecker
	History    history.Store
	BodyLimit  int64
	CORSOrigin string
}

// Server serves the test generation API
type Server struct {
	opts    Options
	log     *zap.Logger
	now     func() time.Time
	handler http.Handler
}

// New creates a Server
func New(opts Options, log *zap.Logger) *Server {
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 10 << 20
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}

	s := &Server{
		opts: opts,
		log:  logger.OrNop(log),
		now:  time.Now,
	}
	s.handler = withRequestID(s.withAccessLog(s.withCORS(s.withRecover(s.routes()))))
	return s
}

// Handler returns the root handler with all middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/api/generate-test", s.only(http.MethodPost, s.handleGenerate))
	mux.HandleFunc("/api/execute-test", s.only(http.MethodPost, s.handleExecute))
	mux.HandleFunc("/api/java-status", s.only(http.MethodGet, s.handleJavaStatus))
	mux.HandleFunc("/api/history", s.only(http.MethodGet, s.handleHistory))
	return mux
}

// only restricts h to one method; anything else is treated as an unknown route
func (s *Server) only(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			s.notFound(w, r)
			return
		}
		h(w, r)
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusNotFound, errorResponse{
		Error:         "Endpoint not found",
		RequestedPath: r.URL.Path,
	})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	s.log.Info("Server is running", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}
