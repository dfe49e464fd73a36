package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	defaultBind          = ":8080"
	defaultSearchTimeout = 10 * time.Second
	shutdownTimeout      = 5 * time.Second
)

// Server exposes the dictionaries over HTTP.
type Server struct {
	c       *options
	handler http.Handler
}

func New(opts ...Option) (*Server, error) {
	c := &options{
		bind:    defaultBind,
		timeout: defaultSearchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.set == nil {
		return nil, fmt.Errorf("no dictionary set found")
	}
	s := &Server{c: c}
	s.handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", s.handleSearchQuery).Methods(http.MethodGet)
	api.HandleFunc("/search", s.handleSearchBody).Methods(http.MethodPost)
	api.HandleFunc("/dictionaries", s.handleDictionaries).Methods(http.MethodGet)
	api.HandleFunc("/distance", s.handleDistance).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Errorf("path %s not found", r.URL.Path))
	})
	return alice.New(recoverHandler, logHandler).Then(r)
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.c.bind,
		Handler:           s.handler,
		ReadHeaderTimeout: 15 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}
	errCh := make(chan error, 1)
	go func() {
		logutil.GetLogger(ctx).Info("http server start", zap.String("bind", s.c.bind))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logutil.GetLogger(ctx).Error("shutdown http server failed", zap.Error(err))
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func recoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logutil.GetLogger(r.Context()).Error("panic recovered while handling http request",
					zap.Any("panic", rec), zap.String("path", r.URL.Path))
				writeError(w, http.StatusInternalServerError, fmt.Errorf("internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logutil.GetLogger(r.Context()).Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("cost", time.Since(start)))
	})
}
