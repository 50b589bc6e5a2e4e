package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/surajvast1/Doc-Manager/internal/adapter/utils"
	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/internal/handlers"
	"github.com/surajvast1/Doc-Manager/internal/middleware"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    func()
}

type RouteDeps struct {
	Handler    *handlers.Handler
	Middleware *middleware.Middleware
	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

type Server struct {
	httpServer *http.Server
	logger     *logger_i.Logger
}

func NewRouter(deps RouteDeps) *chi.Mux {
	r := utils.NewRouter()
	h, m := deps.Handler, deps.Middleware

	r.Get("/health", m.TraceOnly(h.HealthHandler))
	r.Post("/files", m.Wrap(h.FilesHandler))
	r.Post("/files/upload", m.Wrap(h.UploadFilesHandler))
	r.Post("/files/delete", m.Wrap(h.DeleteFilesHandler))
	r.Post("/process-files", m.Wrap(h.ProcessFilesHandler))
	r.Get("/runs/{id}", m.Wrap(h.GetRunHandler))
	r.Post("/search-and-respond", m.Wrap(h.SearchAndRespondHandler))

	if deps.MCP != nil {
		r.Handle("/mcp", m.Handler(deps.MCP))
	}
	return r
}

func CreateServer(listenAddr string, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         listenAddr,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger_i.NewLogger("Server"),
	}
}

func (s *Server) ListenAndServe() {
	s.logger.Info("Server is listening at", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Server crashed", "error", err.Error(), "addr", s.httpServer.Addr)
	}
}

// ShutDownHandler waits for a signal, stops accepting requests, drains the
// workers and closes the external clients. It exits the process when that
// takes longer than ShutdownContextTimeout.
func (s *Server) ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	s.logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		s.httpServer.SetKeepAlivesEnabled(false)

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("Could not shutdown gracefully", "error", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Gracefully shut down")
		close(shutdownParams.StopExecution)
	case <-ctx.Done():
		s.logger.Error("Force Shut down")
		os.Exit(1)
	}
}
