// @title           Doc-Manager RAG API
// @version         1.0
// @description     Uploads documents to object storage, indexes them into a search backend and answers questions over them.
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/surajvast1/Doc-Manager/internal/app"
	"github.com/surajvast1/Doc-Manager/internal/config"
	jobmodel "github.com/surajvast1/Doc-Manager/internal/domain/jobModel"
	"github.com/surajvast1/Doc-Manager/internal/handlers"
	"github.com/surajvast1/Doc-Manager/internal/job"
	"github.com/surajvast1/Doc-Manager/internal/mcpServer"
	"github.com/surajvast1/Doc-Manager/internal/middleware"
	"github.com/surajvast1/Doc-Manager/internal/server"
	"github.com/surajvast1/Doc-Manager/internal/worker"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

var (
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger_i.Init(false, "")
		logger_i.NewLogger("main").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger_i.Init(cfg.IsProd, cfg.LogLevel)
	var logger = logger_i.NewLogger("main")

	flag.StringVar(&listenAddr, "listen-addr", cfg.ListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	clients, err := app.Bootstrap(serviceContext, cfg)
	if err != nil {
		logger.Error("One or more external services failed to initialize. Shutting down.", "error", err)
		os.Exit(1)
	}

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		DispatcherChannel: dispatcherChannel,
		JobStore:          clients.Runs,
		NewID:             uuid.NewString,
	})
	logger.Info("Starting job service")

	//init worker pool
	pool := worker.NewPool(service, clients.RAG, stopWorkerChannel, &workerWaitGroup)
	pool.Start()

	handler := handlers.NewHandler(handlers.Deps{
		RAG:            clients.RAG,
		Objects:        clients.Objects,
		Jobs:           service,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		NewID:          uuid.NewString,
	})

	routes := server.RouteDeps{Handler: handler, Middleware: middleware.New(cfg)}
	if cfg.MCPEnabled {
		mcp, err := mcpServer.NewServer(clients.RAG)
		if err != nil {
			logger.Error("Couldn't start the MCP server", "error", err)
			os.Exit(1)
		}
		routes.MCP = mcp.Handler()
	}
	httpServer := server.CreateServer(listenAddr, server.NewRouter(routes))

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices: func() {
			closeExternalServices()
			clients.Close()
		},
	}
	go httpServer.ShutDownHandler(shutdownParams)
	go httpServer.ListenAndServe()

	<-stopExecution
	logger.Info("Server stopped")
}
