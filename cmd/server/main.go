package main

import (
	"context"
	"edusmarthub/domain"
	"edusmarthub/infrastructure/api"
	"edusmarthub/infrastructure/grpc/server"
	"edusmarthub/infrastructure/storage"
	"edusmarthub/infrastructure/websocket"
	"edusmarthub/internal"
	"edusmarthub/projection"
	"edusmarthub/runtime"
	"edusmarthub/runtime/workers"
	"edusmarthub/services"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a fatal error.
// Returning instead of exiting lets the deferred database close run.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) && config.DebugInspectorPort > 0 {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available",
			"url", fmt.Sprintf("http://localhost:%d%s", config.DebugInspectorPort, endpoint))
		database.StartDebugServer(db, config.DebugInspectorPort, endpoint, MessageMapper)
	}

	// 3. Runtime
	supervisor := workers.NewSupervisor(logger, config.RestartInterval)
	rooms := runtime.NewRoomManager(logger)
	registry := runtime.NewRegistry(rooms)
	alerts := projection.NewAlertStore()
	messageRepository := storage.NewMessageRepository(db, logger)
	persistence := workers.NewPersistenceWorker(logger, messageRepository,
		config.PersistenceBufferSize, config.PersistenceTimeout)

	dispatcher := runtime.NewDispatcher(logger, registry, rooms, alerts, projection.NewActiveSessions(),
		messageRepository, persistence, runtime.DispatcherConfig{
			PresenceBroadcast:   config.PresenceBroadcast,
			EngagementWindow:    config.EngagementWindow,
			RecentActivityLimit: config.RecentActivityLimit,
		})
	orchestrator := runtime.NewOrchestrator(logger, supervisor, registry, alerts, dispatcher, persistence,
		runtime.OrchestratorConfig{
			NumShards:            config.NumberOfShards,
			ShardBufferSize:      config.ShardBufferSize,
			MetricInterval:       config.MetricInterval,
			LowCapacityThreshold: config.LowCapacityThreshold,
		})
	healthMonitor := workers.NewHealthMonitoringWorker(logger, config.MetricInterval, registry.Count, rooms.RoomCount)
	supervisor.Add(healthMonitor)

	// The runtime outlives the signal context so that disconnects issued during shutdown
	// are still dispatched; it is stopped explicitly below.
	errChan := make(chan error, 3)
	runtimeDone := make(chan struct{})
	go func() {
		defer close(runtimeDone)
		if err := orchestrator.Start(context.Background()); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	// 4. gRPC health
	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GrpcPort)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(logger)))
	healthServer := server.NewHealthServer(logger)
	healthServer.Register(grpcServer)
	go func() {
		logger.Info("Starting gRPC server", "address", grpcAddress)
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 5. HTTP: REST API and WebSocket transport
	hub := websocket.NewHub(logger, orchestrator, websocket.HubConfig{
		SendBufferSize: config.ConnectionBufferSize,
		PingPeriod:     config.PingPeriod,
		PongWait:       config.PongWait,
		WriteWait:      config.WriteWait,
		MaxMessageSize: config.MaxMessageSize,
	})
	handler := api.NewHandler(logger, services.NewProctoringService(orchestrator),
		healthServer.Serving, healthMonitor.Latest)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.HTTPPort),
		Handler:           handler.Routes(hub.ServeWS),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	healthServer.SetServing(true)

	// 6. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 7. Graceful Shutdown: stop accepting, drop connections, then drain the workers.
	logger.Info("Shutting down gracefully...")
	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	hub.Close()
	grpcServer.GracefulStop()
	orchestrator.Stop()
	select {
	case <-runtimeDone:
	case <-shutdownCtx.Done():
		logger.Warn("Runtime did not stop in time")
	}
	logger.Info("Program stopped cleanly")

	return code, runErr
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

// MessageMapper renders persisted records in the debug inspector.
func MessageMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	message, err := storage.DecodeRecord(val)
	if err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}
	row.Type = string(message.Type)
	row.Detail = summarize(message)
	return row
}

func summarize(m domain.Message) string {
	return fmt.Sprintf("%s by %s (%s) %v", m.RoomKey, m.SenderName, m.SenderID, m.Content)
}
