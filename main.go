package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wfunc/quizroom/config"
	"github.com/wfunc/quizroom/content"
	"github.com/wfunc/quizroom/logger"
	"github.com/wfunc/quizroom/monitor"
	"github.com/wfunc/quizroom/notify"
	"github.com/wfunc/quizroom/persistence"
	"github.com/wfunc/quizroom/server"
	"github.com/wfunc/quizroom/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		logger.Log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer logger.Sync()

	catalog := content.NewCatalog(content.NewFileLoader(cfg.Game.ContentDir), cfg.Game.DefaultContent)
	if _, err := catalog.Default(); err != nil {
		logger.Log.Warnw("Default content set unavailable, hosts must select one", "id", cfg.Game.DefaultContent, "error", err)
	}

	db, err := persistence.Open(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Failed to open game archive: %v", err)
	}
	defer db.Close()

	var publisher notify.Publisher = notify.Nop{}
	if cfg.NATS.URL != "" {
		nc, err := notify.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to NATS: %v", err)
		}
		publisher = nc
		logger.Log.Infof("Publishing room events to %s", cfg.NATS.URL)
	}

	gameServer, err := server.NewGameServer(cfg, server.Deps{
		Content:   catalog,
		History:   services.NewHistoryService(db),
		Publisher: publisher,
		Monitor:   monitor.NewMonitor("quizroom"),
	})
	if err != nil {
		logger.Log.Fatalf("Failed to build server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- gameServer.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Log.Errorf("Server stopped: %v", err)
		}
	case <-ctx.Done():
		logger.Log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := gameServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warnf("Shutdown incomplete: %v", err)
	}
}
