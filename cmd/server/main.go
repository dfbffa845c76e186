package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/V4T54L/mafia/internal/adapter/http"
	"github.com/V4T54L/mafia/internal/adapter/sfu"
	"github.com/V4T54L/mafia/internal/adapter/ws"
	"github.com/V4T54L/mafia/internal/archive"
	"github.com/V4T54L/mafia/internal/domain/service"
	"github.com/V4T54L/mafia/internal/pkg/config"
	"github.com/V4T54L/mafia/internal/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.IsDev())

	log.Info("starting server",
		"port", cfg.Port,
		"env", cfg.Env,
		"debug", cfg.Debug,
		"staticDir", cfg.StaticDir,
	)

	sink := buildArchiveSink(cfg, log)

	rooms := service.NewRoomService(log, sink, cfg.Debug)
	sessions := service.NewSessionRegistry(rooms, log)
	dispatcher := service.NewDispatcher(sessions, rooms, log)

	sfuInstance, err := sfu.New(sfu.DefaultConfig(), log)
	if err != nil {
		log.Error("failed to create SFU", "error", err)
		os.Exit(1)
	}
	defer sfuInstance.Close()
	dispatcher.WithVoice(sfuInstance)

	hub := ws.NewHub(log)
	go hub.Run()

	voiceHandler := ws.NewVoiceHandler(sfuInstance, log)
	wsHandler := ws.NewHandler(hub, sessions, dispatcher, rooms, log).WithVoice(voiceHandler)

	server := httpAdapter.NewServer(log, cfg.StaticDir)
	server.Mount("/game", wsHandler)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// buildArchiveSink picks the durable RabbitMQ/MySQL pipeline when
// ArchiveDSN/AMQPURL are configured, or an in-memory sink for local
// development (§4.6). The MySQL consumer runs in its own goroutine,
// decoupled from request latency.
func buildArchiveSink(cfg *config.Config, log *slog.Logger) archive.Sink {
	if cfg.ArchiveDSN == "" || cfg.AMQPURL == "" {
		log.Warn("archive sink: DB_DSN/AMQP_URL not set, using in-memory sink")
		return archive.NewMemorySink()
	}

	mysql, err := archive.OpenMySQLSink(cfg.ArchiveDSN)
	if err != nil {
		log.Error("archive sink: failed to open MySQL", "error", err)
		os.Exit(1)
	}
	if err := mysql.Migrate(); err != nil {
		log.Error("archive sink: migration failed", "error", err)
		os.Exit(1)
	}

	queue, err := archive.DialQueueSink(cfg.AMQPURL, log)
	if err != nil {
		log.Error("archive sink: failed to dial AMQP", "error", err)
		os.Exit(1)
	}

	for i := 0; i < cfg.ArchiveWorkers; i++ {
		go func() {
			if err := archive.Consumer(cfg.AMQPURL, mysql, log); err != nil {
				log.Error("archive consumer exited", "error", err)
			}
		}()
	}

	return queue
}
