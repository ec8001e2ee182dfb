package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ytdigest/archive"
	"ytdigest/config"
	"ytdigest/handlers/api"
	"ytdigest/logger"
	"ytdigest/repository/sqlite"
	"ytdigest/services/video"
	"ytdigest/summarize"
	"ytdigest/transcript"
	"ytdigest/validation"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.Init(cfg.LogDir, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize database
	db, err := sqlite.InitDB(cfg.Database.Path, sqlite.DBConfig{
		MaxConnections:     cfg.Database.MaxConnections,
		MaxIdleConnections: cfg.Database.MaxIdleConnections,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	videoRepo := sqlite.NewVideoRepository(db)
	transcriptRepo := sqlite.NewTranscriptRepository(db)

	// Initialize transcript fetcher
	fetcher := transcript.NewClient(transcript.Config{
		BaseURL:       cfg.Transcript.BaseURL,
		APIKey:        cfg.Transcript.APIKey,
		Timeout:       cfg.Transcript.Timeout,
		FallbackToAny: cfg.Transcript.FallbackToAny,
	})

	// Initialize summarizer backend
	summarizer, err := summarize.New(summarize.Config{
		Backend:        cfg.Summarizer.Backend,
		MistralBaseURL: cfg.Summarizer.MistralBaseURL,
		MistralAPIKey:  cfg.Summarizer.MistralAPIKey,
		MistralModel:   cfg.Summarizer.MistralModel,
		OllamaURL:      cfg.Summarizer.OllamaURL,
		OllamaModel:    cfg.Summarizer.OllamaModel,
		Timeout:        cfg.Summarizer.Timeout,
		MaxInputChars:  cfg.Summarizer.MaxInputChars,
	})
	if err != nil {
		log.Fatalf("Failed to initialize summarizer: %v", err)
	}

	// Optional transcript archive
	var archiver video.Archiver
	if cfg.Archive.Enabled {
		client, err := archive.NewClient(archive.Config{
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Region:    cfg.Archive.Region,
			Endpoint:  cfg.Archive.Endpoint,
			Bucket:    cfg.Archive.Bucket,
		})
		if err != nil {
			log.Fatalf("Failed to initialize transcript archive: %v", err)
		}
		archiver = client
	}

	// Initialize validator
	validator := validation.NewValidator(cfg)

	// Initialize video service
	videoService := video.NewService(
		videoRepo,
		transcriptRepo,
		fetcher,
		summarizer,
		archiver,
		validator,
		video.Config{
			Workers:            cfg.Processing.Workers,
			QueueSize:          cfg.Processing.QueueSize,
			ProcessTimeout:     cfg.Processing.ProcessTimeout,
			StaleTimeout:       cfg.Processing.StaleTimeout,
			JanitorInterval:    cfg.Processing.JanitorInterval,
			SummarizeOnProcess: cfg.Summarizer.SummarizeOnProcess,
		},
	)

	// Initialize API server
	server := api.NewServer(cfg,
		api.WithLogger(appLogger),
		api.WithServices(videoService),
	)

	// Graceful shutdown setup
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		appLogger.Info("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			appLogger.WithError(err).Error("Server shutdown error")
		}

		videoService.Close()

		if err := db.Close(); err != nil {
			appLogger.WithError(err).Error("Database shutdown error")
		}
	}()

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
