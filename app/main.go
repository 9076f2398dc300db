package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/feedloom/storycache/app/api"
	"github.com/feedloom/storycache/app/cfg"
	"github.com/feedloom/storycache/app/database"
	"github.com/feedloom/storycache/app/prefs"
	"github.com/feedloom/storycache/app/remote"
	"github.com/feedloom/storycache/app/tasks"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Optional .env file for local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	log.Printf("Starting StoryCache %s...", appCfg.Version)

	// Story cache database
	log.Printf("Opening story cache at %s...", appCfg.DBPath)
	db, err := database.Open(appCfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open story cache:", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Printf("Schema at version %d (dirty: %v)", version, dirty)

	// Initialize repositories
	storyRepo := database.NewStoryRepo(db)
	feedRepo := database.NewFeedRepo(db)
	actionRepo := database.NewActionRepo(db)

	// Preference store
	prefsStore, err := prefs.Open(appCfg.PrefsPath)
	if err != nil {
		log.Fatal("Failed to open preferences:", err)
	}

	// Sync service client
	client := remote.NewClient(appCfg.RemoteURL, appCfg.UserAgent, storyRepo, feedRepo)

	// Initialize and start scheduler
	log.Printf("Starting background scheduler with %d workers...", appCfg.WorkerCount)
	scheduler := tasks.NewScheduler(storyRepo, feedRepo, actionRepo, client, prefsStore)
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize HTTP server
	log.Println("Initializing HTTP server...")
	apiHandler := api.NewHandler(storyRepo, feedRepo, actionRepo, prefsStore, client, client, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	// Create HTTP server with timeouts
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		log.Printf("API endpoints available:")
		log.Printf("  Health check:  http://localhost:%s/health", appCfg.Port)
		log.Printf("  Statistics:    http://localhost:%s/stats", appCfg.Port)
		log.Printf("  Feeds:         http://localhost:%s/feeds", appCfg.Port)
		log.Printf("  Stories:       http://localhost:%s/stories?feed=<id>", appCfg.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("StoryCache started successfully!")
	log.Println("Press Ctrl+C to shutdown gracefully...")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down server gracefully...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	log.Println("StoryCache shutdown complete")
}
