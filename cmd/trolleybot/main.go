package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/trolleybot-systems/trolleybot/internal/automation"
	"github.com/trolleybot-systems/trolleybot/internal/config"
	"github.com/trolleybot-systems/trolleybot/internal/dedup"
	"github.com/trolleybot-systems/trolleybot/internal/handlers"
	"github.com/trolleybot-systems/trolleybot/internal/logging"
	"github.com/trolleybot-systems/trolleybot/internal/ratelimit"
	"github.com/trolleybot-systems/trolleybot/internal/server"
	"github.com/trolleybot-systems/trolleybot/internal/service"
	"github.com/trolleybot-systems/trolleybot/internal/slack"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("trolleybot"))
	logging.SetDefault(logger)

	slog.Info("Starting trolleybot service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)
	if *configPath != "" {
		slog.Info("Loaded configuration", slog.String("config_path", *configPath))
	}

	// Initialize rate limiter
	var rateLimiter ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter, err := ratelimit.NewRedisRateLimiter(
			cfg.RateLimit.RedisURL,
			cfg.RateLimit.Requests,
			cfg.RateLimit.Window,
		)
		if err != nil {
			log.Printf("WARNING: Failed to initialize Redis rate limiter: %v", err)
			log.Println("Continuing without rate limiting")
			rateLimiter = &ratelimit.NoOpRateLimiter{}
		} else {
			rateLimiter = limiter
			log.Printf("Rate limiting enabled: %d requests per %s", cfg.RateLimit.Requests, cfg.RateLimit.Window)
		}
	} else {
		rateLimiter = &ratelimit.NoOpRateLimiter{}
		log.Println("Rate limiting disabled in configuration")
	}
	defer rateLimiter.Close()

	// Initialize event dedup store
	dedupStore := dedup.NewStore(cfg.Dedup.TTL, cfg.Dedup.CleanupInterval)
	defer dedupStore.Close()
	log.Printf("Event dedup enabled (TTL: %s)", cfg.Dedup.TTL)

	// Initialize Slack client and automation runner
	slackClient := slack.NewClient(cfg.Slack.BotToken, cfg.Slack.APIURL)
	runner := automation.NewRunner(automation.Config{
		APIKey:       cfg.Automation.APIKey,
		SiteEmail:    cfg.Automation.SiteEmail,
		SitePassword: cfg.Automation.SitePassword,
		ProfileID:    cfg.Automation.ProfileID,
		APIURL:       cfg.Automation.APIURL,
		PollInterval: cfg.Automation.PollInterval,
	})

	// Initialize order service and HTTP handlers
	orderService := service.NewOrderService(slackClient, runner, cfg.Slack.BotName, logger)
	handler := handlers.NewEventsHandler(
		slack.NewVerifier(cfg.Slack.SigningSecret),
		slack.NewParser(cfg.Slack.BotName),
		dedupStore,
		rateLimiter,
		orderService,
		logger,
		cfg.Slack.BotToken != "",
		cfg.Slack.SigningSecret != "",
	)
	router := server.NewRouter(handler)

	// Create server with config values
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Trolleybot service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// In-flight automation runs finish before exit so their outcome
	// notifications are not lost.
	log.Println("Waiting for in-flight orders...")
	orderService.Wait()

	log.Println("Server stopped")
}
