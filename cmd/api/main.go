package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"research-tracker-api/config"
	"research-tracker-api/levels"
	"research-tracker-api/middleware"
	"research-tracker-api/models"
	"research-tracker-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	migrate := flag.Bool("migrate", false, "run AutoMigrate for all tables before serving")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.LoadConfig()

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	if err := levels.Validate(); err != nil {
		config.Log.Fatal().Err(err).Msg("invalid level table")
	}
	if cfg.JWTSecret == "" {
		config.Log.Warn().Msg("JWT_SECRET is empty, every authenticated request will be rejected")
	}

	config.InitDB()
	if *migrate {
		if err := config.DB.AutoMigrate(models.AllModels()...); err != nil {
			config.Log.Fatal().Err(err).Msg("auto migrate failed")
		}
		config.Log.Info().Msg("database schema migrated")
	}
	config.InitRedis()

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.NewRouter()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go pruneLimiters(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		config.Log.Info().
			Str("port", cfg.ServerPort).
			Str("environment", cfg.Environment).
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	config.Log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.Log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if config.Redis != nil {
		_ = config.Redis.Close()
	}
}

func pruneLimiters(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			middleware.GeneralLimiter.Prune(3 * time.Minute)
			middleware.BatchLimiter.Prune(3 * time.Minute)
		}
	}
}
