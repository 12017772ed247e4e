package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/mafspace/mafia-backend/config"
	"github.com/mafspace/mafia-backend/db"
	"github.com/mafspace/mafia-backend/handlers"
	"github.com/mafspace/mafia-backend/live"
	"github.com/mafspace/mafia-backend/repositories"
	api "github.com/mafspace/mafia-backend/routes"
	"github.com/mafspace/mafia-backend/scheduling"
	"github.com/mafspace/mafia-backend/services"
	"github.com/mafspace/mafia-backend/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewS3Uploader(context.Background(), storage.S3UploaderConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		BucketName:      cfg.S3BucketName,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize file storage", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("file storage initialized")

	hub := live.NewHub()
	go hub.Run()
	logger.Info("live event hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	clubRepo := repositories.NewPostgresClubRepository(dbConn)
	seasonRepo := repositories.NewPostgresSeasonRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	roleStatsRepo := repositories.NewPostgresRoleStatsRepository(dbConn)
	logger.Info("repositories initialized")

	generator := scheduling.NewSeatRotationGenerator(scheduling.Config{})

	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, roleStatsRepo, uploader)
	clubService := services.NewClubService(dbConn, clubRepo, userRepo, uploader)
	seasonService := services.NewSeasonService(seasonRepo, clubRepo)
	gameService := services.NewGameService(dbConn, gameRepo, userRepo, tournamentRepo, clubRepo, seasonRepo, generator, hub)
	tournamentService := services.NewTournamentService(dbConn, tournamentRepo, gameRepo, userRepo, clubRepo, roleStatsRepo, hub)
	ratingService := services.NewRatingService(seasonRepo, tournamentRepo, gameRepo)
	logger.Info("services initialized")

	h := api.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		User:       handlers.NewUserHandler(userService),
		Club:       handlers.NewClubHandler(clubService),
		Season:     handlers.NewSeasonHandler(seasonService, gameService),
		Game:       handlers.NewGameHandler(gameService),
		Tournament: handlers.NewTournamentHandler(tournamentService, gameService),
		Rating:     handlers.NewRatingHandler(ratingService),
		WebSocket:  handlers.NewWebSocketHandler(hub),
	}
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, h, cfg.JWTSecretKey, userRepo)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
