package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/moodsync/moodsync-api/internal/config"
	"github.com/moodsync/moodsync-api/internal/handler"
	"github.com/moodsync/moodsync-api/internal/repository"
	"github.com/moodsync/moodsync-api/internal/usecase"
	"github.com/moodsync/moodsync-api/shared/auth"
	"github.com/moodsync/moodsync-api/shared/mailer"
	"github.com/moodsync/moodsync-api/shared/security"
	"github.com/moodsync/moodsync-api/shared/validator"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}
	logger.Info().Msg("connected to mongodb")

	db := client.Database(cfg.MongoDatabase)
	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)

	hasher := security.NewPasswordHasher(cfg.BcryptCost)
	jwtAuth := auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiresIn)
	m := mailer.NewMailer(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	validate, err := validator.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize validator")
	}

	authUsecase := usecase.NewAuthUsecase(userRepo, hasher, jwtAuth, m, cfg, &logger)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(userRepo, hasher, m, cfg, &logger)
	verifyEmailUsecase := usecase.NewVerifyEmailUsecase(userRepo, &logger)

	authHandler := handler.NewAuthHandler(
		authUsecase,
		passwordResetUsecase,
		verifyEmailUsecase,
		validate,
		cfg,
		&logger,
	)

	router := handler.NewRouter(authHandler, jwtAuth, cfg, &logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("mongodb disconnect failed")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
