package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/edulink/auth-service/internal/config"
	"github.com/edulink/auth-service/internal/es"
	"github.com/edulink/auth-service/internal/httpserver"
	"github.com/edulink/auth-service/internal/middleware"
	"github.com/edulink/auth-service/internal/mykafka"
	"github.com/edulink/auth-service/internal/securitylog"
	"github.com/edulink/auth-service/internal/service"
	"github.com/edulink/auth-service/internal/social"
	"github.com/edulink/auth-service/internal/store"
	"github.com/edulink/auth-service/pkg/logging"
	loggingmw "github.com/edulink/auth-service/pkg/middleware/logging"
	"github.com/edulink/auth-service/pkg/tokens"
)

func main() {
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.AccessSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.RefreshSecret, "REFRESH_TOKEN_SECRET")
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	codec, err := tokens.NewCodec(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Fatalf("token codec error: %v", err)
	}

	svc := &service.AuthService{
		Store:       store.NewGormStore(db),
		Codec:       codec,
		DefaultRole: cfg.DefaultRole,
	}

	if cfg.GoogleClientID != "" {
		verifierCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		verifier, err := social.NewGoogleVerifier(verifierCtx, cfg.GoogleClientID)
		cancel()
		if err != nil {
			log.Fatalf("google verifier error: %v", err)
		}
		svc.Social = verifier
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, social login disabled")
	}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers, cfg.EventsTopic)
		svc.Events = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, auth events disabled")
	}

	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		svc.Security = securitylog.NewESRecorder(esClient, cfg.SecurityIndex)
	} else {
		logger.Warn("ES_URL not set, security log and login lockout disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc},
		Auth:        middleware.NewBearerAuth(codec),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()
	logger.Info("auth service started", "port", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}
	logger.Info("shutdown complete")
}
