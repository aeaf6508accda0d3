package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskmind/internal/auth"
	"taskmind/internal/config"
	apphttp "taskmind/internal/http"
	"taskmind/internal/mail"
	"taskmind/internal/repository/sqlite"
	"taskmind/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := taskRepo.Init(ctx); err != nil {
		logger.Fatalf("init task repository: %v", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, cfg.Auth.ResetTTL)
	if err != nil {
		logger.Fatalf("setup token issuer: %v", err)
	}

	notifier := buildNotifier(cfg, logger)

	authService, err := service.NewAuthService(userRepo, tokens, notifier, cfg.Client.URL, logger)
	if err != nil {
		logger.Fatalf("setup auth service: %v", err)
	}
	taskService := service.NewTaskService(taskRepo)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(apphttp.RequestLogger(logger))
	router.Use(apphttp.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))

	handler := apphttp.NewHandler(authService, taskService, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildNotifier(cfg config.Config, logger *logrus.Logger) mail.Notifier {
	if cfg.Mail.Host == "" {
		logger.Warn("mail host not configured, reset mails will only be logged")
		return mail.NewLogNotifier(logger)
	}

	from := cfg.Mail.From
	if from == "" {
		from = cfg.Mail.Username
	}
	return mail.NewSMTPNotifier(mail.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     from,
	})
}
