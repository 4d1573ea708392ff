package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
	"salonms-backend/internal/config"
	"salonms-backend/internal/db"
	"salonms-backend/internal/handler"
	"salonms-backend/internal/notify"
	"salonms-backend/internal/repository"
	"salonms-backend/internal/server"
	"salonms-backend/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	// Firebase Auth (optional)
	var firebaseAuth *auth.Client
	if cfg.FirebaseProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, firebaseOptions(cfg)...)
		if err != nil {
			logger.Error("failed to init firebase app", "err", err)
			os.Exit(1)
		}
		client, err := app.Auth(ctx)
		if err != nil {
			logger.Error("failed to init firebase auth", "err", err)
			os.Exit(1)
		}
		firebaseAuth = client
	}

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	productRepo := repository.ProductRepository{DB: pg}
	workerRepo := repository.WorkerRepository{DB: pg}
	serviceRepo := repository.ServiceRecordRepository{DB: pg}
	inventoryRepo := repository.InventoryRepository{DB: pg}
	alertRepo := repository.AlertRepository{DB: pg}
	notificationRepo := repository.NotificationRepository{DB: pg}
	dashboardRepo := repository.DashboardRepository{DB: pg}

	if err := inventoryRepo.EnsureChangeFeed(ctx); err != nil {
		logger.Error("failed to install inventory change feed", "err", err)
		os.Exit(1)
	}

	// services
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Logger: logger, FirebaseAuth: firebaseAuth}
	earningsSvc := service.EarningsService{Workers: workerRepo, Services: serviceRepo, Logger: logger}
	hub := notify.NewHub(logger)
	mailer := service.Mailer{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
		To:   cfg.AlertRecipients,
	}

	// inventory alert checker: periodic plus change-feed driven
	feed := db.NewChangeFeed(pg, repository.InventoryChannel, logger)
	go feed.Run(ctx)
	checker := &service.AlertChecker{
		Inventory:     inventoryRepo,
		Alerts:        alertRepo,
		Notifications: notificationRepo,
		Publisher:     hub,
		Mailer:        mailer,
		Logger:        logger,
		CheckInterval: cfg.AlertCheckInterval,
		Debounce:      cfg.AlertDebounce,
		Cooldown:      cfg.AlertCooldown,
		AlertTTL:      cfg.AlertTTL,
		ExpiryWindow:  cfg.ExpiryWindow,
	}
	go checker.Run(ctx, feed.Events())

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Service: &authSvc}
	productHandler := handler.ProductHandler{Repo: productRepo, Currency: cfg.DefaultCurrency}
	workerHandler := handler.WorkerHandler{Repo: workerRepo, Services: serviceRepo, Earnings: earningsSvc, Currency: cfg.DefaultCurrency}
	serviceHandler := handler.ServiceRecordHandler{Earnings: earningsSvc, Repo: serviceRepo}
	inventoryHandler := handler.InventoryHandler{Repo: inventoryRepo}
	alertHandler := handler.AlertHandler{Repo: alertRepo}
	notificationHandler := handler.NotificationHandler{Repo: notificationRepo}
	streamHandler := handler.StreamHandler{Hub: hub, Logger: logger}
	exportHandler := handler.EarningsExportHandler{Repo: workerRepo, Currency: cfg.DefaultCurrency}
	dashboardHandler := handler.DashboardHandler{Repo: dashboardRepo}

	router := server.NewRouter(cfg, logger,
		healthHandler, authHandler, productHandler, workerHandler, serviceHandler,
		inventoryHandler, alertHandler, notificationHandler, streamHandler,
		exportHandler, dashboardHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func firebaseOptions(cfg config.Config) []option.ClientOption {
	if cfg.FirebaseCredFile == "" {
		return nil
	}

	cred := cfg.FirebaseCredFile
	// Allow inline JSON or base64-encoded JSON in env to avoid writing a file.
	if strings.HasPrefix(strings.TrimSpace(cred), "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cred))}
	}
	if decoded, err := base64.StdEncoding.DecodeString(cred); err == nil && strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}
	}

	return []option.ClientOption{option.WithCredentialsFile(cred)}
}
