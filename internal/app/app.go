package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealvalue_backend/internal/config"
	"dealvalue_backend/internal/docstore"
	"dealvalue_backend/internal/email"
	"dealvalue_backend/internal/gateway"
	"dealvalue_backend/internal/handlers"
	"dealvalue_backend/internal/logger"
	"dealvalue_backend/internal/middleware"
	"dealvalue_backend/internal/models"
	"dealvalue_backend/internal/repositories"
	"dealvalue_backend/internal/routes"
	"dealvalue_backend/internal/services"
	"dealvalue_backend/internal/storage"
	"dealvalue_backend/internal/validator"
	"dealvalue_backend/ws"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Dependencies - внешние системы приложения. Тесты подставляют свои реализации.
type Dependencies struct {
	Store     docstore.Store
	Gateway   services.PaymentGateway
	Email     email.Provider
	Backplane ws.Backplane
}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Opening document store...", "driver", cfg.Database.Driver)
	store, err := docstore.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to open document store", "error", err)
	}
	defer store.Close()
	logger.Info("Document store ready")

	if err := seedFirstAdmin(ctx, repositories.NewUserRepository(store), cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	deps := Dependencies{
		Store:   store,
		Gateway: gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, cfg.GatewayTimeout()),
		Email:   newEmailProvider(cfg),
	}
	if cfg.Chat.RedisURL != "" {
		backplane, err := ws.NewRedisBackplane(ctx, cfg.Chat.RedisURL, cfg.Chat.Channel)
		if err != nil {
			logger.Fatal("Failed to connect chat backplane", "error", err)
		}
		defer backplane.Close()
		deps.Backplane = backplane
		logger.Info("Chat backplane connected", "channel", cfg.Chat.Channel)
	}
	defer deps.Email.Close()

	ginRouter, err := SetupRouter(ctx, cfg, deps)
	if err != nil {
		logger.Fatal("Failed to set up router", "error", err)
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: ginRouter,
	}

	go func() {
		logger.Info(fmt.Sprintf("Server starting on %s", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
}

// SetupRouter собирает сервисы, хэндлеры и маршруты. Хаб чата живет до отмены ctx.
func SetupRouter(ctx context.Context, cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	// 1. Инициализируем сервисы
	serviceContainer := services.NewServiceContainer(services.Deps{
		Store:     deps.Store,
		Gateway:   deps.Gateway,
		Email:     deps.Email,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		Storage:   storageInstance,
		MaxUpload: cfg.Upload.MaxSize,
	})

	// 2. Инициализируем хэндлеры
	appHandlers := handlers.NewAppHandlers(serviceContainer, validator.New())

	// 3. Инициализируем WebSocket
	wsManager := ws.NewWebSocketManager(deps.Backplane)
	go wsManager.Run(ctx)
	wsHandler := ws.NewWebSocketHandler(wsManager)

	// 4. Инициализируем Gin
	ginRouter := initializeGinRouter(cfg)

	// 5. Регистрация маршрутов
	var static *routes.StaticDir
	if local, ok := storageInstance.(*storage.LocalStorage); ok {
		static = &routes.StaticDir{Prefix: local.PublicPrefix(), Root: local.BasePath()}
	}
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, static)

	return ginRouter, nil
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}

func newEmailProvider(cfg *config.Config) email.Provider {
	smtpConfig := &email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	}
	if !smtpConfig.Enabled() {
		logger.Warn("SMTP is not configured, emails are captured by the mock provider")
		return &MockEmailProvider{}
	}

	provider := email.NewSMTPProvider(smtpConfig)
	if err := provider.Validate(); err != nil {
		logger.Warn("SMTP configuration is invalid, falling back to mock provider", "error", err.Error())
		return &MockEmailProvider{}
	}
	return provider
}

// seedFirstAdmin создает администратора из конфигурации, если его еще нет
func seedFirstAdmin(ctx context.Context, users repositories.UserRepository, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	if adminEmail == "" {
		logger.Warn("FIRST_ADMIN_EMAIL is not set. Skipping admin seeding.")
		return nil
	}

	existing, err := users.FindByEmail(ctx, adminEmail)
	if err != nil {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}

	name := cfg.FirstAdminName
	if name == "" {
		name = "Administrator"
	}
	res, err := users.Create(ctx, &models.User{
		Email:     adminEmail,
		Name:      name,
		Role:      models.UserRoleAdmin,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("Created first admin user", "email", adminEmail, "id", res.ID)
	return nil
}
