package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/smokefree-backend/internal/config"
	"github.com/ignatzorin/smokefree-backend/internal/db"
	"github.com/ignatzorin/smokefree-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/smokefree-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/smokefree-backend/internal/http/router"
	"github.com/ignatzorin/smokefree-backend/internal/logger"
	"github.com/ignatzorin/smokefree-backend/internal/mail"
	"github.com/ignatzorin/smokefree-backend/internal/repository"
	"github.com/ignatzorin/smokefree-backend/internal/service"
	"github.com/ignatzorin/smokefree-backend/internal/storage"
	"github.com/ignatzorin/smokefree-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательная инфраструктура.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	recovery := goroutine.NewRecoveryHandler(logger.Log)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Почта: без настроенного SMTP код подтверждения уходит в лог.
	var sender mail.Sender
	if cfg.SMTPHost != "" {
		sender = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		sender = mail.NewLogSender()
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	registrationRepo := repository.NewRegistrationRepository(dbConn)
	planRepo := repository.NewPlanRepository(dbConn)
	trackingRepo := repository.NewTrackingRepository(dbConn)
	coachRepo := repository.NewCoachRepository(dbConn)
	communityRepo := repository.NewCommunityRepository(dbConn)
	membershipRepo := repository.NewMembershipRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub(ctx, recovery)
	go hub.Run()

	// Сервисы.
	authService := service.NewAuthService(registrationRepo, userRepo, tokenManager, sender, recovery, cfg.VerificationCodeTTL, cfg.BcryptCost)
	profileService := service.NewProfileService(userRepo, cfg.BcryptCost)
	planService := service.NewPlanService(planRepo)
	trackingService := service.NewTrackingService(trackingRepo, userRepo, planRepo)
	coachService := service.NewCoachService(coachRepo, hub)
	communityService := service.NewCommunityService(communityRepo, hub)
	membershipService := service.NewMembershipService(membershipRepo, userRepo, hub)
	notificationService := service.NewNotificationService(notificationRepo)

	hub.SetNotificationSaver(ws.NewNotificationServiceAdapter(notificationService))

	// HTTP хэндлеры.
	devMode := cfg.Env != "production"
	authHandler := httpHandlers.NewAuthHandler(authService, devMode)
	profileHandler := httpHandlers.NewProfileHandler(profileService)
	planHandler := httpHandlers.NewPlanHandler(planService)
	trackingHandler := httpHandlers.NewTrackingHandler(trackingService)
	coachHandler := httpHandlers.NewCoachHandler(coachService)
	communityHandler := httpHandlers.NewCommunityHandler(communityService)
	membershipHandler := httpHandlers.NewMembershipHandler(membershipService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	mediaHandler := httpHandlers.NewMediaHandler(mediaRepo, photoStorage)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		profileHandler,
		planHandler,
		trackingHandler,
		coachHandler,
		communityHandler,
		membershipHandler,
		notificationHandler,
		mediaHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
