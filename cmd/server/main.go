package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mayur-HT/Snapshot/internal/config"
	"github.com/Mayur-HT/Snapshot/internal/database"
	"github.com/Mayur-HT/Snapshot/internal/handlers"
	"github.com/Mayur-HT/Snapshot/internal/metrics"
	"github.com/Mayur-HT/Snapshot/internal/middleware"
	"github.com/Mayur-HT/Snapshot/internal/services"
	"github.com/Mayur-HT/Snapshot/internal/storage"
	"github.com/Mayur-HT/Snapshot/pkg/logger"
	"github.com/Mayur-HT/Snapshot/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

// 20 photos at 25MB plus multipart overhead.
const bodyLimit = 520 * 1024 * 1024

func main() {
	logger.Init()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("dotenv_load_failed", map[string]interface{}{"error": err.Error()})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	tokens := utils.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	store, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("storage initialization failed: %v", err)
	}
	if err := store.Ensure(context.Background()); err != nil {
		log.Fatalf("failed preparing storage: %v", err)
	}

	m := metrics.New()

	accessService := services.NewAccessService(db)
	membershipService := services.NewMembershipService(db, accessService)
	inviteService := services.NewInviteService(db, accessService, m, cfg.Server.FrontendURL, cfg.InviteExpiry())
	sharingService := services.NewSharingService(db, m)
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db, store)

	exportCtx, stopExport := context.WithCancel(context.Background())
	auditService.StartExporter(exportCtx, cfg.AuditExportInterval())

	app := fiber.New(fiber.Config{BodyLimit: bodyLimit})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(cfg.Server.FrontendURL))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	handlers.Mount(app, handlers.Routes{
		Auth:           handlers.NewAuthHandler(userService, inviteService, store, auditService, tokens),
		Users:          handlers.NewUsersHandler(db, accessService, store),
		Groups:         handlers.NewGroupsHandler(membershipService, auditService),
		Invites:        handlers.NewInvitesHandler(inviteService, auditService),
		Photos:         handlers.NewPhotosHandler(db, accessService, sharingService, store, m, auditService),
		Activity:       handlers.NewActivityHandler(db),
		AuthMiddleware: middleware.NewAuthMiddleware(db, tokens),
		Metrics:        m,
	})

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":           cfg.Server.Port,
		"address":        listenAddr,
		"db_driver":      cfg.DB.Driver,
		"storage_driver": cfg.Storage.Driver,
		"invite_expiry":  cfg.InviteExpiry().String(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			sharingService.Wait()
			stopExport()
			auditService.Close()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		stopExport()
		auditService.Close()
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
