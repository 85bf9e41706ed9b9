package router

import (
	"fmt"

	"github.com/anonto42/gamehub/backend/internal/handlers"
	"github.com/anonto42/gamehub/backend/internal/middleware"
	"github.com/anonto42/gamehub/backend/internal/repositories"
	"github.com/anonto42/gamehub/backend/internal/services"
	"github.com/anonto42/gamehub/backend/pkg/config"
	"github.com/anonto42/gamehub/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Deps are the external resources the routes are built on.
type Deps struct {
	Config   *config.Config
	DB       *config.DB
	Firebase firebase.TokenVerifier // nil unless AUTH_PROVIDER=firebase
	Log      logrus.FieldLogger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) error {
	cfg, pgdb, log := deps.Config, deps.DB.Postgres, deps.Log

	if err := repositories.Migrate(pgdb); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	accountRepo := repositories.NewPostgresAccountRepository(pgdb)
	itemRepo := repositories.NewPostgresItemRepository(pgdb)
	relationshipRepo := repositories.NewPostgresRelationshipRepository(pgdb)
	peerOfferRepo := repositories.NewPostgresPeerOfferRepository(pgdb)
	merchantRepo := repositories.NewPostgresMerchantRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	eventRepo := repositories.NewMongoExchangeEventRepository(deps.DB.MongoDB)

	var catalogCache repositories.CatalogCache
	if deps.DB.Redis != nil {
		catalogCache = repositories.NewRedisCatalogCache(deps.DB.Redis, cfg.CatalogCacheTTL)
		log.Info("Merchant catalog cache enabled.")
	}

	// --- Services ---
	accountService := services.NewAccountService(pgdb, userRepo, accountRepo, itemRepo, cfg.StartingBalance, log)
	relationshipService := services.NewRelationshipService(pgdb, relationshipRepo, userRepo, notificationRepo,
		services.RelationshipLimits{MaxPendingRequests: cfg.MaxPendingRequests, MaxFriends: cfg.MaxFriends}, log)
	peerOfferService := services.NewPeerOfferService(pgdb, peerOfferRepo, itemRepo, accountRepo, notificationRepo,
		eventRepo, cfg.MaxOfferPrice, log)
	merchantService := services.NewMerchantService(pgdb, merchantRepo, itemRepo, accountRepo, catalogCache, eventRepo, log)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, accountService, deps.Firebase, cfg.JWTSecret, cfg.JWTTTL)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Info("Auth routes configured.")

	// --- Protected routes ---
	api := e.Group("/api/v1")
	if cfg.AuthProvider == config.AuthProviderFirebase {
		if deps.Firebase == nil {
			return fmt.Errorf("firebase auth provider selected but not initialized")
		}
		api.Use(middleware.FirebaseAuthMiddleware(deps.Firebase, userRepo))
	} else {
		api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	}
	log.WithField("provider", cfg.AuthProvider).Info("Authentication middleware applied to /api/v1 group.")

	handlers.NewUserHandler(userRepo).RegisterProfileRoutes(api)
	handlers.NewFriendshipHandler(relationshipService).RegisterFriendshipRoutes(api)
	handlers.NewMarketHandler(peerOfferService).RegisterMarketRoutes(api)
	handlers.NewMerchantHandler(merchantService).RegisterMerchantRoutes(api)
	handlers.NewWalletHandler(accountService, eventRepo).RegisterWalletRoutes(api)
	handlers.NewNotificationHandler(notificationRepo, userRepo).RegisterNotificationRoutes(api)

	log.Info("All routes configured.")
	return nil
}
