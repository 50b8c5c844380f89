package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/authapi"
	catalogAPI "github.com/priyanshuchauhan/sweet-luxe-backend/internal/catalog/api"
	catalogRepo "github.com/priyanshuchauhan/sweet-luxe-backend/internal/catalog/repository"
	catalogService "github.com/priyanshuchauhan/sweet-luxe-backend/internal/catalog/service"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/identity"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/platform/config"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/platform/database"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/platform/logger"
	profileRepo "github.com/priyanshuchauhan/sweet-luxe-backend/internal/profile/repository"
	profileService "github.com/priyanshuchauhan/sweet-luxe-backend/internal/profile/service"
	purchaseAPI "github.com/priyanshuchauhan/sweet-luxe-backend/internal/purchase/api"
	purchaseService "github.com/priyanshuchauhan/sweet-luxe-backend/internal/purchase/service"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file loaded, using process environment")
	}

	dbCfg := config.LoadStoreDBConfig()
	serverCfg := config.LoadServerConfig("8080")
	identityCfg := config.LoadIdentityConfig()
	storageCfg := config.LoadStorageConfig()

	logger.Info("Starting Sweet Luxe API...")

	if identityCfg.JWTSecret == "" {
		logger.Warn("AUTH_JWT_SECRET not set; all requests will resolve as anonymous")
	}

	db, err := database.Connect(dbCfg.DSN)
	if err != nil {
		logger.Error("Failed to connect to database", err)
		return
	}
	defer db.Close()

	// External gateways
	identityClient := identity.NewClient(identityCfg.BaseURL, identityCfg.APIKey)
	storageClient := storage.NewClient(storageCfg.BaseURL, storageCfg.APIKey, storageCfg.Bucket)

	// Repositories and services
	profiles := profileService.NewProfileService(profileRepo.NewPostgresProfileRepository(db))
	products := catalogRepo.NewPostgresProductRepository(db)
	catalog := catalogService.NewCatalogService(products)
	purchases := purchaseService.NewPurchaseService(products)

	// Handlers
	catalogHandler := catalogAPI.NewCatalogHandler(catalog, storageClient)
	purchaseHandler := purchaseAPI.NewPurchaseHandler(purchases)
	authHandler := authapi.NewAuthHandler(identityClient, profiles)

	router := gin.Default()
	router.RedirectTrailingSlash = false

	// Every route resolves the caller's session once; handlers receive
	// it explicitly instead of looking it up ambiently.
	api := router.Group("/api", identity.NewSessionMiddleware([]byte(identityCfg.JWTSecret), profiles))

	catalogHandler.RegisterPublicRoutes(api)
	purchaseHandler.RegisterRoutes(api)
	authHandler.RegisterRoutes(api)

	admin := api.Group("/admin", identity.RequireAdmin())
	catalogHandler.RegisterAdminRoutes(admin)

	logger.Info("Sweet Luxe API running on port " + serverCfg.Port)
	logger.Info("Auth provider at " + identityCfg.BaseURL)
	logger.Info("Object storage at " + storageCfg.BaseURL)
	if err := router.Run(serverCfg.Port); err != nil {
		logger.Error("Failed to run server", err)
	}
}
