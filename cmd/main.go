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

	"dropship-pricing-service/internal/config"
	"dropship-pricing-service/internal/events"
	"dropship-pricing-service/internal/handlers"
	"dropship-pricing-service/internal/hierarchy"
	"dropship-pricing-service/internal/middleware"
	"dropship-pricing-service/internal/repository"
	"dropship-pricing-service/internal/rules"
	"dropship-pricing-service/internal/services"
	"dropship-pricing-service/internal/subscribers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/rbac"
	"github.com/Tesseract-Nexus/go-shared/tracing"
)

// @title Dropship Pricing API
// @version 1.0.0
// @description Category hierarchy, pricing rules and per-seller catalog pricing for dropshipping stores

// @contact.name Pricing API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8090
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

type routeHandlers struct {
	health   *handlers.HealthHandler
	category *handlers.CategoryHandler
	product  *handlers.ProductHandler
	imports  *handlers.ImportHandler
	rule     *handlers.RuleHandler
	settings *handlers.SettingsHandler
	catalog  *handlers.CatalogHandler
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	logger := config.NewLogger(cfg)

	ruleOrdering, err := rules.ParseOrdering(cfg.RuleOrdering)
	if err != nil {
		logger.WithError(err).Fatal("Invalid RULE_ORDERING")
	}
	orphanPolicy, err := hierarchy.ParseOrphanPolicy(cfg.OrphanPolicy)
	if err != nil {
		logger.WithError(err).Fatal("Invalid ORPHAN_POLICY")
	}

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	redisClient := config.InitRedis(cfg, logger)

	// Initialize NATS events publisher. Events are optional; a nil publisher drops them.
	eventsPublisher, err := events.NewPublisher(cfg.NATSURL, logger)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize events publisher (events won't be published)")
		eventsPublisher = nil
	} else {
		logger.Info("✓ NATS events publisher initialized")
	}

	// Repositories
	categoryRepo := repository.NewCategoryRepository(db, redisClient)
	productRepo := repository.NewProductRepository(db, redisClient)
	ruleRepo := repository.NewRuleRepository(db, redisClient)
	overrideRepo := repository.NewOverrideRepository(db)
	settingsRepo := repository.NewSettingsRepository(db, redisClient, cfg.SettingsDefaults())

	// Services
	resolver := rules.NewResolver(ruleOrdering)
	categoryService := services.NewCategoryService(categoryRepo, eventsPublisher, orphanPolicy, logger)
	productService := services.NewProductService(productRepo, categoryRepo, logger)
	ruleService := services.NewRuleService(ruleRepo, categoryRepo, productRepo, resolver, eventsPublisher, logger)
	settingsService := services.NewSettingsService(settingsRepo, categoryRepo, ruleRepo, resolver, eventsPublisher, logger)
	catalogService := services.NewCatalogService(services.CatalogDeps{
		Products:     productRepo,
		Overrides:    overrideRepo,
		Categories:   categoryRepo,
		Rules:        ruleRepo,
		Settings:     settingsRepo,
		Resolver:     resolver,
		Publisher:    eventsPublisher,
		MaxBulkItems: cfg.MaxBulkItems,
	}, logger)

	// Category consistency subscriber
	var categorySubscriber *subscribers.CategorySubscriber
	if cfg.NATSURL != "" {
		categorySubscriber, err = subscribers.NewCategorySubscriber(cfg.NATSURL, categoryRepo, ruleRepo, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize category subscriber (continuing without consistency checks)")
			categorySubscriber = nil
		} else {
			go func() {
				if err := categorySubscriber.Start(context.Background()); err != nil {
					logger.WithError(err).Warn("Category subscriber error")
				}
			}()
			logger.Info("✓ Category subscriber initialized (listening for category.deleted events)")
		}
	}

	// Initialize OpenTelemetry tracing
	var tracerProvider *tracing.TracerProvider
	if cfg.IsProduction() {
		tracerProvider, err = tracing.InitTracer(tracing.ProductionConfig("dropship-pricing-service"))
	} else {
		tracerProvider, err = tracing.InitTracer(tracing.DefaultConfig("dropship-pricing-service"))
	}
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize tracing (continuing without tracing)")
	} else {
		logger.Info("✓ OpenTelemetry tracing initialized")
	}

	metrics := gosharedmw.InitGlobalMetrics("tesseract", "dropship_pricing_service")
	rbacMiddleware := rbac.NewMiddlewareWithURL(cfg.StaffServiceURL, nil)
	logger.Info("✓ RBAC middleware initialized")

	router := setupRouter(cfg, logger, metrics, rbacMiddleware, routeHandlers{
		health:   handlers.NewHealthHandler(db, redisClient),
		category: handlers.NewCategoryHandler(categoryService),
		product:  handlers.NewProductHandler(productService, cfg.DefaultPageSize, cfg.MaxPageSize),
		imports:  handlers.NewImportHandler(productService),
		rule:     handlers.NewRuleHandler(ruleService),
		settings: handlers.NewSettingsHandler(settingsService),
		catalog:  handlers.NewCatalogHandler(catalogService, cfg.DefaultPageSize, cfg.MaxPageSize),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Dropship pricing service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down dropship-pricing-service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	if categorySubscriber != nil {
		categorySubscriber.Stop()
	}

	if eventsPublisher != nil {
		eventsPublisher.Close()
		logger.Info("✓ Events publisher closed")
	}

	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("Error shutting down tracer provider")
		}
	}

	logger.Info("Dropship pricing service stopped")
}

func setupRouter(cfg *config.Config, logger *logrus.Logger, metrics *gosharedmw.Metrics, rbacMw *rbac.Middleware, h routeHandlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(gosharedmw.SecurityHeaders())
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware("dropship-pricing-service"))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health, metrics and docs (no auth required)
	router.GET("/health", h.health.HealthCheck)
	router.GET("/ready", h.health.ReadinessCheck)
	router.GET("/metrics", gosharedmw.Handler())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	switch cfg.AuthMode {
	case "jwt":
		api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		logger.Info("✓ Using JWT auth middleware")
	default:
		// Istio validates the JWT and injects x-jwt-claim-* headers
		api.Use(gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
			RequireAuth:        true,
			AllowLegacyHeaders: cfg.AllowLegacyHeaders,
			SkipPaths:          []string{"/health", "/ready", "/metrics", "/swagger"},
		}))
		logger.Info("✓ Using Istio auth middleware")
	}

	admin := api.Group("/admin")
	if cfg.AuthMode == "jwt" {
		admin.Use(middleware.RequireAnyRole("admin", "pricing_admin"))
	}
	{
		categories := admin.Group("/categories")
		{
			categories.GET("", rbacMw.RequirePermission(rbac.PermissionCategoriesRead), h.category.GetCategoryList)
			categories.GET("/tree", rbacMw.RequirePermission(rbac.PermissionCategoriesRead), h.category.GetCategoryTree)
			categories.GET("/:id", rbacMw.RequirePermission(rbac.PermissionCategoriesRead), h.category.GetCategory)
			categories.GET("/:id/children", rbacMw.RequirePermission(rbac.PermissionCategoriesRead), h.category.GetChildren)
			categories.GET("/:id/descendants", rbacMw.RequirePermission(rbac.PermissionCategoriesRead), h.category.GetDescendants)
			categories.GET("/:id/path", rbacMw.RequirePermission(rbac.PermissionCategoriesRead), h.category.GetPath)
			categories.POST("", rbacMw.RequirePermission(rbac.PermissionCategoriesCreate), h.category.CreateCategory)
			categories.PUT("/:id", rbacMw.RequirePermission(rbac.PermissionCategoriesUpdate), h.category.UpdateCategory)
			categories.POST("/reorder", rbacMw.RequirePermission(rbac.PermissionCategoriesUpdate), h.category.ReorderCategories)
			categories.DELETE("/:id", rbacMw.RequirePermission(rbac.PermissionCategoriesDelete), h.category.DeleteCategory)
		}

		products := admin.Group("/products")
		{
			products.GET("", rbacMw.RequirePermission(rbac.PermissionProductsRead), h.product.ListProducts)
			products.GET("/import/template", rbacMw.RequirePermission(rbac.PermissionProductsImport), h.imports.GetImportTemplate)
			products.POST("/import", rbacMw.RequirePermission(rbac.PermissionProductsImport), h.imports.ImportProducts)
			products.GET("/:id", rbacMw.RequirePermission(rbac.PermissionProductsRead), h.product.GetProduct)
			products.POST("", rbacMw.RequirePermission(rbac.PermissionProductsCreate), h.product.CreateProduct)
			products.PUT("/:id", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), h.product.UpdateProduct)
			products.DELETE("/:id", rbacMw.RequirePermission(rbac.PermissionProductsDelete), h.product.DeleteProduct)
		}

		pricingRules := admin.Group("/pricing-rules")
		{
			pricingRules.GET("", rbacMw.RequirePermission(rbac.PermissionProductsRead), h.rule.ListRules)
			pricingRules.GET("/:id", rbacMw.RequirePermission(rbac.PermissionProductsRead), h.rule.GetRule)
			pricingRules.POST("", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), h.rule.CreateRule)
			pricingRules.POST("/preview", rbacMw.RequirePermission(rbac.PermissionProductsRead), h.rule.PreviewRules)
			pricingRules.PUT("/:id", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), h.rule.UpdateRule)
			pricingRules.POST("/:id/toggle", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), h.rule.ToggleRule)
			pricingRules.DELETE("/:id", rbacMw.RequirePermission(rbac.PermissionProductsDelete), h.rule.DeleteRule)
		}

		admin.GET("/pricing-settings", rbacMw.RequirePermission(rbac.PermissionProductsRead), h.settings.GetSettings)
		admin.PUT("/pricing-settings", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), h.settings.UpdateSettings)
		admin.POST("/pricing/calculate", rbacMw.RequirePermission(rbac.PermissionProductsRead), h.settings.CalculatePrice)
	}

	seller := api.Group("/seller", middleware.SellerMiddleware())
	{
		seller.GET("/catalog", rbacMw.RequirePermission(rbac.PermissionProductsRead), h.catalog.GetCatalog)
		seller.GET("/catalog/export", rbacMw.RequirePermission(rbac.PermissionProductsExport), h.catalog.ExportCatalog)
		seller.PUT("/products/:productId/selection", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), h.catalog.SelectProduct)
		seller.PUT("/products/:productId/pricing", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), h.catalog.UpdatePricing)
		seller.DELETE("/products/:productId", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), h.catalog.RemoveProduct)
		seller.POST("/products/bulk/adjust-margin", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), h.catalog.BulkAdjustMargin)
		seller.POST("/products/bulk/set-margin", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), h.catalog.BulkSetMargin)
		seller.POST("/products/bulk/selection", rbacMw.RequirePermission(rbac.PermissionProductsUpdate), h.catalog.BulkUpdateSelection)
	}

	return router
}
