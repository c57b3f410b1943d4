package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aether-industries/storefront-api/internal/cache"
	"github.com/aether-industries/storefront-api/internal/config"
	"github.com/aether-industries/storefront-api/internal/database"
	"github.com/aether-industries/storefront-api/internal/handler"
	"github.com/aether-industries/storefront-api/internal/middleware"
	"github.com/aether-industries/storefront-api/internal/repository"
	"github.com/aether-industries/storefront-api/internal/service"
	"github.com/aether-industries/storefront-api/internal/sse"
	"github.com/aether-industries/storefront-api/internal/worker"
	"github.com/aether-industries/storefront-api/pkg/groq"
)

// main is the application entrypoint for the Aether Industries storefront API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting storefront api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 4. Initialize caches
	cartStore := cache.NewCartStore(redisClient)
	catalogCache := cache.NewCatalogCache(redisClient)

	// 5. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	// 5a. Initialize Groq client for the support chatbot
	var groqClient *groq.Client
	if cfg.Groq.APIKey != "" {
		groqClient = groq.NewClient(cfg.Groq.APIKey, cfg.Groq.Model)
	} else {
		log.Warn().Msg("GROQ_API_KEY not set - support chatbot will be disabled")
	}

	// 5b. Initialize SSE hub for admin dashboards
	hub := sse.NewHub()

	// 6. Initialize services
	catalogSvc := service.NewCatalogService(productRepo, catalogCache)
	cartSvc := service.NewCartService(cartStore)
	productMgmtSvc := service.NewProductManagementService(productRepo)
	checkoutSvc := service.NewCheckoutService(cartSvc, orderRepo, sse.NewHubNotifier(hub))
	adminAuthSvc := service.NewAdminAuthService(adminRepo)
	chatbotSvc := service.NewChatbotService(groqClient, orderRepo)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:            handler.NewHealthHandler(db, redisClient),
		Product:           handler.NewProductHandler(catalogSvc),
		Cart:              handler.NewCartHandler(cartSvc, catalogSvc),
		Checkout:          handler.NewCheckoutHandler(checkoutSvc),
		Chatbot:           handler.NewChatbotHandler(chatbotSvc),
		ProductManagement: handler.NewProductManagementHandler(productMgmtSvc),
		OrderAdmin:        handler.NewOrderAdminHandler(orderRepo),
		Auth:              handler.NewAuthHandler(adminAuthSvc),
		SSE:               handler.NewSSEHandler(hub),
	}

	// 8. Initialize middleware
	identityMw := middleware.NewIdentityMiddleware()
	jwtMw := middleware.NewJWTMiddleware()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, identityMw, jwtMw, groqClient != nil)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go worker.NewCatalogRefreshWorker(catalogSvc, cfg.Worker.CatalogRefreshInterval).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health            *handler.HealthHandler
	Product           *handler.ProductHandler
	Cart              *handler.CartHandler
	Checkout          *handler.CheckoutHandler
	Chatbot           *handler.ChatbotHandler
	ProductManagement *handler.ProductManagementHandler
	OrderAdmin        *handler.OrderAdminHandler
	Auth              *handler.AuthHandler
	SSE               *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, identityMiddleware *middleware.IdentityMiddleware, jwtMiddleware *middleware.JWTMiddleware, chatEnabled bool) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Storefront routes (anonymous or optionally authenticated)
	store := router.Group("/v1")
	store.Use(identityMiddleware.Handle())
	{
		store.GET("/products", handlers.Product.ListProducts)
		store.GET("/products/filters", handlers.Product.GetFilterOptions)
		store.GET("/products/:slug", handlers.Product.GetProductBySlug)

		store.GET("/cart", handlers.Cart.GetCart)
		store.DELETE("/cart", handlers.Cart.ClearCart)
		store.POST("/cart/items", handlers.Cart.AddItem)
		store.PUT("/cart/items/:productId", handlers.Cart.UpdateItem)
		store.DELETE("/cart/items/:productId", handlers.Cart.RemoveItem)

		store.POST("/checkout/orders", handlers.Checkout.PlaceOrder)
		store.POST("/checkout/quotes", handlers.Checkout.SubmitQuote)
		store.GET("/orders", handlers.Checkout.ListMyOrders)
		store.GET("/orders/:id", handlers.Checkout.GetOrder)

		if chatEnabled {
			store.POST("/chat", handlers.Chatbot.Chat)
		}
	}

	// Admin SSE stream authenticates via query param, not the Authorization
	// header, so it sits outside the JWT-guarded group.
	router.GET("/v1/admin/sse", handlers.SSE.Stream)

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", handlers.Auth.Login)
	admin.Use(jwtMiddleware.Handle())
	{
		// Product Management
		admin.GET("/products", handlers.ProductManagement.ListProducts)
		admin.POST("/products", handlers.ProductManagement.CreateProduct)
		admin.GET("/products/:id", handlers.ProductManagement.GetProduct)
		admin.PUT("/products/:id", handlers.ProductManagement.UpdateProduct)
		admin.DELETE("/products/:id", handlers.ProductManagement.DeleteProduct)

		// Order dashboard
		admin.GET("/orders", handlers.OrderAdmin.ListOrders)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
