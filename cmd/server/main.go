package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/venuehq/pos-dashboard/internal/cart"
	"github.com/venuehq/pos-dashboard/internal/config"
	"github.com/venuehq/pos-dashboard/internal/database"
	"github.com/venuehq/pos-dashboard/internal/handler"
	"github.com/venuehq/pos-dashboard/internal/middleware"
	"github.com/venuehq/pos-dashboard/internal/queue"
	"github.com/venuehq/pos-dashboard/internal/repository"
	"github.com/venuehq/pos-dashboard/internal/router"
	queue_publisher "github.com/venuehq/pos-dashboard/internal/service"
)

func main() {
	// Best effort: a missing .env is fine in containerized deployments
	// where the environment is injected directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the cart store, rate limiting and the financials
	// cache.  All three degrade gracefully when it is unavailable.
	rdb := config.NewRedisClient()
	var carts cart.Store
	if rdb != nil {
		carts = cart.NewRedisStore(rdb, cfg.CartTTL)
	} else {
		log.Printf("redis unavailable; carts held in process memory only")
		carts = cart.NewMemoryStore()
	}

	sessionTypes := repository.NewSessionTypeRepo(db)
	products := repository.NewProductRepo(db)
	sessionProducts := repository.NewSessionProductRepo(db)
	orders := repository.NewOrderRepo(db)
	reports := repository.NewReportRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	dashH := handler.NewDashboardHandler(sessionTypes, sessionProducts, carts)
	cartH := handler.NewCartHandler(carts, sessionTypes, sessionProducts, products, orders)
	cartH.PublishOrderCompleted = func(ctx context.Context, ev queue.OrderCompletedEvent) {
		_ = queue_publisher.PublishOrderCompleted(ctx, ev)
	}
	finH := handler.NewFinancialsHandler(reports)
	catalogH := handler.NewCatalogHandler(sessionTypes, products, sessionProducts, orders)

	// Consumer runs for the life of the process, reconnecting on broker
	// failures, and appends completed orders to logs/orders.log.
	go func() {
		if err := queue.StartOrdersConsumer(); err != nil {
			log.Printf("orders consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	financialsCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPOS(e, dashH, cartH, finH, cfg.JWTSecret, financialsCache)
	router.RegisterAdmin(e, catalogH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
