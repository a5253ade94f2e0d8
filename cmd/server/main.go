package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/dkarpov/manufacturer-api/internal/config"
	"github.com/dkarpov/manufacturer-api/internal/database"
	"github.com/dkarpov/manufacturer-api/internal/handler"
	"github.com/dkarpov/manufacturer-api/internal/middleware"
	"github.com/dkarpov/manufacturer-api/internal/queue"
	"github.com/dkarpov/manufacturer-api/internal/repository"
	"github.com/dkarpov/manufacturer-api/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("database: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	manufacturers := repository.NewManufacturerRepo(db)

	auth := handler.NewAuthHandler(cfg, users)
	mh := handler.NewManufacturerHandler(manufacturers)
	ph := handler.NewProductHandler(manufacturers)

	e := echo.New()
	e.Use(echomw.CORS())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterCatalog(e, mh, ph, cfg.JWTSecret, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	// Audit-log consumer; reconnects on its own and never stops the server.
	go func() {
		if err := queue.StartProductConsumer(); err != nil {
			log.Printf("product consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
