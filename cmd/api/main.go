package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"real-estate-matching/internal/auth"
	"real-estate-matching/internal/cleanup"
	"real-estate-matching/internal/config"
	"real-estate-matching/internal/database"
	"real-estate-matching/internal/events"
	"real-estate-matching/internal/geo"
	"real-estate-matching/internal/handlers"
	"real-estate-matching/internal/matching"
	"real-estate-matching/internal/ratelimit"
	"real-estate-matching/internal/scheduler"
	"real-estate-matching/internal/scoring"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var migrateOnly bool

	flagSet := pflag.NewFlagSet("api", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the YAML config file (default: $CONFIG_PATH or config/config.yaml)")
	flagSet.BoolVar(&migrateOnly, "migrate-only", false, "apply the schema and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	if configPath == "" {
		configPath = getEnv("CONFIG_PATH", "config/config.yaml")
	}
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}
	applyEnvOverrides(appConfig)
	if err := appConfig.Validate(); err != nil {
		return err
	}
	log.Printf("Loaded configuration from %s (database: %s)", configPath, appConfig.Database.Type)

	gormDB, err := database.Open(appConfig.Database, appConfig.Logging.Level)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer gormDB.Close()

	if err := gormDB.InitSchema(); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	if migrateOnly {
		log.Println("Schema applied, exiting")
		return nil
	}

	// Event publishing is optional
	var publisher events.Publisher = events.NopPublisher{}
	if appConfig.NATS.URL != "" {
		natsCfg := events.DefaultConfig()
		natsCfg.URL = appConfig.NATS.URL
		natsCfg.Name = appConfig.NATS.Name
		natsPub, err := events.NewNATSPublisher(natsCfg)
		if err != nil {
			log.Printf("Warning: NATS unavailable, events disabled: %v", err)
		} else {
			defer natsPub.Close()
			publisher = events.NewBreakerPublisher(natsPub, 5, 30*time.Second)
		}
	}

	engine := scoring.NewEngine(
		geo.NewStraightLine(appConfig.Matching.AverageSpeedMPH),
		appConfig.Matching.DefaultAnchorMaxMinutes,
	)
	service := matching.NewService(gormDB, engine, publisher, appConfig.Matching)

	stop := make(chan struct{})
	defer close(stop)
	limiter := newLimiter(appConfig, stop)

	cleanupService := cleanup.NewService(gormDB.DB())
	appScheduler := scheduler.NewScheduler(appConfig, gormDB, service, cleanupService)
	if err := appScheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer appScheduler.Stop()

	if appConfig.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or JWT_SECRET) is required")
	}
	verifier, err := auth.NewVerifier(appConfig.Auth.JWTSecret)
	if err != nil {
		return err
	}

	// Setup Gin router
	if appConfig.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if appConfig.Logging.LogRequests {
		r.Use(handlers.RequestLogger())
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	handlers.Router{
		API:        handlers.NewAPIHandler(service),
		Admin:      handlers.NewAdminHandler(gormDB, appScheduler, appConfig.Cleanup),
		Verifier:   verifier,
		Limiter:    limiter,
		AdminToken: appConfig.Server.AdminToken,
	}.Register(r)

	srv := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", appConfig.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), appConfig.Server.GetShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("Server stopped")
	return nil
}

// newLimiter picks the Redis limiter when Redis answers, otherwise the in-process one
func newLimiter(cfg *config.Config, stop <-chan struct{}) ratelimit.Limiter {
	rule := ratelimit.SwipeRule(cfg.RateLimit.SwipesPerMinute)
	if !cfg.RateLimit.Enabled {
		return nil
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		err := client.Ping(ctx).Err()
		if err == nil {
			log.Printf("Rate limiter: redis at %s, %d swipes/min", cfg.Redis.Addr, rule.Limit)
			return ratelimit.NewRedisLimiter(client, rule)
		}
		log.Printf("Warning: redis unavailable, using in-process rate limiter: %v", err)
		client.Close()
	}

	log.Printf("Rate limiter: in-process, %d swipes/min", rule.Limit)
	mem := ratelimit.NewMemoryLimiter(rule, true)
	go mem.RunJanitor(stop, rule.Window)
	return mem
}
