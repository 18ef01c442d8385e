package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	_ "github.com/comitanigiacomo/kanso-analytics-engine/docs"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-analytics-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/config"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/workers"
)

// @title           Kanso Analytics Engine API
// @version         1.0
// @description     Habit analytics service: schedules, completions, streaks and performance aggregates.
// @BasePath        /api/v1
func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", cfg.DatabaseDSN())
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	log.Println("Redis connected successfully.")

	userRepo := repository.NewPostgresUserRepository(db)
	categoryRepo := repository.NewPostgresCategoryRepository(db)
	logRepo := repository.NewPostgresHabitLogRepository(db)
	habitRepo := repository.NewCachedHabitRepository(repository.NewPostgresHabitRepository(db), redisClient)

	dashboardCache := cache.NewAnalyticsCache(redisClient)

	worker := workers.NewStreakWorker(habitRepo, logRepo, userRepo)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	worker.Start(workerCtx)

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTDuration, userRepo)
	authService := services.NewAuthService(userRepo, tokenService)
	habitService := services.NewHabitService(habitRepo, dashboardCache)
	logService := services.NewLogService(logRepo, habitRepo, worker, dashboardCache)
	categoryService := services.NewCategoryService(categoryRepo, dashboardCache)
	analyticsService := services.NewAnalyticsService(habitRepo, logRepo, categoryRepo, userRepo, dashboardCache)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(authService),
		HabitHandler:     adapterHTTP.NewHabitHandler(habitService),
		LogHandler:       adapterHTTP.NewLogHandler(logService),
		CategoryHandler:  adapterHTTP.NewCategoryHandler(categoryService),
		AnalyticsHandler: adapterHTTP.NewAnalyticsHandler(analyticsService),
		TokenService:     tokenService,
		DB:               db,
		Redis:            redisClient,
		RateLimitRPM:     cfg.RateLimitRPM,
		StartTime:        startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Kanso Analytics Engine running on http://localhost:%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
