package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/snow6692/chat/internal/handler"
	"github.com/snow6692/chat/internal/hub"
	"github.com/snow6692/chat/internal/middleware"
	"github.com/snow6692/chat/internal/service"
	"github.com/snow6692/chat/internal/store"
	"github.com/snow6692/chat/shared/config"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load config", "err", err)
	}

	db, err := store.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalw("failed to connect to database", "err", err)
	}
	defer func() { _ = db.Close() }()
	if err := db.Migrate(); err != nil {
		log.Fatalw("failed to migrate database", "err", err)
	}

	userRepo := store.NewUserRepository(db)
	jwtService := service.NewJWTService(cfg.JwtSecret, cfg.JwtExpireH)
	userService := service.NewUserService(userRepo, jwtService, log)

	relay := hub.New(log)
	go relay.Run()

	handler.RegisterValidators()
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.ClientOrigin))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	userHandler := handler.NewUserHandler(userService, log)
	userHandler.Register(router.Group("/api/user"), middleware.JwtAuth(jwtService))

	wsHandler := handler.NewWSHandler(relay, cfg.ClientOrigin, log)
	router.GET("/ws", wsHandler.Handle)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnw("http shutdown", "err", err)
	}
	if err := relay.Shutdown(5 * time.Second); err != nil {
		log.Warnw("hub shutdown", "err", err)
	}
}
