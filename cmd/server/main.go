package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/auth_service/internal/config"
	"github.com/Skotchmaster/auth_service/internal/handlers"
	"github.com/Skotchmaster/auth_service/internal/logging"
	authmw "github.com/Skotchmaster/auth_service/internal/middleware/auth"
	"github.com/Skotchmaster/auth_service/internal/mykafka"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/session"
	"github.com/Skotchmaster/auth_service/internal/tokens"
	httpserver "github.com/Skotchmaster/auth_service/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := context.Background()

	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	redisClient, err := config.InitRedis(ctx, cfg)
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers)
	} else {
		logger.Warn("KAFKA_BROKERS not set, events disabled")
	}

	codec := &tokens.Codec{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
	}
	userRepo := repo.NewUserRepo(db)

	authSvc := &service.AuthService{
		Repo:       userRepo,
		Sessions:   session.NewRedisStore(redisClient),
		Codec:      codec,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}
	if producer != nil {
		authSvc.Events = producer
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), logger)))
			return next(c)
		}
	})

	cookies := handlers.CookiePolicy{Secure: cfg.CookieSecure, SameSite: cfg.CookieSameSite}

	deps := httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{Svc: authSvc, Cookies: cookies},
		UserHandler: &handlers.UserHandler{Svc: &service.UserService{Repo: userRepo}},
		Guard:       authmw.NewGuard(codec),
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
