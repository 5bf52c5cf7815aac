package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/postboard-api/internal/config"
	"github.com/iliyamo/postboard-api/internal/database"
	"github.com/iliyamo/postboard-api/internal/handler"
	"github.com/iliyamo/postboard-api/internal/logger"
	"github.com/iliyamo/postboard-api/internal/middleware"
	"github.com/iliyamo/postboard-api/internal/queue"
	"github.com/iliyamo/postboard-api/internal/repository"
	"github.com/iliyamo/postboard-api/internal/router"
	"github.com/iliyamo/postboard-api/internal/service"
	"github.com/iliyamo/postboard-api/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", true)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.LogLevel, cfg.Env == "dev")

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database connection failed")
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	redisCfg, err := config.LoadRedisConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("redis config")
	}
	rdb := config.NewRedisClient(redisCfg)
	if rdb != nil {
		defer rdb.Close()
	}
	rlCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("rate limit config")
	}
	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("cache config")
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		events = queue.NewAMQPPublisher(cfg.RabbitMQURL)
	}

	ctx := context.Background()
	uploader, err := storage.New(ctx, cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("object storage")
	}

	userRepo := repository.NewUserRepo(db)
	postRepo := repository.NewPostRepo(db)
	commentRepo := repository.NewCommentRepo(db)

	issuer := service.NewTokenIssuer(db, cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	users := service.NewUserService(userRepo, uploader, cfg.BcryptCost, cfg.PaginationMaxLimit)
	auth := service.NewAuthService(users, issuer, events, cfg.AdminSecret)
	posts := service.NewPostService(postRepo, uploader, cfg.PaginationMaxLimit)
	comments := service.NewCommentService(commentRepo, postRepo, cfg.PaginationMaxLimit)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestLogger())

	router.Register(e, router.Deps{
		DB:        db,
		Verifier:  issuer,
		Auth:      handler.NewAuthHandler(auth, cfg.RequestTimeout),
		Users:     handler.NewUserHandler(users, cfg.RequestTimeout),
		Posts:     handler.NewPostHandler(posts, cfg.RequestTimeout),
		Comments:  handler.NewCommentHandler(comments, cfg.RequestTimeout),
		RateLimit: middleware.NewTokenBucket(rlCfg, rdb),
		Cache:     middleware.NewRedisCache(cacheCfg, rdb),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server exited")
}
