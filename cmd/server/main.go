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

	"github.com/joho/godotenv"

	"github.com/iliyamo/distributor-orders/internal/config"
	"github.com/iliyamo/distributor-orders/internal/database"
	"github.com/iliyamo/distributor-orders/internal/logger"
	"github.com/iliyamo/distributor-orders/internal/mail"
	"github.com/iliyamo/distributor-orders/internal/media"
	"github.com/iliyamo/distributor-orders/internal/middleware"
	"github.com/iliyamo/distributor-orders/internal/notify"
	"github.com/iliyamo/distributor-orders/internal/queue"
	"github.com/iliyamo/distributor-orders/internal/repository"
	"github.com/iliyamo/distributor-orders/internal/repository/memory"
	"github.com/iliyamo/distributor-orders/internal/repository/mongodb"
	"github.com/iliyamo/distributor-orders/internal/repository/sqlstore"
	"github.com/iliyamo/distributor-orders/internal/router"
	"github.com/iliyamo/distributor-orders/internal/service"
	"github.com/iliyamo/distributor-orders/internal/utils"
	"github.com/iliyamo/distributor-orders/internal/validate"
)

func main() {
	// a missing .env is fine; the real environment wins
	_ = godotenv.Load()

	logCfg := logger.ConfigFromEnv(os.LookupEnv)
	lg, err := logger.Init(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	log := lg.Sugar()

	cfg := config.Load()
	if err := utils.SetSnowflakeNode(cfg.SnowflakeNode); err != nil {
		log.Fatalf("snowflake node: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(cctx); err != nil {
			log.Warnw("store close failed", "err", err)
		}
	}()
	log.Infow("store ready", "driver", cfg.DBDriver)

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Infow("redis unavailable; cache and rate limit disabled", "addr", cfg.Redis.Addr)
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(cfg.Cache, rdb, log)

	cld, err := media.NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		log.Fatalf("cloudinary: %v", err)
	}

	audit, err := logCfg.OpenAudit()
	if err != nil {
		log.Fatalf("audit log: %v", err)
	}
	mailer := mail.New(mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.User,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})
	dispatcher := notify.NewDispatcher(mailer, cfg.OrderNotifyTo, audit)

	var notifier service.Notifier = notify.NewDirect(dispatcher)
	if cfg.RabbitMQURL != "" {
		notifier = queue.NewPublisher(cfg.RabbitMQURL)
		consumer := queue.NewConsumer(cfg.RabbitMQURL, dispatcher.Handle, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorw("order consumer stopped", "err", err)
			}
		}()
		log.Infow("order notifications via queue", "queue", queue.OrderPlacedQueue)
	}

	v := validate.New()
	tokens := utils.NewTokens(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL, time.Now)

	// keep the interface nil when the cache is off
	var purger service.CachePurger
	if cache != nil {
		purger = cache
	}

	e := router.New(router.Deps{
		Log:         log,
		Validator:   v,
		Verifier:    tokens,
		AuthHeader:  cfg.AuthHeader,
		CORSOrigins: cfg.CORSOrigins,
		Auth:        service.NewAuthService(store.Users, tokens, v, cfg.BcryptCost),
		Users:       service.NewUserService(store.Users, v, cfg.BcryptCost),
		Products:    service.NewProductService(store.Products, cld, purger, v, log),
		Orders: service.NewOrderService(store.Orders, notifier, v, service.OrderOptions{
			TotalPolicy:       service.TotalPolicy(cfg.OrderTotalPolicy),
			Tolerance:         cfg.OrderTotalTolerance,
			StrictTransitions: cfg.OrderStrictTransitions,
		}, log),
		Signer:    cld,
		Cache:     cache,
		RateLimit: middleware.NewTokenBucket(cfg.RateLimit, rdb, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infow("listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("graceful shutdown failed", "err", err)
	}
	log.Info("goodbye")
}

func openStore(ctx context.Context, cfg config.Config) (repository.Store, error) {
	switch cfg.DBDriver {
	case config.DriverMySQL:
		db, err := database.OpenMySQL(cfg.DatabaseURL)
		if err != nil {
			return repository.Store{}, err
		}
		return sqlstore.New(ctx, db)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		client, db, err := database.OpenMongo(ctx, cfg.DatabaseURL, cfg.DBName)
		if err != nil {
			return repository.Store{}, err
		}
		return mongodb.New(ctx, client, db)
	}
}
