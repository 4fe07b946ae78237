package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	importapp "github.com/storekit/backend/internal/application/import"
	migrationapp "github.com/storekit/backend/internal/application/migration"
	"github.com/storekit/backend/internal/infrastructure/config"
	csvimport "github.com/storekit/backend/internal/infrastructure/import"
	"github.com/storekit/backend/internal/infrastructure/logger"
	"github.com/storekit/backend/internal/infrastructure/persistence"
	"github.com/storekit/backend/internal/infrastructure/progress"
	"github.com/storekit/backend/internal/infrastructure/sourceapi"
	"github.com/storekit/backend/internal/infrastructure/storage"
	"github.com/storekit/backend/internal/interfaces/http/handler"
	"github.com/storekit/backend/internal/interfaces/http/middleware"
	"github.com/storekit/backend/internal/interfaces/http/router"
)

const (
	version          = "1.0.0"
	sessionTTL       = 30 * time.Minute
	shutdownTimeout  = 15 * time.Second
	defaultSourceTag = "shopline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync(log) }()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabaseWithLogger(
		&cfg.Database,
		logger.NewGormLogger(log, gormlogger.Warn),
	)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	collectionRepo := persistence.NewGormCollectionRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	pageRepo := persistence.NewGormPageRepository(db.DB)
	jobRepo := persistence.NewGormImportJobRepository(db.DB)

	// Progress fan-out: always log, stream over redis when available
	sinks := progress.MultiSink{progress.NewLogSink(log)}
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = redisClient.Close() }()
		sinks = append(sinks, progress.NewRedisSink(redisClient, log))
	}

	// Tabular order import
	sessionStore := csvimport.NewInMemorySessionStore(sessionTTL)
	defer sessionStore.Stop()

	orderImportService := importapp.NewOrderImportService(
		sessionStore, orderRepo, customerRepo, productRepo, jobRepo, log,
		importapp.WithConfig(importapp.Config{
			BatchSize:   cfg.Import.BatchSize,
			MaxErrors:   cfg.Import.MaxErrors,
			MaxFileSize: cfg.Import.MaxFileSize,
			PreviewRows: cfg.Import.PreviewRows,
		}),
		importapp.WithProgress(sinks),
	)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("failed to set trusted proxies", zap.Error(err))
		}
	}
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORS(),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	r := router.NewRouter(engine).
		Register(handler.NewSystemHandler(db, version)).
		Register(handler.NewOrderImportHandler(orderImportService))

	// Remote platform migration is only exposed when the source
	// credentials are configured
	if err := cfg.ValidateSource(); err == nil {
		sourceClient, err := sourceapi.NewClient(&sourceapi.Config{
			ShopDomain:  cfg.Source.ShopDomain,
			AccessToken: cfg.Source.AccessToken,
			APIVersion:  cfg.Source.APIVersion,
			PageSize:    cfg.Source.PageSize,
			Timeout:     cfg.Source.RequestTimeout,
			MinInterval: cfg.Source.MinInterval,
		}, sourceapi.WithLogger(log))
		if err != nil {
			log.Fatal("failed to create source platform client", zap.Error(err))
		}
		defer sourceClient.Close()

		opts := []migrationapp.MigrationOption{migrationapp.WithProgress(sinks)}
		if err := cfg.ValidateStorage(); err == nil {
			assetStore, err := storage.NewS3AssetStore(&cfg.Storage, storage.WithLogger(log))
			if err != nil {
				log.Fatal("failed to create asset store", zap.Error(err))
			}
			relocator := migrationapp.NewAssetRelocator(
				productRepo, pageRepo, assetStore, log,
				migrationapp.WithRelocatorProgress(sinks),
			)
			opts = append(opts, migrationapp.WithAssetRelocation(relocator))
		} else {
			log.Warn("asset relocation disabled", zap.Error(err))
		}

		migrationService := migrationapp.NewMigrationService(
			sourceClient,
			migrationapp.UpsertDeps{
				Products:    productRepo,
				Collections: collectionRepo,
				Customers:   customerRepo,
				Orders:      orderRepo,
			},
			jobRepo,
			defaultSourceTag,
			log,
			opts...,
		)
		r.Register(handler.NewMigrationHandler(migrationService, jobRepo))
	} else {
		log.Warn("remote migration disabled", zap.Error(err))
	}

	r.Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
