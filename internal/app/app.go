package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DRSN-tech/catalog-backend/db/migrations"
	config "github.com/DRSN-tech/catalog-backend/internal/cfg"
	v1Grpc "github.com/DRSN-tech/catalog-backend/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/catalog-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/catalog-backend/internal/infrastructure/kafka"
	s3Repo "github.com/DRSN-tech/catalog-backend/internal/repository/minio"
	"github.com/DRSN-tech/catalog-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/catalog-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/catalog-backend/internal/repository/redis"
	redisConv "github.com/DRSN-tech/catalog-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/clients"
	"github.com/DRSN-tech/catalog-backend/pkg/closer"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/DRSN-tech/catalog-backend/pkg/postgres"
	"github.com/DRSN-tech/catalog-backend/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	startupTimeout        = 10 * time.Second
	shutdownTimeout       = 10 * time.Second
	forcedShutdownTimeout = 3 * time.Second
)

// App связывает зависимости сервиса и управляет его жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	worker  *kafka.OutboxWorker
}

// NewApp подключается к внешним системам и собирает слои.
// При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, logger logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: logger,
		closer: closer.NewCloser(forcedShutdownTimeout, logger),
	}

	if err := a.init(); err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cErr := a.closer.Close(ctx); cErr != nil {
			logger.Warnf("cleanup after failed init: %v", cErr)
		}
		return nil, err
	}

	return a, nil
}

func (a *App) init() error {
	db, err := initPGDB(a.logger, a.cfg)
	if err != nil {
		return err
	}
	a.closer.AddFunc("postgres", db.Close)

	trManager, err := tr.NewManager(db.Pool)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	categoryRepo := pgdb.NewCategoryRepo(db.Pool, pgdbConv.NewCategoryConverterImpl())
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.NewOutboxEventConverterImpl())

	redisClient, err := initRedis(a.cfg)
	if err != nil {
		return err
	}
	a.closer.Add("redis", func(context.Context) error {
		return redisClient.Close()
	})
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.NewCategoryConverterImpl(), a.cfg.Redis, a.logger)

	exportRepo, err := initExportRepo(a.cfg)
	if err != nil {
		return err
	}

	producer, err := kafka.NewProducer(a.logger, a.cfg.Kafka)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("kafka producer", func(context.Context) error {
		return producer.Close()
	})
	topicCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := producer.EnsureTopic(topicCtx); err != nil {
		// Без прав на создание топиков сервис работает с топиком, заведённым заранее.
		a.logger.Warnf("failed to ensure kafka topic %s: %v", a.cfg.Kafka.Topic, err)
	}

	a.worker = kafka.NewOutboxWorker(outboxRepo, a.logger, producer, a.cfg.Outbox, db.Dsn)
	a.closer.AddFunc("outbox worker", a.worker.Stop)

	catUC := usecase.NewCategoryUC(categoryRepo, outboxRepo, cacheRepo, exportRepo, trManager, a.logger)

	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	a.grpcSrv.RegisterServices(catUC)
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	r := chi.NewRouter()
	v1Http.NewRouter(r, a.logger).Init(catUC)
	a.httpSrv = v1Http.NewServer(r, a.cfg.Http)
	a.closer.Add("http server", a.httpSrv.Stop)

	return nil
}

// Run запускает серверы и воркер outbox и блокируется до сигнала или падения сервера.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.worker.Start(context.Background())

	errCh := make(chan error, 2)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("gRPC server", err)
		}
	}()
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- e.Wrap("HTTP server", err)
		}
	}()

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server failed, shutting down")
	case <-ctx.Done():
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
		appErr = errors.Join(appErr, err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Db.DSN())
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(migrations.FS, ".", logger); err != nil {
		db.Close()
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}

func initRedis(cfg *config.Config) (*clients.RedisClient, error) {
	client := clients.NewRedisClient(cfg.Redis)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return client, nil
}

func initExportRepo(cfg *config.Config) (*s3Repo.ExportRepo, error) {
	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := clients.EnsureBucket(ctx, minioClient, cfg.Minio.BucketName); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return s3Repo.NewExportRepo(minioClient, cfg.Minio), nil
}
