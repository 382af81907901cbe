package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/configs"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/events"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/messaging"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/ratelimiter"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/tracing"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/ws"
	"github.com/juanmoore-creator/elimpostor/internal/lobby"
	"github.com/juanmoore-creator/elimpostor/internal/persistence/db"
	"github.com/juanmoore-creator/elimpostor/internal/persistence/repository"
	"github.com/juanmoore-creator/elimpostor/internal/presentation/api"
	"github.com/juanmoore-creator/elimpostor/internal/presentation/handler/audit"
	"github.com/juanmoore-creator/elimpostor/internal/presentation/handler/health"
	"github.com/juanmoore-creator/elimpostor/internal/presentation/handler/rooms"
	"github.com/juanmoore-creator/elimpostor/internal/reclaimer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	serviceName = "elimpostor-api"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := newLogger(cfg.Logging)
	defer logger.Sync()

	store, auditRepo := buildStore(ctx, cfg, logger)

	var publisher lobby.EventPublisher
	var rabbitmq *messaging.RabbitMQ
	if cfg.RabbitMQ.Enabled {
		rabbitmq, err = messaging.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		logger.Infow("rabbitmq connected", "url", cfg.RabbitMQ.URL)

		publisher = events.NewRoomPublisher(rabbitmq)

		if auditRepo != nil {
			roomConsumer := events.NewRoomConsumer(rabbitmq, auditRepo, logger)
			if err := roomConsumer.Listen(); err != nil {
				log.Fatal(err)
			}
		}
	}

	manager := lobby.NewManager(store, publisher, logger)

	wsCore := ws.NewCore(logger)
	go wsCore.Run(ctx)

	sweeper := reclaimer.New(manager, cfg.Reclaimer.Interval, logger)
	go sweeper.Run(ctx)

	roomHandler := rooms.NewHandler(manager, wsCore, logger)
	healthHandler := health.NewHandler()

	var auditHandler *audit.Handler
	if auditRepo != nil {
		auditHandler = audit.NewHandler(auditRepo, logger)
	}

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})
	defer rl.Close()

	app := api.NewApplication(*cfg, roomHandler, healthHandler, auditHandler, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	logger.Fatal(app.Run(mux))
}

// newLogger keeps logs on stderr unless a file path is configured, in
// which case the file is size-rotated.
func newLogger(cfg configs.LoggingConfig) *zap.SugaredLogger {
	if cfg.File == "" {
		return zap.Must(zap.NewProduction()).Sugar()
	}

	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), sink, zapcore.InfoLevel)
	return zap.New(core).Sugar()
}

func buildStore(ctx context.Context, cfg *configs.Config, logger *zap.SugaredLogger) (domain.RoomStore, domain.RoomAuditRepository) {
	if cfg.Store.Backend != "mongo" {
		logger.Infow("using in-memory room store")
		return repository.NewMemoryRoomStore(), nil
	}

	mongoCfg := db.NewMongoDefaultConfig()
	mongoCfg.URI = cfg.Mongo.URI
	mongoCfg.Database = cfg.Mongo.Database

	client, err := db.NewMongoClient(ctx, mongoCfg)
	if err != nil {
		log.Fatal(err)
	}

	database := db.GetDatabase(client, mongoCfg)

	auditRepo := repository.NewRoomAuditLogRepository(database)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal(err)
	}

	logger.Infow("using mongo room store", "database", mongoCfg.Database)

	return repository.NewMongoRoomStore(database), auditRepo
}
