package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/propagation"
	"github.com/jhoicas/stock-ledger/internal/application/settings"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/channel"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/queue"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis no disponible; Idempotency-Key y sincronización fallarán hasta que responda")
	}

	defaults := settings.Defaults(cfg.Inventory)
	jobMetrics := metrics.NewJobs(nil)

	var (
		ledgerDeps inventory.LedgerDeps
		query      *inventory.QueryUseCase
		replenish  *inventory.ReplenishmentUseCase
	)

	switch cfg.App.Storage {
	case "memory":
		// Todo en proceso: la cola local ejecuta la propagación con los mismos repositorios.
		store := memory.NewStore()
		resolver := settings.NewResolver(store.Settings(), defaults)
		local := propagation.NewLocalQueue(propagation.LocalQueueConfig{
			Workers:  cfg.Queue.Concurrency,
			MaxRetry: cfg.Queue.MaxRetry,
			Logger:   log,
			Metrics:  jobMetrics,
		})
		local.Bind(propagation.NewProcessor(propagation.ProcessorDeps{
			Products: store.Products(),
			Tx:       inventory.ProductTx(store),
			Balances: store.Balances(),
			Deps:     store.Dependencies(),
			Settings: resolver,
			Queue:    local,
			Notifier: channel.NewRedisNotifier(rdb, cfg.Redis.ChannelTopic),
			Metrics:  jobMetrics,
			Logger:   log,
		}))
		go func() {
			if err := local.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("cola local finalizada")
			}
		}()
		ledgerDeps = inventory.LedgerDeps{
			TxRunner:     store,
			Products:     store.Products(),
			Areas:        store.Areas(),
			Dependencies: store.Dependencies(),
			Settings:     resolver,
			Queue:        local,
		}
		query = inventory.NewQueryUseCase(store.Movements(), store.Balances(), store.Products())
		replenish = inventory.NewReplenishmentUseCase(store.Products())

	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar esquema")
		}

		client := queue.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, queue.ClientConfig{
			MaxRetry: cfg.Queue.MaxRetry,
			Timeout:  cfg.Queue.Timeout,
			Logger:   log,
		})
		defer client.Close()

		productRepo := postgres.NewProductRepository(pool)
		ledgerDeps = inventory.LedgerDeps{
			TxRunner:     postgres.NewTxRunner(pool, cfg.DB.LockTimeout),
			Products:     productRepo,
			Areas:        postgres.NewAreaRepository(pool),
			Dependencies: postgres.NewDependencyRepository(pool),
			Settings:     settings.NewResolver(postgres.NewSettingsRepository(pool), defaults),
			Queue:        client,
		}
		query = inventory.NewQueryUseCase(
			postgres.NewStockMovementRepository(pool),
			postgres.NewStockAreaProductRepository(pool),
			productRepo,
		)
		replenish = inventory.NewReplenishmentUseCase(productRepo)
	}
	ledgerDeps.Logger = log
	ledger := inventory.NewLedgerUseCase(ledgerDeps)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("sin especificación OpenAPI, /docs deshabilitado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:        ledger,
		Query:         query,
		Replenishment: replenish,
		Idempotency:   cache.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL),
		Metrics:       prometheus.DefaultGatherer,
		Validator:     httpRouter.NewValidator(),
		JWTSecret:     cfg.JWT.Secret,
		ServiceName:   cfg.App.Name,
		Logger:        log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
