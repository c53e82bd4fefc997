package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/propagation"
	"github.com/jhoicas/stock-ledger/internal/application/settings"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/channel"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/queue"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	if cfg.App.Storage != "postgres" {
		log.Fatal().Str("storage", cfg.App.Storage).Msg("el worker requiere STORAGE_DRIVER=postgres; en memoria la propagación corre dentro de la API")
	}
	log.Info().Str("env", cfg.App.Env).Int("concurrency", cfg.Queue.Concurrency).Msg("iniciando worker de propagación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer rdb.Close()

	// Los trabajos encadenados (costo → disponibilidad → canal) vuelven a la misma cola.
	client := queue.NewClient(redisOpts, queue.ClientConfig{
		MaxRetry: cfg.Queue.MaxRetry,
		Timeout:  cfg.Queue.Timeout,
		Logger:   log,
	})
	defer client.Close()

	jobMetrics := metrics.NewJobs(nil)
	processor := propagation.NewProcessor(propagation.ProcessorDeps{
		Products: postgres.NewProductRepository(pool),
		Tx:       inventory.ProductTx(postgres.NewTxRunner(pool, cfg.DB.LockTimeout)),
		Balances: postgres.NewStockAreaProductRepository(pool),
		Deps:     postgres.NewDependencyRepository(pool),
		Settings: settings.NewResolver(postgres.NewSettingsRepository(pool), settings.Defaults(cfg.Inventory)),
		Queue:    client,
		Notifier: channel.NewRedisNotifier(rdb, cfg.Redis.ChannelTopic),
		Metrics:  jobMetrics,
		Logger:   log,
	})

	worker, err := queue.NewWorker(queue.WorkerConfig{
		RedisOpts:   redisOpts,
		Concurrency: cfg.Queue.Concurrency,
		Handler:     processor,
		Metrics:     jobMetrics,
		Logger:      log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("crear worker")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Queue.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}
