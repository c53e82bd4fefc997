package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger/internal/application/propagation"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

var codes = []propagation.Code{
	propagation.CodeRecomputeCost,
	propagation.CodePropagateCost,
	propagation.CodeRecomputeRecipeCost,
	propagation.CodeRecheckAvailability,
	propagation.CodeRecheckSellability,
	propagation.CodeSyncExternalChannel,
}

// WorkerConfig dependencias del worker de propagación.
type WorkerConfig struct {
	RedisOpts   asynq.RedisConnOpt
	Queue       string
	Concurrency int
	Handler     propagation.Handler
	Metrics     *metrics.Jobs
	Logger      *logger.Logger
}

// Worker consume la cola de propagación con un servidor asynq.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	handler propagation.Handler
	metrics *metrics.Jobs
	log     *logger.Logger
	// retries devuelve el número de reintentos hechos y el máximo de la tarea en curso.
	retries func(ctx context.Context) (int, int)
}

// NewWorker construye el servidor y registra un handler por código de trabajo.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Handler == nil {
		return nil, errors.New("worker: handler requerido")
	}
	if cfg.Queue == "" {
		cfg.Queue = QueueDefault
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("worker")

	w := &Worker{
		handler: cfg.Handler,
		metrics: cfg.Metrics,
		log:     log,
		retries: taskRetries,
	}
	w.server = asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{cfg.Queue: 1},
		Logger:      asynqLogger{log},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Warn().Err(err).Str("job", task.Type()).Msg("trabajo fallido, se reintentará")
		}),
	})
	w.mux = asynq.NewServeMux()
	for _, code := range codes {
		w.mux.HandleFunc(string(code), w.handle)
	}
	return w, nil
}

// Run procesa trabajos hasta que se cancele el contexto.
func (w *Worker) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// handle decodifica y procesa la tarea. Un payload inválido no se reintenta; en el último intento
// el fallo se registra y el trabajo se descarta.
func (w *Worker) handle(ctx context.Context, task *asynq.Task) error {
	job, err := propagation.Decode(propagation.Code(task.Type()), task.Payload())
	if err != nil {
		w.log.Warn().Err(err).Str("job", task.Type()).Msg("payload inválido")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := w.handler.Process(ctx, job); err != nil {
		retried, max := w.retries(ctx)
		if retried >= max {
			w.log.Warn().Err(err).Str("job", task.Type()).Int("retried", retried).Msg("trabajo descartado tras agotar reintentos")
			w.metrics.Dropped(task.Type())
			return nil
		}
		return err
	}
	return nil
}

func taskRetries(ctx context.Context) (int, int) {
	retried, _ := asynq.GetRetryCount(ctx)
	max, _ := asynq.GetMaxRetry(ctx)
	return retried, max
}

// asynqLogger adapta el logger de la aplicación a asynq.Logger.
type asynqLogger struct{ l *logger.Logger }

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...interface{}) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
