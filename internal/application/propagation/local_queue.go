package propagation

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

// LocalQueueConfig parámetros de la cola en proceso.
type LocalQueueConfig struct {
	Workers  int
	MaxRetry int
	Logger   *logger.Logger
	Metrics  *metrics.Jobs
}

type envelope struct {
	job     Job
	attempt int
}

// LocalQueue cola FIFO en memoria con workers bajo un errgroup y reintentos acotados.
// Se usa con el almacenamiento en memoria y en tests; en producción la cola es asynq.
type LocalQueue struct {
	mu       sync.Mutex
	pending  []envelope
	signal   chan struct{}
	handler  Handler
	inflight sync.WaitGroup

	workers  int
	maxRetry int
	log      *logger.Logger
	metrics  *metrics.Jobs
}

// NewLocalQueue construye la cola. El handler se asigna con Bind.
func NewLocalQueue(cfg LocalQueueConfig) *LocalQueue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRetry < 0 {
		cfg.MaxRetry = 0
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &LocalQueue{
		signal:   make(chan struct{}, 1),
		workers:  cfg.Workers,
		maxRetry: cfg.MaxRetry,
		log:      log.Component("local_queue"),
		metrics:  cfg.Metrics,
	}
}

// Bind asigna el procesador de trabajos.
func (q *LocalQueue) Bind(h Handler) {
	q.mu.Lock()
	q.handler = h
	q.mu.Unlock()
}

// Enqueue agrega los trabajos al final de la cola sin bloquear.
func (q *LocalQueue) Enqueue(_ context.Context, jobs ...Job) error {
	if len(jobs) == 0 {
		return nil
	}
	q.mu.Lock()
	for _, j := range jobs {
		if j == nil {
			continue
		}
		q.inflight.Add(1)
		q.pending = append(q.pending, envelope{job: j})
	}
	q.mu.Unlock()
	q.wake()
	return nil
}

// Len número de trabajos pendientes.
func (q *LocalQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Run arranca los workers hasta que ctx se cancele.
func (q *LocalQueue) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < q.workers; i++ {
		g.Go(func() error {
			q.work(gctx)
			return nil
		})
	}
	return g.Wait()
}

// Drain procesa en la goroutine actual todos los trabajos pendientes, incluidos los que se
// encolen durante el procesamiento, hasta vaciar la cola.
func (q *LocalQueue) Drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		env, ok := q.pop()
		if !ok {
			return nil
		}
		if err := q.handle(ctx, env); err != nil {
			return err
		}
	}
}

// Wait bloquea hasta que no queden trabajos pendientes ni en ejecución.
func (q *LocalQueue) Wait() {
	q.inflight.Wait()
}

func (q *LocalQueue) work(ctx context.Context) {
	for {
		env, ok := q.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-q.signal:
				continue
			}
		}
		if err := q.handle(ctx, env); err != nil {
			return
		}
	}
}

func (q *LocalQueue) pop() (envelope, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return envelope{}, false
	}
	env := q.pending[0]
	q.pending = q.pending[1:]
	if len(q.pending) > 0 {
		q.wake()
	}
	return env, true
}

func (q *LocalQueue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// handle ejecuta un intento. Tras MaxRetry reintentos fallidos el trabajo se descarta con un warn.
func (q *LocalQueue) handle(ctx context.Context, env envelope) error {
	q.mu.Lock()
	h := q.handler
	q.mu.Unlock()
	if h == nil {
		q.inflight.Done()
		return errors.New("local queue: sin handler")
	}

	err := h.Process(ctx, env.job)
	if err == nil {
		q.inflight.Done()
		return nil
	}
	if env.attempt < q.maxRetry {
		env.attempt++
		q.mu.Lock()
		q.pending = append(q.pending, env)
		q.mu.Unlock()
		q.wake()
		return nil
	}
	q.log.Warn().
		Str("job", string(env.job.Code())).
		Int("attempts", env.attempt+1).
		Err(err).
		Msg("trabajo descartado tras agotar reintentos")
	q.metrics.Dropped(string(env.job.Code()))
	q.inflight.Done()
	return nil
}
