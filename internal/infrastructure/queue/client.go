package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger/internal/application/propagation"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// QueueDefault cola de los trabajos de propagación.
const QueueDefault = "inventory"

var _ propagation.Enqueuer = (*Client)(nil)

// ClientConfig opciones de encolado.
type ClientConfig struct {
	Queue    string
	MaxRetry int
	Timeout  time.Duration
	Logger   *logger.Logger
}

// Client encola trabajos de propagación en Redis vía asynq.
type Client struct {
	client *asynq.Client
	cfg    ClientConfig
	log    *logger.Logger
}

// NewClient construye el cliente asynq.
func NewClient(redisOpts asynq.RedisConnOpt, cfg ClientConfig) *Client {
	if cfg.Queue == "" {
		cfg.Queue = QueueDefault
	}
	if cfg.MaxRetry < 0 {
		cfg.MaxRetry = 0
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Client{client: asynq.NewClient(redisOpts), cfg: cfg, log: log.Component("queue")}
}

// Enqueue publica cada trabajo como una tarea. Los recálculos repetidos se encolan igual:
// uno que llega mientras otro idéntico se ejecuta debe correr después con los datos nuevos.
// Los fallos se acumulan y se devuelven juntos.
func (c *Client) Enqueue(ctx context.Context, jobs ...propagation.Job) error {
	var errs []error
	for _, job := range jobs {
		task, opts, err := c.task(job)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		info, err := c.client.EnqueueContext(ctx, task, opts...)
		if err != nil {
			errs = append(errs, fmt.Errorf("encolar %s: %w", job.Code(), err))
			continue
		}
		c.log.Debug().Str("job", task.Type()).Str("task_id", info.ID).Msg("trabajo encolado")
	}
	return errors.Join(errs...)
}

func (c *Client) task(job propagation.Job) (*asynq.Task, []asynq.Option, error) {
	payload, err := propagation.Encode(job)
	if err != nil {
		return nil, nil, fmt.Errorf("serializar %s: %w", job.Code(), err)
	}
	opts := []asynq.Option{asynq.Queue(c.cfg.Queue), asynq.MaxRetry(c.cfg.MaxRetry)}
	if c.cfg.Timeout > 0 {
		opts = append(opts, asynq.Timeout(c.cfg.Timeout))
	}
	return asynq.NewTask(string(job.Code()), payload), opts, nil
}

// Close libera la conexión del cliente.
func (c *Client) Close() error {
	return c.client.Close()
}
