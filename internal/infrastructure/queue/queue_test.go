package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/propagation"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()}, ClientConfig{MaxRetry: 2})
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func pending(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	key := "asynq:{" + QueueDefault + "}:pending"
	if !mr.Exists(key) {
		return 0
	}
	list, err := mr.List(key)
	require.NoError(t, err)
	return len(list)
}

func TestClient_RecalculosRepetidosSeEncolan(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Enqueue(ctx, propagation.RecomputeCost{ProductID: "p1"}))
	require.NoError(t, c.Enqueue(ctx, propagation.RecomputeCost{ProductID: "p1"}))
	require.NoError(t, c.Enqueue(ctx, propagation.RecomputeRecipeCost{RecipeID: "p1"}, propagation.RecomputeRecipeCost{RecipeID: "p1"}))
	assert.Equal(t, 4, pending(t, mr))
}

// Un recálculo pedido mientras otro idéntico está en ejecución debe correr otra vez:
// el activo pudo haber leído costos anteriores al cambio.
func TestClient_RecalculoDuranteEjecucionNoSePierde(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var calls atomic.Int32
	mux := asynq.NewServeMux()
	mux.HandleFunc(string(propagation.CodeRecomputeCost), func(context.Context, *asynq.Task) error {
		if calls.Add(1) == 1 {
			started <- struct{}{}
			<-release
		}
		return nil
	})
	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: mr.Addr()}, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{QueueDefault: 1},
		LogLevel:    asynq.FatalLevel,
	})
	require.NoError(t, srv.Start(mux))
	t.Cleanup(srv.Shutdown)

	require.NoError(t, c.Enqueue(ctx, propagation.RecomputeCost{ProductID: "p1"}))
	select {
	case <-started:
	case <-time.After(10 * time.Second):
		t.Fatal("el primer recálculo no arrancó")
	}

	require.NoError(t, c.Enqueue(ctx, propagation.RecomputeCost{ProductID: "p1"}))
	assert.Equal(t, 1, pending(t, mr), "el segundo queda pendiente detrás del activo")
	close(release)

	assert.Eventually(t, func() bool { return calls.Load() == 2 }, 10*time.Second, 50*time.Millisecond)
}

func TestClient_TareaLlevaOpciones(t *testing.T) {
	c := &Client{cfg: ClientConfig{Queue: "q", MaxRetry: 3, Timeout: time.Minute}}

	task, opts, err := c.task(propagation.PropagateCost{ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, string(propagation.CodePropagateCost), task.Type())
	assert.JSONEq(t, `{"product_id":"p1"}`, string(task.Payload()))
	assert.Len(t, opts, 3)

	_, opts, err = c.task(propagation.SyncExternalChannel{BusinessID: "b", ProductIDs: []string{"p1"}})
	require.NoError(t, err)
	assert.Len(t, opts, 3, "mismas opciones para todos los trabajos")

	c.cfg.Timeout = 0
	_, opts, err = c.task(propagation.RecomputeCost{ProductID: "p1"})
	require.NoError(t, err)
	assert.Len(t, opts, 2)
}

type stubHandler struct {
	err  error
	jobs []propagation.Job
}

func (h *stubHandler) Process(_ context.Context, job propagation.Job) error {
	h.jobs = append(h.jobs, job)
	return h.err
}

func newTestWorker(t *testing.T, h propagation.Handler, reg *prometheus.Registry) *Worker {
	t.Helper()
	mr := miniredis.RunT(t)
	w, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: mr.Addr()},
		Handler:   h,
		Metrics:   metrics.NewJobs(reg),
	})
	require.NoError(t, err)
	return w
}

func TestWorker_DespachaPorCodigo(t *testing.T) {
	h := &stubHandler{}
	w := newTestWorker(t, h, prometheus.NewRegistry())

	task := asynq.NewTask(string(propagation.CodeRecheckAvailability), []byte(`{"product_ids":["a","b"]}`))
	require.NoError(t, w.mux.ProcessTask(context.Background(), task))
	require.Len(t, h.jobs, 1)
	assert.Equal(t, propagation.RecheckAvailability{ProductIDs: []string{"a", "b"}}, h.jobs[0])
}

func TestWorker_PayloadInvalidoNoSeReintenta(t *testing.T) {
	w := newTestWorker(t, &stubHandler{}, prometheus.NewRegistry())

	err := w.handle(context.Background(), asynq.NewTask(string(propagation.CodeRecomputeCost), []byte(`{`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestWorker_UltimoIntentoDescarta(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := &stubHandler{err: errors.New("bd caída")}
	w := newTestWorker(t, h, reg)
	task := asynq.NewTask(string(propagation.CodeRecomputeCost), []byte(`{"product_id":"p1"}`))

	w.retries = func(context.Context) (int, int) { return 1, 3 }
	assert.Error(t, w.handle(context.Background(), task), "quedan reintentos")

	w.retries = func(context.Context) (int, int) { return 3, 3 }
	assert.NoError(t, w.handle(context.Background(), task))

	families, err := reg.Gather()
	require.NoError(t, err)
	var dropped float64
	for _, f := range families {
		if f.GetName() == "stock_ledger_jobs_dropped_total" {
			for _, m := range f.GetMetric() {
				dropped += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(1), dropped)
}

func TestNewWorker_SinHandler(t *testing.T) {
	_, err := NewWorker(WorkerConfig{})
	assert.Error(t, err)
}
