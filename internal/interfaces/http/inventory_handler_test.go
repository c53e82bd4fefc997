package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/settings"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
)

type server struct {
	app   *fiber.App
	store *memory.Store
	redis *miniredis.Miniredis
}

func newServer(t *testing.T) *server {
	t.Helper()
	st := memory.NewStore()
	st.PutArea(&entity.Area{ID: "A", BusinessID: testBusinessID, Name: "Bodega A", Type: entity.AreaTypeStock})
	st.PutArea(&entity.Area{ID: "B", BusinessID: testBusinessID, Name: "Bodega B", Type: entity.AreaTypeStock})
	alert := decimal.NewFromInt(10)
	st.PutProduct(&entity.Product{ID: "p1", BusinessID: testBusinessID, Name: "Harina", Type: entity.ProductTypeStock})
	st.PutProduct(&entity.Product{ID: "p2", BusinessID: testBusinessID, Name: "Azúcar", Type: entity.ProductTypeStock, AlertLimit: &alert})

	resolver := settings.NewResolver(st.Settings(), settings.Settings{Precision: 4, CostCurrency: "USD"})
	ledger := inventory.NewLedgerUseCase(inventory.LedgerDeps{
		TxRunner:     st,
		Products:     st.Products(),
		Areas:        st.Areas(),
		Dependencies: st.Dependencies(),
		Settings:     resolver,
	})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:        ledger,
		Query:         inventory.NewQueryUseCase(st.Movements(), st.Balances(), st.Products()),
		Replenishment: inventory.NewReplenishmentUseCase(st.Products()),
		Idempotency:   cache.NewIdempotencyStore(rdb, time.Hour),
		Metrics:       prometheus.NewRegistry(),
		JWTSecret:     testJWTSecret,
		ServiceName:   "stock-ledger-test",
	})
	return &server{app: app, store: st, redis: mr}
}

func (s *server) do(t *testing.T, method, path, role, body string, headers ...string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "-" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else if len(raw) > 0 && raw[0] == '[' {
		var list []interface{}
		require.NoError(t, json.Unmarshal(raw, &list))
		out["items"] = list
	}
	return resp.StatusCode, out
}

func firstMovementID(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	rows, ok := body["movements"].([]interface{})
	require.True(t, ok, "la respuesta debe incluir movements")
	require.NotEmpty(t, rows)
	return rows[0].(map[string]interface{})["id"].(string)
}

const entryBody = `{"operation":"ENTRY","product_id":"p1","area_id":"A","quantity":10,"price":5}`

func TestHandler_EntradaYConsultaDeStock(t *testing.T) {
	s := newServer(t)

	status, body := s.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleBodeguero, entryBody)
	require.Equal(t, http.StatusCreated, status, body)
	assert.EqualValues(t, 1, body["total"])
	id := firstMovementID(t, body)

	status, body = s.do(t, http.MethodGet, "/api/inventory/stock?product_id=p1&area_id=A", apphttp.RoleVendedor, "")
	require.Equal(t, http.StatusOK, status)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "10", items[0].(map[string]interface{})["quantity"])

	status, body = s.do(t, http.MethodGet, "/api/inventory/movements/"+id, apphttp.RoleVendedor, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ENTRY", body["operation"])
	assert.Equal(t, testUserID, body["created_by"])

	status, body = s.do(t, http.MethodGet, "/api/inventory/products/p1/movements?limit=5", apphttp.RoleVendedor, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["movements"], 1)

	status, body = s.do(t, http.MethodGet, "/api/inventory/consistency?product_id=p1&area_id=A", apphttp.RoleAdmin, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["consistent"])
}

func TestHandler_TrasladoYReversion(t *testing.T) {
	s := newServer(t)
	status, _ := s.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleAdmin, entryBody)
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(t, http.MethodPost, "/api/inventory/transfers", apphttp.RoleBodeguero,
		`{"area_id":"A","moved_to_id":"B","product_id":"p1","quantity":4}`)
	require.Equal(t, http.StatusCreated, status, body)
	root := firstMovementID(t, body)

	row, err := s.store.Balances().Get(t.Context(), "p1", "B")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "4", row.Quantity.String())

	status, body = s.do(t, http.MethodPost, "/api/inventory/movements/"+root+"/reverse", apphttp.RoleAdmin, "")
	require.Equal(t, http.StatusCreated, status, body)

	row, err = s.store.Balances().Get(t.Context(), "p1", "A")
	require.NoError(t, err)
	assert.Equal(t, "10", row.Quantity.String())

	status, body = s.do(t, http.MethodPost, "/api/inventory/movements/"+root+"/reverse", apphttp.RoleAdmin, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_REVERSED", body["code"])
}

func TestHandler_ErroresDeValidacion(t *testing.T) {
	s := newServer(t)

	cases := []struct {
		name string
		path string
		body string
		code string
	}{
		{"sin producto", "/api/inventory/movements", `{"operation":"ENTRY","area_id":"A","quantity":1}`, "VALIDATION"},
		{"operación no admitida", "/api/inventory/movements", `{"operation":"MOVEMENT","product_id":"p1","area_id":"A","quantity":1}`, "VALIDATION"},
		{"cantidad cero", "/api/inventory/movements", `{"operation":"OUT","product_id":"p1","area_id":"A","quantity":0}`, "VALIDATION"},
		{"misma área", "/api/inventory/transfers", `{"area_id":"A","moved_to_id":"A","product_id":"p1","quantity":1}`, "VALIDATION"},
		{"lote vacío", "/api/inventory/movements/bulk", `{"operation":"OUT","stock_area_id":"A","products":[]}`, "VALIDATION"},
		{"cuerpo inválido", "/api/inventory/movements", `{"operation":`, "INVALID_BODY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodPost, tc.path, apphttp.RoleAdmin, tc.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tc.code, body["code"])
			assert.EqualValues(t, http.StatusBadRequest, body["status"])
		})
	}

	status, body := s.do(t, http.MethodGet, "/api/inventory/consistency", apphttp.RoleAdmin, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])

	status, body = s.do(t, http.MethodPost, "/api/inventory/movements/no-existe/reverse", apphttp.RoleAdmin, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestHandler_Roles(t *testing.T) {
	s := newServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/inventory/transfers", apphttp.RoleVendedor,
		`{"area_id":"A","moved_to_id":"B","product_id":"p1","quantity":1}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPost, "/api/inventory/movements/x/reverse", apphttp.RoleBodeguero, "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodGet, "/api/inventory/stock", "-", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHandler_IdempotencyKey(t *testing.T) {
	s := newServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleAdmin, entryBody, apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleAdmin, entryBody, apphttp.HeaderIdempotencyKey, "k-1")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "IDEMPOTENCY_KEY_IN_USE", body["code"])

	// Una petición fallida libera la llave.
	status, _ = s.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleAdmin, `{"operation":"ENTRY"}`, apphttp.HeaderIdempotencyKey, "k-2")
	require.Equal(t, http.StatusBadRequest, status)
	status, _ = s.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleAdmin, entryBody, apphttp.HeaderIdempotencyKey, "k-2")
	assert.Equal(t, http.StatusCreated, status)

	rows, err := s.store.Movements().ListByProduct(t.Context(), "p1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestHandler_IdempotencyRedisCaido(t *testing.T) {
	s := newServer(t)
	s.redis.Close()

	status, body := s.do(t, http.MethodPost, "/api/inventory/movements", apphttp.RoleAdmin, entryBody, apphttp.HeaderIdempotencyKey, "k-1")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "IDEMPOTENCY_CHECK_FAILED", body["code"])
}

func TestHandler_ListaDeReposicion(t *testing.T) {
	s := newServer(t)

	status, body := s.do(t, http.MethodGet, "/api/inventory/replenishment-list", apphttp.RoleAdmin, "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])
	list := body["replenishments"].([]interface{})
	first := list[0].(map[string]interface{})
	assert.Equal(t, "p2", first["product_id"])
	assert.Equal(t, "15", first["suggested_order_qty"])
}

func TestHandler_HealthYMetrics(t *testing.T) {
	s := newServer(t)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
