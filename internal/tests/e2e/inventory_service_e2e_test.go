// Package e2e provides end-to-end tests for the inventory service.
// The suite starts PostgreSQL with testcontainers-go, applies the embedded migrations
// and serves the real application handler from an httptest.Server.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/grocerytracker/internal/app"
	"github.com/abgdnv/grocerytracker/internal/config"
	"github.com/abgdnv/grocerytracker/internal/service"
	"github.com/abgdnv/grocerytracker/internal/store"
	pkgconfig "github.com/abgdnv/grocerytracker/pkg/config"
	"github.com/abgdnv/grocerytracker/pkg/messaging"
	"github.com/abgdnv/grocerytracker/pkg/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// skipE2ETests is the environment variable that can be set to skip E2E tests.
const skipE2ETests = "INVENTORY_SVC_SKIP_E2E_TESTS"

const allowedOrigin = "http://localhost:3000"

type InventoryServiceE2ESuite struct {
	suite.Suite
	pgContainer   *postgres.PostgresContainer
	dbPool        *pgxpool.Pool
	server        *httptest.Server
	httpClient    *http.Client
	deps          *app.Dependencies
	meterProvider *telemetry.MeterProvider
	logger        *slog.Logger
	ctx           context.Context
}

func testConfig() *config.Config {
	var cfg config.Config

	cfg.HTTPServer.MaxHeaderBytes = 1 << 20
	cfg.HTTPServer.Timeout.Read = 10 * time.Minute
	cfg.HTTPServer.Timeout.Write = 10 * time.Minute
	cfg.HTTPServer.Timeout.Idle = 60 * time.Minute
	cfg.HTTPServer.Timeout.ReadHeader = 5 * time.Minute

	cfg.CORS.AllowedOrigins = pkgconfig.DefaultAllowedOrigins
	cfg.CORS.AllowCredentials = true
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Telemetry.Metrics.Path = "/metrics"
	cfg.Health.Interval = time.Minute
	cfg.Health.Timeout = 2 * time.Second

	return &cfg
}

func (s *InventoryServiceE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("inventory"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	require.NoError(s.T(), store.Migrate(connStr), "Failed to apply migrations")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgx pool")

	for i := range 10 {
		s.logger.Info("Pinging E2E PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// the service resolves its meter at construction, so the provider comes first
	s.meterProvider, err = telemetry.NewMeterProvider("inventory-service-e2e")
	require.NoError(s.T(), err, "Failed to create meter provider")

	cfg := testConfig()
	s.deps = app.SetupDependencies(s.dbPool, messaging.NoopPublisher{}, cfg, s.logger)
	s.deps.MetricsHandler = s.meterProvider.Handler

	s.server = httptest.NewServer(app.SetupHttpHandler(s.deps, cfg))
	s.httpClient = s.server.Client()
	s.logger.Info("E2E test server started", "url", s.server.URL)
}

func (s *InventoryServiceE2ESuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.meterProvider != nil {
		_ = s.meterProvider.Shutdown(s.ctx)
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("Failed to terminate E2E PostgreSQL container", "error", err)
		}
	}
}

func (s *InventoryServiceE2ESuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE sales, products RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate tables")
}

func TestInventoryServiceE2E(t *testing.T) {
	if os.Getenv(skipE2ETests) == "1" {
		t.Skip("Skipping E2E tests based on " + skipE2ETests + " env var")
	}
	suite.Run(t, new(InventoryServiceE2ESuite))
}

// ---------- helpers ----------

type productPayload struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int32   `json:"stock"`
}

type salePayload struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

// doRequest performs a request against the test server and returns the body and status code.
func (s *InventoryServiceE2ESuite) doRequest(method, path string, payload any, headers ...string) (*http.Response, []byte) {
	s.T().Helper()
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		require.NoError(s.T(), err)
		body = bytes.NewBuffer(payloadBytes)
	}

	req, err := http.NewRequestWithContext(s.ctx, method, s.server.URL+path, body)
	require.NoError(s.T(), err, "Failed to create HTTP request")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err, "HTTP request failed")
	defer func() {
		require.NoError(s.T(), resp.Body.Close(), "Failed to close response body")
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err, "Failed to read response body")
	return resp, bodyBytes
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), "Failed to decode response: %s", body)
	return v
}

func (s *InventoryServiceE2ESuite) createProduct(p productPayload) service.ProductDto {
	s.T().Helper()
	resp, body := s.doRequest(http.MethodPost, "/products/", p)
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode, string(body))
	return decode[service.ProductDto](s.T(), body)
}

func (s *InventoryServiceE2ESuite) sell(productID int64, quantity int32) (int, []byte) {
	s.T().Helper()
	resp, body := s.doRequest(http.MethodPost, "/sales/", salePayload{ProductID: productID, Quantity: quantity})
	return resp.StatusCode, body
}

// ---------- tests ----------

func (s *InventoryServiceE2ESuite) TestRiceScenario() {
	// given
	rice := s.createProduct(productPayload{Name: "Rice", Price: 2.5, Stock: 10})

	// when
	status, body := s.sell(rice.ID, 3)

	// then
	require.Equal(s.T(), http.StatusCreated, status, string(body))
	sale := decode[service.SaleDto](s.T(), body)
	assert.Equal(s.T(), rice.ID, sale.ProductID)
	assert.Equal(s.T(), int32(3), sale.Quantity)
	assert.InDelta(s.T(), 7.5, sale.TotalPrice, 0.001)
	assert.False(s.T(), sale.Date.IsZero())

	resp, body := s.doRequest(http.MethodGet, "/products/", nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	products := decode[[]service.ProductDto](s.T(), body)
	require.Len(s.T(), products, 1)
	assert.Equal(s.T(), int32(7), products[0].Stock)

	// when: more than what is left
	status, body = s.sell(rice.ID, 8)

	// then
	assert.Equal(s.T(), http.StatusConflict, status, string(body))
	resp, body = s.doRequest(http.MethodGet, fmt.Sprintf("/products/%d", rice.ID), nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), int32(7), decode[service.ProductDto](s.T(), body).Stock)

	resp, body = s.doRequest(http.MethodGet, "/sales/", nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Len(s.T(), decode[[]service.SaleDto](s.T(), body), 1)
}

func (s *InventoryServiceE2ESuite) TestCreateSale_Errors() {
	rice := s.createProduct(productPayload{Name: "Rice", Price: 2.5, Stock: 1})

	testCases := []struct {
		name         string
		payload      any
		expectedCode int
	}{
		{name: "unknown product", payload: salePayload{ProductID: 999, Quantity: 1}, expectedCode: http.StatusNotFound},
		{name: "insufficient stock", payload: salePayload{ProductID: rice.ID, Quantity: 2}, expectedCode: http.StatusConflict},
		{name: "zero quantity", payload: salePayload{ProductID: rice.ID, Quantity: 0}, expectedCode: http.StatusBadRequest},
		{name: "malformed body", payload: "not an object", expectedCode: http.StatusBadRequest},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			// when
			resp, body := s.doRequest(http.MethodPost, "/sales/", tc.payload)

			// then
			assert.Equal(s.T(), tc.expectedCode, resp.StatusCode, string(body))
		})
	}
}

func (s *InventoryServiceE2ESuite) TestProductLifecycle() {
	// given
	created := s.createProduct(productPayload{Name: "Sugar", Price: 1.2, Stock: 5})

	// when
	resp, body := s.doRequest(http.MethodPut, fmt.Sprintf("/products/%d", created.ID), productPayload{Name: "Brown sugar", Price: 1.5, Stock: 8})

	// then
	require.Equal(s.T(), http.StatusOK, resp.StatusCode, string(body))
	updated := decode[service.ProductDto](s.T(), body)
	assert.Equal(s.T(), service.ProductDto{ID: created.ID, Name: "Brown sugar", Price: 1.5, Stock: 8}, updated)

	// when
	resp, body = s.doRequest(http.MethodDelete, fmt.Sprintf("/products/%d", created.ID), nil)

	// then
	require.Equal(s.T(), http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(s.T(), updated, decode[service.ProductDto](s.T(), body))

	resp, _ = s.doRequest(http.MethodGet, fmt.Sprintf("/products/%d", created.ID), nil)
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
	resp, _ = s.doRequest(http.MethodPut, fmt.Sprintf("/products/%d", created.ID), productPayload{Name: "x", Price: 1, Stock: 1})
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
	resp, _ = s.doRequest(http.MethodDelete, fmt.Sprintf("/products/%d", created.ID), nil)
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
}

func (s *InventoryServiceE2ESuite) TestCreateProduct_Validation() {
	testCases := []struct {
		name    string
		payload any
	}{
		{name: "empty name", payload: productPayload{Name: "", Price: 1, Stock: 1}},
		{name: "negative price", payload: productPayload{Name: "Tea", Price: -1, Stock: 1}},
		{name: "negative stock", payload: productPayload{Name: "Tea", Price: 1, Stock: -1}},
		{name: "missing stock", payload: map[string]any{"name": "Tea", "price": 1}},
		{name: "price beyond column range", payload: productPayload{Name: "Gold", Price: 1e13, Stock: 1}},
		{name: "fractions of a cent", payload: productPayload{Name: "Tea", Price: 10.005, Stock: 1}},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp, body := s.doRequest(http.MethodPost, "/products/", tc.payload)

			assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode, string(body))
		})
	}
	resp, body := s.doRequest(http.MethodGet, "/products/", nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Empty(s.T(), decode[[]service.ProductDto](s.T(), body))
}

func (s *InventoryServiceE2ESuite) TestTopProducts() {
	// given
	rice := s.createProduct(productPayload{Name: "Rice", Price: 2.5, Stock: 100})
	dal := s.createProduct(productPayload{Name: "Dal", Price: 3, Stock: 100})
	s.createProduct(productPayload{Name: "Salt", Price: 0.5, Stock: 100})
	for _, sale := range []salePayload{{rice.ID, 2}, {dal.ID, 5}, {rice.ID, 1}} {
		status, body := s.sell(sale.ProductID, sale.Quantity)
		require.Equal(s.T(), http.StatusCreated, status, string(body))
	}

	// when
	resp, body := s.doRequest(http.MethodGet, "/top-products?limit=1", nil)

	// then
	require.Equal(s.T(), http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(s.T(), []service.TopProductDto{{ID: dal.ID, Name: "Dal", TotalSold: 5}}, decode[[]service.TopProductDto](s.T(), body))

	resp, body = s.doRequest(http.MethodGet, "/top-products", nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), []service.TopProductDto{
		{ID: dal.ID, Name: "Dal", TotalSold: 5},
		{ID: rice.ID, Name: "Rice", TotalSold: 3},
	}, decode[[]service.TopProductDto](s.T(), body))

	resp, _ = s.doRequest(http.MethodGet, "/top-products?limit=0", nil)
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
}

func (s *InventoryServiceE2ESuite) TestCORS() {
	testCases := []struct {
		name          string
		origin        string
		expectedAllow string
	}{
		{name: "allowed origin", origin: allowedOrigin, expectedAllow: allowedOrigin},
		{name: "unknown origin", origin: "https://evil.example.com", expectedAllow: ""},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp, _ := s.doRequest(http.MethodOptions, "/products/", nil,
				"Origin", tc.origin,
				"Access-Control-Request-Method", http.MethodPost,
			)

			assert.Equal(s.T(), tc.expectedAllow, resp.Header.Get("Access-Control-Allow-Origin"))
		})
	}
}

func (s *InventoryServiceE2ESuite) TestProbes() {
	// given
	require.NoError(s.T(), s.deps.Monitor.Check(s.ctx))

	// when
	live, _ := s.doRequest(http.MethodGet, "/healthz", nil)
	ready, body := s.doRequest(http.MethodGet, "/readyz", nil)

	// then
	assert.Equal(s.T(), http.StatusOK, live.StatusCode)
	assert.Equal(s.T(), http.StatusOK, ready.StatusCode)
	assert.JSONEq(s.T(), `{"status":"ready"}`, string(body))
}

func (s *InventoryServiceE2ESuite) TestMetrics() {
	// given
	rice := s.createProduct(productPayload{Name: "Rice", Price: 2.5, Stock: 1})
	status, _ := s.sell(rice.ID, 1)
	require.Equal(s.T(), http.StatusCreated, status)
	status, _ = s.sell(rice.ID, 1)
	require.Equal(s.T(), http.StatusConflict, status)

	// when
	resp, body := s.doRequest(http.MethodGet, "/metrics", nil)

	// then
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Contains(s.T(), string(body), "sales_created_total")
	assert.Contains(s.T(), string(body), `reason="insufficient_stock"`)
}
