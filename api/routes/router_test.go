package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openlims/lims-backend/internal/auth"
	component "github.com/openlims/lims-backend/internal/components"
	transaction "github.com/openlims/lims-backend/internal/transactions"
	user "github.com/openlims/lims-backend/internal/users"
	pkgauth "github.com/openlims/lims-backend/pkg/auth"
	"github.com/openlims/lims-backend/pkg/config"
	"github.com/openlims/lims-backend/pkg/db/models"
	"github.com/openlims/lims-backend/pkg/metrics"
)

type testTxRunner struct {
	conn *gorm.DB
}

func (t testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.conn.WithContext(ctx).Transaction(fn)
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error { return s.err }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Env:         config.AppEnvTest,
			Port:        "5000",
			ServiceName: "Electronics Lab Inventory LIMS",
		},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "lims-backend",
			ExpirationMinutes: 10,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    32768,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		Admin: config.AdminConfig{
			Username: "admin",
			Email:    "admin@lims.local",
			Password: "bootstrap-secret",
		},
		CORS:       config.CORSConfig{Origins: []string{"*"}},
		Pagination: config.PaginationConfig{PerPage: 20, MaxPerPage: 100},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	router, cfg, _ := newTestEnv(t)
	return router, cfg
}

func newTestEnv(t *testing.T) (http.Handler, *config.Config, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Component{}, &models.User{}, &models.Transaction{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	t.Cleanup(func() {
		conn.Exec("DELETE FROM transactions")
		conn.Exec("DELETE FROM components")
		conn.Exec("DELETE FROM users")
	})
	if err := component.SeedIfEmpty(context.Background(), conn, nil); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	cfg := testConfig()
	registry := prometheus.NewRegistry()

	componentService := component.NewService(
		component.NewRepository(conn),
		transaction.NewRepository(conn),
		testTxRunner{conn: conn},
		cfg.Pagination,
	)
	authService := auth.NewService(user.NewRepository(conn), cfg.JWT, nil)

	router := NewRouter(Deps{
		Config:           cfg,
		Logger:           nil,
		DB:               stubPinger{},
		Redis:            nil,
		AuthService:      authService,
		ComponentService: componentService,
		HTTPMetrics:      metrics.NewHTTPMetrics(registry),
		MetricsGatherer:  registry,
	})
	return router, cfg, conn
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHomePage(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := doRequest(t, router, http.MethodGet, "/", "")

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "<html") {
		t.Fatal("expected html body")
	}
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := doRequest(t, router, http.MethodGet, "/health", "")

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" || body["timestamp"] == "" {
		t.Fatalf("unexpected health body %v", body)
	}
}

func TestReadinessEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := doRequest(t, router, http.MethodGet, "/health/ready", "")

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ready" || body.Checks["database"] != "ok" || body.Checks["redis"] != "disabled" {
		t.Fatalf("unexpected readiness body %+v", body)
	}
}

func TestUnknownEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := doRequest(t, router, http.MethodGet, "/nope", "")

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Endpoint not found" {
		t.Fatalf("unexpected 404 body %v", body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := doRequest(t, router, http.MethodDelete, "/health", "")

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Method not allowed") {
		t.Fatalf("unexpected 405 body %s", resp.Body.String())
	}
}

func TestLoginFlow(t *testing.T) {
	router, cfg := newTestRouter(t)

	missing := doRequest(t, router, http.MethodPost, "/login", `{"username":"admin"}`)
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", missing.Code)
	}
	if !strings.Contains(missing.Body.String(), "Username and password required") {
		t.Fatalf("unexpected 400 body %s", missing.Body.String())
	}

	ok := doRequest(t, router, http.MethodPost, "/login", `{"username":"admin","password":"anything"}`)
	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", ok.Code, ok.Body.String())
	}

	var body struct {
		Success bool `json:"success"`
		User    struct {
			Username string `json:"username"`
		} `json:"user"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(ok.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.User.Username != "admin" || body.Token == "" {
		t.Fatalf("unexpected login body %+v", body)
	}

	if _, err := pkgauth.ParseAccessToken(cfg.JWT, body.Token); err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
}

func TestLoginWithSeededAdmin(t *testing.T) {
	router, cfg, conn := newTestEnv(t)
	ctx := context.Background()

	// Burn ID 1 so the stored identity is distinguishable from the fallback.
	filler := &models.User{Username: "filler", Email: "filler@lab.local", PasswordHash: "x", Role: "user", IsActive: false}
	if err := conn.Create(filler).Error; err != nil {
		t.Fatalf("creating filler user: %v", err)
	}

	if err := user.SeedAdmin(ctx, conn, cfg.Admin, cfg.Password, nil); err != nil {
		t.Fatalf("seeding admin: %v", err)
	}
	stored, err := user.NewRepository(conn).FindActiveByUsername(ctx, "admin")
	if err != nil || stored == nil {
		t.Fatalf("seeded admin not found: %v", err)
	}
	if stored.ID == 1 {
		t.Fatal("fixture broken: admin must not take the fallback id")
	}

	ok := doRequest(t, router, http.MethodPost, "/login", `{"username":"admin","password":"bootstrap-secret"}`)
	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", ok.Code, ok.Body.String())
	}
	var body struct {
		User struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	if err := json.NewDecoder(ok.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.User.ID != stored.ID || body.User.Role != "admin" {
		t.Fatalf("expected stored admin identity, got %+v", body.User)
	}

	wrong := doRequest(t, router, http.MethodPost, "/login", `{"username":"admin","password":"nope"}`)
	if wrong.Code != http.StatusOK {
		t.Fatalf("expected permissive 200 got %d", wrong.Code)
	}
	var degraded struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(wrong.Body).Decode(&degraded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if degraded.User.ID != 1 {
		t.Fatalf("wrong password should fall back to the stub identity, got %+v", degraded.User)
	}
}

func TestComponentsListingSeedFixture(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := doRequest(t, router, http.MethodGet, "/components", "")

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}

	var body struct {
		Success       bool `json:"success"`
		TotalCount    int  `json:"total_count"`
		LowStockCount int  `json:"low_stock_count"`
		Components    []struct {
			Name     string `json:"name"`
			LowStock bool   `json:"low_stock"`
		} `json:"components"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.TotalCount != 3 || body.LowStockCount != 1 {
		t.Fatalf("unexpected listing envelope %+v", body)
	}

	lowStock := map[string]bool{}
	for _, item := range body.Components {
		lowStock[item.Name] = item.LowStock
	}
	if !lowStock["LED Red 5mm"] {
		t.Fatal("LED should be low stock")
	}
	if lowStock["Arduino Uno R3"] || lowStock["Resistor 220Ω"] {
		t.Fatal("only the LED should be low stock")
	}
}

func TestMutatingRoutesRequireAuth(t *testing.T) {
	router, cfg := newTestRouter(t)

	unauthed := doRequest(t, router, http.MethodPost, "/components", `{"name":"X","part_number":"X-1","category":"Misc"}`)
	if unauthed.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", unauthed.Code)
	}

	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   1,
		Username: "admin",
		Role:     "admin",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/components", bytes.NewReader([]byte(`{"name":"Capacitor","part_number":"CAP-10UF","category":"Passive Components","quantity":5,"low_threshold":2}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestStockAdjustmentEndToEnd(t *testing.T) {
	router, cfg := newTestRouter(t)

	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   1,
		Username: "admin",
		Role:     "admin",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	list := doRequest(t, router, http.MethodGet, "/components?q=LED", "")
	var listing struct {
		Components []struct {
			ID       uint `json:"id"`
			Quantity int  `json:"quantity"`
		} `json:"components"`
	}
	if err := json.NewDecoder(list.Body).Decode(&listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing.Components) != 1 {
		t.Fatalf("expected the LED, got %+v", listing.Components)
	}
	ledID := listing.Components[0].ID

	req := httptest.NewRequest(http.MethodPost, "/components/"+itoa(ledID)+"/stock", bytes.NewReader([]byte(`{"type":"add","quantity":20,"notes":"restock"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	var updated struct {
		Component struct {
			Quantity int  `json:"quantity"`
			LowStock bool `json:"low_stock"`
		} `json:"component"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Component.Quantity != 23 || updated.Component.LowStock {
		t.Fatalf("unexpected component state %+v", updated.Component)
	}

	ledgerReq := httptest.NewRequest(http.MethodGet, "/components/"+itoa(ledID)+"/transactions", nil)
	ledgerReq.Header.Set("Authorization", "Bearer "+token)
	ledgerResp := httptest.NewRecorder()
	router.ServeHTTP(ledgerResp, ledgerReq)

	if ledgerResp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", ledgerResp.Code)
	}
	var ledger struct {
		TotalCount   int `json:"total_count"`
		Transactions []struct {
			TransactionType string `json:"transaction_type"`
			NewQuantity     int    `json:"new_quantity"`
		} `json:"transactions"`
	}
	if err := json.NewDecoder(ledgerResp.Body).Decode(&ledger); err != nil {
		t.Fatalf("decode ledger: %v", err)
	}
	if ledger.TotalCount != 1 || ledger.Transactions[0].NewQuantity != 23 {
		t.Fatalf("unexpected ledger %+v", ledger)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, http.MethodGet, "/components", "")
	resp := doRequest(t, router, http.MethodGet, "/metrics", "")

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "http_requests_total") {
		t.Fatal("expected http_requests_total in metrics output")
	}
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
