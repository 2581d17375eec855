package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"personal-budget/internal/database"
	"personal-budget/internal/metrics"
	"personal-budget/internal/repository"
	"personal-budget/internal/service"
)

const testOrigin = "http://localhost:5173"

func setupServer(t *testing.T, settings ServerSettings) (http.Handler, *sql.DB) {
	t.Helper()
	connector, err := database.Connect(context.Background(), "sqlite", filepath.Join(t.TempDir(), "budget.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { connector.Close() })
	require.NoError(t, connector.Migrate())

	operationRepository := repository.NewSQLiteOperationRepository(connector.Database, time.Second)
	server := NewServer(
		service.NewOperationService(operationRepository),
		service.NewBalanceService(operationRepository),
		settings,
		zap.NewNop(),
	)
	return server.RegisterRoutes(), connector.Database
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	handler, _ := setupServer(t, ServerSettings{AllowedOrigin: testOrigin})
	return handler
}

func doRequest(t *testing.T, handler http.Handler, method string, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, target, nil)
	} else {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeObject(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded), "body: %s", recorder.Body.String())
	return decoded
}

func decodeList(t *testing.T, recorder *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded), "body: %s", recorder.Body.String())
	return decoded
}

func requireBalance(t *testing.T, handler http.Handler, want float64) {
	t.Helper()
	recorder := doRequest(t, handler, http.MethodGet, "/balance", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, want, decodeObject(t, recorder)["balance"])
}

func TestBalanceEmptyStore(t *testing.T) {
	handler := newTestHandler(t)

	recorder := doRequest(t, handler, http.MethodGet, "/balance", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"balance":0}`, recorder.Body.String())
}

func TestCreateOperation(t *testing.T) {
	handler := newTestHandler(t)

	recorder := doRequest(t, handler, http.MethodPost, "/operations", `{"type":"income","amount":1000.50,"category":"salary","date":"2024-01-01"}`)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	created := decodeObject(t, recorder)
	assert.Equal(t, float64(1), created["id"])
	assert.Equal(t, "income", created["type"])
	assert.Equal(t, 1000.5, created["amount"])
	assert.Equal(t, "salary", created["category"])
	assert.Equal(t, "2024-01-01", created["date"])

	requireBalance(t, handler, 1000.5)
}

func TestCreateOperationRejections(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"unknown type", `{"type":"savings","amount":50,"category":"x","date":"2024-01-03"}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"type":"income","amount":-5,"category":"x","date":"2024-01-03"}`, http.StatusUnprocessableEntity},
		{"non numeric amount", `{"type":"income","amount":"lots","category":"x","date":"2024-01-03"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"type":"income","amount":5,"category":"x","date":"03/01/2024"}`, http.StatusUnprocessableEntity},
		{"missing category", `{"type":"income","amount":5,"date":"2024-01-03"}`, http.StatusUnprocessableEntity},
		{"missing date", `{"type":"income","amount":5,"category":"x"}`, http.StatusUnprocessableEntity},
		{"type as number", `{"type":1,"amount":5,"category":"x","date":"2024-01-03"}`, http.StatusUnprocessableEntity},
		{"huge exponent", `{"type":"income","amount":1e50000000,"category":"x","date":"2024-01-01"}`, http.StatusUnprocessableEntity},
		{"too many decimal places", `{"type":"income","amount":0.000000001,"category":"x","date":"2024-01-01"}`, http.StatusUnprocessableEntity},
		{"malformed json", `{"type":`, http.StatusBadRequest},
		{"empty body", ``, http.StatusBadRequest},
		{"oversized body", `{"type":"income","amount":5,"category":"` + strings.Repeat("x", maxRequestBodyBytes) + `","date":"2024-01-03"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rejectedBefore := testutil.ToFloat64(metrics.OperationsRejected)

			recorder := doRequest(t, handler, http.MethodPost, "/operations", tt.body)
			assert.Equal(t, tt.wantStatus, recorder.Code, recorder.Body.String())
			assert.NotEmpty(t, decodeObject(t, recorder)["detail"])

			wantRejected := rejectedBefore
			if tt.wantStatus == http.StatusUnprocessableEntity {
				wantRejected++
			}
			assert.Equal(t, wantRejected, testutil.ToFloat64(metrics.OperationsRejected))
		})
	}

	listRecorder := doRequest(t, handler, http.MethodGet, "/operations", "")
	require.Equal(t, http.StatusOK, listRecorder.Code)
	assert.Empty(t, decodeList(t, listRecorder))
	requireBalance(t, handler, 0)
}

func TestCreateOperationRejectsHugeExponentQuickly(t *testing.T) {
	handler := newTestHandler(t)

	startedAt := time.Now()
	recorder := doRequest(t, handler, http.MethodPost, "/operations", `{"type":"income","amount":1e2000000000,"category":"x","date":"2024-01-01"}`)
	assert.Less(t, time.Since(startedAt), 5*time.Second)

	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code, recorder.Body.String())
	assert.Contains(t, decodeObject(t, recorder)["detail"], "amount must have at most 15 integer digits")
	requireBalance(t, handler, 0)
}

func TestListOperationsQueryParameters(t *testing.T) {
	handler := newTestHandler(t)

	for _, category := range []string{"a", "b", "c"} {
		recorder := doRequest(t, handler, http.MethodPost, "/operations", `{"type":"expense","amount":1,"category":"`+category+`","date":"2024-01-01"}`)
		require.Equal(t, http.StatusCreated, recorder.Code)
	}

	empty := doRequest(t, handler, http.MethodGet, "/operations?skip=10", "")
	require.Equal(t, http.StatusOK, empty.Code)
	assert.Equal(t, "[]\n", empty.Body.String())

	page := decodeList(t, doRequest(t, handler, http.MethodGet, "/operations?skip=1&limit=1", ""))
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0]["category"])

	all := decodeList(t, doRequest(t, handler, http.MethodGet, "/operations", ""))
	assert.Len(t, all, 3)

	for _, target := range []string{"/operations?skip=-1", "/operations?limit=abc", "/operations?limit=-3"} {
		recorder := doRequest(t, handler, http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code, target)
	}
}

func TestDeleteOperation(t *testing.T) {
	handler := newTestHandler(t)

	created := decodeObject(t, doRequest(t, handler, http.MethodPost, "/operations", `{"type":"expense","amount":300,"category":"rent","date":"2024-01-02"}`))

	deleted := doRequest(t, handler, http.MethodDelete, "/operations/1", "")
	require.Equal(t, http.StatusOK, deleted.Code)
	assert.Equal(t, created, decodeObject(t, deleted))

	missing := doRequest(t, handler, http.MethodDelete, "/operations/1", "")
	require.Equal(t, http.StatusNotFound, missing.Code)
	assert.JSONEq(t, `{"detail":"Operation not found"}`, missing.Body.String())

	invalid := doRequest(t, handler, http.MethodDelete, "/operations/rent", "")
	assert.Equal(t, http.StatusUnprocessableEntity, invalid.Code)
}

func TestExampleScenarioOverHTTP(t *testing.T) {
	handler := newTestHandler(t)

	salary := doRequest(t, handler, http.MethodPost, "/operations", `{"type":"income","amount":1000,"category":"salary","date":"2024-01-01"}`)
	require.Equal(t, http.StatusCreated, salary.Code)
	requireBalance(t, handler, 1000)

	rent := doRequest(t, handler, http.MethodPost, "/operations", `{"type":"expense","amount":300,"category":"rent","date":"2024-01-02"}`)
	require.Equal(t, http.StatusCreated, rent.Code)
	requireBalance(t, handler, 700)

	savings := doRequest(t, handler, http.MethodPost, "/operations", `{"type":"savings","amount":50,"category":"x","date":"2024-01-03"}`)
	require.Equal(t, http.StatusUnprocessableEntity, savings.Code)
	requireBalance(t, handler, 700)

	rentIdentifier := decodeObject(t, rent)["id"].(float64)
	deleted := doRequest(t, handler, http.MethodDelete, "/operations/"+formatIdentifier(rentIdentifier), "")
	require.Equal(t, http.StatusOK, deleted.Code)
	requireBalance(t, handler, 1000)

	remaining := decodeList(t, doRequest(t, handler, http.MethodGet, "/operations?skip=0&limit=100", ""))
	require.Len(t, remaining, 1)
	assert.Equal(t, "salary", remaining[0]["category"])
	assert.Equal(t, "income", remaining[0]["type"])
}

func formatIdentifier(identifier float64) string {
	encoded, _ := json.Marshal(int64(identifier))
	return string(encoded)
}

func TestStorageFailureIsOpaque(t *testing.T) {
	handler, database := setupServer(t, ServerSettings{AllowedOrigin: testOrigin})
	require.NoError(t, database.Close())

	recorder := doRequest(t, handler, http.MethodGet, "/balance", "")
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.JSONEq(t, `{"detail":"internal server error"}`, recorder.Body.String())
}

func TestCORSPolicy(t *testing.T) {
	handler := newTestHandler(t)

	request := httptest.NewRequest(http.MethodGet, "/balance", nil)
	request.Header.Set("Origin", testOrigin)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, testOrigin, recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", recorder.Header().Get("Access-Control-Allow-Credentials"))

	foreignRequest := httptest.NewRequest(http.MethodGet, "/balance", nil)
	foreignRequest.Header.Set("Origin", "http://evil.example")
	foreignRecorder := httptest.NewRecorder()
	handler.ServeHTTP(foreignRecorder, foreignRequest)
	assert.Empty(t, foreignRecorder.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/operations/1", nil)
	preflight.Header.Set("Origin", testOrigin)
	preflight.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	preflight.Header.Set("Access-Control-Request-Headers", "X-Custom-Header")
	preflightRecorder := httptest.NewRecorder()
	handler.ServeHTTP(preflightRecorder, preflight)
	assert.Less(t, preflightRecorder.Code, 300)
	assert.Equal(t, testOrigin, preflightRecorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, preflightRecorder.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}

func TestRequestIdentifier(t *testing.T) {
	handler := newTestHandler(t)

	generated := doRequest(t, handler, http.MethodGet, "/health", "")
	assert.Len(t, generated.Header().Get(RequestIdentifierHeader), 36)

	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	request.Header.Set(RequestIdentifierHeader, "abc-123")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "abc-123", recorder.Header().Get(RequestIdentifierHeader))
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	enabled, _ := setupServer(t, ServerSettings{AllowedOrigin: testOrigin, MetricsEnabled: true})
	doRequest(t, enabled, http.MethodGet, "/balance", "")

	recorder := doRequest(t, enabled, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "budget_http_requests_total")
	assert.Contains(t, recorder.Body.String(), `route="/balance"`)

	disabled := newTestHandler(t)
	assert.Equal(t, http.StatusNotFound, doRequest(t, disabled, http.MethodGet, "/metrics", "").Code)
}
