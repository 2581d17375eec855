package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOperationsCreatedByType(t *testing.T) {
	before := testutil.ToFloat64(OperationsCreated.WithLabelValues("income"))

	OperationsCreated.WithLabelValues("income").Inc()
	OperationsCreated.WithLabelValues("expense").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(OperationsCreated.WithLabelValues("income")))
}

func TestBalanceGauge(t *testing.T) {
	Balance.Set(-42.5)
	assert.Equal(t, -42.5, testutil.ToFloat64(Balance))
}

func TestHTTPRequestsSeries(t *testing.T) {
	HTTPRequests.WithLabelValues("GET", "/balance", "200").Inc()
	HTTPRequests.WithLabelValues("GET", "/balance", "200").Inc()
	HTTPRequests.WithLabelValues("DELETE", "/operations/{id}", "404").Inc()

	assert.Equal(t, 2, testutil.CollectAndCount(HTTPRequests, "budget_http_requests_total"))
	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/balance", "200")))
}

func TestStoredOperationsGauge(t *testing.T) {
	StoredOperations.Set(3)
	StoredOperations.Add(-1)
	assert.Equal(t, float64(2), testutil.ToFloat64(StoredOperations))
}
