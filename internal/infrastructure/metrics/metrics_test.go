package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-manager-api/internal/domain/entity"
)

func TestContadoresDeMovimientos(t *testing.T) {
	m := New()
	m.MovementRecorded(entity.MovementTypeIN, 5)
	m.MovementRecorded(entity.MovementTypeIN, 3)
	m.MovementRecorded(entity.MovementTypeOUT, 2)
	m.MovementRejected("insufficient_stock")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.movements.WithLabelValues("IN")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.movementUnits.WithLabelValues("IN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movements.WithLabelValues("OUT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movementRejected.WithLabelValues("insufficient_stock")))
}

func TestHandler_ExponeRegistro(t *testing.T) {
	m := New()
	m.ObserveHTTP("GET", "/products/", 200, 15*time.Millisecond)
	m.LowStockNotified(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.True(t, strings.Contains(out, `stock_manager_http_requests_total{method="GET",route="/products/",status="200"} 1`))
	assert.True(t, strings.Contains(out, "stock_manager_low_stock_notifications_total 3"))
}
