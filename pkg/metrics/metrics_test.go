package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return w.Body.String()
}

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New("test")

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/bills/:identifier", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bills/BILL-1", nil))

	want := `test_http_requests_total{method="GET",path="/bills/:identifier",status="200"} 1`
	if body := scrape(t, m); !strings.Contains(body, want) {
		t.Fatalf("metrics output missing %s", want)
	}
}

func TestHandlerExposesBusinessCounters(t *testing.T) {
	m := New("pos")
	m.BillsPosted.WithLabelValues("atomic").Inc()
	m.MovementFailures.Inc()

	body := scrape(t, m)
	for _, line := range []string{`pos_bills_posted_total{mode="atomic"} 1`, "pos_inventory_debit_failures_total 1"} {
		if !strings.Contains(body, line) {
			t.Errorf("metrics output missing %s", line)
		}
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New("same"), New("same")
	a.InsufficientStock.Inc()
	if !strings.Contains(scrape(t, b), "same_insufficient_stock_total 0") {
		t.Fatal("registries should not share state")
	}
}
