package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"

	"collab-service/internal/metrics"
)

func setupMetricsRouter() (*gin.Engine, *metrics.Metrics) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
	router := gin.New()
	router.Use(Metrics(m))
	return router, m
}

func counterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := counter.Write(metric); err != nil {
		t.Fatalf("Failed to write counter metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func TestMetricsMiddleware_RecordsRequests(t *testing.T) {
	router, m := setupMetricsRouter()
	router.GET("/presence/room/:roomKey", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/presence/room/project:p1", nil)
		router.ServeHTTP(w, req)
	}

	// The label is the route pattern, not the concrete path
	counter := m.HTTPRequestsTotal.WithLabelValues("GET", "/presence/room/:roomKey", "200")
	if counterValue(t, counter) != 3 {
		t.Error("Expected 3 recorded requests for the route pattern")
	}
}

func TestMetricsMiddleware_SkipsOperationalEndpoints(t *testing.T) {
	router, m := setupMetricsRouter()
	for _, path := range []string{"/metrics", "/health", "/ready"} {
		router.GET(path, func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
	}

	for _, path := range []string{"/metrics", "/health", "/ready"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)

		counter := m.HTTPRequestsTotal.WithLabelValues("GET", path, "200")
		if counterValue(t, counter) != 0 {
			t.Errorf("Expected no recorded requests for %s", path)
		}
	}
}

func TestMetricsMiddleware_RecordsErrorStatuses(t *testing.T) {
	router, m := setupMetricsRouter()
	router.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(w, req)

	counter := m.HTTPRequestsTotal.WithLabelValues("GET", "/boom", "500")
	if counterValue(t, counter) != 1 {
		t.Error("Expected the 500 response to be recorded")
	}
}
