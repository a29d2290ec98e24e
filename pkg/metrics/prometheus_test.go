package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	p := NewPrometheus(NewPrometheusOptions{
		Subsystem:               "test",
		Registerer:              reg,
		ReqCntURLLabelMappingFn: func(c *gin.Context) string { return c.FullPath() },
	})

	r := gin.New()
	p.Use(r)
	r.GET("/posts/id/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/id/"+id, nil))
	}

	require.Equal(t, 2.0, testutil.ToFloat64(p.reqCnt.WithLabelValues("200", http.MethodGet, "/posts/id/:id")))
}

func TestBusinessCollectorsRegistered(t *testing.T) {
	CacheLookups.WithLabelValues("post_tags", "hit").Inc()
	require.GreaterOrEqual(t, testutil.ToFloat64(CacheLookups.WithLabelValues("post_tags", "hit")), 1.0)
}

func TestNewMetric_UnknownTypePanics(t *testing.T) {
	require.Panics(t, func() { NewMetric(&Metric{Name: "x", Type: "histgram"}, "test") })
	_, ok := NewMetric(&Metric{Name: "y", Type: "gauge"}, "test").(prometheus.Gauge)
	require.True(t, ok)
}
