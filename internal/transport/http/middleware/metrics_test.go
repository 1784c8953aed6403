package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/things/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := reqTotal.WithLabelValues("/things/:id", http.MethodGet, "200")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/things/7", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	// 打点落在路由模板上，而不是带具体 id 的原始路径
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Zero(t, testutil.ToFloat64(reqTotal.WithLabelValues("/things/7", http.MethodGet, "200")))
}
