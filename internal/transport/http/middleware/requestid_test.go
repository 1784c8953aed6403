package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestIDRig() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })
	return r
}

func TestRequestIDEchoesUpstreamID(t *testing.T) {
	r := newRequestIDRig()
	rid := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(KeyRequestID, rid)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, rid, w.Header().Get(KeyRequestID))
	assert.Equal(t, rid, w.Body.String())
}

func TestRequestIDRegeneratesMissingOrDirtyID(t *testing.T) {
	r := newRequestIDRig()

	for _, dirty := range []string{"", "not-a-uuid", "../../etc/passwd"} {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if dirty != "" {
			req.Header.Set(KeyRequestID, dirty)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		got := w.Header().Get(KeyRequestID)
		_, err := uuid.Parse(got)
		require.NoError(t, err, "response id must be a fresh uuid, got %q", got)
		assert.NotEqual(t, dirty, got)
	}
}
