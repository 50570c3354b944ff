package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthware/ovenlink/internal/interfaces/http/middleware"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("generates an id when none is supplied", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("honors a caller-supplied id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	})
}

func TestRequestDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.RequestDeadline(30*time.Second, "/state/stream"))

	var stateDeadline, streamDeadline bool
	engine.GET("/api/v1/appliances/:said/state", func(c *gin.Context) {
		_, stateDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})
	engine.GET("/api/v1/appliances/:said/state/stream", func(c *gin.Context) {
		_, streamDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appliances/SAID1/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, stateDeadline, "plain requests carry a deadline")

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appliances/SAID1/state/stream", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, streamDeadline, "the state stream stays open until the client leaves")
}
