package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterPerKey(t *testing.T) {
	l := New(1, 2)
	fixed := time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "other clients have their own bucket")

	fixed = fixed.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestLimiterEvictsIdleVisitors(t *testing.T) {
	l := New(1, 1)
	fixed := time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	l.Allow("a")

	fixed = fixed.Add(idleTTL + time.Minute)
	l.Allow("b")
	_, ok := l.visitors["a"]
	assert.False(t, ok)
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/holidays", Middleware(New(0.001, 1)), func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/holidays", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/holidays", nil))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"error":"too many requests"}`, second.Body.String())
}

func TestMiddlewareDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", Middleware(New(0, 1)), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}
