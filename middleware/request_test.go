package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travel-point/api-go/logger"
	"github.com/travel-point/api-go/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/places/:id", func(c *gin.Context) {
		logger.FromContext(c.Request.Context()).Info("inside handler")
		c.String(http.StatusOK, utils.GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/places/3", nil))

	requestID := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, requestID)
	assert.Equal(t, requestID, w.Body.String())

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, requestID, entries[0].ContextMap()["request_id"])

	line := entries[1].ContextMap()
	assert.Equal(t, "http_request", entries[1].Message)
	assert.Equal(t, "/places/:id", line["route"])
	assert.EqualValues(t, http.StatusOK, line["status"])

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/places/3", nil)
	req.Header.Set("X-Request-ID", "upstream-42")
	r.ServeHTTP(w, req)
	assert.Equal(t, "upstream-42", w.Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.ErrorLevel)

	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}
