package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestGetHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	healthy := gin.New()
	healthy.GET("/healthz", NewHealthController(pingerFunc(func(context.Context) error { return nil })).GetHealth)
	w := get(healthy, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, w.Body.String())

	down := gin.New()
	down.GET("/healthz", NewHealthController(pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") })).GetHealth)
	w = get(down, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
