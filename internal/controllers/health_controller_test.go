package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastapi1403/building-management/internal/middleware"
	"github.com/fastapi1403/building-management/internal/utils"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheckHandler(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		status int
	}{
		{"memory store", nil, http.StatusOK},
		{"database up", pingFunc(func(context.Context) error { return nil }), http.StatusOK},
		{"database down", pingFunc(func(context.Context) error { return errors.New("refused") }), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NewHealthController(tt.db).HealthCheckHandler(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tt.status, rr.Code)
			if tt.status != http.StatusOK {
				assert.Equal(t, utils.ErrCodeTransient, decode(t, rr)["code"])
			}
		})
	}
}

func TestCSRFController_TokenHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	NewCSRFController(true).TokenHandler(rr, httptest.NewRequest(http.MethodGet, "/api/v1/csrf-token", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	token, _ := decode(t, rr)["csrf_token"].(string)
	require.NotEmpty(t, token)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.CSRFCookieName, cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
	assert.True(t, cookies[0].Secure)
}
