package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/daap14/catalog-api/internal/api/handler"
)

func TestHealthHandler_Live(t *testing.T) {
	// Arrange
	pinged := false
	st := &mockStore{pingFn: func(context.Context) error {
		pinged = true
		return nil
	}}
	h := handler.NewHealthHandler(factoryFor(st), "0.1.0", zerolog.Nop())
	w := httptest.NewRecorder()

	// Act
	h.Live(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"0.1.0"}`, w.Body.String())
	assert.False(t, pinged)
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name    string
		pingErr error
		status  int
		want    string
	}{
		{"store reachable", nil, http.StatusOK, `{"status":"ready","version":"0.1.0","store":{"connected":true}}`},
		{"store down", errors.New("dial tcp: refused"), http.StatusServiceUnavailable, `{"status":"degraded","version":"0.1.0","store":{"connected":false}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &mockStore{pingFn: func(ctx context.Context) error {
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline)
				return tt.pingErr
			}}
			h := handler.NewHealthHandler(factoryFor(st), "0.1.0", zerolog.Nop())
			w := httptest.NewRecorder()

			h.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}
