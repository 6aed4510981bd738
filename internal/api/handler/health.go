package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/daap14/catalog-api/internal/api/response"
	"github.com/daap14/catalog-api/internal/store"
)

const readyTimeout = 3 * time.Second

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	stores  store.Factory
	version string
	log     zerolog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(stores store.Factory, version string, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{stores: stores, version: version, log: log}
}

type healthData struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type storeStatus struct {
	Connected bool `json:"connected"`
}

type readyData struct {
	Status  string      `json:"status"`
	Version string      `json:"version"`
	Store   storeStatus `json:"store"`
}

// Live handles GET /health. It never touches the store.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, healthData{Status: "healthy", Version: h.version})
}

// Ready handles GET /ready, reporting 503 when the store is unreachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	data := readyData{Status: "ready", Version: h.version, Store: storeStatus{Connected: true}}
	status := http.StatusOK

	if err := h.stores().Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("store ping failed")
		data.Status = "degraded"
		data.Store.Connected = false
		status = http.StatusServiceUnavailable
	}

	response.JSON(w, status, data)
}
