package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus reports the process state and the data version it currently serves.
type HealthStatus struct {
	Status      string    `json:"status"`
	LastChecked time.Time `json:"last_checked"`
	Uptime      string    `json:"uptime"`
	Version     string    `json:"version"`
	Backend     string    `json:"backend"`
	DataVersion uint64    `json:"data_version"`
}

type VersionSource interface {
	Version() uint64
}

type Health struct {
	mu        sync.RWMutex
	status    string
	version   string
	backend   string
	startTime time.Time
	source    VersionSource
}

func NewHealth(source VersionSource, backend, version string) *Health {
	return &Health{
		status:    "ok",
		version:   version,
		backend:   backend,
		startTime: time.Now(),
		source:    source,
	}
}

// SetStatus changes the reported status, e.g. to "degraded" while the sync loop is down.
func (h *Health) SetStatus(status string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.status = status
}

func (h *Health) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return HealthStatus{
		Status:      h.status,
		LastChecked: time.Now(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Version:     h.version,
		Backend:     h.backend,
		DataVersion: h.source.Version(),
	}
}

func (h *Health) HealthCheckMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := h.Status()
		code := http.StatusOK
		if status.Status != "ok" {
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, status)
	}
}
