package http_handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/kanjo/services/account-service/internal/transport/http/response"
)

// Pinger is satisfied by *sql.DB (PingContext) via DBPinger and by the
// redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DBPinger adapts a PingContext method (e.g. *sql.DB) to Pinger.
type DBPinger struct {
	DB interface {
		PingContext(ctx context.Context) error
	}
}

func (p DBPinger) Ping(ctx context.Context) error { return p.DB.PingContext(ctx) }

type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler takes named dependencies checked by Readyz. Nil entries
// are skipped so optional backends can be passed unconditionally.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	cleaned := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			cleaned[name] = p
		}
	}
	return &HealthHandler{checks: cleaned}
}

type healthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, healthStatus{Status: "ok"})
}

// Readyz handles GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	out := healthStatus{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			out.Checks[name] = "unavailable"
			out.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		out.Checks[name] = "ok"
	}
	response.WriteJSON(w, status, out)
}
