package http

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mrlokans/tasktracker/internal/audit"
	"github.com/mrlokans/tasktracker/internal/auth"
	"github.com/mrlokans/tasktracker/internal/metrics"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	AuthService   *auth.Service
	TokenVerifier auth.TokenVerifier
	TodoService   TodoService
	AuditService  *audit.Service // optional
	Database      Pinger         // optional, used by /health

	// Metrics (optional). /metrics is only mounted when Gatherer is set.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// Browser-facing settings
	CORSOrigins []string // empty disables CORS handling
	HSTSMaxAge  int      // seconds; 0 disables Strict-Transport-Security

	// Application info
	Version string
}
