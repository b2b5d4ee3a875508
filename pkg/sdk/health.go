package matchdex

import (
	"context"

	healthuc "github.com/kailas-cloud/matchdex/internal/usecase/health"
)

// HealthStatus is the aggregated health of the record store and the index.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // "index", "record_store" -> "ok"/"error"
}

// Healthy reports whether every component passed.
func (h HealthStatus) Healthy() bool { return h.Status == string(healthuc.Healthy) }

// Health pings the record store and the index.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
