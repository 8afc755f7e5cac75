package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status    Status
	Checks    map[string]CheckResult
	DBLatency time.Duration
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	timeout time.Duration
}

// New creates a Service. Each check is bounded by timeout; zero means no bound.
func New(db DBPinger, timeout time.Duration) *Service {
	return &Service{db: db, timeout: timeout}
}

// Check pings the store and reports the result with its round-trip time.
func (s *Service) Check(ctx context.Context) Report {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	checks := make(map[string]CheckResult, 1)
	start := time.Now()
	err := s.db.Ping(ctx)
	latency := time.Since(start)

	status := Healthy
	if err != nil {
		checks["database"] = CheckError
		status = Degraded
	} else {
		checks["database"] = CheckOK
	}

	return Report{Status: status, Checks: checks, DBLatency: latency}
}
