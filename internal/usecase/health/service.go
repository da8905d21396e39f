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
	// Unhealthy indicates the backend is unreachable.
	Unhealthy Status = "error"
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
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	backend BackendPinger
	name    string
	timeout time.Duration
}

// New creates a Service. name labels the backend check ("elasticsearch", "redis").
func New(backend BackendPinger, name string, timeout time.Duration) *Service {
	return &Service{backend: backend, name: name, timeout: timeout}
}

// Check pings the backend. The service has a single dependency, so a failed
// ping makes it unhealthy rather than degraded.
func (s *Service) Check(ctx context.Context) Report {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	checks := map[string]CheckResult{s.name: CheckOK}
	status := Healthy
	if err := s.backend.Ping(ctx); err != nil {
		checks[s.name] = CheckError
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
