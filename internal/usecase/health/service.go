package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an auxiliary check failed; runs can still proceed.
	Degraded Status = "degraded"
	// Unhealthy indicates the document store is unreachable.
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

// StoreCheck is the name of the document store check.
const StoreCheck = "store"

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type namedCheck struct {
	name   string
	pinger Pinger
}

// Service coordinates health checks.
type Service struct {
	store  Pinger
	checks []namedCheck
}

// New creates a Service around the document store.
func New(store Pinger) *Service {
	return &Service{store: store}
}

// WithCheck registers an auxiliary check. Its failure only degrades the status.
func (s *Service) WithCheck(name string, p Pinger) *Service {
	s.checks = append(s.checks, namedCheck{name: name, pinger: p})
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checks)+1)
	status := Healthy

	for _, c := range s.checks {
		if err := c.pinger.Ping(ctx); err != nil {
			checks[c.name] = CheckError
			status = Degraded
		} else {
			checks[c.name] = CheckOK
		}
	}

	if err := s.store.Ping(ctx); err != nil {
		checks[StoreCheck] = CheckError
		status = Unhealthy
	} else {
		checks[StoreCheck] = CheckOK
	}

	return Report{Status: status, Checks: checks}
}
