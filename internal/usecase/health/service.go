package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates queries cannot be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckUntrained indicates no corpus has been trained yet.
	CheckUntrained CheckResult = "untrained"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	catalog Pinger
	cache   Pinger
	corpus  CorpusChecker
}

// New creates a Service. cache can be nil.
func New(catalog Pinger, cache Pinger, corpus CorpusChecker) *Service {
	return &Service{catalog: catalog, cache: cache, corpus: corpus}
}

// Check runs health checks against all components.
// The service is unhealthy only when it has no corpus and cannot build one.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["catalog"] = ping(ctx, s.catalog)
	if s.cache != nil {
		checks["cache"] = ping(ctx, s.cache)
	}

	trained := s.corpus.Trained()
	if trained {
		checks["corpus"] = CheckOK
	} else {
		checks["corpus"] = CheckUntrained
	}

	if !trained && checks["catalog"] == CheckError {
		return Report{Status: Unhealthy, Checks: checks}
	}

	status := Healthy
	for _, v := range checks {
		if v != CheckOK {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func ping(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
