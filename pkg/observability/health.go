package observability

import (
	"context"
	"sync"
	"time"
)

type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// rank orders statuses so a report takes the worst of its checks.
func (s HealthStatus) rank() int {
	switch s {
	case HealthStatusUnhealthy:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}

// Probe returns nil when a dependency answers.
type Probe func(ctx context.Context) error

type probe struct {
	name    string
	failure HealthStatus
	fn      Probe
}

// Readiness runs dependency probes for the worker's /readyz endpoint.
// Required dependencies make the worker unhealthy when they fail, optional
// ones only degrade it.
type Readiness struct {
	timeout time.Duration
	mu      sync.RWMutex
	probes  []probe
}

// NewReadiness bounds each probe by timeout; zero means two seconds.
func NewReadiness(timeout time.Duration) *Readiness {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Readiness{timeout: timeout}
}

func (r *Readiness) Require(name string, fn Probe) { r.add(name, HealthStatusUnhealthy, fn) }
func (r *Readiness) Prefer(name string, fn Probe)  { r.add(name, HealthStatusDegraded, fn) }

func (r *Readiness) add(name string, failure HealthStatus, fn Probe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probes = append(r.probes, probe{name: name, failure: failure, fn: fn})
}

type CheckResult struct {
	Name      string       `json:"name"`
	Status    HealthStatus `json:"status"`
	Error     string       `json:"error,omitempty"`
	LatencyMS int64        `json:"latency_ms"`
}

type HealthReport struct {
	Status    HealthStatus  `json:"status"`
	CheckedAt time.Time     `json:"checked_at"`
	Checks    []CheckResult `json:"checks"`
}

// Report runs all probes concurrently. Checks keep registration order.
func (r *Readiness) Report(ctx context.Context) HealthReport {
	r.mu.RLock()
	probes := append([]probe(nil), r.probes...)
	r.mu.RUnlock()

	checks := make([]CheckResult, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checks[i] = r.run(ctx, p)
		}()
	}
	wg.Wait()

	report := HealthReport{Status: HealthStatusHealthy, CheckedAt: time.Now().UTC(), Checks: checks}
	for _, c := range checks {
		if c.Status.rank() > report.Status.rank() {
			report.Status = c.Status
		}
	}
	return report
}

func (r *Readiness) run(ctx context.Context, p probe) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	err := p.fn(ctx)
	result := CheckResult{Name: p.name, Status: HealthStatusHealthy, LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		result.Status = p.failure
		result.Error = p.name + " unreachable: " + err.Error()
	}
	return result
}
