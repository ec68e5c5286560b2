// Package health probes the server's dependencies and aggregates the
// results into a single status. Reports are cached briefly so a chatty
// client cannot turn health polling into upstream load.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/mem"

	"congressd/internal/api"
	"congressd/internal/cache"
	"congressd/internal/config"
	"congressd/internal/logging"
	"congressd/internal/ratelimit"
)

// Status is an ordered severity; aggregation takes the worst value.
type Status string

const (
	StatusHealthy Status = "healthy"
	// StatusUnknown marks a check whose probe itself failed, so the
	// underlying resource may well be fine.
	StatusUnknown   Status = "unknown"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

var severity = map[Status]int{
	StatusHealthy:   0,
	StatusUnknown:   1,
	StatusDegraded:  2,
	StatusUnhealthy: 3,
}

func worse(a, b Status) Status {
	if severity[b] > severity[a] {
		return b
	}
	return a
}

// Thresholds shared by the memory and rate-limit checks.
const (
	warnPercent = 70.0
	failPercent = 90.0

	slowProbe = 5 * time.Second
)

// Check is one probe's outcome.
type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report aggregates all checks.
type Report struct {
	Status    Status    `json:"status"`
	Checks    []Check   `json:"checks"`
	CheckedAt time.Time `json:"checked_at"`
	Cached    bool      `json:"cached,omitempty"`
}

// upstream is the slice of the API client the monitor needs.
type upstream interface {
	Probe(ctx context.Context) (time.Duration, error)
	RateLimitStatus() ratelimit.Status
}

// Monitor runs the checks.
type Monitor struct {
	cfg    *config.Config
	client upstream
	store  *cache.Store
	logger *logging.AppLogger
	memory func() (float64, error)
	now    func() time.Time
}

// MonitorOption customizes a Monitor.
type MonitorOption func(*Monitor)

// WithMemoryFunc injects the memory usage probe, for tests.
func WithMemoryFunc(f func() (float64, error)) MonitorOption {
	return func(m *Monitor) { m.memory = f }
}

// WithClock injects a time source.
func WithClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) { m.now = now }
}

// NewMonitor builds a Monitor over the shared cache store.
func NewMonitor(cfg *config.Config, client upstream, store *cache.Store, logger *logging.AppLogger, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		cfg:    cfg,
		client: client,
		store:  store,
		logger: logger,
		memory: systemMemoryPercent,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func systemMemoryPercent() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

var reportKey = cache.Key("/internal/health-report", nil)

// Report returns the current health, serving a recent cached report when
// one exists.
func (m *Monitor) Report(ctx context.Context) (*Report, error) {
	if payload, ok, err := m.store.Get(ctx, reportKey); err == nil && ok {
		var cached Report
		if err := json.Unmarshal(payload, &cached); err == nil {
			cached.Cached = true
			return &cached, nil
		}
	}

	report := m.run(ctx)

	if payload, err := json.Marshal(report); err == nil {
		if err := m.store.Set(ctx, reportKey, payload, cache.ClassHealth); err != nil {
			m.logger.Warn("failed to cache health report", "error", err)
		}
	}
	return report, nil
}

func (m *Monitor) run(ctx context.Context) *Report {
	checks := []Check{
		m.checkMemory(),
		m.checkConfig(),
		m.checkAPI(ctx),
		m.checkRateLimit(),
		m.checkCache(ctx),
	}

	overall := StatusHealthy
	for _, c := range checks {
		overall = worse(overall, c.Status)
	}
	if overall != StatusHealthy {
		m.logger.Warn("health check not clean", "status", string(overall))
	}
	return &Report{
		Status:    overall,
		Checks:    checks,
		CheckedAt: m.now(),
	}
}

func (m *Monitor) checkMemory() Check {
	pct, err := m.memory()
	if err != nil {
		return Check{Name: "system", Status: StatusUnknown, Detail: fmt.Sprintf("memory probe failed: %v", err)}
	}
	detail := fmt.Sprintf("memory usage %.1f%%", pct)
	switch {
	case pct >= failPercent:
		return Check{Name: "system", Status: StatusUnhealthy, Detail: detail}
	case pct >= warnPercent:
		return Check{Name: "system", Status: StatusDegraded, Detail: detail}
	default:
		return Check{Name: "system", Status: StatusHealthy, Detail: detail}
	}
}

func (m *Monitor) checkConfig() Check {
	if err := m.cfg.Validate(); err != nil {
		return Check{Name: "configuration", Status: StatusUnhealthy, Detail: err.Error()}
	}
	return Check{Name: "configuration", Status: StatusHealthy}
}

func (m *Monitor) checkAPI(ctx context.Context) Check {
	latency, err := m.client.Probe(ctx)
	if err != nil {
		if api.IsRateLimited(err) {
			// The probe was refused locally, so upstream reachability was
			// not actually tested.
			return Check{Name: "api_connectivity", Status: StatusUnknown, Detail: "probe skipped: " + err.Error()}
		}
		return Check{Name: "api_connectivity", Status: StatusUnhealthy, Detail: err.Error()}
	}
	detail := fmt.Sprintf("responded in %s", latency.Round(time.Millisecond))
	if latency > slowProbe {
		return Check{Name: "api_connectivity", Status: StatusDegraded, Detail: detail}
	}
	return Check{Name: "api_connectivity", Status: StatusHealthy, Detail: detail}
}

func (m *Monitor) checkRateLimit() Check {
	status := m.client.RateLimitStatus()
	worst := 0.0
	worstName := ""
	for name, win := range status {
		if win.Limit == 0 {
			continue
		}
		pct := float64(win.Used) / float64(win.Limit) * 100
		if pct > worst {
			worst = pct
			worstName = name
		}
	}
	detail := fmt.Sprintf("busiest window %s at %.1f%%", worstName, worst)
	if worstName == "" {
		detail = "no windows configured"
	}
	switch {
	case worst >= failPercent:
		return Check{Name: "rate_limit", Status: StatusUnhealthy, Detail: detail}
	case worst >= warnPercent:
		return Check{Name: "rate_limit", Status: StatusDegraded, Detail: detail}
	default:
		return Check{Name: "rate_limit", Status: StatusHealthy, Detail: detail}
	}
}

func (m *Monitor) checkCache(ctx context.Context) Check {
	key := cache.Key("/internal/health-roundtrip", nil)
	want := json.RawMessage(`{"ok":true}`)

	if err := m.store.Set(ctx, key, want, cache.ClassHealth); err != nil {
		return Check{Name: "cache", Status: StatusUnhealthy, Detail: "set failed: " + err.Error()}
	}
	got, ok, err := m.store.Get(ctx, key)
	if err != nil || !ok {
		return Check{Name: "cache", Status: StatusUnhealthy, Detail: "get failed after set"}
	}
	if string(got) != string(want) {
		return Check{Name: "cache", Status: StatusUnhealthy, Detail: "roundtrip payload mismatch"}
	}
	if err := m.store.Invalidate(ctx, key); err != nil {
		return Check{Name: "cache", Status: StatusDegraded, Detail: "delete failed: " + err.Error()}
	}
	return Check{Name: "cache", Status: StatusHealthy}
}
