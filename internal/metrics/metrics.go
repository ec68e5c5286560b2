// Package metrics counts upstream and cache activity. Each Metrics value
// carries its own registry so independent server instances and tests never
// collide on registration.
package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics is the in-process counter set.
type Metrics struct {
	registry  *prometheus.Registry
	startedAt time.Time

	UpstreamRequests *prometheus.CounterVec
	UpstreamRetries  prometheus.Counter
	UpstreamFailures prometheus.Counter
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	StaleServes      prometheus.Counter
	RateLimitWaits   prometheus.Counter
	ToolCalls        *prometheus.CounterVec
}

// New builds a Metrics with a private registry.
func New() *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		startedAt: time.Now(),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "congressd_upstream_requests_total",
			Help: "Upstream API requests by outcome.",
		}, []string{"outcome"}),
		UpstreamRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "congressd_upstream_retries_total",
			Help: "Retried upstream attempts after a transient failure.",
		}),
		UpstreamFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "congressd_upstream_failures_total",
			Help: "Upstream requests that exhausted all attempts.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "congressd_cache_hits_total",
			Help: "Requests served from the response cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "congressd_cache_misses_total",
			Help: "Requests that had to go upstream.",
		}),
		StaleServes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "congressd_cache_stale_serves_total",
			Help: "Expired cache entries served as a fallback.",
		}),
		RateLimitWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "congressd_rate_limit_waits_total",
			Help: "Requests that had to wait for rate-limit headroom.",
		}),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "congressd_tool_calls_total",
			Help: "Tool invocations by tool name.",
		}, []string{"tool"}),
	}
	m.registry.MustRegister(
		m.UpstreamRequests, m.UpstreamRetries, m.UpstreamFailures,
		m.CacheHits, m.CacheMisses, m.StaleServes,
		m.RateLimitWaits, m.ToolCalls,
	)
	return m
}

// Counter is one gathered series.
type Counter struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot is a point-in-time view for reporting.
type Snapshot struct {
	Uptime   time.Duration
	Counters []Counter
}

// Snapshot gathers all registered counters, sorted by name for stable
// output.
func (m *Metrics) Snapshot() (*Snapshot, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Uptime: time.Since(m.startedAt)}
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			c := Counter{Name: fam.GetName(), Value: counterValue(metric)}
			if pairs := metric.GetLabel(); len(pairs) > 0 {
				c.Labels = make(map[string]string, len(pairs))
				for _, p := range pairs {
					c.Labels[p.GetName()] = p.GetValue()
				}
			}
			snap.Counters = append(snap.Counters, c)
		}
	}
	sort.Slice(snap.Counters, func(i, j int) bool {
		if snap.Counters[i].Name != snap.Counters[j].Name {
			return snap.Counters[i].Name < snap.Counters[j].Name
		}
		return labelKey(snap.Counters[i].Labels) < labelKey(snap.Counters[j].Labels)
	})
	return snap, nil
}

func counterValue(m *dto.Metric) float64 {
	if c := m.GetCounter(); c != nil {
		return c.GetValue()
	}
	if g := m.GetGauge(); g != nil {
		return g.GetValue()
	}
	return 0
}

func labelKey(labels map[string]string) string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)
	key := ""
	for _, name := range names {
		key += name + "=" + labels[name] + ";"
	}
	return key
}
