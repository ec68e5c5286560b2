package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCollectsCounters(t *testing.T) {
	m := New()
	m.CacheHits.Inc()
	m.CacheHits.Inc()
	m.CacheMisses.Inc()
	m.UpstreamRequests.WithLabelValues("success").Inc()
	m.UpstreamRequests.WithLabelValues("failure").Inc()
	m.ToolCalls.WithLabelValues("get_bills").Inc()

	snap, err := m.Snapshot()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, c := range snap.Counters {
		key := c.Name
		if outcome, ok := c.Labels["outcome"]; ok {
			key += ":" + outcome
		}
		if tool, ok := c.Labels["tool"]; ok {
			key += ":" + tool
		}
		values[key] = c.Value
	}

	assert.Equal(t, 2.0, values["congressd_cache_hits_total"])
	assert.Equal(t, 1.0, values["congressd_cache_misses_total"])
	assert.Equal(t, 1.0, values["congressd_upstream_requests_total:success"])
	assert.Equal(t, 1.0, values["congressd_upstream_requests_total:failure"])
	assert.Equal(t, 1.0, values["congressd_tool_calls_total:get_bills"])
}

func TestIndependentInstances(t *testing.T) {
	a := New()
	b := New()
	a.CacheHits.Inc()

	snapB, err := b.Snapshot()
	require.NoError(t, err)
	for _, c := range snapB.Counters {
		if c.Name == "congressd_cache_hits_total" {
			assert.Equal(t, 0.0, c.Value)
		}
	}
}

func TestSnapshotOrderIsStable(t *testing.T) {
	m := New()
	m.UpstreamRequests.WithLabelValues("b").Inc()
	m.UpstreamRequests.WithLabelValues("a").Inc()

	first, err := m.Snapshot()
	require.NoError(t, err)
	second, err := m.Snapshot()
	require.NoError(t, err)

	require.Equal(t, len(first.Counters), len(second.Counters))
	for i := range first.Counters {
		assert.Equal(t, first.Counters[i].Name, second.Counters[i].Name)
		assert.Equal(t, first.Counters[i].Labels, second.Counters[i].Labels)
	}
}
