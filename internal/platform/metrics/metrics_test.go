package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMetricLogger(t *testing.T) {
	t.Run("logs values per dimension", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		f := New(reg, "fhir")

		l := f.CreateMetricLogger("updates_applied", "contributor")
		l.LogMetric(1, "export")
		l.LogMetric(1, "export")
		l.LogMetric(1, "reindex")

		count, err := testutil.GatherAndCount(reg, "fhir_updates_applied")
		require.NoError(t, err)
		assert.Equal(t, 2, count, "one series per contributor")
	})

	t.Run("same name returns the same logger", func(t *testing.T) {
		f := New(prometheus.NewRegistry(), "fhir")
		a := f.CreateMetricLogger("build_duration_seconds", "outcome")
		b := f.CreateMetricLogger("build_duration_seconds", "outcome")
		assert.Same(t, a, b)
	})

	t.Run("conflicting dimensions yield a nop logger", func(t *testing.T) {
		f := New(prometheus.NewRegistry(), "fhir")
		f.CreateMetricLogger("build_duration_seconds", "outcome")
		l := f.CreateMetricLogger("build_duration_seconds", "contributor", "outcome")
		assert.Equal(t, Nop{}, l)
	})

	t.Run("wrong dimension arity is dropped", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		f := New(reg, "fhir")
		l := f.CreateMetricLogger("updates_applied", "contributor")
		assert.NotPanics(t, func() { l.LogMetric(1) })

		count, err := testutil.GatherAndCount(reg, "fhir_updates_applied")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestCreateCounterLogger(t *testing.T) {
	t.Run("values accumulate per dimension", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		f := New(reg, "fhir")

		l := f.CreateCounterLogger("updates_applied_total", "contributor")
		l.LogMetric(1, "export")
		l.LogMetric(1, "export")
		l.LogMetric(1, "reindex")

		expected := `
# HELP fhir_updates_applied_total Total of values logged for updates_applied_total
# TYPE fhir_updates_applied_total counter
fhir_updates_applied_total{contributor="export"} 2
fhir_updates_applied_total{contributor="reindex"} 1
`
		require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "fhir_updates_applied_total"))
	})

	t.Run("negative values are dropped", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		l := New(reg, "fhir").CreateCounterLogger("updates_applied_total", "contributor")
		assert.NotPanics(t, func() { l.LogMetric(-1, "export") })

		count, err := testutil.GatherAndCount(reg, "fhir_updates_applied_total")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("same name as a histogram yields a nop logger", func(t *testing.T) {
		f := New(prometheus.NewRegistry(), "fhir")
		f.CreateMetricLogger("build_duration_seconds", "outcome")
		assert.Equal(t, Nop{}, f.CreateCounterLogger("build_duration_seconds", "outcome"))
	})
}

func TestNopFactory(t *testing.T) {
	assert.NotPanics(t, func() {
		NopFactory{}.CreateMetricLogger("anything", "a").LogMetric(42, "x")
		NopFactory{}.CreateCounterLogger("anything", "a").LogMetric(1, "x")
	})
}
