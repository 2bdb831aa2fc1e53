package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_WeightsSumToOne(t *testing.T) {
	var sum float64
	for _, spec := range DefaultCatalog() {
		sum += spec.DefaultWeight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestDefaultCatalog_UniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, spec := range DefaultCatalog() {
		assert.False(t, seen[spec.Name], "duplicate metric %s", spec.Name)
		seen[spec.Name] = true
	}
}

func TestDefaultCatalog_CountMetricsHaveCaps(t *testing.T) {
	for _, spec := range DefaultCatalog() {
		if spec.Kind == MetricKindCount {
			assert.Greater(t, spec.Cap, 0, "count metric %s needs a cap", spec.Name)
		} else {
			assert.Zero(t, spec.Cap, "non-count metric %s should not carry a cap", spec.Name)
		}
	}
}

func TestDefaultCatalog_WeightsInRange(t *testing.T) {
	for _, spec := range DefaultCatalog() {
		assert.GreaterOrEqual(t, spec.DefaultWeight, 0.0, spec.Name)
		assert.LessOrEqual(t, spec.DefaultWeight, 1.0, spec.Name)
		assert.False(t, math.IsNaN(spec.DefaultWeight), spec.Name)
	}
}

func TestDefaultCatalog_FreshCopyPerCall(t *testing.T) {
	a := DefaultCatalog()
	a[0].DefaultWeight = 0.99

	b := DefaultCatalog()
	require.NotEqual(t, 0.99, b[0].DefaultWeight, "catalog must not share backing storage between calls")
}
