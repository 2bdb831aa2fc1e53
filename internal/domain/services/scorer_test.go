package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apkrisk/internal/domain/models"
	"apkrisk/pkg/logger"
)

func defaultCatalog(t *testing.T) *ResolvedCatalog {
	t.Helper()
	catalog, err := ResolveCatalog(models.ScoringOverrides{})
	require.NoError(t, err)
	return catalog
}

// allMaxMetrics builds every catalog metric pinned at its normalized maximum.
func allMaxMetrics(catalog *ResolvedCatalog) []NormalizedMetric {
	var out []NormalizedMetric
	for _, spec := range catalog.Specs() {
		out = append(out, NormalizedMetric{
			Name:      spec.Name,
			Value:     1,
			Weight:    spec.DefaultWeight,
			Available: true,
		})
	}
	return out
}

func TestScore_AllMetricsAtMaximum(t *testing.T) {
	catalog := defaultCatalog(t)
	s := NewScorer(logger.Nop())

	result := s.Score(catalog, allMaxMetrics(catalog))
	assert.Equal(t, 100, result.Score)
}

func TestScore_AllMetricsZero(t *testing.T) {
	catalog := defaultCatalog(t)
	s := NewScorer(logger.Nop())

	metrics := allMaxMetrics(catalog)
	for i := range metrics {
		metrics[i].Value = 0
	}

	result := s.Score(catalog, metrics)
	assert.Equal(t, 0, result.Score)
	assert.Zero(t, result.RawScore)
}

func TestScore_SingleAvailableMetric(t *testing.T) {
	// One available metric keeps only its own weighted term; missing
	// weight mass is not redistributed.
	catalog := defaultCatalog(t)
	s := NewScorer(logger.Nop())

	metrics := []NormalizedMetric{
		{Name: "permission_density", Value: 0.6, Weight: 0.23, Available: true},
	}

	result := s.Score(catalog, metrics)
	assert.Equal(t, 14, result.Score)
	assert.InDelta(t, 0.138, result.RawScore, 1e-9)
}

func TestScore_UnavailableMetricsExcluded(t *testing.T) {
	catalog := defaultCatalog(t)
	s := NewScorer(logger.Nop())

	metrics := []NormalizedMetric{
		{Name: "permission_density", Value: 0.6, Weight: 0.23, Available: true},
		{Name: "yara_match_count", Value: 1, Weight: 0.06, Available: false},
	}

	result := s.Score(catalog, metrics)
	assert.Equal(t, 14, result.Score)
	assert.NotContains(t, result.Breakdown, "yara_match_count",
		"unavailable metrics must be absent from the breakdown, not zero")
}

func TestScore_Deterministic(t *testing.T) {
	catalog := defaultCatalog(t)
	s := NewScorer(logger.Nop())

	metrics := []NormalizedMetric{
		{Name: "permission_density", Value: 0.4, Weight: 0.23, Available: true},
		{Name: "component_exposure", Value: 0.25, Weight: 0.12, Available: true},
		{Name: "cleartext_endpoint_count", Value: 0.3, Weight: 0.08, Available: true},
	}

	first := s.Score(catalog, metrics)
	for i := 0; i < 10; i++ {
		again := s.Score(catalog, metrics)
		assert.Equal(t, first.Score, again.Score)
		assert.Empty(t, cmp.Diff(first.Breakdown, again.Breakdown))
	}
}

func TestScore_BreakdownInPercentagePoints(t *testing.T) {
	catalog := defaultCatalog(t)
	s := NewScorer(logger.Nop())

	metrics := []NormalizedMetric{
		{Name: "permission_density", Value: 0.6, Weight: 0.23, Available: true},
		{Name: "untrusted_signature", Value: 1, Weight: 0.04, Available: true},
	}

	result := s.Score(catalog, metrics)
	assert.InDelta(t, 13.8, result.Breakdown["permission_density"], 1e-9)
	assert.InDelta(t, 4.0, result.Breakdown["untrusted_signature"], 1e-9)
}

func TestScore_BreakdownRoundedToTwoDecimals(t *testing.T) {
	catalog := defaultCatalog(t)
	s := NewScorer(logger.Nop())

	// 0.23 * (1/3) * 100 = 7.666... rounds to 7.67.
	metrics := []NormalizedMetric{
		{Name: "permission_density", Value: 1.0 / 3.0, Weight: 0.23, Available: true},
	}

	result := s.Score(catalog, metrics)
	assert.Equal(t, 7.67, result.Breakdown["permission_density"])
}

func TestScore_OverriddenWeightChangesOnlyThatMetric(t *testing.T) {
	catalog, err := ResolveCatalog(models.ScoringOverrides{
		Weights: map[string]float64{"permission_density": 0.5},
	})
	require.NoError(t, err)

	n := NewNormalizer(logger.Nop())
	s := NewScorer(logger.Nop())

	normalized := n.Normalize(catalog, []models.MetricValue{
		{Name: "permission_density", Raw: 1, Kind: models.MetricKindContinuous, Available: true},
		{Name: "component_exposure", Raw: 1, Kind: models.MetricKindContinuous, Available: true},
	})

	result := s.Score(catalog, normalized)
	assert.InDelta(t, 50.0, result.Breakdown["permission_density"], 1e-9)
	assert.InDelta(t, 12.0, result.Breakdown["component_exposure"], 1e-9)
	assert.Equal(t, 62, result.Score)
}
