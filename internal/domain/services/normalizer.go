package services

import (
	"math"

	"apkrisk/internal/domain/models"
	"apkrisk/pkg/logger"
)

// ResolvedCatalog is the effective metric configuration for one job:
// the default catalog with any per-call overrides applied. It is built
// once, validated, and never mutated afterwards.
type ResolvedCatalog struct {
	specs []models.MetricSpec
	index map[string]int
}

// ResolveCatalog merges overrides into the default catalog. Overrides that
// reference a metric the catalog does not declare, supply a negative cap,
// or a weight outside [0, 1] return a *ConfigError before any scoring can
// proceed.
func ResolveCatalog(overrides models.ScoringOverrides) (*ResolvedCatalog, error) {
	specs := models.DefaultCatalog()
	index := make(map[string]int, len(specs))
	for i, spec := range specs {
		index[spec.Name] = i
	}

	for name, weight := range overrides.Weights {
		i, ok := index[name]
		if !ok {
			return nil, &ConfigError{Metric: name, Reason: ErrUnknownMetric}
		}
		if weight < 0 || weight > 1 {
			return nil, &ConfigError{Metric: name, Reason: ErrWeightOutOfRange}
		}
		specs[i].DefaultWeight = weight
	}

	for name, c := range overrides.Caps {
		i, ok := index[name]
		if !ok {
			return nil, &ConfigError{Metric: name, Reason: ErrUnknownMetric}
		}
		if c < 0 {
			return nil, &ConfigError{Metric: name, Reason: ErrNegativeCap}
		}
		specs[i].Cap = c
	}

	return &ResolvedCatalog{specs: specs, index: index}, nil
}

// Specs returns the effective specs in declaration order.
func (c *ResolvedCatalog) Specs() []models.MetricSpec {
	return c.specs
}

// Spec returns the effective spec for a metric name.
func (c *ResolvedCatalog) Spec(name string) (models.MetricSpec, bool) {
	i, ok := c.index[name]
	if !ok {
		return models.MetricSpec{}, false
	}
	return c.specs[i], true
}

// Order returns the declaration position of a metric, used as the
// deterministic tie-break when ranking rationale entries.
func (c *ResolvedCatalog) Order(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}
	return len(c.specs)
}

// NormalizedMetric is a metric mapped onto the uniform [0, 1] contribution
// scale, paired with its effective weight.
type NormalizedMetric struct {
	Name      string
	Value     float64
	Weight    float64
	Available bool
}

// Normalizer clamps count metrics to their caps and maps every metric kind
// into [0, 1] so weights apply consistently regardless of raw scale.
type Normalizer struct {
	logger *logger.Logger
}

// NewNormalizer creates a new Normalizer.
func NewNormalizer(log *logger.Logger) *Normalizer {
	return &Normalizer{logger: log.WithComponent("normalizer")}
}

// Normalize maps raw metric values through the resolved catalog. Metrics the
// catalog does not declare are dropped with a warning; they carry no weight
// so scoring them would be meaningless.
func (n *Normalizer) Normalize(catalog *ResolvedCatalog, metrics []models.MetricValue) []NormalizedMetric {
	out := make([]NormalizedMetric, 0, len(metrics))

	for _, m := range metrics {
		spec, ok := catalog.Spec(m.Name)
		if !ok {
			n.logger.Warn().Str("metric", m.Name).Msg("dropping undeclared metric")
			continue
		}

		out = append(out, NormalizedMetric{
			Name:      m.Name,
			Value:     normalizeValue(m.Raw, spec),
			Weight:    spec.DefaultWeight,
			Available: m.Available,
		})
	}

	return out
}

// normalizeValue maps a raw value into [0, 1] per the metric kind.
func normalizeValue(raw float64, spec models.MetricSpec) float64 {
	switch spec.Kind {
	case models.MetricKindCount:
		return normalizeCount(raw, float64(spec.Cap))
	case models.MetricKindBoolean:
		if raw >= 1 {
			return 1
		}
		return 0
	default:
		return clamp(raw, 0, 1)
	}
}

// normalizeCount bounds a count against its cap: min(raw, cap) / cap.
// A zero cap disables the metric's contribution entirely.
func normalizeCount(raw, cap float64) float64 {
	if cap <= 0 || raw <= 0 {
		return 0
	}
	return math.Min(raw/cap, 1)
}

// clamp clamps a value between lo and hi.
func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
