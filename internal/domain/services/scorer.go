package services

import (
	"math"

	"apkrisk/pkg/logger"
)

// EngineVersion tags every assessment with the scoring model revision.
const EngineVersion = "1.0.0"

// ScoreResult is the raw output of the weighted scoring computation.
type ScoreResult struct {
	// Score is the rounded final score on the 0-100 scale.
	Score int
	// RawScore is the unrounded weighted sum on the 0-1 scale.
	RawScore float64
	// Breakdown maps each available metric to its weighted contribution in
	// percentage points. Unavailable metrics are absent, not zero.
	Breakdown map[string]float64
}

// Scorer computes the final risk score from normalized metrics and the
// effective weight table. It holds no mutable state: identical inputs
// always produce identical output, which audit reproducibility depends on.
type Scorer struct {
	logger *logger.Logger
}

// NewScorer creates a new Scorer.
func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{logger: log.WithComponent("scorer")}
}

// Score computes score_raw = sum over available metrics of weight * value,
// then round(clamp(score_raw * 100, 0, 100)). Unavailable metrics
// contribute no term; their weight mass is not redistributed, so a job
// with missing data tops out below 100.
func (s *Scorer) Score(catalog *ResolvedCatalog, metrics []NormalizedMetric) ScoreResult {
	var raw float64
	breakdown := make(map[string]float64, len(metrics))

	for _, m := range metrics {
		if !m.Available {
			continue
		}
		contrib := m.Weight * m.Value
		raw += contrib
		// Weighted contribution in percentage points for readability.
		breakdown[m.Name] = math.Round(contrib*100*100) / 100
	}

	score := int(math.Round(clamp(raw*100, 0, 100)))

	s.logger.Debug().
		Int("score", score).
		Float64("raw_score", raw).
		Int("metrics_scored", len(breakdown)).
		Msg("score computed")

	return ScoreResult{
		Score:     score,
		RawScore:  raw,
		Breakdown: breakdown,
	}
}
