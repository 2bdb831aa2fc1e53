package services

import (
	"fmt"
	"math"
	"sort"

	"apkrisk/internal/domain/models"
	"apkrisk/pkg/logger"
)

// RationaleGenerator ranks the metrics that drove a score and renders a
// structured, deterministic explanation for each.
type RationaleGenerator struct {
	bands  models.ScoreBands
	logger *logger.Logger
}

// NewRationaleGenerator creates a generator with the given score bands.
func NewRationaleGenerator(bands models.ScoreBands, log *logger.Logger) *RationaleGenerator {
	return &RationaleGenerator{
		bands:  bands,
		logger: log.WithComponent("rationale"),
	}
}

// Generate returns rationale entries ordered by descending absolute
// weighted contribution, ties broken by catalog declaration order, plus
// the qualitative level for the score. Only metrics that actually
// contributed appear; a clean assessment yields a single summary entry.
func (g *RationaleGenerator) Generate(catalog *ResolvedCatalog, metrics []NormalizedMetric, result ScoreResult) ([]models.RationaleEntry, models.RiskLevel) {
	type ranked struct {
		name    string
		contrib float64
		order   int
	}

	contributors := make([]ranked, 0, len(metrics))
	for _, m := range metrics {
		if !m.Available {
			continue
		}
		contrib := m.Weight * m.Value * 100
		if contrib == 0 {
			continue
		}
		contributors = append(contributors, ranked{
			name:    m.Name,
			contrib: contrib,
			order:   catalog.Order(m.Name),
		})
	}

	sort.SliceStable(contributors, func(i, j int) bool {
		a, b := contributors[i], contributors[j]
		if math.Abs(a.contrib) != math.Abs(b.contrib) {
			return math.Abs(a.contrib) > math.Abs(b.contrib)
		}
		return a.order < b.order
	})

	entries := make([]models.RationaleEntry, 0, len(contributors))
	for _, c := range contributors {
		spec, _ := catalog.Spec(c.name)
		entries = append(entries, models.RationaleEntry{
			Metric:       c.name,
			Contribution: math.Round(c.contrib*100) / 100,
			Explanation:  g.explain(c.name, c.contrib, result.RawScore, spec),
		})
	}

	if len(entries) == 0 {
		entries = append(entries, models.RationaleEntry{
			Metric:      "",
			Explanation: "no significant risk factors observed",
		})
	}

	return entries, g.bands.Level(result.Score)
}

// explain renders one metric's share of the final score as a sentence,
// e.g. "permission_density contributed 100% of the score due to elevated
// declared-permission ratio".
func (g *RationaleGenerator) explain(name string, contrib, rawScore float64, spec models.MetricSpec) string {
	share := 0.0
	if rawScore > 0 {
		share = contrib / (rawScore * 100) * 100
	}
	return fmt.Sprintf("%s contributed %.0f%% of the score due to %s", name, share, spec.Description)
}
