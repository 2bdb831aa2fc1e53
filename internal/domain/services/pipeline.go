package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"apkrisk/internal/domain/models"
	"apkrisk/pkg/logger"
)

// State is a phase of the assessment pipeline.
type State string

const (
	StateCollecting  State = "collecting"
	StateNormalizing State = "normalizing"
	StateScoring     State = "scoring"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Job is the per-call input for one assessment. StaticResults maps
// extractor names to their reports; DynamicEvents carries an
// already-collected event sequence, or EventStream a live one bounded by
// DynamicTimeout. Overrides are transient and validated before scoring.
type Job struct {
	PackageName   string
	StaticResults map[string]models.StaticResult

	DynamicEvents  []models.InstrumentationEvent
	EventStream    <-chan models.InstrumentationEvent
	DynamicTimeout time.Duration

	Overrides models.ScoringOverrides
}

// Pipeline sequences adaptation, ingestion, normalization, scoring and
// rationale generation into one job: Collecting -> Normalizing -> Scoring
// -> Done, with Failed as the terminal error state. The pipeline itself is
// stateless between jobs and safe for concurrent use.
type Pipeline struct {
	adapter   *Adapter
	ingestor  *Ingestor
	normalize *Normalizer
	scorer    *Scorer
	rationale *RationaleGenerator
	logger    *logger.Logger
}

// NewPipeline wires the engine stages together. intel may be nil; bands
// come from configuration.
func NewPipeline(bands models.ScoreBands, intel EndpointIntel, log *logger.Logger) *Pipeline {
	return &Pipeline{
		adapter:   NewAdapter(log),
		ingestor:  NewIngestor(intel, log),
		normalize: NewNormalizer(log),
		scorer:    NewScorer(log),
		rationale: NewRationaleGenerator(bands, log),
		logger:    log.WithComponent("pipeline"),
	}
}

// Run executes one assessment job. Configuration and mandatory-data errors
// return a *PipelineError and no assessment; optional-capability gaps and
// dynamic truncation degrade into notices on the produced report.
func (p *Pipeline) Run(ctx context.Context, job Job) (*models.RiskAssessment, error) {
	log := p.logger.WithPackage(job.PackageName)

	// Collecting: fan out per-extractor adaptation and dynamic ingestion,
	// then join. Scoring must never see a half-collected metric set.
	log.Debug().Str("state", string(StateCollecting)).Msg("state entered")

	avail := models.ResolveFeatureAvailability(job.StaticResults)
	extractors := models.AllExtractors()

	staticMetrics := make([][]models.MetricValue, len(extractors))
	notices := make([]string, len(extractors))
	var dynamic IngestResult

	g, gctx := errgroup.WithContext(ctx)
	for idx, name := range extractors {
		idx, name := idx, name
		g.Go(func() error {
			res, present := job.StaticResults[name]
			metrics, notice, err := p.adapter.AdaptExtractor(name, res, present, avail)
			if err != nil {
				return err
			}
			staticMetrics[idx] = metrics
			notices[idx] = notice
			return nil
		})
	}
	g.Go(func() error {
		if job.EventStream != nil {
			dynamic = p.ingestor.Ingest(gctx, job.EventStream, job.DynamicTimeout)
		} else {
			dynamic = p.ingestor.IngestSlice(job.DynamicEvents)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, p.fail(log, StateCollecting, err)
	}

	metrics := make([]models.MetricValue, 0, len(extractors)+len(dynamic.Metrics))
	for _, ms := range staticMetrics {
		metrics = append(metrics, ms...)
	}
	metrics = append(metrics, dynamic.Metrics...)

	jobNotices := make([]string, 0, len(notices)+1)
	for _, n := range notices {
		if n != "" {
			jobNotices = append(jobNotices, n)
		}
	}
	if dynamic.Truncated {
		jobNotices = append(jobNotices, "dynamic analysis truncated")
	}

	// Normalizing: validate overrides before any scoring proceeds, then map
	// every metric onto the uniform [0, 1] scale.
	log.Debug().Str("state", string(StateNormalizing)).Msg("state entered")

	catalog, err := ResolveCatalog(job.Overrides)
	if err != nil {
		return nil, p.fail(log, StateNormalizing, err)
	}
	normalized := p.normalize.Normalize(catalog, metrics)

	// Scoring: pure computation plus rationale, then the immutable report.
	log.Debug().Str("state", string(StateScoring)).Msg("state entered")

	result := p.scorer.Score(catalog, normalized)
	rationale, level := p.rationale.Generate(catalog, normalized, result)

	assessment := &models.RiskAssessment{
		ID:               uuid.New(),
		PackageName:      p.packageName(job),
		Score:            result.Score,
		RiskLevel:        level,
		Rationale:        rationale,
		Breakdown:        result.Breakdown,
		Notices:          jobNotices,
		DynamicTruncated: dynamic.Truncated,
		AnalyzedAt:       time.Now().UTC(),
		EngineVersion:    EngineVersion,
	}

	log.Info().
		Str("state", string(StateDone)).
		Int("score", assessment.Score).
		Str("risk_level", string(assessment.RiskLevel)).
		Int("notices", len(assessment.Notices)).
		Bool("dynamic_truncated", assessment.DynamicTruncated).
		Msg("assessment completed")

	return assessment, nil
}

// fail records the terminal transition and wraps the cause.
func (p *Pipeline) fail(log *logger.Logger, state State, err error) error {
	log.Error().Err(err).Str("state", string(StateFailed)).Str("failed_in", string(state)).Msg("pipeline failed")
	return &PipelineError{State: state, Err: err}
}

// packageName prefers the caller-supplied name, falling back to the
// manifest's package declaration.
func (p *Pipeline) packageName(job Job) string {
	if job.PackageName != "" {
		return job.PackageName
	}
	if res, ok := job.StaticResults[models.ExtractorManifest]; ok && res.Manifest != nil {
		return res.Manifest.PackageName
	}
	return ""
}
