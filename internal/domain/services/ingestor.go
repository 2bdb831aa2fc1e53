package services

import (
	"context"
	"strings"
	"time"

	"apkrisk/internal/domain/models"
	"apkrisk/pkg/logger"
)

// EndpointIntel classifies runtime network endpoints against threat
// intelligence. It is an external collaborator; a nil matcher simply means
// no malicious-endpoint signal.
type EndpointIntel interface {
	IsMalicious(endpoint string) bool
}

// IngestResult holds the dynamic metric counts aggregated from one event
// stream. Individual events are not retained.
type IngestResult struct {
	Metrics   []models.MetricValue
	Truncated bool
	Events    int
}

// Ingestor aggregates a tagged instrumentation event stream into dynamic
// metric counts. The stream is finite and non-restartable; it is consumed
// exactly once, bounded by the sandbox-supplied timeout.
type Ingestor struct {
	intel  EndpointIntel
	logger *logger.Logger
}

// NewIngestor creates an Ingestor. intel may be nil.
func NewIngestor(intel EndpointIntel, log *logger.Logger) *Ingestor {
	return &Ingestor{
		intel:  intel,
		logger: log.WithComponent("ingestor"),
	}
}

// Ingest drains the event channel until it closes, the timeout elapses, or
// ctx is canceled. A timeout is not an error: whatever arrived is accepted
// and the result is flagged truncated. A stream that closes with zero
// events means dynamic analysis was skipped; every dynamic metric is then
// marked unavailable.
func (i *Ingestor) Ingest(ctx context.Context, events <-chan models.InstrumentationEvent, timeout time.Duration) IngestResult {
	counts := newDynamicCounts()
	total := 0
	truncated := false

	timer := time.NewTimer(timeout)
	defer timer.Stop()

loop:
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			i.consume(counts, ev)
			total++
		case <-timer.C:
			truncated = true
			break loop
		case <-ctx.Done():
			truncated = true
			break loop
		}
	}

	if truncated {
		i.logger.Warn().Int("events", total).Msg("dynamic event stream truncated by timeout")
	}

	if total == 0 && !truncated {
		return IngestResult{Metrics: i.skippedMetrics()}
	}

	return IngestResult{
		Metrics:   counts.metrics(),
		Truncated: truncated,
		Events:    total,
	}
}

// IngestSlice aggregates an already-collected event stream. Used by callers
// that hold the full sequence, such as the job submission API.
func (i *Ingestor) IngestSlice(events []models.InstrumentationEvent) IngestResult {
	if len(events) == 0 {
		return IngestResult{Metrics: i.skippedMetrics()}
	}

	counts := newDynamicCounts()
	for _, ev := range events {
		i.consume(counts, ev)
	}

	return IngestResult{
		Metrics: counts.metrics(),
		Events:  len(events),
	}
}

// consume dispatches one event through the closed tag variant type.
func (i *Ingestor) consume(counts *dynamicCounts, ev models.InstrumentationEvent) {
	switch models.ParseEventTag(ev.Tag) {
	case models.EventTagPermission:
		counts.permissionInvocations++
	case models.EventTagNetwork:
		if isCleartextEndpoint(ev.Payload) {
			counts.cleartextEndpoints++
		}
		if i.intel != nil && i.intel.IsMalicious(ev.Payload) {
			counts.maliciousEndpoints++
		}
	case models.EventTagFileWrite:
		counts.fileWrites++
	default:
		counts.otherEvents++
	}
}

// skippedMetrics marks the whole dynamic metric set unavailable for jobs
// that ran no sandbox phase.
func (i *Ingestor) skippedMetrics() []models.MetricValue {
	var out []models.MetricValue
	for _, spec := range models.DefaultCatalog() {
		if spec.Source != models.MetricSourceDynamic {
			continue
		}
		out = append(out, models.MetricValue{
			Name:   spec.Name,
			Kind:   spec.Kind,
			Source: spec.Source,
		})
	}
	return out
}

// isCleartextEndpoint reports whether an endpoint uses an unencrypted scheme.
func isCleartextEndpoint(endpoint string) bool {
	endpoint = strings.ToLower(strings.TrimSpace(endpoint))
	return strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "ftp://")
}

// dynamicCounts is the ingestor's aggregation state for one stream.
type dynamicCounts struct {
	permissionInvocations int
	cleartextEndpoints    int
	fileWrites            int
	maliciousEndpoints    int
	otherEvents           int
}

func newDynamicCounts() *dynamicCounts {
	return &dynamicCounts{}
}

func (c *dynamicCounts) metrics() []models.MetricValue {
	return []models.MetricValue{
		metricValue("permission_invocation_count", float64(c.permissionInvocations)),
		metricValue("cleartext_endpoint_count", float64(c.cleartextEndpoints)),
		metricValue("file_write_count", float64(c.fileWrites)),
		metricValue("malicious_endpoint_count", float64(c.maliciousEndpoints)),
		metricValue("other_event_count", float64(c.otherEvents)),
	}
}
