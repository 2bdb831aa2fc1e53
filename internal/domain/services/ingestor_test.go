package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apkrisk/internal/domain/models"
	"apkrisk/pkg/logger"
)

// stubIntel flags any endpoint containing a marker substring.
type stubIntel struct {
	bad map[string]bool
}

func (s *stubIntel) IsMalicious(endpoint string) bool {
	return s.bad[endpoint]
}

func metricByName(t *testing.T, metrics []models.MetricValue, name string) models.MetricValue {
	t.Helper()
	for _, m := range metrics {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("metric %s not found", name)
	return models.MetricValue{}
}

func TestIngestSlice_TagDispatch(t *testing.T) {
	i := NewIngestor(nil, logger.Nop())

	events := []models.InstrumentationEvent{
		{Tag: "PERMISSION", Payload: "android.permission.CAMERA"},
		{Tag: "PERMISSION", Payload: "android.permission.READ_CONTACTS"},
		{Tag: "NETWORK", Payload: "https://example.com"},
		{Tag: "FILE_WRITE", Payload: "/data/data/com.example/files/x"},
		{Tag: "CRYPTO", Payload: "AES"},
		{Tag: "whatever", Payload: ""},
	}

	result := i.IngestSlice(events)
	assert.Equal(t, 6, result.Events)
	assert.False(t, result.Truncated)

	assert.Equal(t, 2.0, metricByName(t, result.Metrics, "permission_invocation_count").Raw)
	assert.Equal(t, 1.0, metricByName(t, result.Metrics, "file_write_count").Raw)
	assert.Equal(t, 2.0, metricByName(t, result.Metrics, "other_event_count").Raw)
	assert.Equal(t, 0.0, metricByName(t, result.Metrics, "cleartext_endpoint_count").Raw)
}

func TestIngestSlice_CleartextDetection(t *testing.T) {
	i := NewIngestor(nil, logger.Nop())

	events := []models.InstrumentationEvent{
		{Tag: "NETWORK", Payload: "http://insecure.example.com/api"},
		{Tag: "NETWORK", Payload: "HTTP://UPPER.example.com"},
		{Tag: "NETWORK", Payload: "ftp://files.example.com"},
		{Tag: "NETWORK", Payload: "https://secure.example.com"},
	}

	result := i.IngestSlice(events)
	assert.Equal(t, 3.0, metricByName(t, result.Metrics, "cleartext_endpoint_count").Raw)
}

func TestIngestSlice_MaliciousEndpoints(t *testing.T) {
	intel := &stubIntel{bad: map[string]bool{
		"http://evil.example.com": true,
	}}
	i := NewIngestor(intel, logger.Nop())

	events := []models.InstrumentationEvent{
		{Tag: "NETWORK", Payload: "http://evil.example.com"},
		{Tag: "NETWORK", Payload: "https://benign.example.com"},
	}

	result := i.IngestSlice(events)
	assert.Equal(t, 1.0, metricByName(t, result.Metrics, "malicious_endpoint_count").Raw)
}

func TestIngestSlice_EmptyStreamMarksDynamicUnavailable(t *testing.T) {
	i := NewIngestor(nil, logger.Nop())

	result := i.IngestSlice(nil)
	assert.Zero(t, result.Events)
	require.NotEmpty(t, result.Metrics)

	for _, m := range result.Metrics {
		assert.Equal(t, models.MetricSourceDynamic, m.Source)
		assert.False(t, m.Available, "metric %s should be unavailable", m.Name)
	}
}

func TestIngest_DrainsUntilClose(t *testing.T) {
	i := NewIngestor(nil, logger.Nop())

	events := make(chan models.InstrumentationEvent, 3)
	events <- models.InstrumentationEvent{Tag: "PERMISSION"}
	events <- models.InstrumentationEvent{Tag: "FILE_WRITE"}
	events <- models.InstrumentationEvent{Tag: "FILE_WRITE"}
	close(events)

	result := i.Ingest(context.Background(), events, time.Second)
	assert.Equal(t, 3, result.Events)
	assert.False(t, result.Truncated)
	assert.Equal(t, 2.0, metricByName(t, result.Metrics, "file_write_count").Raw)
}

func TestIngest_TimeoutTruncates(t *testing.T) {
	i := NewIngestor(nil, logger.Nop())

	// Never closed; the timeout must break the loop.
	events := make(chan models.InstrumentationEvent, 1)
	events <- models.InstrumentationEvent{Tag: "PERMISSION"}

	result := i.Ingest(context.Background(), events, 20*time.Millisecond)
	assert.True(t, result.Truncated)
	assert.Equal(t, 1, result.Events)
	assert.Equal(t, 1.0, metricByName(t, result.Metrics, "permission_invocation_count").Raw)

	// Truncation is a degradation, not a skip: metrics stay available.
	for _, m := range result.Metrics {
		assert.True(t, m.Available)
	}
}

func TestIngest_ContextCancelTruncates(t *testing.T) {
	i := NewIngestor(nil, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := make(chan models.InstrumentationEvent)
	result := i.Ingest(ctx, events, time.Minute)
	assert.True(t, result.Truncated)
}
