package models

// MetricKind describes how a metric's raw value is interpreted
type MetricKind string

const (
	// MetricKindContinuous is a ratio already confined to [0, 1]
	MetricKindContinuous MetricKind = "continuous"
	// MetricKindCount is a non-negative integer normalized against a cap
	MetricKindCount MetricKind = "count"
	// MetricKindBoolean maps false/true to 0/1
	MetricKindBoolean MetricKind = "boolean"
)

// MetricSource identifies which analysis phase produced a metric
type MetricSource string

const (
	MetricSourceStatic  MetricSource = "static"
	MetricSourceDynamic MetricSource = "dynamic"
)

// MetricValue is one observed measurement for a named metric.
// Unavailable values carry no information and are excluded from scoring.
type MetricValue struct {
	Name      string       `json:"name"`
	Raw       float64      `json:"raw_value"`
	Kind      MetricKind   `json:"kind"`
	Source    MetricSource `json:"source"`
	Available bool         `json:"available"`
}

// MetricSpec is the configured shape of one metric: its default weight,
// its normalization cap (count metrics only) and the phrase used when
// explaining its contribution to a score.
type MetricSpec struct {
	Name          string       `json:"name"`
	Kind          MetricKind   `json:"kind"`
	Source        MetricSource `json:"source"`
	DefaultWeight float64      `json:"default_weight"`
	Cap           int          `json:"cap,omitempty"`
	Description   string       `json:"description"`
}

// ScoringOverrides are per-call weight/cap replacements. Keys must name
// catalog metrics; unspecified keys fall back to the defaults.
type ScoringOverrides struct {
	Weights map[string]float64 `json:"weights,omitempty"`
	Caps    map[string]int     `json:"caps,omitempty"`
}

// DefaultCatalog returns the full metric catalog in declaration order.
// Declaration order is the tie-break order for rationale ranking, so it is
// part of the engine's observable contract. Default weights sum to exactly
// 1.0 across the catalog; other_event_count is a zero-weighted diagnostic
// bucket for unrecognized instrumentation tags.
func DefaultCatalog() []MetricSpec {
	return []MetricSpec{
		{
			Name:          "permission_density",
			Kind:          MetricKindContinuous,
			Source:        MetricSourceStatic,
			DefaultWeight: 0.23,
			Description:   "elevated declared-permission ratio",
		},
		{
			Name:          "component_exposure",
			Kind:          MetricKindContinuous,
			Source:        MetricSourceStatic,
			DefaultWeight: 0.12,
			Description:   "many exported components",
		},
		{
			Name:          "untrusted_signature",
			Kind:          MetricKindBoolean,
			Source:        MetricSourceStatic,
			DefaultWeight: 0.04,
			Description:   "untrusted or missing signature",
		},
		{
			Name:          "cleartext_traffic_permitted",
			Kind:          MetricKindBoolean,
			Source:        MetricSourceStatic,
			DefaultWeight: 0.04,
			Description:   "cleartext traffic permitted",
		},
		{
			Name:          "missing_certificate_pinning",
			Kind:          MetricKindBoolean,
			Source:        MetricSourceStatic,
			DefaultWeight: 0.03,
			Description:   "missing certificate pinning",
		},
		{
			Name:          "debug_overrides",
			Kind:          MetricKindBoolean,
			Source:        MetricSourceStatic,
			DefaultWeight: 0.01,
			Description:   "debug network overrides present",
		},
		{
			Name:          "expired_certificate",
			Kind:          MetricKindBoolean,
			Source:        MetricSourceStatic,
			DefaultWeight: 0.02,
			Description:   "expired signing certificate",
		},
		{
			Name:          "self_signed_certificate",
			Kind:          MetricKindBoolean,
			Source:        MetricSourceStatic,
			DefaultWeight: 0.02,
			Description:   "self-signed signing certificate",
		},
		{
			Name:          "hardcoded_secret_count",
			Kind:          MetricKindCount,
			Source:        MetricSourceStatic,
			DefaultWeight: 0.05,
			Cap:           20,
			Description:   "hardcoded secrets found in decompiled sources",
		},
		{
			Name:          "vulnerable_dependency_count",
			Kind:          MetricKindCount,
			Source:        MetricSourceStatic,
			DefaultWeight: 0.08,
			Cap:           50,
			Description:   "known vulnerable dependencies found",
		},
		{
			Name:          "yara_match_count",
			Kind:          MetricKindCount,
			Source:        MetricSourceStatic,
			DefaultWeight: 0.06,
			Cap:           10,
			Description:   "YARA rule matches in package contents",
		},
		{
			Name:          "permission_invocation_count",
			Kind:          MetricKindCount,
			Source:        MetricSourceDynamic,
			DefaultWeight: 0.14,
			Cap:           50,
			Description:   "frequent permission use at runtime",
		},
		{
			Name:          "cleartext_endpoint_count",
			Kind:          MetricKindCount,
			Source:        MetricSourceDynamic,
			DefaultWeight: 0.08,
			Cap:           10,
			Description:   "cleartext network endpoints detected",
		},
		{
			Name:          "file_write_count",
			Kind:          MetricKindCount,
			Source:        MetricSourceDynamic,
			DefaultWeight: 0.04,
			Cap:           100,
			Description:   "file system writes observed",
		},
		{
			Name:          "malicious_endpoint_count",
			Kind:          MetricKindCount,
			Source:        MetricSourceDynamic,
			DefaultWeight: 0.04,
			Cap:           10,
			Description:   "connections to known malicious endpoints",
		},
		{
			Name:          "other_event_count",
			Kind:          MetricKindCount,
			Source:        MetricSourceDynamic,
			DefaultWeight: 0.00,
			Cap:           100,
			Description:   "unclassified instrumentation events",
		},
	}
}
