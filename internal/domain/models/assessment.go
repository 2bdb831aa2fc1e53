package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel is the qualitative label derived from the numeric score.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// ScoreBands holds the configurable cut-points between qualitative levels.
// Scores below Medium are low, scores at or above High are high.
type ScoreBands struct {
	Medium int `json:"medium" mapstructure:"medium"`
	High   int `json:"high" mapstructure:"high"`
}

// DefaultScoreBands returns the standard Low < 40 <= Medium < 70 <= High split.
func DefaultScoreBands() ScoreBands {
	return ScoreBands{Medium: 40, High: 70}
}

// Level maps a 0-100 score into a qualitative risk level.
func (b ScoreBands) Level(score int) RiskLevel {
	switch {
	case score >= b.High:
		return RiskLevelHigh
	case score >= b.Medium:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// RationaleEntry explains one metric's part in the final score. Entries are
// ordered by descending absolute weighted contribution.
type RationaleEntry struct {
	Metric       string  `json:"metric"`
	Contribution float64 `json:"contribution"`
	Explanation  string  `json:"explanation"`
}

// RiskAssessment is the immutable output of one scoring job. Ownership
// passes to the caller; the engine retains nothing once it is produced.
type RiskAssessment struct {
	ID          uuid.UUID `json:"id"`
	PackageName string    `json:"package_name"`

	Score     int       `json:"score"`
	RiskLevel RiskLevel `json:"risk_level"`

	// Rationale ranks the drivers of the score; Breakdown maps every
	// available metric to its weighted contribution in percentage points.
	Rationale []RationaleEntry   `json:"rationale"`
	Breakdown map[string]float64 `json:"breakdown"`

	// Notices carry non-fatal degradations (optional capability missing,
	// truncated dynamic stream). They never indicate job failure.
	Notices          []string `json:"notices,omitempty"`
	DynamicTruncated bool     `json:"dynamic_truncated,omitempty"`

	AnalyzedAt    time.Time `json:"analyzed_at"`
	EngineVersion string    `json:"engine_version"`
}
