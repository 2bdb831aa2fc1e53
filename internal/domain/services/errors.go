package services

import (
	"errors"
	"fmt"
)

// Sentinel causes for typed failures. Callers match with errors.Is.
var (
	ErrUnknownMetric             = errors.New("unknown metric name")
	ErrNegativeCap               = errors.New("negative cap")
	ErrWeightOutOfRange          = errors.New("weight out of range")
	ErrMandatoryExtractorMissing = errors.New("mandatory extractor missing")
)

// ConfigError reports an invalid scoring configuration override. It is
// fatal to the invocation; no score is produced.
type ConfigError struct {
	Metric string
	Reason error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("scoring config: %q: %v", e.Metric, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Reason
}

// PipelineError reports the terminal failure of a scoring job, recording
// the state in which the pipeline failed.
type PipelineError struct {
	State State
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed in %s: %v", e.State, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
