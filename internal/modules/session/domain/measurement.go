package domain

import (
	"fmt"
	"strings"

	apperrors "stridekit/internal/platform/errors"
)

type Completeness uint8

const (
	CompletenessEmpty Completeness = iota
	CompletenessPartial
	CompletenessFull
)

func (c Completeness) String() string {
	switch c {
	case CompletenessEmpty:
		return "empty"
	case CompletenessPartial:
		return "partial"
	case CompletenessFull:
		return "full"
	default:
		return fmt.Sprintf("completeness-%d", c)
	}
}

func ParseCompleteness(raw string) (Completeness, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "empty":
		return CompletenessEmpty, nil
	case "partial":
		return CompletenessPartial, nil
	case "full":
		return CompletenessFull, nil
	default:
		return 0, fmt.Errorf("%w: unknown completeness %q", apperrors.ErrInvalidInput, raw)
	}
}

const (
	ParamWalkingCadence = "walking_cadence"
	ParamWalkScore      = "walk_score"
)

// PartialParameters are present on every partial analysis of a walk.
var PartialParameters = []string{ParamWalkingCadence}

// MeasurementResult is what the analyzer hands back for one finished recording.
type MeasurementResult struct {
	MeasurementID string
	Completeness  Completeness
	StepCount     *int
	Parameters    map[string]float64
	Error         string
}

// Validate checks the completeness contract: an empty result carries no
// parameters and a full result carries every partial parameter.
func (m MeasurementResult) Validate() error {
	if strings.TrimSpace(m.MeasurementID) == "" {
		return fmt.Errorf("%w: measurement id is required", apperrors.ErrInvalidInput)
	}
	switch m.Completeness {
	case CompletenessEmpty:
		if len(m.Parameters) > 0 {
			return fmt.Errorf("%w: empty analysis must not carry parameters", apperrors.ErrInvalidInput)
		}
	case CompletenessPartial:
		if m.Error != "" {
			return fmt.Errorf("%w: partial analysis must not carry an error", apperrors.ErrInvalidInput)
		}
	case CompletenessFull:
		if m.Error != "" {
			return fmt.Errorf("%w: full analysis must not carry an error", apperrors.ErrInvalidInput)
		}
		for _, name := range PartialParameters {
			if _, ok := m.Parameters[name]; !ok {
				return fmt.Errorf("%w: full analysis is missing %s", apperrors.ErrInvalidInput, name)
			}
		}
	default:
		return fmt.Errorf("%w: unknown completeness %d", apperrors.ErrInvalidInput, m.Completeness)
	}
	return nil
}

func (m MeasurementResult) Param(name string) (float64, bool) {
	v, ok := m.Parameters[name]
	return v, ok
}

func IntPtr(v int) *int { return &v }
