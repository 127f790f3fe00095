package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "stridekit/internal/platform/errors"
)

const SchemaVersion = 1

const (
	CompletenessEmpty   = "empty"
	CompletenessPartial = "partial"
	CompletenessFull    = "full"
)

// Record is one persisted measurement together with the session that produced it.
type Record struct {
	MeasurementID   string
	SessionID       string
	ActivityType    string
	Completeness    string
	StepCount       *int
	Parameters      map[string]float64
	Error           string
	StartedAt       time.Time
	RecordedAt      time.Time
	DurationSeconds int
	Note            string
	Tags            []string
	AssistiveDevice string
	AssistanceLevel string
	CustomMetadata  map[string]any
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.MeasurementID) == "" {
		return fmt.Errorf("%w: measurement id is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(r.ActivityType) == "" {
		return fmt.Errorf("%w: activity type is required", apperrors.ErrInvalidInput)
	}
	switch r.Completeness {
	case CompletenessEmpty:
		if len(r.Parameters) > 0 {
			return fmt.Errorf("%w: empty measurement carries parameters", apperrors.ErrInvalidInput)
		}
	case CompletenessPartial, CompletenessFull:
	default:
		return fmt.Errorf("%w: unknown completeness %q", apperrors.ErrInvalidInput, r.Completeness)
	}
	if r.StepCount != nil && *r.StepCount < 0 {
		return fmt.Errorf("%w: negative step count", apperrors.ErrInvalidInput)
	}
	return nil
}

// Filter narrows a history listing. Zero values match everything.
type Filter struct {
	ActivityType string
	Completeness string
	Since        time.Time
	Limit        int
}

func (f Filter) Match(r Record) bool {
	if f.ActivityType != "" && r.ActivityType != f.ActivityType {
		return false
	}
	if f.Completeness != "" && r.Completeness != f.Completeness {
		return false
	}
	if !f.Since.IsZero() && r.RecordedAt.Before(f.Since) {
		return false
	}
	return true
}
