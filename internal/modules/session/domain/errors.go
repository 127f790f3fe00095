package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyActive          = errors.New("a session is already active")
	ErrNotRecording           = errors.New("no recording in progress")
	ErrNotAwaitingAnalysis    = errors.New("no finished recording awaiting analysis")
	ErrAnalysisRequested      = errors.New("analysis already requested")
	ErrOutOfBandReset         = errors.New("recorder was reset outside of the session")
	ErrMeasurementUnavailable = errors.New("measurement unavailable")
	ErrCoordinatorStopped     = errors.New("coordinator is not running")
)

// RecorderFailure is reported when the recorder emits Failed(kind).
type RecorderFailure struct {
	Kind string
}

func (e *RecorderFailure) Error() string { return fmt.Sprintf("recorder failure: %s", e.Kind) }

// AnalysisFailure is reported when the analyzer emits Failed(kind) or the
// measurement cannot be fetched.
type AnalysisFailure struct {
	Kind string
	Err  error
}

func (e *AnalysisFailure) Error() string { return fmt.Sprintf("analysis failure: %s", e.Kind) }
func (e *AnalysisFailure) Unwrap() error { return e.Err }

// EmptyAnalysis is a successful analysis that produced no usable parameters.
type EmptyAnalysis struct {
	Detail string
}

func (e *EmptyAnalysis) Error() string { return fmt.Sprintf("empty analysis: %s", e.Detail) }
