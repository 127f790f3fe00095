package out

import (
	"context"

	"stridekit/internal/modules/session/domain"
)

// Recorder is the external motion SDK: recording, analysis and the status
// streams it publishes. Calls return once the request has been accepted;
// progress is reported through a Subscription.
type Recorder interface {
	StartRecording(ctx context.Context, req domain.StartRequest) error
	StopRecording(ctx context.Context) error
	ResetRecorder(ctx context.Context) error
	RequestAnalysis(ctx context.Context, sessionID string) error
	// FetchMeasurement returns nil without error when the SDK has no result.
	FetchMeasurement(ctx context.Context, measurementID string) (*domain.MeasurementResult, error)
	Subscribe(ctx context.Context) (Subscription, error)
}

// Subscription delivers recorder and analysis transitions until Close is
// called or the subscribe context is cancelled.
type Subscription interface {
	RecorderStatus() <-chan domain.RecorderStatus
	AnalysisStatus() <-chan domain.AnalysisStatus
	Close()
}
