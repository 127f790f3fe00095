package domain

import "fmt"

type RecorderState uint8

const (
	RecorderIdle RecorderState = iota
	RecorderRecording
	RecorderFinished
	RecorderFailed
)

// RecorderStatus is one transition reported by the external recorder.
type RecorderStatus struct {
	State     RecorderState
	SessionID string
	ErrorKind string
}

func RecorderIdleStatus() RecorderStatus { return RecorderStatus{State: RecorderIdle} }

func RecordingStatus(sessionID string) RecorderStatus {
	return RecorderStatus{State: RecorderRecording, SessionID: sessionID}
}

func FinishedStatus(sessionID string) RecorderStatus {
	return RecorderStatus{State: RecorderFinished, SessionID: sessionID}
}

func RecorderFailedStatus(kind string) RecorderStatus {
	return RecorderStatus{State: RecorderFailed, ErrorKind: kind}
}

func (s RecorderStatus) String() string {
	switch s.State {
	case RecorderIdle:
		return "idle"
	case RecorderRecording:
		return fmt.Sprintf("recording(%s)", s.SessionID)
	case RecorderFinished:
		return fmt.Sprintf("finished(%s)", s.SessionID)
	case RecorderFailed:
		return fmt.Sprintf("failed(%s)", s.ErrorKind)
	default:
		return fmt.Sprintf("recorder-state-%d", s.State)
	}
}

type AnalysisStage string

const (
	StageUploading       AnalysisStage = "uploading"
	StageProcessing      AnalysisStage = "processing"
	StagePreparingResult AnalysisStage = "preparing_result"
)

func (s AnalysisStage) Label() string {
	switch s {
	case StageUploading:
		return "Uploading"
	case StageProcessing:
		return "Processing"
	case StagePreparingResult:
		return "Preparing result"
	default:
		return "Analyzing"
	}
}

type AnalysisState uint8

const (
	AnalysisIdle AnalysisState = iota
	AnalysisInProgress
	AnalysisCompleted
	AnalysisFailed
)

// AnalysisStatus is one transition reported by the external analyzer.
type AnalysisStatus struct {
	State         AnalysisState
	Stage         AnalysisStage
	MeasurementID string
	ErrorKind     string
}

func AnalysisIdleStatus() AnalysisStatus { return AnalysisStatus{State: AnalysisIdle} }

func InProgressStatus(stage AnalysisStage) AnalysisStatus {
	return AnalysisStatus{State: AnalysisInProgress, Stage: stage}
}

func CompletedStatus(measurementID string) AnalysisStatus {
	return AnalysisStatus{State: AnalysisCompleted, MeasurementID: measurementID}
}

func AnalysisFailedStatus(kind string) AnalysisStatus {
	return AnalysisStatus{State: AnalysisFailed, ErrorKind: kind}
}

func (s AnalysisStatus) String() string {
	switch s.State {
	case AnalysisIdle:
		return "idle"
	case AnalysisInProgress:
		return fmt.Sprintf("in_progress(%s)", s.Stage)
	case AnalysisCompleted:
		return fmt.Sprintf("completed(%s)", s.MeasurementID)
	case AnalysisFailed:
		return fmt.Sprintf("failed(%s)", s.ErrorKind)
	default:
		return fmt.Sprintf("analysis-state-%d", s.State)
	}
}
