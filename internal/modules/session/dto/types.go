package dto

import "time"

type StartInput struct {
	ActivityType    string
	DurationSeconds int
	Note            string
	Tags            []string
	AssistiveDevice string
	AssistanceLevel string
	// CustomMetadata values are typed by inference: bool, int, float, else string.
	CustomMetadata map[string]string
}

type ResultOutput struct {
	MeasurementID string
	Completeness  string
	StepCount     *int
	Parameters    map[string]float64
	Error         string
}

type SnapshotOutput struct {
	Seq            uint64
	UIState        string
	Phase          string
	SessionID      string
	ActivityType   string
	StartedAt      time.Time
	ElapsedSeconds int
	IsLoading      bool
	ProgressLabel  string
	ResultText     string
	LastError      string
	EmptyAnalysis  bool
	AutoAnalyze    bool
	AnalysisAsked  bool
	Result         *ResultOutput
}

func (s SnapshotOutput) Active() bool { return s.Phase != "Idle" }
