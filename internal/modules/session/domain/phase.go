package domain

import (
	"fmt"
	"time"
)

type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseRecording
	PhaseAwaitingAnalysis
)

func (p Phase) Label() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseRecording:
		return "Recording"
	case PhaseAwaitingAnalysis:
		return "Analyzing"
	default:
		return fmt.Sprintf("phase-%d", p)
	}
}

func (p Phase) String() string { return p.Label() }

// Snapshot is the immutable view of the coordinator emitted after every
// transition. Result and Completed describe the last materialized
// measurement and stay set until the next start or reset.
type Snapshot struct {
	Seq            uint64
	Phase          Phase
	SessionID      string
	ActivityType   ActivityType
	StartedAt      time.Time
	ElapsedSeconds int
	IsLoading      bool
	ProgressLabel  string
	ResultText     string
	LastError      error
	Result         *MeasurementResult
	Completed      Session
	AutoAnalyze    bool
	AnalysisAsked  bool
}

func (s Snapshot) UIState() string { return s.Phase.Label() }

// LoadingText is shown while a stopped recording waits for its analysis.
func LoadingText() string { return loadingText }
