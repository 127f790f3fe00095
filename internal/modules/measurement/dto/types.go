package dto

import "time"

type RecordInput struct {
	MeasurementID   string
	SessionID       string
	ActivityType    string
	Completeness    string
	StepCount       *int
	Parameters      map[string]float64
	Error           string
	StartedAt       time.Time
	DurationSeconds int
	Note            string
	Tags            []string
	AssistiveDevice string
	AssistanceLevel string
	CustomMetadata  map[string]any
}

type RecordOutput struct {
	MeasurementID string
	NotePath      string
	RecordedAt    time.Time
}

type ListInput struct {
	ActivityType string
	Completeness string
	Since        time.Time
	Limit        int
}

type MeasurementOutput struct {
	MeasurementID   string
	SessionID       string
	ActivityType    string
	Completeness    string
	StepCount       *int
	Parameters      map[string]float64
	Error           string
	RecordedAt      time.Time
	DurationSeconds int
	Note            string
	Tags            []string
}

type InsightOutput struct {
	Name        string
	DisplayName string
	Value       float64
	Units       string
	Known       bool
	WithinNorm  bool
	Score       string
	Summary     string
}

type WeeklyOutput struct {
	Average float64
	Walks   int
	Since   time.Time
}
