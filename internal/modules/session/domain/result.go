package domain

import (
	"strconv"
	"strings"
)

const (
	notAvailable = "N/A"
	redoHint     = "Perform a real walk of at least 30 seconds, please."
	loadingText  = "Loading result..."
)

// Outcome is what the UI shows once a measurement has been materialized.
type Outcome struct {
	Success bool
	Text    string
	Err     error
}

func MapResult(m MeasurementResult) Outcome {
	var sb strings.Builder
	switch m.Completeness {
	case CompletenessPartial:
		sb.WriteString("Partial Analysis:\n")
		sb.WriteString("steps=" + formatSteps(m.StepCount) + "\n")
		sb.WriteString("cadence=" + formatParam(m, ParamWalkingCadence) + "\n")
		return Outcome{Success: true, Text: sb.String()}
	case CompletenessFull:
		sb.WriteString("Full Analysis:\n")
		sb.WriteString("steps=" + formatSteps(m.StepCount) + "\n")
		sb.WriteString("walk score=" + formatParam(m, ParamWalkScore) + "\n")
		return Outcome{Success: true, Text: sb.String()}
	default:
		detail := m.Error
		if detail == "" {
			detail = "unknown"
		}
		sb.WriteString("Empty Analysis:\n")
		sb.WriteString("error=" + detail + "\n")
		sb.WriteString(redoHint)
		return Outcome{Text: sb.String(), Err: &EmptyAnalysis{Detail: detail}}
	}
}

// FailureText renders an asynchronous failure for the result area.
func FailureText(err error) string {
	return "Error:\n" + err.Error()
}

func formatSteps(steps *int) string {
	if steps == nil {
		return notAvailable
	}
	return strconv.Itoa(*steps)
}

func formatParam(m MeasurementResult, name string) string {
	v, ok := m.Param(name)
	if !ok {
		return notAvailable
	}
	return FormatFloat(v)
}

func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
