package domain

import (
	"sort"
	"strconv"
)

type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// ParamSpec describes a gait parameter the analyzer may report.
type ParamSpec struct {
	Name        string
	DisplayName string
	Units       string
	NormLow     float64
	NormHigh    float64
	// Tolerance widens the norm band for the yellow score, as a fraction of its width.
	Tolerance   float64
}

var catalog = map[string]ParamSpec{
	"walk_score":             {Name: "walk_score", DisplayName: "Walk score", Units: "", NormLow: 70, NormHigh: 100, Tolerance: 0.5},
	"walking_cadence":        {Name: "walking_cadence", DisplayName: "Cadence", Units: "steps/min", NormLow: 100, NormHigh: 130, Tolerance: 0.3},
	"walking_velocity":       {Name: "walking_velocity", DisplayName: "Walking speed", Units: "m/s", NormLow: 1.0, NormHigh: 1.6, Tolerance: 0.3},
	"walking_double_support": {Name: "walking_double_support", DisplayName: "Double support", Units: "%", NormLow: 18, NormHigh: 30, Tolerance: 0.4},
	"walking_stride_length":  {Name: "walking_stride_length", DisplayName: "Stride length", Units: "m", NormLow: 1.1, NormHigh: 1.6, Tolerance: 0.3},
}

func LookupParam(name string) (ParamSpec, bool) {
	spec, ok := catalog[name]
	return spec, ok
}

// Insight is the enriched reading of one parameter value.
type Insight struct {
	Name        string
	DisplayName string
	Value       float64
	Units       string
	Known       bool
	WithinNorm  bool
	Score       Color
}

func (i Insight) String() string {
	value := strconv.FormatFloat(i.Value, 'f', -1, 64)
	if i.Units != "" {
		value += " " + i.Units
	}
	if !i.Known {
		return i.DisplayName + ": " + value
	}
	norm := "No"
	if i.WithinNorm {
		norm = "Yes"
	}
	return i.DisplayName + ": " + value + " (within norms: " + norm + ", score: " + string(i.Score) + ")"
}

func Describe(name string, value float64) Insight {
	spec, ok := LookupParam(name)
	if !ok {
		return Insight{Name: name, DisplayName: name, Value: value}
	}
	insight := Insight{
		Name:        name,
		DisplayName: spec.DisplayName,
		Value:       value,
		Units:       spec.Units,
		Known:       true,
		WithinNorm:  value >= spec.NormLow && value <= spec.NormHigh,
	}
	slack := (spec.NormHigh - spec.NormLow) * spec.Tolerance
	switch {
	case insight.WithinNorm:
		insight.Score = ColorGreen
	case value >= spec.NormLow-slack && value <= spec.NormHigh+slack:
		insight.Score = ColorYellow
	default:
		insight.Score = ColorRed
	}
	return insight
}

// DescribeAll returns insights for every parameter, sorted by name.
func DescribeAll(params map[string]float64) []Insight {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Insight, 0, len(names))
	for _, name := range names {
		out = append(out, Describe(name, params[name]))
	}
	return out
}
