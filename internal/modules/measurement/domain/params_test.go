package domain_test

import (
	"errors"
	"testing"
	"time"

	"stridekit/internal/modules/measurement/domain"
	apperrors "stridekit/internal/platform/errors"
)

func TestDescribeScores(t *testing.T) {
	t.Parallel()
	cases := []struct {
		value float64
		want  domain.Color
		norm  bool
	}{
		{value: 115, want: domain.ColorGreen, norm: true},
		{value: 95, want: domain.ColorYellow},
		{value: 60, want: domain.ColorRed},
	}
	for _, tc := range cases {
		insight := domain.Describe("walking_cadence", tc.value)
		if insight.Score != tc.want || insight.WithinNorm != tc.norm {
			t.Fatalf("cadence %v: got %s/%v", tc.value, insight.Score, insight.WithinNorm)
		}
	}
	if got := domain.Describe("walking_cadence", 115).String(); got != "Cadence: 115 steps/min (within norms: Yes, score: green)" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestDescribeUnknownParameter(t *testing.T) {
	t.Parallel()
	insight := domain.Describe("mystery", 1.25)
	if insight.Known || insight.Score != "" {
		t.Fatalf("unknown parameter should not be scored: %+v", insight)
	}
	if insight.String() != "mystery: 1.25" {
		t.Fatalf("unexpected summary %q", insight.String())
	}
}

func TestDescribeAllIsSorted(t *testing.T) {
	t.Parallel()
	insights := domain.DescribeAll(map[string]float64{"walking_velocity": 1.2, "walk_score": 80, "walking_cadence": 110})
	if len(insights) != 3 || insights[0].Name != "walk_score" || insights[2].Name != "walking_velocity" {
		t.Fatalf("unexpected order %+v", insights)
	}
}

func TestWeeklyWalkScore(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	records := []domain.Record{
		{MeasurementID: "a", ActivityType: "walk", Completeness: domain.CompletenessFull, RecordedAt: now.Add(-24 * time.Hour), Parameters: map[string]float64{"walk_score": 80}},
		{MeasurementID: "b", ActivityType: "walk", Completeness: domain.CompletenessFull, RecordedAt: now.Add(-48 * time.Hour), Parameters: map[string]float64{"walk_score": 60}},
		{MeasurementID: "c", ActivityType: "walk", Completeness: domain.CompletenessFull, RecordedAt: now.Add(-10 * 24 * time.Hour), Parameters: map[string]float64{"walk_score": 10}},
		{MeasurementID: "d", ActivityType: "walk", Completeness: domain.CompletenessPartial, RecordedAt: now.Add(-time.Hour), Parameters: map[string]float64{"walking_cadence": 100}},
		{MeasurementID: "e", ActivityType: "balance", Completeness: domain.CompletenessFull, RecordedAt: now.Add(-time.Hour), Parameters: map[string]float64{"walk_score": 5}},
	}
	score, err := domain.WeeklyWalkScore(records, now)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if score.Walks != 2 || score.Average != 70 {
		t.Fatalf("unexpected weekly score %+v", score)
	}

	if _, err := domain.WeeklyWalkScore(records[2:], now); !errors.Is(err, apperrors.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestRecordValidate(t *testing.T) {
	t.Parallel()
	base := domain.Record{MeasurementID: "m", ActivityType: "walk", Completeness: domain.CompletenessPartial}
	if err := base.Validate(); err != nil {
		t.Fatalf("record should be valid: %v", err)
	}
	empty := base
	empty.Completeness = domain.CompletenessEmpty
	empty.Parameters = map[string]float64{"walk_score": 1}
	if err := empty.Validate(); err == nil {
		t.Fatalf("empty record with parameters should fail")
	}
	unknown := base
	unknown.Completeness = "most"
	if err := unknown.Validate(); err == nil {
		t.Fatalf("unknown completeness should fail")
	}
}
