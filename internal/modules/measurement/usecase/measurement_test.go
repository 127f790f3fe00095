package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	measurementout "stridekit/internal/modules/measurement/adapter/out"
	"stridekit/internal/modules/measurement/dto"
	measurementin "stridekit/internal/modules/measurement/port/in"
	"stridekit/internal/modules/measurement/service"
	"stridekit/internal/modules/measurement/usecase"
	"stridekit/internal/platform/clock"
	apperrors "stridekit/internal/platform/errors"
)

func newHistory(t *testing.T, clk *clock.Manual) (measurementin.Usecase, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := measurementout.NewSQLiteRecordStore(filepath.Join(dir, "stridekit.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	notesDir := filepath.Join(dir, "measurements")
	svc := service.NewHistoryService(clk, store, measurementout.NewVaultNoteStore(notesDir))
	return usecase.NewInteractor(svc), notesDir
}

func walkInput(id string, completeness string, score float64) dto.RecordInput {
	steps := 80
	input := dto.RecordInput{
		MeasurementID:   id,
		SessionID:       "s-" + id,
		ActivityType:    "walk",
		Completeness:    completeness,
		StepCount:       &steps,
		Parameters:      map[string]float64{"walking_cadence": 118},
		DurationSeconds: 40,
	}
	if completeness == "full" {
		input.Parameters["walk_score"] = score
	}
	return input
}

func TestRecordPersistsAndWritesNote(t *testing.T) {
	t.Parallel()
	clk := clock.NewManual(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	uc, notesDir := newHistory(t, clk)
	ctx := context.Background()

	out, err := uc.Record(ctx, walkInput("m1", "full", 82))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !out.RecordedAt.Equal(clk.Now()) {
		t.Fatalf("recorded at %v", out.RecordedAt)
	}
	if _, err := os.Stat(out.NotePath); err != nil {
		t.Fatalf("note missing: %v", err)
	}
	if filepath.Dir(filepath.Dir(filepath.Dir(filepath.Dir(out.NotePath)))) != notesDir {
		t.Fatalf("note written outside %s: %s", notesDir, out.NotePath)
	}

	got, err := uc.Get(ctx, "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SessionID != "s-m1" || got.Parameters["walk_score"] != 82 {
		t.Fatalf("unexpected measurement %+v", got)
	}

	insights, err := uc.Insights(ctx, "m1")
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if len(insights) != 2 || insights[0].Name != "walk_score" || insights[0].Score != "green" {
		t.Fatalf("unexpected insights %+v", insights)
	}
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	uc, _ := newHistory(t, clock.NewManual(time.Now()))
	_, err := uc.Record(context.Background(), dto.RecordInput{ActivityType: "walk", Completeness: "full"})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	t.Parallel()
	clk := clock.NewManual(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	uc, _ := newHistory(t, clk)
	ctx := context.Background()
	for _, input := range []dto.RecordInput{walkInput("a", "full", 70), walkInput("b", "partial", 0), walkInput("c", "full", 90)} {
		clk.Advance(time.Minute)
		if _, err := uc.Record(ctx, input); err != nil {
			t.Fatalf("record %s: %v", input.MeasurementID, err)
		}
	}

	all, err := uc.List(ctx, dto.ListInput{})
	if err != nil || len(all) != 3 || all[0].MeasurementID != "c" {
		t.Fatalf("list all: %v %+v", err, all)
	}
	partial, err := uc.List(ctx, dto.ListInput{Completeness: "Partial"})
	if err != nil || len(partial) != 1 || partial[0].MeasurementID != "b" {
		t.Fatalf("list partial: %v %+v", err, partial)
	}
	limited, err := uc.List(ctx, dto.ListInput{Limit: 1})
	if err != nil || len(limited) != 1 {
		t.Fatalf("list limited: %v %d", err, len(limited))
	}
	if _, err := uc.List(ctx, dto.ListInput{Completeness: "most"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid completeness, got %v", err)
	}
}

func TestWeeklyWalkScore(t *testing.T) {
	t.Parallel()
	clk := clock.NewManual(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	uc, _ := newHistory(t, clk)
	ctx := context.Background()

	if _, err := uc.WeeklyWalkScore(ctx); !errors.Is(err, apperrors.ErrNoData) {
		t.Fatalf("expected ErrNoData without walks, got %v", err)
	}
	for _, input := range []dto.RecordInput{walkInput("a", "full", 70), walkInput("b", "full", 90), walkInput("c", "partial", 0)} {
		if _, err := uc.Record(ctx, input); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	clk.Advance(time.Hour)
	weekly, err := uc.WeeklyWalkScore(ctx)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if weekly.Walks != 2 || weekly.Average != 80 {
		t.Fatalf("unexpected weekly %+v", weekly)
	}

	clk.Advance(8 * 24 * time.Hour)
	if _, err := uc.WeeklyWalkScore(ctx); !errors.Is(err, apperrors.ErrNoData) {
		t.Fatalf("old walks should not count, got %v", err)
	}
}
