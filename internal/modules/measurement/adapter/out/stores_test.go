package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	measurementout "stridekit/internal/modules/measurement/adapter/out"
	"stridekit/internal/modules/measurement/domain"
	apperrors "stridekit/internal/platform/errors"
	"stridekit/internal/platform/markdown"
)

func sampleRecord(id string, at time.Time) domain.Record {
	steps := 84
	return domain.Record{
		MeasurementID:   id,
		SessionID:       "s-" + id,
		ActivityType:    "walk",
		Completeness:    domain.CompletenessFull,
		StepCount:       &steps,
		Parameters:      map[string]float64{"walk_score": 57, "walking_cadence": 120},
		StartedAt:       at.Add(-42 * time.Second),
		RecordedAt:      at,
		DurationSeconds: 42,
		Note:            "hallway",
		Tags:            []string{"indoor"},
		AssistiveDevice: "cane",
		CustomMetadata:  map[string]any{"app": "DemoApp"},
	}
}

func TestSQLiteRecordStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := measurementout.NewSQLiteRecordStore(filepath.Join(t.TempDir(), ".stridekit", "stridekit.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if err := store.Save(ctx, sampleRecord("m1", now.Add(-time.Hour))); err != nil {
		t.Fatalf("save m1: %v", err)
	}
	empty := domain.Record{MeasurementID: "m2", SessionID: "s2", ActivityType: "walk", Completeness: domain.CompletenessEmpty, Error: "timeout", RecordedAt: now}
	if err := store.Save(ctx, empty); err != nil {
		t.Fatalf("save m2: %v", err)
	}

	got, err := store.FindByID(ctx, "m1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.StepCount == nil || *got.StepCount != 84 || got.Parameters["walk_score"] != 57 || got.Tags[0] != "indoor" {
		t.Fatalf("unexpected record %+v", got)
	}
	if !got.RecordedAt.Equal(now.Add(-time.Hour)) || got.CustomMetadata["app"] != "DemoApp" {
		t.Fatalf("timestamps or metadata lost: %+v", got)
	}

	all, err := store.List(ctx, domain.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].MeasurementID != "m2" {
		t.Fatalf("expected newest first, got %+v", all)
	}
	if all[0].StepCount != nil || all[0].Error != "timeout" {
		t.Fatalf("empty record decoded wrong: %+v", all[0])
	}
	full, err := store.List(ctx, domain.Filter{Completeness: domain.CompletenessFull})
	if err != nil || len(full) != 1 {
		t.Fatalf("filter by completeness: %v %d", err, len(full))
	}
	recent, err := store.List(ctx, domain.Filter{Since: now.Add(-time.Minute)})
	if err != nil || len(recent) != 1 || recent[0].MeasurementID != "m2" {
		t.Fatalf("filter by since: %v %+v", err, recent)
	}

	if _, err := store.FindByID(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRecordStoreUpserts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := measurementout.NewSQLiteRecordStore(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	record := sampleRecord("m1", time.Now().UTC())
	if err := store.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}
	record.Note = "updated"
	if err := store.Save(ctx, record); err != nil {
		t.Fatalf("resave: %v", err)
	}
	all, err := store.List(ctx, domain.Filter{Limit: 10})
	if err != nil || len(all) != 1 || all[0].Note != "updated" {
		t.Fatalf("expected one updated record, got %v %+v", err, all)
	}
}

func TestVaultNoteStoreWritesFrontmatterAndInsights(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	notes := measurementout.NewVaultNoteStore(dir)
	at := time.Date(2026, 3, 10, 8, 30, 15, 0, time.UTC)
	record := sampleRecord("abcdef123456", at)

	path, err := notes.Write(context.Background(), record, domain.DescribeAll(record.Parameters))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if want := filepath.Join(dir, "2026", "03", "10", "083015-walk-abcdef12.md"); path != want {
		t.Fatalf("path = %s, want %s", path, want)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	note, err := markdown.Parse(string(raw))
	if err != nil {
		t.Fatalf("parse note: %v", err)
	}
	if note.Meta["measurement_id"] != "abcdef123456" || note.Meta["completeness"] != "full" || note.Meta["step_count"] != 84 {
		t.Fatalf("unexpected frontmatter %+v", note.Meta)
	}
	if !strings.Contains(note.Body, "Walk score: 57") || !strings.Contains(note.Body, "## Note\n\nhallway") {
		t.Fatalf("unexpected body %q", note.Body)
	}

	edited := strings.Replace(string(raw), "hallway", "hallway, felt good", 1)
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatalf("edit note: %v", err)
	}
	record.Parameters["walk_score"] = 90
	if _, err := notes.Write(context.Background(), record, domain.DescribeAll(record.Parameters)); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	raw, _ = os.ReadFile(path)
	if !strings.Contains(string(raw), "felt good") || !strings.Contains(string(raw), "Walk score: 90") || strings.Contains(string(raw), "Walk score: 57") {
		t.Fatalf("rewrite lost edits or kept stale insights:\n%s", raw)
	}
}
