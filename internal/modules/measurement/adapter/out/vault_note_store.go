package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stridekit/internal/modules/measurement/domain"
	measurementout "stridekit/internal/modules/measurement/port/out"
	"stridekit/internal/platform/markdown"
	"stridekit/internal/platform/slug"
)

const insightsBlock = "insights"

type VaultNoteStore struct {
	notesDir string
}

func NewVaultNoteStore(notesDir string) measurementout.NoteWriter {
	return &VaultNoteStore{notesDir: notesDir}
}

// Write renders the record under notesDir/YYYY/MM/DD. Rewriting an existing
// note keeps the user's edits outside the managed insights block.
func (s *VaultNoteStore) Write(_ context.Context, record domain.Record, insights []domain.Insight) (string, error) {
	date := record.RecordedAt
	dir := filepath.Join(s.notesDir, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create measurement dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s-%s.md", date.Format("150405"), slug.Make(record.ActivityType, "measurement"), slug.Short(record.MeasurementID, 8, "unknown"))
	path := filepath.Join(dir, name)

	meta := map[string]any{
		"schema_version":   domain.SchemaVersion,
		"measurement_id":   record.MeasurementID,
		"session_id":       record.SessionID,
		"activity_type":    record.ActivityType,
		"completeness":     record.Completeness,
		"recorded_at":      record.RecordedAt.Format("2006-01-02T15:04:05Z07:00"),
		"duration_seconds": record.DurationSeconds,
		"tags":             nonNil(record.Tags),
		"parameters":       record.Parameters,
	}
	if record.StepCount != nil {
		meta["step_count"] = *record.StepCount
	}
	if !record.StartedAt.IsZero() {
		meta["started_at"] = record.StartedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	if record.Error != "" {
		meta["error"] = record.Error
	}
	if record.AssistiveDevice != "" {
		meta["assistive_device"] = record.AssistiveDevice
	}
	if record.AssistanceLevel != "" {
		meta["assistance_level"] = record.AssistanceLevel
	}
	if len(record.CustomMetadata) > 0 {
		meta["custom"] = record.CustomMetadata
	}

	note := markdown.Note{
		Meta: meta,
		Body: fmt.Sprintf("# %s measurement\n\n- Completeness: %s\n- Duration: %d seconds\n\n## Note\n\n%s\n", titleCase(record.ActivityType), record.Completeness, record.DurationSeconds, record.Note),
	}
	if existing, err := os.ReadFile(path); err == nil {
		if prev, err := markdown.Parse(string(existing)); err == nil {
			note.Body = prev.Body
		}
	}
	note.SetBlock(insightsBlock, renderInsights(record, insights))

	rendered, err := note.Render()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write measurement note: %w", err)
	}
	return path, nil
}

func renderInsights(record domain.Record, insights []domain.Insight) string {
	if record.Completeness == domain.CompletenessEmpty {
		return "No parameters: " + record.Error
	}
	if len(insights) == 0 {
		return "No parameters reported."
	}
	lines := make([]string, 0, len(insights))
	for _, insight := range insights {
		lines = append(lines, "- "+insight.String())
	}
	return strings.Join(lines, "\n")
}

func titleCase(activity string) string {
	words := strings.Fields(strings.ReplaceAll(activity, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return "Untitled"
	}
	return strings.Join(words, " ")
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
