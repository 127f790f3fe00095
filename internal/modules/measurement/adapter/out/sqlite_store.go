package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stridekit/internal/modules/measurement/domain"
	measurementout "stridekit/internal/modules/measurement/port/out"
	apperrors "stridekit/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type SQLiteRecordStore struct {
	db *sql.DB
}

func NewSQLiteRecordStore(dbPath string) (measurementout.RecordStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteRecordStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteRecordStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS measurements (
  measurement_id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  activity_type TEXT NOT NULL,
  completeness TEXT NOT NULL,
  step_count INTEGER,
  parameters TEXT NOT NULL,
  error TEXT,
  started_at TEXT,
  recorded_at TEXT NOT NULL,
  duration_seconds INTEGER NOT NULL,
  note TEXT,
  tags TEXT NOT NULL,
  assistive_device TEXT,
  assistance_level TEXT,
  custom_metadata TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS measurements_recorded_at ON measurements(recorded_at);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create measurements table: %w", err)
	}
	return nil
}

func (s *SQLiteRecordStore) Save(ctx context.Context, record domain.Record) error {
	const stmt = `
INSERT INTO measurements (measurement_id, session_id, activity_type, completeness, step_count, parameters, error, started_at, recorded_at, duration_seconds, note, tags, assistive_device, assistance_level, custom_metadata)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(measurement_id) DO UPDATE SET
  session_id=excluded.session_id,
  activity_type=excluded.activity_type,
  completeness=excluded.completeness,
  step_count=excluded.step_count,
  parameters=excluded.parameters,
  error=excluded.error,
  started_at=excluded.started_at,
  recorded_at=excluded.recorded_at,
  duration_seconds=excluded.duration_seconds,
  note=excluded.note,
  tags=excluded.tags,
  assistive_device=excluded.assistive_device,
  assistance_level=excluded.assistance_level,
  custom_metadata=excluded.custom_metadata;
`
	params, err := marshalJSON(record.Parameters, "{}")
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	tags, err := marshalJSON(record.Tags, "[]")
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	custom, err := marshalJSON(record.CustomMetadata, "{}")
	if err != nil {
		return fmt.Errorf("encode custom metadata: %w", err)
	}
	var steps sql.NullInt64
	if record.StepCount != nil {
		steps = sql.NullInt64{Int64: int64(*record.StepCount), Valid: true}
	}
	startedAt := ""
	if !record.StartedAt.IsZero() {
		startedAt = record.StartedAt.UTC().Format(timeLayout)
	}
	_, err = s.db.ExecContext(ctx, stmt,
		record.MeasurementID,
		record.SessionID,
		record.ActivityType,
		record.Completeness,
		steps,
		params,
		record.Error,
		startedAt,
		record.RecordedAt.UTC().Format(timeLayout),
		record.DurationSeconds,
		record.Note,
		tags,
		record.AssistiveDevice,
		record.AssistanceLevel,
		custom,
	)
	if err != nil {
		return fmt.Errorf("upsert measurement: %w", err)
	}
	return nil
}

func (s *SQLiteRecordStore) FindByID(ctx context.Context, measurementID string) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE measurement_id = ?`, measurementID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, fmt.Errorf("%w: measurement %s", apperrors.ErrNotFound, measurementID)
	}
	return record, err
}

func (s *SQLiteRecordStore) List(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	var (
		where []string
		args  []any
	)
	if filter.ActivityType != "" {
		where = append(where, "activity_type = ?")
		args = append(args, filter.ActivityType)
	}
	if filter.Completeness != "" {
		where = append(where, "completeness = ?")
		args = append(args, filter.Completeness)
	}
	if !filter.Since.IsZero() {
		where = append(where, "recorded_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY recorded_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	defer rows.Close()
	var out []domain.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate measurements: %w", err)
	}
	return out, nil
}

func (s *SQLiteRecordStore) Close() error {
	return s.db.Close()
}

const selectColumns = `SELECT measurement_id, session_id, activity_type, completeness, step_count, parameters, error, started_at, recorded_at, duration_seconds, note, tags, assistive_device, assistance_level, custom_metadata FROM measurements`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (domain.Record, error) {
	var (
		record                       domain.Record
		steps                        sql.NullInt64
		params, tags, custom         string
		errText, note, device, level sql.NullString
		startedAt                    sql.NullString
		recordedAt                   string
	)
	if err := row.Scan(
		&record.MeasurementID,
		&record.SessionID,
		&record.ActivityType,
		&record.Completeness,
		&steps,
		&params,
		&errText,
		&startedAt,
		&recordedAt,
		&record.DurationSeconds,
		&note,
		&tags,
		&device,
		&level,
		&custom,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Record{}, err
		}
		return domain.Record{}, fmt.Errorf("scan measurement: %w", err)
	}
	if steps.Valid {
		v := int(steps.Int64)
		record.StepCount = &v
	}
	record.Error = errText.String
	record.Note = note.String
	record.AssistiveDevice = device.String
	record.AssistanceLevel = level.String
	if err := json.Unmarshal([]byte(params), &record.Parameters); err != nil {
		return domain.Record{}, fmt.Errorf("decode parameters: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &record.Tags); err != nil {
		return domain.Record{}, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(custom), &record.CustomMetadata); err != nil {
		return domain.Record{}, fmt.Errorf("decode custom metadata: %w", err)
	}
	var err error
	if record.RecordedAt, err = time.Parse(timeLayout, recordedAt); err != nil {
		return domain.Record{}, fmt.Errorf("decode recorded_at: %w", err)
	}
	if startedAt.String != "" {
		if record.StartedAt, err = time.Parse(timeLayout, startedAt.String); err != nil {
			return domain.Record{}, fmt.Errorf("decode started_at: %w", err)
		}
	}
	return record, nil
}

func marshalJSON(v any, empty string) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(payload) == "null" {
		return empty, nil
	}
	return string(payload), nil
}
