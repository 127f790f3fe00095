package service

import (
	"context"
	"fmt"
	"time"

	"stridekit/internal/modules/measurement/domain"
	measurementout "stridekit/internal/modules/measurement/port/out"
	"stridekit/internal/platform/clock"
)

type HistoryService struct {
	clock clock.Clock
	store measurementout.RecordStore
	notes measurementout.NoteWriter
}

func NewHistoryService(clock clock.Clock, store measurementout.RecordStore, notes measurementout.NoteWriter) *HistoryService {
	return &HistoryService{clock: clock, store: store, notes: notes}
}

// Record stamps and persists a measurement, then writes its note. The note
// path is empty when no note writer is configured.
func (s *HistoryService) Record(ctx context.Context, record domain.Record) (domain.Record, string, error) {
	record.RecordedAt = s.clock.Now()
	if err := record.Validate(); err != nil {
		return domain.Record{}, "", err
	}
	if err := s.store.Save(ctx, record); err != nil {
		return domain.Record{}, "", err
	}
	if s.notes == nil {
		return record, "", nil
	}
	path, err := s.notes.Write(ctx, record, domain.DescribeAll(record.Parameters))
	if err != nil {
		return record, "", fmt.Errorf("write note: %w", err)
	}
	return record, path, nil
}

func (s *HistoryService) Get(ctx context.Context, measurementID string) (domain.Record, error) {
	return s.store.FindByID(ctx, measurementID)
}

func (s *HistoryService) List(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	return s.store.List(ctx, filter)
}

func (s *HistoryService) Insights(ctx context.Context, measurementID string) ([]domain.Insight, error) {
	record, err := s.store.FindByID(ctx, measurementID)
	if err != nil {
		return nil, err
	}
	return domain.DescribeAll(record.Parameters), nil
}

func (s *HistoryService) WeeklyWalkScore(ctx context.Context) (domain.WeeklyScore, error) {
	now := s.clock.Now()
	records, err := s.store.List(ctx, domain.Filter{
		ActivityType: "walk",
		Completeness: domain.CompletenessFull,
		Since:        now.Add(-7 * 24 * time.Hour),
	})
	if err != nil {
		return domain.WeeklyScore{}, err
	}
	return domain.WeeklyWalkScore(records, now)
}
