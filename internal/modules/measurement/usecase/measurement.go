package usecase

import (
	"context"
	"fmt"
	"strings"

	"stridekit/internal/modules/measurement/domain"
	"stridekit/internal/modules/measurement/dto"
	measurementin "stridekit/internal/modules/measurement/port/in"
	"stridekit/internal/modules/measurement/service"
	apperrors "stridekit/internal/platform/errors"
)

type Interactor struct {
	svc *service.HistoryService
}

func NewInteractor(svc *service.HistoryService) measurementin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Record(ctx context.Context, input dto.RecordInput) (dto.RecordOutput, error) {
	record, path, err := i.svc.Record(ctx, domain.Record{
		MeasurementID:   input.MeasurementID,
		SessionID:       input.SessionID,
		ActivityType:    input.ActivityType,
		Completeness:    input.Completeness,
		StepCount:       input.StepCount,
		Parameters:      input.Parameters,
		Error:           input.Error,
		StartedAt:       input.StartedAt,
		DurationSeconds: input.DurationSeconds,
		Note:            input.Note,
		Tags:            input.Tags,
		AssistiveDevice: input.AssistiveDevice,
		AssistanceLevel: input.AssistanceLevel,
		CustomMetadata:  input.CustomMetadata,
	})
	if err != nil {
		return dto.RecordOutput{}, err
	}
	return dto.RecordOutput{MeasurementID: record.MeasurementID, NotePath: path, RecordedAt: record.RecordedAt}, nil
}

func (i *Interactor) List(ctx context.Context, input dto.ListInput) ([]dto.MeasurementOutput, error) {
	if input.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must be non-negative", apperrors.ErrInvalidInput)
	}
	completeness := strings.ToLower(strings.TrimSpace(input.Completeness))
	switch completeness {
	case "", domain.CompletenessEmpty, domain.CompletenessPartial, domain.CompletenessFull:
	default:
		return nil, fmt.Errorf("%w: unknown completeness %q", apperrors.ErrInvalidInput, input.Completeness)
	}
	records, err := i.svc.List(ctx, domain.Filter{
		ActivityType: strings.TrimSpace(input.ActivityType),
		Completeness: completeness,
		Since:        input.Since,
		Limit:        input.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.MeasurementOutput, 0, len(records))
	for _, r := range records {
		out = append(out, toOutput(r))
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, measurementID string) (dto.MeasurementOutput, error) {
	if strings.TrimSpace(measurementID) == "" {
		return dto.MeasurementOutput{}, fmt.Errorf("%w: measurement id is required", apperrors.ErrInvalidInput)
	}
	record, err := i.svc.Get(ctx, measurementID)
	if err != nil {
		return dto.MeasurementOutput{}, err
	}
	return toOutput(record), nil
}

func (i *Interactor) Insights(ctx context.Context, measurementID string) ([]dto.InsightOutput, error) {
	if strings.TrimSpace(measurementID) == "" {
		return nil, fmt.Errorf("%w: measurement id is required", apperrors.ErrInvalidInput)
	}
	insights, err := i.svc.Insights(ctx, measurementID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InsightOutput, 0, len(insights))
	for _, in := range insights {
		out = append(out, dto.InsightOutput{
			Name:        in.Name,
			DisplayName: in.DisplayName,
			Value:       in.Value,
			Units:       in.Units,
			Known:       in.Known,
			WithinNorm:  in.WithinNorm,
			Score:       string(in.Score),
			Summary:     in.String(),
		})
	}
	return out, nil
}

func (i *Interactor) WeeklyWalkScore(ctx context.Context) (dto.WeeklyOutput, error) {
	score, err := i.svc.WeeklyWalkScore(ctx)
	if err != nil {
		return dto.WeeklyOutput{}, err
	}
	return dto.WeeklyOutput{Average: score.Average, Walks: score.Walks, Since: score.Since}, nil
}

func toOutput(r domain.Record) dto.MeasurementOutput {
	return dto.MeasurementOutput{
		MeasurementID:   r.MeasurementID,
		SessionID:       r.SessionID,
		ActivityType:    r.ActivityType,
		Completeness:    r.Completeness,
		StepCount:       r.StepCount,
		Parameters:      r.Parameters,
		Error:           r.Error,
		RecordedAt:      r.RecordedAt,
		DurationSeconds: r.DurationSeconds,
		Note:            r.Note,
		Tags:            r.Tags,
	}
}
