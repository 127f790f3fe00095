package in

import (
	"context"

	"stridekit/internal/modules/measurement/dto"
)

type Usecase interface {
	Record(ctx context.Context, input dto.RecordInput) (dto.RecordOutput, error)
	List(ctx context.Context, input dto.ListInput) ([]dto.MeasurementOutput, error)
	Get(ctx context.Context, measurementID string) (dto.MeasurementOutput, error)
	Insights(ctx context.Context, measurementID string) ([]dto.InsightOutput, error)
	WeeklyWalkScore(ctx context.Context) (dto.WeeklyOutput, error)
}
