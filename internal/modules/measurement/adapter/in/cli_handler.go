package in

import (
	"context"

	"stridekit/internal/modules/measurement/dto"
	measurementin "stridekit/internal/modules/measurement/port/in"
)

type CLIHandler struct {
	usecase measurementin.Usecase
}

func NewCLIHandler(usecase measurementin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, activity, completeness string, limit int) ([]dto.MeasurementOutput, error) {
	return h.usecase.List(ctx, dto.ListInput{ActivityType: activity, Completeness: completeness, Limit: limit})
}

func (h CLIHandler) Get(ctx context.Context, measurementID string) (dto.MeasurementOutput, error) {
	return h.usecase.Get(ctx, measurementID)
}

func (h CLIHandler) Insights(ctx context.Context, measurementID string) ([]dto.InsightOutput, error) {
	return h.usecase.Insights(ctx, measurementID)
}

func (h CLIHandler) Weekly(ctx context.Context) (dto.WeeklyOutput, error) {
	return h.usecase.WeeklyWalkScore(ctx)
}
