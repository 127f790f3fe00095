package out

import (
	"context"

	"stridekit/internal/modules/measurement/domain"
)

type RecordStore interface {
	Save(ctx context.Context, record domain.Record) error
	FindByID(ctx context.Context, measurementID string) (domain.Record, error)
	List(ctx context.Context, filter domain.Filter) ([]domain.Record, error)
}

// NoteWriter renders a record as a markdown note and returns its path.
type NoteWriter interface {
	Write(ctx context.Context, record domain.Record, insights []domain.Insight) (string, error)
}
