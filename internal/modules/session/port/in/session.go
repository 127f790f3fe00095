package in

import (
	"context"

	"stridekit/internal/modules/session/dto"
)

type Usecase interface {
	// Run owns the session loop; every other method needs it running.
	Run(ctx context.Context) error
	Start(ctx context.Context, input dto.StartInput) (dto.SnapshotOutput, error)
	Stop(ctx context.Context) (dto.SnapshotOutput, error)
	Analyze(ctx context.Context) (dto.SnapshotOutput, error)
	Reset(ctx context.Context) (dto.SnapshotOutput, error)
	Current(ctx context.Context) dto.SnapshotOutput
	// Watch streams snapshots until ctx is done; the channel is then closed.
	Watch(ctx context.Context) <-chan dto.SnapshotOutput
}
