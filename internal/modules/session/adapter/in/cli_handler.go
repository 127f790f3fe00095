package in

import (
	"context"

	sessiondto "stridekit/internal/modules/session/dto"
	sessionin "stridekit/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Run(ctx context.Context) error {
	return h.usecase.Run(ctx)
}

func (h CLIHandler) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.SnapshotOutput, error) {
	return h.usecase.Start(ctx, input)
}

func (h CLIHandler) Stop(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) Analyze(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	return h.usecase.Analyze(ctx)
}

func (h CLIHandler) Reset(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	return h.usecase.Reset(ctx)
}

func (h CLIHandler) Current(ctx context.Context) sessiondto.SnapshotOutput {
	return h.usecase.Current(ctx)
}

func (h CLIHandler) Watch(ctx context.Context) <-chan sessiondto.SnapshotOutput {
	return h.usecase.Watch(ctx)
}
