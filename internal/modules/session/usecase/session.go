package usecase

import (
	"context"
	"errors"
	"strings"

	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	measurementdto "stridekit/internal/modules/measurement/dto"
	measurementin "stridekit/internal/modules/measurement/port/in"
	"stridekit/internal/modules/session/domain"
	sessiondto "stridekit/internal/modules/session/dto"
	sessionin "stridekit/internal/modules/session/port/in"
	"stridekit/internal/modules/session/service"
)

const watchBuffer = 16

type Interactor struct {
	coord   *service.Coordinator
	history measurementin.Usecase
	logger  hclog.Logger
}

func NewInteractor(coord *service.Coordinator, history measurementin.Usecase, logger hclog.Logger) sessionin.Usecase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Interactor{coord: coord, history: history, logger: logger.Named("session")}
}

// Run drives the coordinator loop and, when a history is configured, records
// every materialized measurement. It returns when ctx is cancelled.
func (i *Interactor) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return i.coord.Run(gctx)
	})
	if i.history != nil {
		g.Go(func() error {
			i.recordMeasurements(gctx)
			return nil
		})
	}
	return g.Wait()
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.SnapshotOutput, error) {
	req, err := toStartRequest(input)
	if err != nil {
		return i.Current(ctx), err
	}
	err = i.coord.Start(ctx, req)
	return i.Current(ctx), err
}

func (i *Interactor) Stop(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	err := i.coord.Stop(ctx)
	return i.Current(ctx), err
}

func (i *Interactor) Analyze(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	err := i.coord.Analyze(ctx)
	return i.Current(ctx), err
}

func (i *Interactor) Reset(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	err := i.coord.Reset(ctx)
	return i.Current(ctx), err
}

func (i *Interactor) Current(context.Context) sessiondto.SnapshotOutput {
	return toSnapshotOutput(i.coord.Snapshot())
}

func (i *Interactor) Watch(ctx context.Context) <-chan sessiondto.SnapshotOutput {
	in := i.coord.Subscribe()
	out := make(chan sessiondto.SnapshotOutput, watchBuffer)
	go func() {
		defer close(out)
		defer i.coord.Unsubscribe(in)
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- toSnapshotOutput(snap):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (i *Interactor) recordMeasurements(ctx context.Context) {
	in := i.coord.Subscribe()
	defer i.coord.Unsubscribe(in)
	last := ""
	for {
		select {
		case <-ctx.Done():
			// Results published just before shutdown are still persisted.
			for {
				select {
				case snap := <-in:
					last = i.record(context.WithoutCancel(ctx), snap, last)
				default:
					return
				}
			}
		case snap := <-in:
			last = i.record(ctx, snap, last)
		}
	}
}

func (i *Interactor) record(ctx context.Context, snap domain.Snapshot, last string) string {
	if snap.Result == nil || snap.Result.MeasurementID == last {
		return last
	}
	id := snap.Result.MeasurementID
	out, err := i.history.Record(ctx, toRecordInput(snap))
	if err != nil {
		i.logger.Warn("record measurement", "measurement_id", id, "error", err)
		return id
	}
	i.logger.Info("measurement recorded", "measurement_id", id, "note", out.NotePath)
	return id
}

func toStartRequest(input sessiondto.StartInput) (domain.StartRequest, error) {
	activity := domain.ActivityType(strings.TrimSpace(input.ActivityType))
	if activity == "" {
		activity = domain.ActivityWalk
	}
	var custom map[string]domain.CustomValue
	if len(input.CustomMetadata) > 0 {
		custom = make(map[string]domain.CustomValue, len(input.CustomMetadata))
		for k, v := range input.CustomMetadata {
			custom[k] = domain.ParseCustomValue(v)
		}
	}
	req := domain.StartRequest{
		ActivityType:     activity,
		RequestedSeconds: input.DurationSeconds,
		UserMetadata: domain.UserMetadata{
			Note:            input.Note,
			Tags:            input.Tags,
			AssistiveDevice: domain.AssistiveDevice(input.AssistiveDevice),
			AssistanceLevel: domain.AssistanceLevel(input.AssistanceLevel),
		},
		CustomMetadata: custom,
	}
	return req, req.Validate()
}

func toSnapshotOutput(s domain.Snapshot) sessiondto.SnapshotOutput {
	out := sessiondto.SnapshotOutput{
		Seq:            s.Seq,
		UIState:        s.UIState(),
		Phase:          s.Phase.Label(),
		SessionID:      s.SessionID,
		ActivityType:   string(s.ActivityType),
		StartedAt:      s.StartedAt,
		ElapsedSeconds: s.ElapsedSeconds,
		IsLoading:      s.IsLoading,
		ProgressLabel:  s.ProgressLabel,
		ResultText:     s.ResultText,
		AutoAnalyze:    s.AutoAnalyze,
		AnalysisAsked:  s.AnalysisAsked,
	}
	if s.LastError != nil {
		out.LastError = s.LastError.Error()
		var empty *domain.EmptyAnalysis
		out.EmptyAnalysis = errors.As(s.LastError, &empty)
	}
	if s.Result != nil {
		out.Result = &sessiondto.ResultOutput{
			MeasurementID: s.Result.MeasurementID,
			Completeness:  s.Result.Completeness.String(),
			StepCount:     s.Result.StepCount,
			Parameters:    s.Result.Parameters,
			Error:         s.Result.Error,
		}
	}
	return out
}

func toRecordInput(s domain.Snapshot) measurementdto.RecordInput {
	custom := make(map[string]any, len(s.Completed.CustomMetadata))
	for k, v := range s.Completed.CustomMetadata {
		custom[k] = v.Any()
	}
	return measurementdto.RecordInput{
		MeasurementID:   s.Result.MeasurementID,
		SessionID:       s.Completed.ID,
		ActivityType:    string(s.Completed.ActivityType),
		Completeness:    s.Result.Completeness.String(),
		StepCount:       s.Result.StepCount,
		Parameters:      s.Result.Parameters,
		Error:           s.Result.Error,
		StartedAt:       s.Completed.StartedAt,
		DurationSeconds: s.Completed.ElapsedSeconds,
		Note:            s.Completed.UserMetadata.Note,
		Tags:            s.Completed.UserMetadata.Tags,
		AssistiveDevice: string(s.Completed.UserMetadata.AssistiveDevice),
		AssistanceLevel: string(s.Completed.UserMetadata.AssistanceLevel),
		CustomMetadata:  custom,
	}
}
