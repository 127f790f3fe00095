package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	measurementinadapter "stridekit/internal/modules/measurement/adapter/in"
	measurementoutadapter "stridekit/internal/modules/measurement/adapter/out"
	measurementservice "stridekit/internal/modules/measurement/service"
	measurementusecase "stridekit/internal/modules/measurement/usecase"
	sessioninadapter "stridekit/internal/modules/session/adapter/in"
	sessionoutadapter "stridekit/internal/modules/session/adapter/out"
	sessiondto "stridekit/internal/modules/session/dto"
	sessionservice "stridekit/internal/modules/session/service"
	sessionusecase "stridekit/internal/modules/session/usecase"
	"stridekit/internal/platform/clock"
	"stridekit/internal/platform/config"
	"stridekit/internal/platform/id"
	"stridekit/internal/platform/logging"
	uiapp "stridekit/internal/ui/app"
)

type App struct {
	SessionCLI sessioninadapter.CLIHandler
	HistoryCLI measurementinadapter.CLIHandler
	Config     config.Config
	Logger     hclog.Logger

	closers []io.Closer
}

func New(cfg config.Config) (*App, error) {
	logger, logCloser, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}
	clk := clock.SystemClock{}
	ids := id.UUID{}

	store, err := measurementoutadapter.NewSQLiteRecordStore(cfg.DBPath)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("new measurement store: %w", err)
	}
	historyUC := measurementusecase.NewInteractor(measurementservice.NewHistoryService(
		clk,
		store,
		measurementoutadapter.NewVaultNoteStore(cfg.NotesDir),
	))

	recorder := sessionoutadapter.NewSimulator(sessionoutadapter.SimulatorOptions{
		CapSeconds:     cfg.Simulator.CapSeconds,
		StageDelay:     time.Duration(cfg.Simulator.StageMillis) * time.Millisecond,
		StepsPerSecond: cfg.Simulator.StepsPerSecond,
		ForceOutcome:   cfg.Simulator.ForceOutcome,
		IDs:            ids,
		Logger:         logger,
	})
	coord := sessionservice.NewCoordinator(recorder, sessionservice.Options{
		AutoAnalyze: cfg.AutoAnalyze,
		Clock:       clk,
		Logger:      logger,
	})
	sessionUC := sessionusecase.NewInteractor(coord, historyUC, logger)

	app := &App{
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		HistoryCLI: measurementinadapter.NewCLIHandler(historyUC),
		Config:     cfg,
		Logger:     logger,
	}
	if c, ok := store.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}
	app.closers = append(app.closers, logCloser)
	return app, nil
}

// Close releases the database and the log file.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunTUI runs the session loop next to the Bubble Tea program and stops it
// when the program exits.
func RunTUI(ctx context.Context, app *App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.SessionCLI.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		model := uiapp.NewModel(gctx, app.SessionCLI, app.HistoryCLI, sessiondto.StartInput{
			ActivityType:    "walk",
			DurationSeconds: app.Config.DefaultSeconds,
		})
		program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// RunRecord drives one headless session: it starts a recording, writes a
// line per visible change to out and returns the final snapshot once the
// session is back to Idle.
func RunRecord(ctx context.Context, app *App, input sessiondto.StartInput, out io.Writer) (sessiondto.SnapshotOutput, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var final sessiondto.SnapshotOutput
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.SessionCLI.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		snaps := app.SessionCLI.Watch(gctx)
		if _, err := app.SessionCLI.Start(gctx, input); err != nil {
			return err
		}
		started := false
		last := ""
		for snap := range snaps {
			if !snap.Active() && !started {
				continue
			}
			if line := progressLine(snap); line != last {
				last = line
				_, _ = fmt.Fprintln(out, line)
			}
			if snap.Active() {
				started = true
				if readyForManualAnalysis(snap) {
					if _, err := app.SessionCLI.Analyze(gctx); err != nil {
						app.Logger.Warn("manual analysis request failed", "error", err)
					}
				}
				continue
			}
			final = snap
			return nil
		}
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return app.SessionCLI.Current(context.Background()), fmt.Errorf("recording interrupted")
		}
		return final, err
	}
	return final, nil
}

func readyForManualAnalysis(s sessiondto.SnapshotOutput) bool {
	return !s.AutoAnalyze && !s.AnalysisAsked && s.Phase == "Analyzing" && s.ProgressLabel == "Ready to analyze"
}

func progressLine(s sessiondto.SnapshotOutput) string {
	parts := []string{fmt.Sprintf("[%s] %02d:%02d", s.UIState, s.ElapsedSeconds/60, s.ElapsedSeconds%60)}
	if s.ProgressLabel != "" {
		parts = append(parts, s.ProgressLabel)
	}
	if s.SessionID != "" {
		parts = append(parts, "session="+s.SessionID)
	}
	return strings.Join(parts, "  ")
}
