package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"stridekit/internal/bootstrap"
	sessiondto "stridekit/internal/modules/session/dto"
	"stridekit/internal/platform/config"
	apperrors "stridekit/internal/platform/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "stridekit",
		Short:         "Record and analyze gait sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data", ".", "directory holding .stridekit/")

	root.AddCommand(newRecordCmd(&dataDir))
	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newHistoryCmd(&dataDir))
	root.AddCommand(newParamsCmd(&dataDir))
	return root
}

func loadApp(dataDir string, tweak func(*config.Config)) (*bootstrap.App, error) {
	cfg, err := config.New(dataDir)
	if err != nil {
		return nil, err
	}
	if tweak != nil {
		tweak(&cfg)
	}
	return bootstrap.New(cfg)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRecordCmd(dataDir *string) *cobra.Command {
	var (
		activity   string
		duration   int
		note       string
		tags       []string
		device     string
		assistance string
		meta       []string
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record one session and print its analysis",
		RunE: func(cmd *cobra.Command, _ []string) error {
			custom, err := parseMeta(meta)
			if err != nil {
				return err
			}
			app, err := loadApp(*dataDir, func(cfg *config.Config) {
				if !cmd.Flags().Changed("duration") {
					duration = cfg.DefaultSeconds
				}
			})
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signalContext()
			defer stop()
			final, err := bootstrap.RunRecord(ctx, app, sessiondto.StartInput{
				ActivityType:    activity,
				DurationSeconds: duration,
				Note:            note,
				Tags:            tags,
				AssistiveDevice: device,
				AssistanceLevel: assistance,
				CustomMetadata:  custom,
			}, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(final.ResultText, "\n"))
			if final.Result != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "measurement=%s\n", final.Result.MeasurementID)
			}
			if final.LastError != "" && !final.EmptyAnalysis {
				return errors.New(final.LastError)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&activity, "activity", "walk", "activity type: walk|sit_to_stand|balance")
	cmd.Flags().IntVar(&duration, "duration", 0, "recording length in seconds (0 uses the recorder cap)")
	cmd.Flags().StringVar(&note, "note", "", "free-text note")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().StringVar(&device, "device", "", "assistive device: cane|walker|crutches|wheelchair")
	cmd.Flags().StringVar(&assistance, "assistance", "", "level of assistance: independent|supervision|minimal|moderate|maximal")
	cmd.Flags().StringArrayVar(&meta, "meta", nil, "custom metadata key=value (repeatable)")
	return cmd
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the stridekit terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, func(cfg *config.Config) {
				if cfg.LogFile == "" {
					cfg.LogFile = filepath.Join(cfg.DataDir, ".stridekit", "stridekit.log")
				}
			})
			if err != nil {
				return err
			}
			defer app.Close()
			ctx, stop := signalContext()
			defer stop()
			return bootstrap.RunTUI(ctx, app)
		},
	}
}

func newHistoryCmd(dataDir *string) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Query recorded measurements"}

	var activity, completeness string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded measurements, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			items, err := app.HistoryCLI.List(context.Background(), activity, completeness, limit)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no measurements")
				return nil
			}
			for _, m := range items {
				steps := "N/A"
				if m.StepCount != nil {
					steps = fmt.Sprintf("%d", *m.StepCount)
				}
				score := "N/A"
				if v, ok := m.Parameters["walk_score"]; ok {
					score = fmt.Sprintf("%.1f", v)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%ds\tsteps=%s\tscore=%s\t%s\n",
					m.RecordedAt.Local().Format("2006-01-02 15:04"), m.ActivityType, m.Completeness, m.DurationSeconds, steps, score, m.MeasurementID)
			}
			return nil
		},
	}
	list.Flags().StringVar(&activity, "activity", "", "filter by activity type")
	list.Flags().StringVar(&completeness, "completeness", "", "filter by completeness: empty|partial|full")
	list.Flags().IntVar(&limit, "limit", 20, "maximum rows (0 for all)")

	weekly := &cobra.Command{
		Use:   "weekly",
		Short: "Average walk score over the last seven days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.HistoryCLI.Weekly(context.Background())
			if errors.Is(err, apperrors.ErrNoData) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no fully analyzed walks in the last 7 days")
				return nil
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "weekly walk score=%.1f walks=%d since=%s\n", out.Average, out.Walks, out.Since.Local().Format("2006-01-02"))
			return nil
		},
	}

	history.AddCommand(list, weekly)
	return history
}

func newParamsCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "params <measurement-id>",
		Short: "Explain the parameters of a measurement against their norms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			m, err := app.HistoryCLI.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", m.ActivityType, m.Completeness, m.MeasurementID)
			if m.Error != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "error=%s\n", m.Error)
			}
			insights, err := app.HistoryCLI.Insights(context.Background(), args[0])
			if err != nil {
				return err
			}
			for _, in := range insights {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", in.Summary)
			}
			return nil
		},
	}
}

func parseMeta(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("%w: --meta expects key=value, got %q", apperrors.ErrInvalidInput, pair)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}
