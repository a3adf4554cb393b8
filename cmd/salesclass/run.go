package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"salesclass/pkg/logging"
	"salesclass/pkg/metrics"
	"salesclass/pkg/pipeline"
	"salesclass/pkg/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Train and evaluate the sales classifier",
	Args:  cobra.NoArgs,
	RunE:  runClassify,
}

func runClassify(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)
	rec := metrics.NewRecorder(runID, cfg.Model.Kind)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := pipeline.Run(ctx, cfg, logger, rec)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.ClassificationTable(st.Report))
	if cfg.Output.Confusion {
		fmt.Fprintln(out)
		fmt.Fprintln(out, report.ConfusionTable(st.Report))
	}
	fmt.Fprintln(out, report.Summary(cfg.Model.Kind, st.Report))
	return nil
}
