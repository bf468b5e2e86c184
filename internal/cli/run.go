package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge-agent/internal/clips"
	"github.com/clipforge/clipforge-agent/internal/config"
	"github.com/clipforge/clipforge-agent/internal/logging"
	"github.com/clipforge/clipforge-agent/internal/progress"
)

var runOutputDir string

var runCmd = &cobra.Command{
	Use:   "run <url>",
	Short: "Generate clips for a single video URL and exit",
	Long: `Download the video at the given URL, slice it into overlapping
clips and write them plus a report.json to the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(args[0])
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOutputDir, "output", "o", "", "output directory (default: configured shorts dir)")
}

func runOnce(url string) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Keep stdout clean for the progress bar; logs go to stderr-level only.
	logger := logging.NewLogger("warn")

	app, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\ninterrupted, stopping after the current clip...")
		cancel()
	}()

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("Starting..."),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	barCtx, stopBar := context.WithCancel(ctx)
	defer stopBar()
	go mirrorProgress(barCtx, app.Service.Tracker(), progress.SinkFunc(func(s progress.Snapshot) {
		bar.Describe(s.Message)
		bar.Set(s.Percent)
	}))

	report, err := app.Service.Execute(ctx, url, runOutputDir)
	stopBar()
	bar.Finish()

	if errors.Is(err, clips.ErrEmptyResult) {
		fmt.Println("No clips were created: the video is shorter than the minimum clip length.")
		return nil
	}
	if err != nil {
		return err
	}

	outDir := runOutputDir
	if outDir == "" {
		outDir = cfg.OutputDir()
	}
	fmt.Printf("Created %d clips (%.1f MB, %.1f%% of the source) in %s\n",
		report.Summary.TotalClipsCreated,
		report.Statistics.TotalOutputSizeMB,
		report.Summary.CoveragePercentage,
		outDir)
	fmt.Printf("Report: %s\n", filepath.Join(outDir, clips.ReportFilename))
	return nil
}
