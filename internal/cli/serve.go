package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge-agent/internal/api"
	"github.com/clipforge/clipforge-agent/internal/clips"
	"github.com/clipforge/clipforge-agent/internal/config"
	"github.com/clipforge/clipforge-agent/internal/db"
	"github.com/clipforge/clipforge-agent/internal/fetch"
	"github.com/clipforge/clipforge-agent/internal/logging"
	"github.com/clipforge/clipforge-agent/internal/progress"
	"github.com/clipforge/clipforge-agent/internal/segment"
	"github.com/clipforge/clipforge-agent/internal/transcode"
	"github.com/clipforge/clipforge-agent/internal/ui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local HTTP API",
	Long:  `Start the agent: a local HTTP API on 127.0.0.1 plus a system tray icon unless running headless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting clipforge agent", "version", config.Version, "data_dir", cfg.DataDir())

	app, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	authToken, err := ensureAuthToken(app.Repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║               CLIPFORGE AGENT v%-26s ║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Output Dir: %-45s ║\n", logging.SanitizePath(cfg.OutputDir()))
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		Service:    app.Service,
		Repository: app.Repo,
		Logger:     logger,
		StartTime:  startTime,
		Version:    config.Version,
		RunContext: ctx,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Logger: logger,
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
		go mirrorProgress(ctx, app.Service.Tracker(), tray)
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// app bundles the wired collaborators shared by the serve and run commands.
type app struct {
	Service *clips.Service
	Repo    clips.Repository
	DB      *db.DB
}

func (a *app) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func buildApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := clips.NewRepository(database.Conn())

	fetcher, err := fetch.NewYTDLP(cfg.DownloaderPath(), cfg.DownloadDir(), logger)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize downloader: %w", err)
	}

	transcoder, err := transcode.NewFFmpeg(cfg.FFmpegPath(), cfg.FFprobePath(), cfg.EncodeTimeout(), logger)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize transcoder: %w", err)
	}

	options := transcode.DefaultOptions()
	options.FadeDuration = cfg.FadeDuration()

	svc := clips.NewService(clips.ServiceConfig{
		Repo:       repo,
		Fetcher:    fetcher,
		Transcoder: transcoder,
		Tracker:    progress.NewTracker(),
		Params: segment.Params{
			TargetLength: cfg.ClipLength(),
			Overlap:      cfg.Overlap(),
			MinLength:    cfg.MinLength(),
			MaxWindows:   cfg.MaxClips(),
		},
		Options:      options,
		OutputDir:    cfg.OutputDir(),
		MinClipBytes: cfg.MinClipBytes(),
		Logger:       logger,
	})

	return &app{Service: svc, Repo: repo, DB: database}, nil
}

// mirrorProgress polls the tracker and forwards snapshots to a sink, so
// consumers like the tray see updates without being wired into the run.
func mirrorProgress(ctx context.Context, tracker *progress.Tracker, sink progress.Sink) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var last progress.Snapshot
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := tracker.Snapshot()
			if snap != last {
				sink.Publish(snap)
				last = snap
			}
		}
	}
}

func ensureAuthToken(repo clips.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}
