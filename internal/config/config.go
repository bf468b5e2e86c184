// Package config provides configuration management for the Clipforge Agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort     = 8799
	DefaultLogLevel = "info"
	DefaultDataDir  = ".clipforge"

	// Environment variable names
	EnvPort      = "CLIPFORGE_PORT"
	EnvLogLevel  = "CLIPFORGE_LOG_LEVEL"
	EnvDataDir   = "CLIPFORGE_DATA_DIR"
	EnvOutputDir = "CLIPFORGE_OUTPUT_DIR"
	EnvHeadless  = "CLIPFORGE_HEADLESS"

	// Tool environment variable names
	EnvDownloaderPath = "CLIPFORGE_DOWNLOADER"
	EnvFFmpegPath     = "CLIPFORGE_FFMPEG"
	EnvFFprobePath    = "CLIPFORGE_FFPROBE"

	// Clip generation environment variable names
	EnvClipLength = "CLIPFORGE_CLIP_LENGTH"
	EnvOverlap    = "CLIPFORGE_OVERLAP"
	EnvMinLength  = "CLIPFORGE_MIN_LENGTH"
	EnvMaxClips   = "CLIPFORGE_MAX_CLIPS"

	// Database filename
	DBFilename = "clipforge.db"

	// Clip generation defaults
	DefaultClipLength   = 30.0 // seconds per clip
	DefaultOverlap      = 5.0  // seconds of overlap between clips
	DefaultMinLength    = 25.0 // shortest acceptable final clip
	DefaultMaxClips     = 100  // safety limit per video
	DefaultFadeDuration = 0.2  // audio fade at clip boundaries

	// Encode defaults
	DefaultEncodeTimeout = 180 // seconds per clip
	DefaultMinClipBytes  = 500_000
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	DownloadDir() string
	OutputDir() string
	Headless() bool

	DownloaderPath() string
	FFmpegPath() string
	FFprobePath() string

	ClipLength() float64
	Overlap() float64
	MinLength() float64
	MaxClips() int
	FadeDuration() float64
	EncodeTimeout() time.Duration
	MinClipBytes() int64
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port      int
	logLevel  string
	dataDir   string
	outputDir string
	headless  bool

	downloaderPath string
	ffmpegPath     string
	ffprobePath    string

	clipLength float64
	overlap    float64
	minLength  float64
	maxClips   int
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:       DefaultPort,
		logLevel:   DefaultLogLevel,
		dataDir:    defaultDataDir(),
		clipLength: DefaultClipLength,
		overlap:    DefaultOverlap,
		minLength:  DefaultMinLength,
		maxClips:   DefaultMaxClips,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if od := os.Getenv(EnvOutputDir); od != "" {
		cfg.outputDir = od
	}

	if h := os.Getenv(EnvHeadless); h == "1" || h == "true" {
		cfg.headless = true
	}

	cfg.downloaderPath = os.Getenv(EnvDownloaderPath)
	cfg.ffmpegPath = os.Getenv(EnvFFmpegPath)
	cfg.ffprobePath = os.Getenv(EnvFFprobePath)

	if err := overrideFloat(EnvClipLength, &cfg.clipLength); err != nil {
		return nil, err
	}
	if err := overrideFloat(EnvOverlap, &cfg.overlap); err != nil {
		return nil, err
	}
	if err := overrideFloat(EnvMinLength, &cfg.minLength); err != nil {
		return nil, err
	}
	if mc := os.Getenv(EnvMaxClips); mc != "" {
		n, err := strconv.Atoi(mc)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvMaxClips, err)
		}
		cfg.maxClips = n
	}

	return cfg, nil
}

func overrideFloat(env string, dst *float64) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	*dst = f
	return nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// DownloadDir returns the directory downloaded source videos are kept in
func (c *EnvConfig) DownloadDir() string {
	return filepath.Join(c.dataDir, "downloads")
}

// OutputDir returns the default directory generated clips are written to
func (c *EnvConfig) OutputDir() string {
	if c.outputDir != "" {
		return c.outputDir
	}
	return filepath.Join(c.dataDir, "shorts")
}

// Headless reports whether the system tray should be disabled
func (c *EnvConfig) Headless() bool {
	return c.headless
}

func (c *EnvConfig) DownloaderPath() string {
	return c.downloaderPath
}

func (c *EnvConfig) FFmpegPath() string {
	return c.ffmpegPath
}

func (c *EnvConfig) FFprobePath() string {
	return c.ffprobePath
}

func (c *EnvConfig) ClipLength() float64 {
	return c.clipLength
}

func (c *EnvConfig) Overlap() float64 {
	return c.overlap
}

func (c *EnvConfig) MinLength() float64 {
	return c.minLength
}

func (c *EnvConfig) MaxClips() int {
	return c.maxClips
}

func (c *EnvConfig) FadeDuration() float64 {
	return DefaultFadeDuration
}

func (c *EnvConfig) EncodeTimeout() time.Duration {
	return time.Duration(DefaultEncodeTimeout) * time.Second
}

func (c *EnvConfig) MinClipBytes() int64 {
	return DefaultMinClipBytes
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
