package config

import (
	"os"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	for _, env := range []string{EnvPort, EnvClipLength, EnvOverlap, EnvMinLength, EnvMaxClips, EnvOutputDir} {
		os.Unsetenv(env)
	}

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.ClipLength() != DefaultClipLength {
		t.Errorf("ClipLength() = %.1f, want %.1f", cfg.ClipLength(), DefaultClipLength)
	}
	if cfg.Overlap() != DefaultOverlap {
		t.Errorf("Overlap() = %.1f, want %.1f", cfg.Overlap(), DefaultOverlap)
	}
	if cfg.MaxClips() != DefaultMaxClips {
		t.Errorf("MaxClips() = %d, want %d", cfg.MaxClips(), DefaultMaxClips)
	}
}

func TestNew_ClipLengthFromEnv(t *testing.T) {
	os.Setenv(EnvClipLength, "45")
	defer os.Unsetenv(EnvClipLength)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ClipLength() != 45 {
		t.Errorf("ClipLength() = %.1f, want 45", cfg.ClipLength())
	}
}

func TestNew_InvalidPort(t *testing.T) {
	os.Setenv(EnvPort, "not-a-port")
	defer os.Unsetenv(EnvPort)

	if _, err := New(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestNew_PortOutOfRange(t *testing.T) {
	os.Setenv(EnvPort, "70000")
	defer os.Unsetenv(EnvPort)

	if _, err := New(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestNew_InvalidClipLength(t *testing.T) {
	os.Setenv(EnvClipLength, "abc")
	defer os.Unsetenv(EnvClipLength)

	if _, err := New(); err == nil {
		t.Fatal("expected error for invalid clip length")
	}
}

func TestOutputDir_Override(t *testing.T) {
	os.Setenv(EnvOutputDir, "/tmp/my-shorts")
	defer os.Unsetenv(EnvOutputDir)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OutputDir() != "/tmp/my-shorts" {
		t.Errorf("OutputDir() = %q, want /tmp/my-shorts", cfg.OutputDir())
	}
}
