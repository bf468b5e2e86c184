package transcode

import (
	"bytes"
	"strings"
	"testing"
)

func TestAudioFilter_FadeOutAnchorTracksDuration(t *testing.T) {
	full := audioFilter(30, 0.2)
	if !strings.Contains(full, "afade=t=out:st=29.8:d=0.2") {
		t.Errorf("30s clip filter missing recomputed fade-out anchor: %s", full)
	}

	short := audioFilter(25, 0.2)
	if !strings.Contains(short, "afade=t=out:st=24.8:d=0.2") {
		t.Errorf("25s clip filter missing recomputed fade-out anchor: %s", short)
	}
	if strings.Contains(short, "st=29.8") {
		t.Error("short clip reused the full-length fade-out anchor")
	}
}

func TestAudioFilter_FixedStages(t *testing.T) {
	got := audioFilter(30, 0.2)
	for _, stage := range []string{
		"afade=t=in:st=0:d=0.2",
		"highpass=f=80",
		"lowpass=f=12000",
		"acompressor=threshold=0.1:ratio=3:attack=5:release=50",
		"loudnorm=I=-16:LRA=11:TP=-1.5",
	} {
		if !strings.Contains(got, stage) {
			t.Errorf("filter chain missing %q: %s", stage, got)
		}
	}
}

func TestBuildArgs(t *testing.T) {
	req := Request{
		InputPath:  "/tmp/in.mp4",
		OutputPath: "/tmp/out.mp4",
		Start:      75,
		Duration:   25,
		Options:    DefaultOptions(),
	}
	args := buildArgs(req)
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-y",
		"-ss 75",
		"-i /tmp/in.mp4",
		"-t 25",
		"-c:v libx264",
		"-preset fast",
		"-crf 18",
		"-profile:v high",
		"-pix_fmt yuv420p",
		"-movflags +faststart",
		"-c:a aac",
		"-b:a 192k",
		"-ar 44100",
		"-ac 2",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}

	if args[len(args)-1] != "/tmp/out.mp4" {
		t.Errorf("output path not last arg: %v", args)
	}
}

func TestLimitedWriter_KeepsOnlyTail(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, limit: 10}

	lw.Write([]byte("hello"))
	if buf.String() != "hello" {
		t.Errorf("after short write got %q, want %q", buf.String(), "hello")
	}

	lw.Write([]byte(" world of test data"))
	got := buf.String()
	if len(got) > 10 {
		t.Errorf("buffer length %d exceeds limit 10", len(got))
	}
	if got != " test data" {
		t.Errorf("after overflow got %q, want %q", got, " test data")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "...world"},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestResult_IsSuccess(t *testing.T) {
	tests := []struct {
		exitCode int
		want     bool
	}{
		{0, true},
		{1, false},
		{-1, false},
	}
	for _, tt := range tests {
		r := Result{ExitCode: tt.exitCode}
		if got := r.IsSuccess(); got != tt.want {
			t.Errorf("Result{ExitCode: %d}.IsSuccess() = %v, want %v", tt.exitCode, got, tt.want)
		}
	}
}

func TestResolveBinary_PreferredNotFound(t *testing.T) {
	if _, err := resolveBinary("/nonexistent/ffmpeg999", "ffmpeg"); err == nil {
		t.Fatal("expected error for nonexistent binary")
	}
}
