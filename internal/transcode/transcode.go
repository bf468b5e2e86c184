// Package transcode executes ffmpeg to re-encode one time window of a source
// file into a standalone clip, and ffprobe to read media durations. The rest
// of the agent treats both as opaque: it supplies the window and encoding
// options and checks the success/artifact contract.
package transcode

import (
	"context"
	"fmt"
	"time"
)

// Options describes the encode applied to every clip.
type Options struct {
	VideoCodec   string  // e.g. "libx264"
	Preset       string  // e.g. "fast"
	CRF          int     // constant rate factor
	Profile      string  // e.g. "high"
	Level        string  // e.g. "4.0"
	PixelFormat  string  // e.g. "yuv420p"
	AudioCodec   string  // e.g. "aac"
	AudioBitrate string  // e.g. "192k"
	SampleRate   int     // e.g. 44100
	Channels     int     // e.g. 2
	FadeDuration float64 // seconds of audio fade at clip start and end
}

// DefaultOptions returns the encode settings used for generated shorts.
func DefaultOptions() Options {
	return Options{
		VideoCodec:   "libx264",
		Preset:       "fast",
		CRF:          18,
		Profile:      "high",
		Level:        "4.0",
		PixelFormat:  "yuv420p",
		AudioCodec:   "aac",
		AudioBitrate: "192k",
		SampleRate:   44100,
		Channels:     2,
		FadeDuration: 0.2,
	}
}

// Request describes one clip extraction.
type Request struct {
	InputPath  string
	OutputPath string
	Start      float64 // offset into the source, seconds
	Duration   float64 // clip length, seconds
	Options    Options
}

// Result is the structured outcome of one ffmpeg invocation.
type Result struct {
	ExitCode   int
	StderrTail string
	Elapsed    time.Duration
	TimedOut   bool
}

// IsSuccess reports whether ffmpeg exited cleanly.
func (r Result) IsSuccess() bool { return r.ExitCode == 0 }

// Transcoder is the encode/probe contract the clip pipeline depends on.
type Transcoder interface {
	// Transcode re-encodes one window. A non-nil error means the process
	// could not be started or timed out; an unsuccessful Result means it
	// ran and failed.
	Transcode(ctx context.Context, req Request) (Result, error)

	// Probe returns the duration of a media file in seconds.
	Probe(ctx context.Context, path string) (float64, error)
}

// audioFilter builds the per-clip audio post-filter chain. The fade-out
// anchor depends on the clip duration, so the chain must be rebuilt for
// every window; a fixed anchor would cut audio early on a short final clip.
func audioFilter(duration, fade float64) string {
	return fmt.Sprintf(
		"afade=t=in:st=0:d=%g,"+
			"afade=t=out:st=%g:d=%g,"+
			"highpass=f=80,"+
			"lowpass=f=12000,"+
			"acompressor=threshold=0.1:ratio=3:attack=5:release=50,"+
			"loudnorm=I=-16:LRA=11:TP=-1.5",
		fade, duration-fade, fade)
}

// buildArgs assembles the full ffmpeg argument list for a request.
func buildArgs(req Request) []string {
	o := req.Options
	return []string{
		"-y",
		"-ss", formatSeconds(req.Start),
		"-i", req.InputPath,
		"-t", formatSeconds(req.Duration),

		"-c:v", o.VideoCodec,
		"-preset", o.Preset,
		"-crf", fmt.Sprintf("%d", o.CRF),
		"-profile:v", o.Profile,
		"-level", o.Level,
		"-pix_fmt", o.PixelFormat,
		"-movflags", "+faststart",

		"-c:a", o.AudioCodec,
		"-b:a", o.AudioBitrate,
		"-ar", fmt.Sprintf("%d", o.SampleRate),
		"-ac", fmt.Sprintf("%d", o.Channels),

		"-af", audioFilter(req.Duration, o.FadeDuration),

		req.OutputPath,
	}
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%g", s)
}
