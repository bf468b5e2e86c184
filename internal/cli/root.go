// Package cli defines the clipforge-agent command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge-agent/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "clipforge-agent",
	Short: "Generate short clips from online videos",
	Long: `clipforge-agent downloads an online video and slices it into
fixed-length overlapping clips, re-encoded with an audio polish chain.

Run modes:
  serve    start the local HTTP API (with optional system tray)
  run      generate clips for a single URL and exit
  doctor   check that yt-dlp, ffmpeg and ffprobe are available`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("clipforge-agent version %s (built %s, commit %s)\n",
			config.Version, config.BuildTime, config.GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(doctorCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
