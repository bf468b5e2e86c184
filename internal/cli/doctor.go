package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge-agent/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  `Check that all required external tools (yt-dlp, ffmpeg, ffprobe) are installed and available.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.New()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		fmt.Println("Checking dependencies...")
		fmt.Println()

		allGood := true

		allGood = checkTool("yt-dlp", cfg.DownloaderPath(), "https://github.com/yt-dlp/yt-dlp") && allGood
		allGood = checkTool("ffmpeg", cfg.FFmpegPath(), "https://ffmpeg.org/download.html") && allGood
		allGood = checkTool("ffprobe", cfg.FFprobePath(), "https://ffmpeg.org/download.html") && allGood

		fmt.Println()
		if allGood {
			fmt.Println("All dependencies are installed!")
		} else {
			fmt.Println("Some dependencies are missing. Please install them to use all features.")
			os.Exit(1)
		}
	},
}

func checkTool(name, override, installURL string) bool {
	lookup := name
	if override != "" {
		lookup = override
	}
	path, err := exec.LookPath(lookup)
	if err != nil {
		fmt.Printf("✗ %s: NOT FOUND\n", name)
		fmt.Printf("  Install from: %s\n", installURL)
		return false
	}
	fmt.Printf("✓ %s: OK (%s)\n", name, path)
	return true
}
