package cmd

import (
	"github.com/spf13/cobra"
)

// Version is overridden by the embedded VERSION file at startup.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "takeout-processor",
	Short: "Google Takeout media processor",
	Long: `Reorganizes a Google Takeout photo/video export into a clean library:
pairs media files with their JSON sidecars, embeds the metadata into the
files, extracts Motion Photo videos, and sorts everything into folders.`,
}

func Execute() error {
	return rootCmd.Execute()
}

// ApplyVersion pushes the Version variable into the cobra command. Called
// again from main after the embedded VERSION is applied.
func ApplyVersion() {
	rootCmd.Version = Version
}

func init() {
	ApplyVersion()
}
