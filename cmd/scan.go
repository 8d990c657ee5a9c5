package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ChristianHoesel/export-google-files/internal"
)

var formatFlag string

var scanCmd = &cobra.Command{
	Use:   "scan [takeout-folder]",
	Short: "Scan a Takeout export and report statistics without processing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := args[0]

		info, err := os.Stat(folder)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("folder does not exist or is not a directory: %s", folder)
		}

		records, err := internal.ScanTakeoutDirectory(folder, nil)
		if err != nil {
			return err
		}
		stats := internal.CalculateStatistics(records)

		if formatFlag == "json" {
			out, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("Total files:          %d (%s)\n", stats.TotalFiles, humanize.Bytes(uint64(stats.TotalBytes)))
		fmt.Printf("Images with metadata: %d\n", stats.ImagesWithMetadata)
		fmt.Printf("Videos with metadata: %d\n", stats.VideosWithMetadata)
		fmt.Printf("Without metadata:     %d\n", stats.FilesWithoutMetadata)
		fmt.Printf("With GPS data:        %d\n", stats.FilesWithGeoData)

		albums := make(map[string]int)
		for _, rec := range records {
			if rec.AlbumName != "" {
				albums[rec.AlbumName]++
			}
		}
		if len(albums) > 0 {
			fmt.Printf("Albums:               %d\n", len(albums))
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, json")

	rootCmd.AddCommand(scanCmd)
}
