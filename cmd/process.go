package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ChristianHoesel/export-google-files/internal"
)

var (
	outputFlag   string
	moveFlag     bool
	noMetadata   bool
	organizeFlag string
	skipDupFlag  bool
	dupModeFlag  string
	useExifTool  bool
)

var processCmd = &cobra.Command{
	Use:   "process [takeout-folder]",
	Short: "Process a Takeout export into the output library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := args[0]

		info, err := os.Stat(folder)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("folder does not exist or is not a directory: %s", folder)
		}

		// Load config, then let flags win
		conf, err := internal.LoadConfig()
		if err != nil {
			return err
		}
		if outputFlag != "" {
			conf.OutputDirectory = outputFlag
		}
		if cmd.Flags().Changed("move") {
			conf.CopyFiles = !moveFlag
		}
		if cmd.Flags().Changed("no-metadata") {
			conf.AddMetadata = !noMetadata
		}
		if cmd.Flags().Changed("organize") {
			conf.Organization = organizeFlag
		}
		if cmd.Flags().Changed("skip-duplicates") {
			conf.SkipDuplicates = skipDupFlag
		}
		if cmd.Flags().Changed("duplicate-mode") {
			conf.DuplicateMode = dupModeFlag
		}
		if cmd.Flags().Changed("exiftool") {
			conf.UseExifTool = useExifTool
		}

		return runProcess(folder, conf)
	},
}

func runProcess(folder string, conf *internal.Config) error {
	opts, err := conf.Options()
	if err != nil {
		return err
	}

	logger, err := internal.NewLogger("takeout-processor.log")
	if err != nil {
		return err
	}
	defer logger.Close()

	records, err := internal.ScanTakeoutDirectory(folder, logger)
	if err != nil {
		return err
	}

	stats := internal.CalculateStatistics(records)
	fmt.Printf("Found %d media files (%s)\n", stats.TotalFiles, stats)

	// Ctrl-C stops between files, never mid-copy.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetDescription("processing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	processor := internal.NewProcessor(opts, logger)
	counters, runErr := processor.Run(ctx, records, func(e internal.Event) {
		switch ev := e.(type) {
		case internal.ProgressEvent:
			bar.Set(ev.Current - 1)
			bar.Describe(ev.FileName)
		case internal.CompleteEvent:
			bar.Finish()
		}
	})

	fmt.Printf("Done: %d processed, %d errors, %d skipped\n",
		counters.Success, counters.Errors, counters.Skipped)

	if errStats := processor.ErrorStats(); errStats.Total > 0 {
		fmt.Println(errStats.GenerateReport())
	}

	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	return nil
}

func init() {
	processCmd.Flags().StringVar(&outputFlag, "output", "", "Output library folder")
	processCmd.Flags().BoolVar(&moveFlag, "move", false, "Move files instead of copying")
	processCmd.Flags().BoolVar(&noMetadata, "no-metadata", false, "Skip metadata embedding")
	processCmd.Flags().StringVar(&organizeFlag, "organize", "", "Organization mode: by-month, by-album, flat")
	processCmd.Flags().BoolVar(&skipDupFlag, "skip-duplicates", false, "Skip files already seen")
	processCmd.Flags().StringVar(&dupModeFlag, "duplicate-mode", "", "Duplicate detection: hash, name-size, name")
	processCmd.Flags().BoolVar(&useExifTool, "exiftool", false, "Force to use exiftool binary")

	rootCmd.AddCommand(processCmd)
}
