package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChristianHoesel/export-google-files/internal"
)

var settleDelay time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [inbox-folder]",
	Short: "Watch a folder and process new Takeout drops as they settle",
	Long: `Watches an inbox folder into which Takeout archives are unpacked. Once no
new files have appeared for the settle delay, the whole inbox is processed
with name-based duplicate skipping forced on, so repeated drops only pick up
files not already placed in the library.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inbox := args[0]

		info, err := os.Stat(inbox)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("folder does not exist or is not a directory: %s", inbox)
		}

		conf, err := internal.LoadConfig()
		if err != nil {
			return err
		}
		if outputFlag != "" {
			conf.OutputDirectory = outputFlag
		}
		// Re-processing the same inbox must be idempotent. Only name-only
		// detection consults the destination tree; the other modes start
		// each drop with an empty cache and would re-copy everything.
		conf.SkipDuplicates = true
		conf.DuplicateMode = "name"

		opts, err := conf.Options()
		if err != nil {
			return err
		}

		logger, err := internal.NewLogger("takeout-processor.log")
		if err != nil {
			return err
		}
		defer logger.Close()

		watcher, err := internal.NewWatcher(inbox)
		if err != nil {
			return err
		}
		defer watcher.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Printf("Watching %s (settle delay %s), Ctrl-C to stop\n", inbox, settleDelay)

		// The timer only runs while a drop is settling.
		settle := time.NewTimer(settleDelay)
		if !settle.Stop() {
			<-settle.C
		}

		for {
			select {
			case <-ctx.Done():
				return nil

			case path := <-watcher.Events():
				logger.Log("new file in inbox: %s", path)
				if !settle.Stop() {
					select {
					case <-settle.C:
					default:
					}
				}
				settle.Reset(settleDelay)

			case err := <-watcher.Errors():
				fmt.Printf("watch error: %v\n", err)

			case <-settle.C:
				records, err := internal.ScanTakeoutDirectory(inbox, logger)
				if err != nil {
					fmt.Printf("scan failed: %v\n", err)
					continue
				}
				processor := internal.NewProcessor(opts, logger)
				counters, runErr := processor.Run(ctx, records, nil)
				fmt.Printf("Processed drop: %d placed, %d errors, %d skipped\n",
					counters.Success, counters.Errors, counters.Skipped)
				if runErr != nil {
					return nil // cancelled between files
				}
			}
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&outputFlag, "output", "", "Output library folder")
	watchCmd.Flags().DurationVar(&settleDelay, "settle", 5*time.Second, "Quiet period before processing a drop")

	rootCmd.AddCommand(watchCmd)
}
