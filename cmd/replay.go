package cmd

import (
	"fmt"
	"io"
	"os"

	"livelist/core/concat"
	"livelist/core/logger"
	"livelist/core/replay"

	"github.com/spf13/cobra"
)

var validateReplay bool
var verboseReplay bool

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay [script.json]",
	Short: "Replay scripted edits through a composite list",
	Long: `Applies the steps of a JSON script to a composite list and prints every update it emits as JSON lines.
The script is read from the given file, or from stdin when no file is given.
Each update is checked against the previous snapshot; the command fails on the first inconsistency.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open script: %w", err)
			}
			defer f.Close()
			in = f
		}

		script, err := replay.Decode(in)
		if err != nil {
			return err
		}

		level := "info"
		if verboseReplay {
			level = "debug"
		}
		logg, err := logger.New(&logger.Config{Level: level, Format: "console"})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()

		records, runErr := replay.Run(script,
			concat.WithLogger(logger.Named(logg, "concat")),
			concat.WithValidation(validateReplay),
		)
		replay.Log(logg, records)
		if err := replay.Write(cmd.OutOrStdout(), records); err != nil {
			return err
		}
		return runErr
	},
}

func init() {
	RootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&validateReplay, "validate", true, "Validate every composite update against the previous composite size")
	replayCmd.Flags().BoolVarP(&verboseReplay, "verbose", "v", false, "Log every update")
}
