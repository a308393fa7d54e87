package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plumvelvet/capacities-cli/internal/api"
)

var (
	dailyOrigin      string
	dailyNoTimestamp bool
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Work with the daily note",
}

var dailyAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Append text to today's daily note",
	Long: `Append markdown text to today's daily note.

Text comes from the arguments, or from stdin when no argument is given and
input is piped in.`,
	Example: `  cap daily add "Buy milk"
  echo "- [ ] follow up with Sam" | cap daily add
  cap daily add --no-timestamp "Quiet entry"`,
	RunE: runDailyAdd,
}

func init() {
	dailyAddCmd.Flags().StringVar(&dailyOrigin, "origin", "commandPalette", "Origin label stored with the entry")
	dailyAddCmd.Flags().BoolVar(&dailyNoTimestamp, "no-timestamp", false, "Skip the timestamp Capacities prepends to the entry")

	dailyCmd.AddCommand(dailyAddCmd)
	rootCmd.AddCommand(dailyCmd)
}

func runDailyAdd(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" && inputHasData(cmd.InOrStdin()) {
		loaded, err := readInputSource("-", cmd.InOrStdin())
		if err != nil {
			return err
		}
		text = loaded
	}
	if text == "" {
		return fmt.Errorf("note text is required (argument or stdin)")
	}

	space, err := writeTargetSpace()
	if err != nil {
		return err
	}

	err = GetClient().SaveToDailyNote(api.DailyNoteRequest{
		SpaceID:     space,
		MDText:      text,
		Origin:      dailyOrigin,
		NoTimestamp: dailyNoTimestamp,
	})
	if err != nil {
		return fmt.Errorf("save to daily note: %w", err)
	}

	if structuredOutputRequested() {
		return printStructured(map[string]string{
			"status":   "added",
			"space_id": space,
		})
	}

	fmt.Fprintln(stdoutFromContext(currentContext()), "Added to today's daily note")
	return nil
}
