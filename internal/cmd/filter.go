package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plumvelvet/capacities-cli/internal/alfred"
	"github.com/plumvelvet/capacities-cli/internal/cache"
	"github.com/plumvelvet/capacities-cli/internal/workflow"
)

// openCacheFunc is swapped in tests to keep cache files out of the user
// cache directory.
var openCacheFunc = cache.Default

var filterCmd = &cobra.Command{
	Use:   "filter [input]",
	Short: "Run the launcher script filter",
	Long: `Run the launcher script filter for one input string and print the
resulting item list as JSON on stdout.

The input is the raw query the launcher host passes through: a search term,
a 'caps <url> [title]' or 'capn <text>' command, or the save_execute:/
note_execute: action payload of a previously shown item. When no argument
is given the input is read from the 'query' environment variable, which is
how Alfred hands the typed text to a script filter.

A capacities:// deep link is printed back verbatim so the host's open-URL
action can consume it directly.

Every outcome is a valid item list. The command never fails on API or
credential problems; those surface as items the user can read.`,
	Example: `  cap filter "meeting notes"
  cap filter 'caps https://example.com "My Title"'
  cap filter "capn Buy milk"`,
	RunE: runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")
	if strings.TrimSpace(input) == "" {
		input = envGet("query")
	}

	// Deep links bypass the feedback document entirely.
	parsed := workflow.Parse(input)
	if parsed.Kind == workflow.KindOpenURL {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), parsed.URL)
		return err
	}

	// Credentials resolve without ever failing here: a missing token is
	// the dispatcher's to report as an item.
	cfg, err := loadConfigFromFlag()
	if err != nil {
		cfg = nil
	}
	token, space, _ := resolveCredentials(cmd, cfg)
	creds := workflow.Credentials{Token: token, SpaceID: space}

	c, err := openCacheFunc()
	if err != nil {
		c = nil
	}

	d := workflow.NewDispatcher(newClientFunc(token, clientOptionsFromConfig(cfg)...), creds, c)

	feedback := alfred.NewFeedback()
	feedback.Add(d.Dispatch(parsed)...)
	return feedback.Write(cmd.OutOrStdout())
}
