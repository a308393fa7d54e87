package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plumvelvet/capacities-cli/internal/api"
)

var (
	saveTitle string
	saveMD    string
	saveTags  []string
)

var saveCmd = &cobra.Command{
	Use:   "save <url> [title]",
	Short: "Save a weblink",
	Long: `Save a URL as a Web Resource object.

The link goes into the configured space, or into the first accessible space
when no default space is set. A title given after the URL overrides the
title Capacities extracts from the page.`,
	Example: `  cap save https://example.com
  cap save https://example.com "Example Site"
  cap save https://example.com --md "Found via newsletter" --tag reading`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVar(&saveTitle, "title", "", "Title override (alternative to the positional title)")
	saveCmd.Flags().StringVar(&saveMD, "md", "", "Markdown text to attach to the weblink")
	saveCmd.Flags().StringSliceVar(&saveTags, "tag", nil, "Tag to apply (repeatable)")
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	url := strings.TrimSpace(args[0])
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("invalid URL %q: must start with http:// or https://", url)
	}

	title := saveTitle
	if len(args) > 1 {
		title = args[1]
	}

	space, err := writeTargetSpace()
	if err != nil {
		return err
	}

	err = GetClient().SaveWeblink(api.SaveWeblinkRequest{
		SpaceID:        space,
		URL:            url,
		TitleOverwrite: title,
		MDText:         saveMD,
		Tags:           saveTags,
	})
	if err != nil {
		return fmt.Errorf("save weblink: %w", err)
	}

	if structuredOutputRequested() {
		return printStructured(map[string]string{
			"status":   "saved",
			"url":      url,
			"space_id": space,
		})
	}

	fmt.Fprintf(stdoutFromContext(currentContext()), "Saved %s\n", url)
	return nil
}

// writeTargetSpace returns the space writes go to: the configured default,
// or the first accessible space.
func writeTargetSpace() (string, error) {
	if spaceID != "" {
		return spaceID, nil
	}

	spaces, err := GetClient().Spaces()
	if err != nil {
		return "", fmt.Errorf("listing spaces: %w", err)
	}
	if len(spaces) == 0 {
		return "", fmt.Errorf("no spaces available")
	}
	return spaces[0].ID, nil
}
