package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plumvelvet/capacities-cli/internal/api"
	"github.com/plumvelvet/capacities-cli/internal/output"
)

var (
	searchMode       string
	searchStructures []string
	searchLimit      int
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search content across spaces",
	Long: `Search content in your Capacities spaces.

The search is scoped to the configured space. Without a default space it
covers every space the token has access to.`,
	Example: `  cap search "meeting notes"
  cap search --mode title kickoff
  cap search -o json "roadmap" --query '.[].title'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", api.SearchModeFullText, "Search mode (fullText|title)")
	searchCmd.Flags().StringSliceVar(&searchStructures, "structure", nil, "Restrict to structure ids (repeatable)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum number of results (0 = unlimited)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	term := strings.TrimSpace(strings.Join(args, " "))
	if term == "" {
		return fmt.Errorf("search term is required")
	}

	switch searchMode {
	case api.SearchModeFullText, api.SearchModeTitle:
	default:
		return fmt.Errorf("invalid --mode %q (expected fullText|title)", searchMode)
	}

	spaceIDs, err := searchScope()
	if err != nil {
		return err
	}

	results, err := GetClient().Search(api.SearchRequest{
		Mode:               searchMode,
		SearchTerm:         term,
		SpaceIDs:           spaceIDs,
		FilterStructureIDs: searchStructures,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchLimit > 0 && len(results) > searchLimit {
		results = results[:searchLimit]
	}

	if structuredOutputRequested() {
		return printStructured(results)
	}

	ctx := currentContext()
	out := stdoutFromContext(ctx)
	if len(results) == 0 {
		if !output.QuietFromContext(ctx) {
			fmt.Fprintf(out, "No results for %q\n", term)
		}
		return nil
	}

	for _, r := range results {
		title := r.Title
		if strings.TrimSpace(title) == "" {
			title = "Untitled"
		}
		fmt.Fprintf(out, "%s  (%s)\n", title, r.ResultStructureID())
		if r.Snippet != "" {
			fmt.Fprintf(out, "    %s\n", strings.ReplaceAll(r.Snippet, "\n", " "))
		}
		if url := r.OpenURL(); url != "" {
			fmt.Fprintf(out, "    %s\n", url)
		}
	}
	return nil
}

// searchScope returns the space ids a search runs against.
func searchScope() ([]string, error) {
	if spaceID != "" {
		return []string{spaceID}, nil
	}

	spaces, err := GetClient().Spaces()
	if err != nil {
		return nil, fmt.Errorf("listing spaces: %w", err)
	}
	if len(spaces) == 0 {
		return nil, fmt.Errorf("no spaces available")
	}

	ids := make([]string, 0, len(spaces))
	for _, s := range spaces {
		ids = append(ids, s.ID)
	}
	return ids, nil
}
