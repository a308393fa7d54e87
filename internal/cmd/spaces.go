package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plumvelvet/capacities-cli/internal/api"
	"github.com/plumvelvet/capacities-cli/internal/cache"
	"github.com/plumvelvet/capacities-cli/internal/output"
	"github.com/plumvelvet/capacities-cli/internal/workflow"
)

var spacesRefresh bool

var spacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "Inspect your spaces",
}

var spacesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accessible spaces",
	RunE:  runSpacesList,
}

var spacesInfoCmd = &cobra.Command{
	Use:   "info [space-id]",
	Short: "Show the object types defined in a space",
	Long: `Show the structures (object types) defined in a space.

Responses are cached for an hour because the space-info endpoint allows
only a few requests per minute. Use --refresh to bypass the cache.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSpacesInfo,
}

func init() {
	spacesInfoCmd.Flags().BoolVar(&spacesRefresh, "refresh", false, "Bypass the cached response")

	spacesCmd.AddCommand(spacesListCmd)
	spacesCmd.AddCommand(spacesInfoCmd)
	rootCmd.AddCommand(spacesCmd)
}

func runSpacesList(cmd *cobra.Command, args []string) error {
	spaces, err := GetClient().Spaces()
	if err != nil {
		return fmt.Errorf("listing spaces: %w", err)
	}

	if c, err := openCacheFunc(); err == nil {
		_ = c.Write(workflow.SpaceListCacheKey, spaces)
	}

	if structuredOutputRequested() {
		return printStructured(spaces)
	}

	if GetOutputFormat() == output.FormatTable {
		t := output.Table{Headers: []string{"ID", "TITLE"}}
		for _, s := range spaces {
			t.Rows = append(t.Rows, []string{s.ID, s.Title})
		}
		return printStructured(t)
	}

	out := stdoutFromContext(currentContext())
	for _, s := range spaces {
		fmt.Fprintf(out, "%s  %s\n", s.ID, s.Title)
	}
	return nil
}

func runSpacesInfo(cmd *cobra.Command, args []string) error {
	space := spaceID
	if len(args) > 0 {
		space = args[0]
	}
	if space == "" {
		return fmt.Errorf("space id required (argument, --space, or CAPACITIES_SPACE_ID)")
	}

	c, cacheErr := openCacheFunc()

	infos := map[string]api.SpaceInfo{}
	if cacheErr == nil {
		_, _ = c.Read(workflow.SpaceInfoCacheKey, workflow.SpaceCacheTTL, &infos)
	}

	info, cached := infos[space]
	if !cached || spacesRefresh {
		if cacheErr == nil {
			limiter := cache.NewRateLimiter(c, "space_info_requests", cache.RateLimitWindow, cache.RateLimitMaxRequests)
			if !limiter.Allow(space) {
				return fmt.Errorf("space-info request budget exhausted for %s, try again in a minute", space)
			}
		}

		fetched, err := GetClient().SpaceInfo(space)
		if err != nil {
			return fmt.Errorf("space info: %w", err)
		}
		info = fetched

		if cacheErr == nil {
			infos[space] = info
			_ = c.Write(workflow.SpaceInfoCacheKey, infos)
		}
	}

	if structuredOutputRequested() {
		return printStructured(info)
	}

	out := stdoutFromContext(currentContext())
	fmt.Fprintf(out, "Structures in %s:\n", space)
	for _, st := range info.Structures {
		fmt.Fprintf(out, "  %s  %s\n", st.ID, st.Title)
	}
	return nil
}
