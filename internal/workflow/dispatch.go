package workflow

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/plumvelvet/capacities-cli/internal/alfred"
	"github.com/plumvelvet/capacities-cli/internal/api"
	"github.com/plumvelvet/capacities-cli/internal/cache"
)

const (
	// MinSearchLength is the minimum query length before a search request
	// is issued; shorter queries only produce a hint item.
	MinSearchLength = 3
	// MaxSearchResults caps the number of result items shown to the host.
	MaxSearchResults = 20
	// snippetLength is the maximum snippet length shown in a subtitle.
	snippetLength = 80
	// previewLength is the maximum note text length shown in a preview.
	previewLength = 100

	// SpaceListCacheKey stores the cached space list.
	SpaceListCacheKey = "space_list"
	// SpaceInfoCacheKey stores cached space-info responses keyed by space id.
	SpaceInfoCacheKey = "space_info_cache"
	// SpaceCacheTTL is how long cached space data stays fresh.
	SpaceCacheTTL = time.Hour
)

// Credentials carries the API token and the optional default space id,
// loaded once at invocation start and passed by value.
type Credentials struct {
	Token   string
	SpaceID string
}

// Dispatcher maps one parsed Command to an ordered item list. The mapping
// is total: every outcome, including every failure, yields at least one
// item, and API result ordering is preserved.
type Dispatcher struct {
	client api.CapacitiesAPI
	creds  Credentials
	cache  *cache.Cache
}

// NewDispatcher returns a dispatcher for one invocation.
func NewDispatcher(client api.CapacitiesAPI, creds Credentials, c *cache.Cache) *Dispatcher {
	return &Dispatcher{client: client, creds: creds, cache: c}
}

// Run parses input and dispatches it.
func (d *Dispatcher) Run(input string) []alfred.Item {
	return d.Dispatch(Parse(input))
}

// Dispatch executes a parsed command. Network-backed commands short-circuit
// with a missing-token item before any call is made.
func (d *Dispatcher) Dispatch(cmd Command) []alfred.Item {
	switch cmd.Kind {
	case KindHelp:
		return helpItems()
	case KindOpenURL:
		return []alfred.Item{{Title: "Open in Capacities", Subtitle: cmd.URL, Arg: cmd.URL, Valid: true}}
	case KindSearch:
		if item, ok := d.requireToken(); !ok {
			return []alfred.Item{item}
		}
		return d.search(cmd.Query)
	case KindSaveWeblink:
		if !cmd.Execute {
			return previewWeblink(cmd.URL, cmd.Title)
		}
		if item, ok := d.requireToken(); !ok {
			return []alfred.Item{item}
		}
		return d.saveWeblink(cmd.URL, cmd.Title)
	case KindAddToDailyNote:
		if !cmd.Execute {
			return previewDailyNote(cmd.Text)
		}
		if item, ok := d.requireToken(); !ok {
			return []alfred.Item{item}
		}
		return d.addToDailyNote(cmd.Text)
	}
	return []alfred.Item{invalidItem("Unknown command", "Could not understand the input")}
}

// requireToken returns a missing-token item when no API token is
// configured. No network call happens on this path.
func (d *Dispatcher) requireToken() (alfred.Item, bool) {
	if strings.TrimSpace(d.creds.Token) != "" {
		return alfred.Item{}, true
	}
	return invalidItem("API token not found",
		"Set the api_token workflow variable or run 'cap auth login'"), false
}

func helpItems() []alfred.Item {
	return []alfred.Item{
		{Title: "cap <query>", Subtitle: "Search content (3+ chars)", Autocomplete: "cap "},
		{Title: "caps <url> [title]", Subtitle: "Save weblink (press Enter to confirm)", Autocomplete: "caps "},
		{Title: "capn <text>", Subtitle: "Add to daily note (press Enter to confirm)", Autocomplete: "capn "},
	}
}

func (d *Dispatcher) search(query string) []alfred.Item {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) < MinSearchLength {
		return []alfred.Item{invalidItem("Keep typing...",
			fmt.Sprintf("Enter at least %d characters to search (currently: %d)", MinSearchLength, len(trimmed)))}
	}

	spaceIDs, err := d.searchSpaceIDs()
	if err != nil {
		return []alfred.Item{invalidItem("Error", "Could not get spaces for search: "+errorSubtitle(err))}
	}

	results, err := d.client.Search(api.SearchRequest{
		Mode:       api.SearchModeFullText,
		SearchTerm: trimmed,
		SpaceIDs:   spaceIDs,
	})
	if err != nil {
		return []alfred.Item{invalidItem("Error", errorSubtitle(err))}
	}

	if len(results) == 0 {
		return []alfred.Item{invalidItem("No results", fmt.Sprintf("No content found for '%s'", trimmed))}
	}

	if len(results) > MaxSearchResults {
		results = results[:MaxSearchResults]
	}

	infos := d.cachedSpaceInfos()
	items := make([]alfred.Item, 0, len(results))
	for _, r := range results {
		subtitle := "Type: " + d.structureName(infos, r.SpaceID, r.ResultStructureID())
		if r.Snippet != "" {
			subtitle += " | " + truncate(strings.ReplaceAll(r.Snippet, "\n", " "), snippetLength)
		}

		arg := r.OpenURL()
		items = append(items, alfred.Item{
			Title:    titleOrUntitled(r.Title),
			Subtitle: subtitle,
			Arg:      arg,
			Valid:    arg != "",
		})
	}
	return items
}

// searchSpaceIDs returns the spaces a search is scoped to: the configured
// default space, or every accessible space. The space list flows through
// the cache so repeated invocations stay at one outbound call.
func (d *Dispatcher) searchSpaceIDs() ([]string, error) {
	if d.creds.SpaceID != "" {
		return []string{d.creds.SpaceID}, nil
	}

	spaces, err := d.spaceList()
	if err != nil {
		return nil, err
	}
	if len(spaces) == 0 {
		return nil, errors.New("no spaces available")
	}

	ids := make([]string, 0, len(spaces))
	for _, s := range spaces {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

// spaceList returns the accessible spaces, served from the cache when fresh.
func (d *Dispatcher) spaceList() ([]api.Space, error) {
	var cached []api.Space
	if d.cache != nil {
		if found, _ := d.cache.Read(SpaceListCacheKey, SpaceCacheTTL, &cached); found && len(cached) > 0 {
			return cached, nil
		}
	}

	spaces, err := d.client.Spaces()
	if err != nil {
		return nil, err
	}
	if d.cache != nil {
		_ = d.cache.Write(SpaceListCacheKey, spaces)
	}
	return spaces, nil
}

// cachedSpaceInfos loads previously cached space-info responses. Search
// never fetches space-info itself; custom type names resolve only from what
// is already cached.
func (d *Dispatcher) cachedSpaceInfos() map[string]api.SpaceInfo {
	infos := map[string]api.SpaceInfo{}
	if d.cache != nil {
		_, _ = d.cache.Read(SpaceInfoCacheKey, SpaceCacheTTL, &infos)
	}
	return infos
}

// structureName resolves a structure id to a display name: built-in types
// first, then the cached space-info, then the raw id.
func (d *Dispatcher) structureName(infos map[string]api.SpaceInfo, spaceID, structureID string) string {
	if name, ok := api.BuiltinStructureName(structureID); ok {
		return name
	}
	if structureID == "" {
		return "Unknown"
	}
	if info, ok := infos[spaceID]; ok {
		if title := info.StructureTitle(structureID); title != "" {
			return title
		}
	}
	return structureID
}

// weblinkArgs validates the save-weblink arguments before any network call.
type weblinkArgs struct {
	URL   string
	Title string
}

var httpURLPattern = regexp.MustCompile(`^https?://\S+$`)

func (a weblinkArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.URL,
			validation.Required.Error("a URL is required"),
			validation.Match(httpURLPattern).Error("must be a valid HTTP/HTTPS URL"),
		),
	)
}

func previewWeblink(url, title string) []alfred.Item {
	if url == "" {
		return []alfred.Item{invalidItem("Save Weblink", "Format: caps <url> [title] - Press Enter to save")}
	}
	if err := (weblinkArgs{URL: url, Title: title}).Validate(); err != nil {
		return []alfred.Item{invalidItem("Invalid URL", "Please provide a valid HTTP/HTTPS URL")}
	}

	subtitle := "URL: " + url
	if title != "" {
		subtitle += " | Title: " + title
	}
	subtitle += " - Press Enter to save"

	return []alfred.Item{{
		Title:    "Save to Capacities",
		Subtitle: subtitle,
		Arg:      savePrefix + url + ":" + title,
		Valid:    true,
	}}
}

func (d *Dispatcher) saveWeblink(url, title string) []alfred.Item {
	if err := (weblinkArgs{URL: url, Title: title}).Validate(); err != nil {
		return []alfred.Item{invalidItem("Invalid URL", "Please provide a valid HTTP/HTTPS URL")}
	}

	spaceID, err := d.targetSpaceID()
	if err != nil {
		return []alfred.Item{invalidItem("Error", errorSubtitle(err))}
	}

	err = d.client.SaveWeblink(api.SaveWeblinkRequest{
		SpaceID:        spaceID,
		URL:            url,
		TitleOverwrite: title,
	})
	if err != nil {
		return []alfred.Item{invalidItem("Error", errorSubtitle(err))}
	}

	return []alfred.Item{invalidItem("Weblink saved", fmt.Sprintf("Successfully saved %s to Capacities", url))}
}

func previewDailyNote(text string) []alfred.Item {
	if strings.TrimSpace(text) == "" {
		return []alfred.Item{invalidItem("Add to Daily Note", "Format: capn <text> - Press Enter to save")}
	}

	return []alfred.Item{{
		Title:    "Add to Daily Note",
		Subtitle: fmt.Sprintf("Text: %s - Press Enter to save", truncate(text, previewLength)),
		Arg:      notePrefix + text,
		Valid:    true,
	}}
}

func (d *Dispatcher) addToDailyNote(text string) []alfred.Item {
	if strings.TrimSpace(text) == "" {
		return []alfred.Item{invalidItem("Empty Note", "Please enter some text for the note")}
	}

	spaceID, err := d.targetSpaceID()
	if err != nil {
		return []alfred.Item{invalidItem("Error", errorSubtitle(err))}
	}

	err = d.client.SaveToDailyNote(api.DailyNoteRequest{
		SpaceID: spaceID,
		MDText:  text,
	})
	if err != nil {
		return []alfred.Item{invalidItem("Error", errorSubtitle(err))}
	}

	return []alfred.Item{invalidItem("Added to daily note", "Successfully added text to today's daily note")}
}

// targetSpaceID returns the space writes go to: the configured default, or
// the first accessible space.
func (d *Dispatcher) targetSpaceID() (string, error) {
	if d.creds.SpaceID != "" {
		return d.creds.SpaceID, nil
	}

	spaces, err := d.spaceList()
	if err != nil {
		return "", err
	}
	if len(spaces) == 0 {
		return "", errors.New("no spaces found")
	}
	return spaces[0].ID, nil
}

// errorSubtitle renders an API error as a one-line human-readable subtitle.
func errorSubtitle(err error) string {
	var authErr api.AuthenticationError
	if errors.As(err, &authErr) {
		return "Invalid API token. Run 'cap auth login' to update it"
	}
	var rateErr api.RateLimitError
	if errors.As(err, &rateErr) {
		return "Rate limit exceeded. Try again in a minute"
	}
	return "API request failed: " + err.Error()
}

func invalidItem(title, subtitle string) alfred.Item {
	return alfred.Item{Title: title, Subtitle: subtitle, Valid: false}
}

func titleOrUntitled(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Untitled"
	}
	return title
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
