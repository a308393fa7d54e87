package api

import "fmt"

// Space is a top-level container in Capacities.
type Space struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon,omitempty"`
}

// SpacesResponse is the body returned by GET /spaces.
type SpacesResponse struct {
	Spaces []Space `json:"spaces"`
}

// Structure describes an object type defined in a space.
type Structure struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PluralName string `json:"pluralName,omitempty"`
}

// SpaceInfo is the body returned by GET /space-info.
// Object types live under "structures", not "collections".
type SpaceInfo struct {
	Structures  []Structure `json:"structures"`
	Collections []Structure `json:"collections,omitempty"`
}

// StructureTitle resolves a structure id to its human-readable title.
// Returns the empty string when the space does not define the structure.
func (s SpaceInfo) StructureTitle(structureID string) string {
	for _, st := range s.Structures {
		if st.ID == structureID {
			return st.Title
		}
	}
	return ""
}

// Search modes accepted by POST /search.
const (
	SearchModeFullText = "fullText"
	SearchModeTitle    = "title"
)

// SearchRequest is the body for POST /search.
type SearchRequest struct {
	Mode               string   `json:"mode"`
	SearchTerm         string   `json:"searchTerm"`
	SpaceIDs           []string `json:"spaceIds"`
	FilterStructureIDs []string `json:"filterStructureIds,omitempty"`
}

// SearchResult is a single record in a search response.
// StructureID identifies the object type; older responses carry it in Type.
type SearchResult struct {
	ID          string `json:"id"`
	SpaceID     string `json:"spaceId"`
	SpaceName   string `json:"spaceName,omitempty"`
	StructureID string `json:"structureId,omitempty"`
	Type        string `json:"type,omitempty"`
	Title       string `json:"title"`
	Snippet     string `json:"snippet,omitempty"`
	WebURL      string `json:"webUrl,omitempty"`
}

// SearchResponse is the body returned by POST /search.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// SaveWeblinkRequest is the body for POST /save-weblink.
type SaveWeblinkRequest struct {
	SpaceID        string   `json:"spaceId"`
	URL            string   `json:"url"`
	TitleOverwrite string   `json:"titleOverwrite,omitempty"`
	MDText         string   `json:"mdText,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// DailyNoteRequest is the body for POST /save-to-daily-note.
type DailyNoteRequest struct {
	SpaceID     string `json:"spaceId"`
	MDText      string `json:"mdText"`
	Origin      string `json:"origin,omitempty"`
	NoTimestamp bool   `json:"noTimeStamp,omitempty"`
}

// builtinStructures maps the structure ids Capacities ships with to
// display names. Custom structures are resolved via SpaceInfo.
var builtinStructures = map[string]string{
	"RootDailyNote":    "Daily Note",
	"RootPage":         "Page",
	"MediaWebResource": "Web Resource",
	"MediaFile":        "File",
	"MediaImage":       "Image",
}

// BuiltinStructureName returns the display name for a built-in structure id.
func BuiltinStructureName(structureID string) (string, bool) {
	name, ok := builtinStructures[structureID]
	return name, ok
}

// ObjectURL builds the capacities:// deep link that opens an object in the
// desktop app. The bid query parameter carries the structure id when known.
func ObjectURL(spaceID, objectID, structureID string) string {
	if spaceID == "" || objectID == "" {
		return ""
	}
	if structureID == "" {
		return fmt.Sprintf("capacities://%s/%s", spaceID, objectID)
	}
	return fmt.Sprintf("capacities://%s/%s?bid=%s", spaceID, objectID, structureID)
}

// ResultStructureID returns the structure id of a search result, falling
// back to the legacy type field.
func (r SearchResult) ResultStructureID() string {
	if r.StructureID != "" {
		return r.StructureID
	}
	return r.Type
}

// OpenURL returns the action payload for a search result: the deep link
// when space and object ids are present, otherwise the web URL.
func (r SearchResult) OpenURL() string {
	if u := ObjectURL(r.SpaceID, r.ID, r.ResultStructureID()); u != "" {
		return u
	}
	return r.WebURL
}
