package api

// CapacitiesAPI defines the interface for talking to the Capacities service.
// Commands depend on this interface rather than the concrete Client so tests
// can substitute a fake.
type CapacitiesAPI interface {
	// Spaces returns the spaces the configured token has access to.
	Spaces() ([]Space, error)

	// SpaceInfo returns the object types (structures) defined in a space.
	// The endpoint allows only a handful of requests per minute; callers
	// should consult the space-info cache first.
	SpaceInfo(spaceID string) (SpaceInfo, error)

	// Search runs a content search across the given spaces and returns the
	// results in the order the service ranked them.
	Search(req SearchRequest) ([]SearchResult, error)

	// SaveWeblink saves a URL as a Web Resource object.
	SaveWeblink(req SaveWeblinkRequest) error

	// SaveToDailyNote appends markdown text to today's daily note.
	SaveToDailyNote(req DailyNoteRequest) error
}
