package cmd

import (
	"github.com/plumvelvet/capacities-cli/internal/api"
)

type fakeClient struct {
	SpacesFunc          func() ([]api.Space, error)
	SpaceInfoFunc       func(string) (api.SpaceInfo, error)
	SearchFunc          func(api.SearchRequest) ([]api.SearchResult, error)
	SaveWeblinkFunc     func(api.SaveWeblinkRequest) error
	SaveToDailyNoteFunc func(api.DailyNoteRequest) error
}

func (f *fakeClient) Spaces() ([]api.Space, error) {
	if f.SpacesFunc != nil {
		return f.SpacesFunc()
	}
	return nil, nil
}

func (f *fakeClient) SpaceInfo(spaceID string) (api.SpaceInfo, error) {
	if f.SpaceInfoFunc != nil {
		return f.SpaceInfoFunc(spaceID)
	}
	return api.SpaceInfo{}, nil
}

func (f *fakeClient) Search(req api.SearchRequest) ([]api.SearchResult, error) {
	if f.SearchFunc != nil {
		return f.SearchFunc(req)
	}
	return nil, nil
}

func (f *fakeClient) SaveWeblink(req api.SaveWeblinkRequest) error {
	if f.SaveWeblinkFunc != nil {
		return f.SaveWeblinkFunc(req)
	}
	return nil
}

func (f *fakeClient) SaveToDailyNote(req api.DailyNoteRequest) error {
	if f.SaveToDailyNoteFunc != nil {
		return f.SaveToDailyNoteFunc(req)
	}
	return nil
}
