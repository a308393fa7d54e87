package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/plumvelvet/capacities-cli/internal/api"
)

func TestSearchCommandJSON(t *testing.T) {
	fake := &fakeClient{
		SearchFunc: func(req api.SearchRequest) ([]api.SearchResult, error) {
			if req.Mode != api.SearchModeFullText {
				t.Errorf("Mode = %q", req.Mode)
			}
			if len(req.SpaceIDs) != 1 || req.SpaceIDs[0] != "space-1" {
				t.Errorf("SpaceIDs = %v", req.SpaceIDs)
			}
			return []api.SearchResult{
				{ID: "obj-1", SpaceID: "space-1", Title: "Roadmap", StructureID: "RootPage"},
			}, nil
		},
	}
	h := newHarness(t, fake)

	if err := h.run(t, "--token", "tok", "--space", "space-1", "--output", "json", "search", "roadmap"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var results []struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(h.out.Bytes(), &results); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Roadmap" {
		t.Fatalf("results = %+v", results)
	}
}

func TestSearchCommandAllSpacesWhenUnset(t *testing.T) {
	fake := &fakeClient{
		SpacesFunc: func() ([]api.Space, error) {
			return []api.Space{{ID: "space-a"}, {ID: "space-b"}}, nil
		},
		SearchFunc: func(req api.SearchRequest) ([]api.SearchResult, error) {
			if len(req.SpaceIDs) != 2 {
				t.Errorf("SpaceIDs = %v", req.SpaceIDs)
			}
			return nil, nil
		},
	}
	h := newHarness(t, fake)

	if err := h.run(t, "--token", "tok", "--output", "text", "search", "roadmap"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(h.out.String(), "No results") {
		t.Errorf("output = %q", h.out.String())
	}
}

func TestSearchCommandInvalidMode(t *testing.T) {
	h := newHarness(t, &fakeClient{})
	t.Cleanup(func() { searchMode = api.SearchModeFullText })

	err := h.run(t, "--token", "tok", "--space", "space-1", "search", "--mode", "fuzzy", "x")
	if err == nil || !strings.Contains(err.Error(), "invalid --mode") {
		t.Fatalf("err = %v", err)
	}
}

func TestSearchCommandRequiresToken(t *testing.T) {
	h := newHarness(t, &fakeClient{})

	err := h.run(t, "search", "roadmap")
	if err == nil || !strings.Contains(err.Error(), "API token required") {
		t.Fatalf("err = %v", err)
	}
}
