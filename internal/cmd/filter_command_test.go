package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/plumvelvet/capacities-cli/internal/api"
)

type feedbackDoc struct {
	Items []struct {
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
		Arg      string `json:"arg"`
		Valid    bool   `json:"valid"`
	} `json:"items"`
}

func decodeFeedback(t *testing.T, out string) feedbackDoc {
	t.Helper()
	var doc feedbackDoc
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("parse feedback %q: %v", out, err)
	}
	return doc
}

func TestFilterSearchJSON(t *testing.T) {
	fake := &fakeClient{
		SearchFunc: func(req api.SearchRequest) ([]api.SearchResult, error) {
			if req.SearchTerm != "meeting notes" {
				t.Errorf("SearchTerm = %q", req.SearchTerm)
			}
			return []api.SearchResult{
				{ID: "obj-1", SpaceID: "space-1", StructureID: "RootPage", Title: "Weekly sync"},
			}, nil
		},
	}
	h := newHarness(t, fake)

	if err := h.run(t, "--token", "tok", "--space", "space-1", "filter", "meeting notes"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	doc := decodeFeedback(t, h.out.String())
	if len(doc.Items) != 1 {
		t.Fatalf("got %d items", len(doc.Items))
	}
	if doc.Items[0].Title != "Weekly sync" || !doc.Items[0].Valid {
		t.Errorf("item = %+v", doc.Items[0])
	}
	if doc.Items[0].Arg != "capacities://space-1/obj-1?bid=RootPage" {
		t.Errorf("arg = %q", doc.Items[0].Arg)
	}
}

func TestFilterMissingTokenEmitsItem(t *testing.T) {
	called := false
	fake := &fakeClient{
		SearchFunc: func(req api.SearchRequest) ([]api.SearchResult, error) {
			called = true
			return nil, nil
		},
	}
	h := newHarness(t, fake)

	// No token anywhere: the command still succeeds and reports through
	// the item list.
	if err := h.run(t, "filter", "meeting notes"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if called {
		t.Error("search was called without a token")
	}

	doc := decodeFeedback(t, h.out.String())
	if len(doc.Items) != 1 || doc.Items[0].Valid {
		t.Fatalf("items = %+v", doc.Items)
	}
	if !strings.Contains(doc.Items[0].Title, "token") {
		t.Errorf("title = %q", doc.Items[0].Title)
	}
}

func TestFilterDeepLinkPassthrough(t *testing.T) {
	h := newHarness(t, &fakeClient{})

	if err := h.run(t, "filter", "capacities://space-1/obj-1?bid=RootPage"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	got := strings.TrimSpace(h.out.String())
	if got != "capacities://space-1/obj-1?bid=RootPage" {
		t.Errorf("output = %q, want raw deep link", got)
	}
}

func TestFilterQueryFromEnv(t *testing.T) {
	fake := &fakeClient{
		SearchFunc: func(req api.SearchRequest) ([]api.SearchResult, error) {
			if req.SearchTerm != "from env" {
				t.Errorf("SearchTerm = %q", req.SearchTerm)
			}
			return nil, nil
		},
	}
	h := newHarness(t, fake)

	prevEnvGet := envGet
	envGet = func(key string) string {
		if key == "query" {
			return "from env"
		}
		return ""
	}
	defer func() { envGet = prevEnvGet }()

	if err := h.run(t, "--token", "tok", "--space", "space-1", "filter"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	doc := decodeFeedback(t, h.out.String())
	if len(doc.Items) != 1 || doc.Items[0].Title != "No results" {
		t.Errorf("items = %+v", doc.Items)
	}
}

func TestFilterSaveRoundTrip(t *testing.T) {
	var saved api.SaveWeblinkRequest
	fake := &fakeClient{
		SaveWeblinkFunc: func(req api.SaveWeblinkRequest) error {
			saved = req
			return nil
		},
	}
	h := newHarness(t, fake)

	// Phase one: the preview item carries the execute payload.
	if err := h.run(t, "--token", "tok", "--space", "space-1", "filter", `caps https://example.com "My Title"`); err != nil {
		t.Fatalf("execute preview: %v", err)
	}
	doc := decodeFeedback(t, h.out.String())
	if len(doc.Items) != 1 || !doc.Items[0].Valid {
		t.Fatalf("preview items = %+v", doc.Items)
	}
	payload := doc.Items[0].Arg

	// Phase two: feeding the payload back performs the save.
	h2 := newHarness(t, fake)
	if err := h2.run(t, "--token", "tok", "--space", "space-1", "filter", payload); err != nil {
		t.Fatalf("execute save: %v", err)
	}
	doc2 := decodeFeedback(t, h2.out.String())
	if len(doc2.Items) != 1 || doc2.Items[0].Title != "Weblink saved" {
		t.Fatalf("save items = %+v", doc2.Items)
	}
	if saved.URL != "https://example.com" || saved.TitleOverwrite != "My Title" || saved.SpaceID != "space-1" {
		t.Errorf("request = %+v", saved)
	}
}

func TestFilterInvalidURLNoNetwork(t *testing.T) {
	fake := &fakeClient{
		SaveWeblinkFunc: func(req api.SaveWeblinkRequest) error {
			t.Error("save was called for an invalid URL")
			return nil
		},
	}
	h := newHarness(t, fake)

	if err := h.run(t, "--token", "tok", "filter", "caps not-a-url"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	doc := decodeFeedback(t, h.out.String())
	if len(doc.Items) != 1 || doc.Items[0].Valid || doc.Items[0].Title != "Invalid URL" {
		t.Errorf("items = %+v", doc.Items)
	}
}

func TestFilterEmptyInputShowsHelp(t *testing.T) {
	h := newHarness(t, &fakeClient{})

	if err := h.run(t, "filter"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	doc := decodeFeedback(t, h.out.String())
	if len(doc.Items) != 3 {
		t.Fatalf("got %d help items", len(doc.Items))
	}
}
