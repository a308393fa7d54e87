package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Search_SendsBearerTokenAndBody(t *testing.T) {
	var receivedAuth string
	var receivedBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&receivedBody)
		w.Write([]byte(`{"results":[{"id":"obj1","spaceId":"sp1","structureId":"RootPage","title":"Hello"}]}`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	results, err := client.Search(SearchRequest{
		SearchTerm: "hello",
		SpaceIDs:   []string{"sp1"},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if receivedAuth != "Bearer test-token" {
		t.Errorf("expected bearer auth header, got %q", receivedAuth)
	}
	if receivedBody["searchTerm"] != "hello" {
		t.Errorf("expected searchTerm 'hello', got %v", receivedBody["searchTerm"])
	}
	if receivedBody["mode"] != "fullText" {
		t.Errorf("expected default mode 'fullText', got %v", receivedBody["mode"])
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Title != "Hello" || results[0].StructureID != "RootPage" {
		t.Errorf("unexpected result: %+v", results[0])
	}
}

func TestClient_Spaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/spaces" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"spaces":[{"id":"sp1","title":"Personal"},{"id":"sp2","title":"Work"}]}`))
	}))
	defer server.Close()

	client := NewClient("tok", WithBaseURL(server.URL))

	spaces, err := client.Spaces()
	if err != nil {
		t.Fatalf("Spaces failed: %v", err)
	}
	if len(spaces) != 2 {
		t.Fatalf("expected 2 spaces, got %d", len(spaces))
	}
	if spaces[0].ID != "sp1" || spaces[1].Title != "Work" {
		t.Errorf("unexpected spaces: %+v", spaces)
	}
}

func TestClient_SpaceInfo_QueryParam(t *testing.T) {
	var receivedQuery string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedQuery = r.URL.Query().Get("spaceid")
		w.Write([]byte(`{"structures":[{"id":"custom1","title":"Book"}]}`))
	}))
	defer server.Close()

	client := NewClient("tok", WithBaseURL(server.URL))

	info, err := client.SpaceInfo("sp1")
	if err != nil {
		t.Fatalf("SpaceInfo failed: %v", err)
	}
	if receivedQuery != "sp1" {
		t.Errorf("expected spaceid query 'sp1', got %q", receivedQuery)
	}
	if got := info.StructureTitle("custom1"); got != "Book" {
		t.Errorf("StructureTitle(custom1) = %q, want Book", got)
	}
	if got := info.StructureTitle("missing"); got != "" {
		t.Errorf("StructureTitle(missing) = %q, want empty", got)
	}
}

func TestClient_SaveWeblink_EmptyBodyIsSuccess(t *testing.T) {
	var receivedBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&receivedBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient("tok", WithBaseURL(server.URL))

	err := client.SaveWeblink(SaveWeblinkRequest{
		SpaceID:        "sp1",
		URL:            "https://example.com",
		TitleOverwrite: "My Title",
	})
	if err != nil {
		t.Fatalf("SaveWeblink failed: %v", err)
	}

	if receivedBody["spaceId"] != "sp1" {
		t.Errorf("expected spaceId 'sp1', got %v", receivedBody["spaceId"])
	}
	if receivedBody["titleOverwrite"] != "My Title" {
		t.Errorf("expected titleOverwrite 'My Title', got %v", receivedBody["titleOverwrite"])
	}
	if _, present := receivedBody["mdText"]; present {
		t.Error("mdText should be omitted when empty")
	}
}

func TestClient_SaveToDailyNote_Body(t *testing.T) {
	var receivedBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/save-to-daily-note" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&receivedBody)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient("tok", WithBaseURL(server.URL))

	if err := client.SaveToDailyNote(DailyNoteRequest{SpaceID: "sp1", MDText: "Buy milk"}); err != nil {
		t.Fatalf("SaveToDailyNote failed: %v", err)
	}
	if receivedBody["mdText"] != "Buy milk" {
		t.Errorf("expected mdText 'Buy milk', got %v", receivedBody["mdText"])
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, func(err error) bool {
			var e AuthenticationError
			return errors.As(err, &e)
		}},
		{"forbidden", http.StatusForbidden, func(err error) bool {
			var e AuthenticationError
			return errors.As(err, &e)
		}},
		{"rate limited", http.StatusTooManyRequests, func(err error) bool {
			var e RateLimitError
			return errors.As(err, &e)
		}},
		{"bad request", http.StatusBadRequest, func(err error) bool {
			var e ValidationError
			return errors.As(err, &e)
		}},
		{"not found", http.StatusNotFound, func(err error) bool {
			var e NotFoundError
			return errors.As(err, &e)
		}},
		{"server error", http.StatusInternalServerError, func(err error) bool {
			var e APIError
			return errors.As(err, &e) && e.StatusCode == http.StatusInternalServerError
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message":"nope"}`))
			}))
			defer server.Close()

			client := NewClient("tok", WithBaseURL(server.URL))
			_, err := client.Spaces()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error type: %T %v", err, err)
			}
		})
	}
}

func TestClient_ErrorMessageExtraction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"spaceId is required"}`))
	}))
	defer server.Close()

	client := NewClient("tok", WithBaseURL(server.URL))
	err := client.SaveWeblink(SaveWeblinkRequest{URL: "https://example.com"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Message != "invalid request: spaceId is required" {
		t.Errorf("unexpected message: %q", verr.Message)
	}
}

func TestClient_MalformedJSONIsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [`))
	}))
	defer server.Close()

	client := NewClient("tok", WithBaseURL(server.URL))
	_, err := client.Search(SearchRequest{SearchTerm: "abc", SpaceIDs: []string{"sp1"}})
	if err == nil {
		t.Fatal("expected parse error, got nil")
	}
}
