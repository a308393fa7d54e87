package alfred

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestFeedbackWrite_EmptyItemsArrayPresent(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFeedback().Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	raw, ok := doc["items"]
	if !ok {
		t.Fatal("expected 'items' key in feedback document")
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("expected empty items array, got %s", raw)
	}
}

func TestFeedbackWrite_PreservesOrderAndFields(t *testing.T) {
	fb := NewFeedback()
	fb.Add(
		Item{Title: "first", Subtitle: "one", Arg: "capacities://s/1", Valid: true},
		Item{Title: "second", Valid: false},
	)

	var buf bytes.Buffer
	if err := fb.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var doc struct {
		Items []Item `json:"items"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(doc.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(doc.Items))
	}
	if doc.Items[0].Title != "first" || doc.Items[1].Title != "second" {
		t.Errorf("item order not preserved: %+v", doc.Items)
	}
	if doc.Items[0].Arg != "capacities://s/1" || !doc.Items[0].Valid {
		t.Errorf("unexpected first item: %+v", doc.Items[0])
	}
	if doc.Items[1].Valid {
		t.Error("second item should be invalid")
	}
}

func TestFeedbackWrite_NoHTMLEscaping(t *testing.T) {
	fb := NewFeedback()
	fb.Add(Item{Title: "link", Arg: "https://example.com/?a=1&b=2", Valid: true})

	var buf bytes.Buffer
	if err := fb.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if strings.Contains(buf.String(), `&`) {
		t.Errorf("ampersand should not be HTML-escaped: %s", buf.String())
	}
}
