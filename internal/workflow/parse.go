// Package workflow implements the launcher command dispatcher: it parses the
// free-text query the launcher host passes in, performs the matching
// Capacities API call, and maps the outcome to script filter items.
package workflow

import "strings"

// Kind identifies the parsed command variant.
type Kind int

const (
	// KindHelp lists the available commands.
	KindHelp Kind = iota
	// KindOpenURL passes a capacities:// deep link through to the host's
	// URL opener.
	KindOpenURL
	// KindSearch searches content across spaces.
	KindSearch
	// KindSaveWeblink saves a URL as a Web Resource.
	KindSaveWeblink
	// KindAddToDailyNote appends text to today's daily note.
	KindAddToDailyNote
)

// Command is the parsed form of one launcher invocation. Exactly one
// Command is derived per invocation.
//
// SaveWeblink and AddToDailyNote are two-phase: typing `caps …` or `capn …`
// yields a preview item whose action payload re-invokes the workflow with a
// save_execute:/note_execute: prefix, which parses with Execute set.
type Command struct {
	Kind    Kind
	Query   string // Search
	URL     string // SaveWeblink, OpenURL
	Title   string // SaveWeblink
	Text    string // AddToDailyNote
	Execute bool   // confirmed phase of SaveWeblink / AddToDailyNote
}

const (
	deepLinkScheme = "capacities://"
	savePrefix     = "save_execute:"
	notePrefix     = "note_execute:"
)

// Parse derives the Command for a raw input string. Unrecognized input is a
// search over the whole trimmed input; empty input asks for help.
func Parse(input string) Command {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Command{Kind: KindHelp}
	}

	if strings.HasPrefix(trimmed, deepLinkScheme) {
		return Command{Kind: KindOpenURL, URL: trimmed}
	}

	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, savePrefix) {
		url, title := splitSavePayload(trimmed[len(savePrefix):])
		return Command{Kind: KindSaveWeblink, URL: url, Title: title, Execute: true}
	}
	if strings.HasPrefix(lower, notePrefix) {
		return Command{Kind: KindAddToDailyNote, Text: trimmed[len(notePrefix):], Execute: true}
	}

	fields := strings.Fields(trimmed)
	switch strings.ToLower(fields[0]) {
	case "caps":
		cmd := Command{Kind: KindSaveWeblink}
		if len(fields) > 1 {
			cmd.URL = fields[1]
		}
		if len(fields) > 2 {
			cmd.Title = unquote(strings.Join(fields[2:], " "))
		}
		return cmd
	case "capn":
		return Command{Kind: KindAddToDailyNote, Text: strings.Join(fields[1:], " ")}
	}

	return Command{Kind: KindSearch, Query: trimmed}
}

// splitSavePayload splits an "url:title" execute payload at the last colon
// that is not part of the URL scheme. A payload without a title colon is all
// URL.
func splitSavePayload(payload string) (url, title string) {
	idx := strings.LastIndex(payload, ":")
	if idx < 0 || idx <= strings.Index(payload, "://")+3 {
		return payload, ""
	}
	return payload[:idx], payload[idx+1:]
}

// unquote strips one pair of surrounding double quotes so launcher snippets
// like `caps https://example.com "My Title"` keep the quoted title intact.
func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
