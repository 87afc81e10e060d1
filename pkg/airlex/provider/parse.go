package provider

import (
	"encoding/json"
	"strings"

	airerrors "github.com/randalmurphal/airlex/pkg/airlex/errors"
)

// rawEntry is the per-code object the prompt asks the model to return.
// Fields are nullable in the response; JSON null leaves the zero value.
type rawEntry struct {
	Word          string   `json:"word"`
	Abbreviations []string `json:"abbreviations"`
	Notes         string   `json:"notes"`
}

// Parse turns a raw model completion into a Result covering every
// requested code. The completion must be a JSON object mapping each
// code to an entry; markdown fences are tolerated and stripped.
//
// A response missing any requested code fails the whole batch. Partial
// answers are not merged because a missing code is indistinguishable
// from a lazy model, and marking it processed would silently drop it
// from the dataset forever.
func Parse(raw string, codes []string, model string) (Result, error) {
	text := StripFences(raw)

	var entries map[string]rawEntry
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return nil, &ParseError{
			Model: model,
			Err:   &airerrors.JSONParseError{Input: truncate(text, 200), Message: err.Error()},
		}
	}

	// Index entries by normalized code; models occasionally lowercase
	normalized := make(map[string]rawEntry, len(entries))
	for code, entry := range entries {
		normalized[strings.ToUpper(strings.TrimSpace(code))] = entry
	}

	result := make(Result, len(codes))
	var missing []string
	for _, code := range codes {
		key := strings.ToUpper(strings.TrimSpace(code))
		entry, ok := normalized[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		result[key] = ExtractMeanings(entry.Word, entry.Abbreviations)
	}

	if len(missing) > 0 {
		return nil, &ParseError{
			Model:   model,
			Missing: missing,
			Err: &airerrors.JSONParseError{
				Input:   truncate(text, 200),
				Message: "response omitted requested codes",
			},
		}
	}
	return result, nil
}

// ExtractMeanings flattens a response entry into an ordered, deduplicated
// meanings list. The dictionary word comes first, then abbreviations with
// any "domain: " prefix stripped.
func ExtractMeanings(word string, abbreviations []string) []string {
	meanings := []string{}
	seen := map[string]bool{}

	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		meanings = append(meanings, v)
	}

	add(word)
	for _, abbr := range abbreviations {
		if _, after, found := strings.Cut(abbr, ": "); found {
			abbr = after
		}
		add(abbr)
	}
	return meanings
}

// StripFences removes a surrounding markdown code fence if present.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[1 : len(lines)-1]
	} else {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
