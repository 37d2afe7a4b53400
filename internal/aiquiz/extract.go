package aiquiz

import (
	"encoding/json"
	"strings"
)

// ExtractJSON returns the first balanced top-level object literal in text,
// skipping prose, code fences and brace pairs that are not valid JSON. When
// every balanced candidate is invalid the first one is returned so the caller
// can report it as malformed. A brace that never closes is skipped and the
// search resumes right after it.
func ExtractJSON(text string) (string, bool) {
	var fallback string
	found := false

	for start := 0; start < len(text); {
		rel := strings.IndexByte(text[start:], '{')
		if rel < 0 {
			break
		}
		open := start + rel
		end, ok := matchBrace(text, open)
		if !ok {
			start = open + 1
			continue
		}
		candidate := text[open : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
		if !found {
			fallback, found = candidate, true
		}
		start = end + 1
	}
	return fallback, found
}

// matchBrace returns the index of the brace closing the one at open,
// ignoring braces inside string literals.
func matchBrace(text string, open int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := open; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
