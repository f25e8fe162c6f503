package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FirstObject returns the first balanced brace-delimited span in text.
// Braces inside JSON string literals are ignored. A '{' that never closes
// is skipped and the scan resumes at the next '{'.
func FirstObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end, ok := matchBrace(text, start); ok {
			return text[start : end+1], true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// DecodeObject decodes the first balanced span that is valid JSON into v.
// Spans that are not valid JSON are skipped in order. A valid object whose
// field types do not match v is a schema violation.
func DecodeObject(text string, v any) error {
	rest := text
	for {
		span, ok := FirstObject(rest)
		if !ok {
			return ErrNoJSONObject
		}
		if json.Valid([]byte(span)) {
			if err := json.Unmarshal([]byte(span), v); err != nil {
				return fmt.Errorf("%w: %v", ErrSchema, err)
			}
			return nil
		}
		idx := strings.Index(rest, span)
		rest = rest[idx+1:]
	}
}

// matchBrace returns the index of the '}' closing the '{' at start.
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
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
