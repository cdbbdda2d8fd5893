package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when a reply contains no JSON value.
var ErrNoJSON = errors.New("no JSON found in reply")

// RawIssue is an issue as reported by a model. Offsets are numbers of any
// shape; Sanitize turns them into checked byte offsets.
type RawIssue struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Message     string   `json:"message"`
	Text        string   `json:"text"`
	Position    float64  `json:"position"`
	Length      float64  `json:"length"`
	Suggestions []string `json:"suggestions"`
	Explanation string   `json:"explanation"`
}

// ParseIssues extracts the issue list from a model reply. Both an object
// with an "issues" array and a bare array are accepted.
func ParseIssues(reply string) ([]RawIssue, error) {
	doc, ok := ExtractJSON(reply)
	if !ok {
		return nil, ErrNoJSON
	}

	if doc[0] == '[' {
		var list []RawIssue
		if err := json.Unmarshal([]byte(doc), &list); err != nil {
			return nil, fmt.Errorf("decode issue array: %w", err)
		}
		return list, nil
	}

	var wrapped struct {
		Issues *[]RawIssue `json:"issues"`
	}
	if err := json.Unmarshal([]byte(doc), &wrapped); err != nil {
		return nil, fmt.Errorf("decode issue object: %w", err)
	}
	if wrapped.Issues == nil {
		return nil, errors.New("reply has no issues array")
	}
	return *wrapped.Issues, nil
}

// ExtractJSON returns the JSON document embedded in s: the contents of the
// first fenced code block holding a JSON value, otherwise the first balanced
// top-level object or array, whichever opens first.
func ExtractJSON(s string) (string, bool) {
	if doc, ok := fenced(s); ok {
		return doc, true
	}
	return balanced(s)
}

func fenced(s string) (string, bool) {
	for {
		open := strings.Index(s, "```")
		if open < 0 {
			return "", false
		}
		rest := s[open+3:]

		// skip the info string, e.g. ```json
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			return "", false
		}
		body := rest[nl+1:]

		end := strings.Index(body, "```")
		if end < 0 {
			return "", false
		}

		doc := strings.TrimSpace(body[:end])
		if doc != "" && (doc[0] == '{' || doc[0] == '[') {
			if v, ok := balanced(doc); ok {
				return v, true
			}
		}
		s = body[end+3:]
	}
}

// balanced scans for the first '{' or '[' and returns the value it opens,
// honoring JSON strings and escapes.
func balanced(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}

	var (
		stack   []byte
		inStr   bool
		escaped bool
	)
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}

		switch c {
		case '"':
			inStr = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return "", false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
