package session

import (
	"strings"
	"unicode/utf8"

	"github.com/hay-kot/polish/internal/core/issue"
)

// Stats summarizes a document for status displays.
type Stats struct {
	Characters int                `json:"characters"`
	Words      int                `json:"words"`
	Issues     int                `json:"issues"`
	Counts     map[issue.Type]int `json:"counts"`
}

// ComputeStats counts characters, whitespace separated words and issues by
// type.
func ComputeStats(text string, issues []issue.Issue) Stats {
	return Stats{
		Characters: utf8.RuneCountInString(text),
		Words:      len(strings.Fields(text)),
		Issues:     len(issues),
		Counts:     issue.CountByType(issues),
	}
}

// Stats returns statistics for the current text.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeStats(s.text, s.issues)
}

// Language returns the current language key.
func (s *Session) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}
