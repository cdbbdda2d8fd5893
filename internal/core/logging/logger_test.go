package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	logger := Component("test-component")
	logger.Info().Msg("test message")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log: %v", err)
	}

	cmp, ok := logEntry["cmp"]
	if !ok {
		t.Fatal("expected 'cmp' key in log output")
	}

	if cmp != "test-component" {
		t.Errorf("Component() cmp = %q, want %q", cmp, "test-component")
	}

	msg, ok := logEntry["message"]
	if !ok {
		t.Fatal("expected 'message' key in log output")
	}

	if msg != "test message" {
		t.Errorf("Component() message = %q, want %q", msg, "test message")
	}
}

func TestSub(t *testing.T) {
	tests := []struct {
		name    string
		parent  func(*bytes.Buffer) zerolog.Logger
		wantCmp string
		wantKey string
	}{
		{
			name:    "plain parent",
			parent:  func(buf *bytes.Buffer) zerolog.Logger { return zerolog.New(buf) },
			wantCmp: "detect",
		},
		{
			name: "parent fields kept",
			parent: func(buf *bytes.Buffer) zerolog.Logger {
				return zerolog.New(buf).With().Str("document", "draft.md").Logger()
			},
			wantCmp: "session",
			wantKey: "document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := Sub(tt.parent(&buf), tt.wantCmp)
			logger.Info().Msg("hello")

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("failed to parse log: %v", err)
			}
			if logEntry["cmp"] != tt.wantCmp {
				t.Errorf("Sub() cmp = %v, want %q", logEntry["cmp"], tt.wantCmp)
			}
			if tt.wantKey != "" {
				if _, ok := logEntry[tt.wantKey]; !ok {
					t.Errorf("expected %q key in log output", tt.wantKey)
				}
			}
		})
	}
}
