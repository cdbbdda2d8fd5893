package tuitest

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestStripANSI(t *testing.T) {
	in := "\x1b[1mbold\x1b[0m   \nline two  \n\n"
	assert.Equal(t, "bold\nline two", StripANSI(in))
}

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "tab", want: "tab"},
		{in: "shift+tab", want: "shift+tab"},
		{in: "ctrl+c", want: "ctrl+c"},
		{in: "A", want: "A"},
		{in: "?", want: "?"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.in).String())
		})
	}

	assert.Equal(t, tea.KeyRunes, Key("x").Type)
}
