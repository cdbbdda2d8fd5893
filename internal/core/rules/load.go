package rules

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a rule pack.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the pack format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported rule pack extension %q", filepath.Ext(path))
	}
}

// Parse decodes and validates a rule table.
func Parse(data []byte, format Format) (Table, error) {
	var t Table
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&t); err != nil {
			return Table{}, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &t)
		if err != nil {
			return Table{}, fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Table{}, fmt.Errorf("decode toml: unknown key %q", undecoded[0].String())
		}
	default:
		return Table{}, fmt.Errorf("unsupported rule pack format %q", format)
	}

	t.Language = Normalize(t.Language)
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// LoadFile reads a rule pack from disk.
func LoadFile(path string) (Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Table{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read rule pack: %w", err)
	}

	t, err := Parse(data, format)
	if err != nil {
		return Table{}, fmt.Errorf("rule pack %s: %w", path, err)
	}
	return t, nil
}

// LoadPacks merges every pack in paths into r, in order.
func (r *Registry) LoadPacks(paths ...string) error {
	for _, p := range paths {
		t, err := LoadFile(p)
		if err != nil {
			return err
		}
		r.Merge(t)
	}
	return nil
}
