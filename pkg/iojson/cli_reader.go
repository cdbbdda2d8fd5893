package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader decodes a JSON document named by a string flag. Without a flag
// value it reads stdin, unless stdin is a terminal.
type FileReader[T any] struct {
	Name  string // flag name, "file" when empty
	Usage string

	fileFlagValue string
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	name, usage := fr.Name, fr.Usage
	if name == "" {
		name = "file"
	}
	if usage == "" {
		usage = "path to JSON file (reads from stdin if not provided)"
	}
	return &cli.StringFlag{
		Name:        name,
		Usage:       usage,
		Destination: &fr.fileFlagValue,
	}
}

// IsSet reports whether a path was given.
func (fr *FileReader[T]) IsSet() bool { return fr.fileFlagValue != "" }

func (fr *FileReader[T]) Read() (T, error) {
	var input T

	if fr.fileFlagValue != "" {
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return Decode[T](f)
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return input, fmt.Errorf("no input provided (stdin is a terminal); use --%s or pipe JSON input", fr.Flag().Name)
	}
	return Decode[T](os.Stdin)
}

// Decode reads one JSON value of type T from r.
func Decode[T any](r io.Reader) (T, error) {
	var input T
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}
	return input, nil
}
