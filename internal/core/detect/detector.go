// Package detect finds writing issues in plain text. Detection combines the
// literal rule table for the text's language, an optional spelling check and
// the sentence-boundary rules, then resolves overlaps so the result is a
// valid span set for one snapshot.
package detect

import (
	"fmt"
	"strings"

	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/hay-kot/polish/internal/core/rules"
	"github.com/rs/zerolog"
)

// Options configures a Detector.
type Options struct {
	// Fallback enables the demonstration issue emitted when nothing else
	// was found.
	Fallback bool
	// Rand drives the fallback. Defaults to the global generator.
	Rand RandSource
	// Speller enables the spelling rule when set.
	Speller Speller
	// Logger receives recovered failures. The zero value discards them.
	Logger zerolog.Logger
}

// Detector is safe for concurrent use as long as its Speller and RandSource are.
type Detector struct {
	rules   *rules.Registry
	speller Speller
	rand    RandSource
	fb      bool
	log     zerolog.Logger
}

// New creates a Detector over the given rule registry.
func New(reg *rules.Registry, opts Options) *Detector {
	if opts.Rand == nil {
		opts.Rand = NewRand(0)
	}
	return &Detector{
		rules:   reg,
		speller: opts.Speller,
		rand:    opts.Rand,
		fb:      opts.Fallback,
		log:     opts.Logger,
	}
}

// Rules returns the registry the detector reads.
func (d *Detector) Rules() *rules.Registry { return d.rules }

// Detect returns the issues in text, sorted by position then length. It never
// fails: a panic inside a rule is logged and yields an empty set.
func (d *Detector) Detect(text, lang string) (found []issue.Issue) {
	found = []issue.Issue{}
	if strings.TrimSpace(text) == "" {
		return found
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Warn().
				Str("language", lang).
				Int("length", len(text)).
				Err(fmt.Errorf("%v", r)).
				Msg("detection failed")
			found = []issue.Issue{}
		}
	}()

	table := d.rules.Lookup(lang)

	candidates := literal(text, table)
	if d.speller != nil {
		candidates = append(candidates, spelling(text, d.speller)...)
	}
	candidates = append(candidates, structural(text, lang)...)

	found = issue.Resolve(candidates)
	if len(found) == 0 && d.fb && len(text) > fallbackMinLength {
		if fb, ok := fallback(text, d.rand); ok {
			found = append(found, fb)
		}
	}

	d.log.Debug().
		Str("language", table.Language).
		Int("candidates", len(candidates)).
		Int("issues", len(found)).
		Msg("detected issues")
	return found
}
