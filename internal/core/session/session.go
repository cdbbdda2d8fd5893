// Package session binds detection, highlighting, editing and caret tracking
// for one editable text.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hay-kot/polish/internal/core/caret"
	"github.com/hay-kot/polish/internal/core/edit"
	"github.com/hay-kot/polish/internal/core/highlight"
	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/rs/zerolog"
)

var (
	// ErrNoAnalyzer is returned by Refine when no remote analyzer is configured.
	ErrNoAnalyzer = errors.New("no analyzer configured")
	// ErrStale is returned by Refine when the text or language changed while
	// the analyzer was running.
	ErrStale = errors.New("document changed during analysis")
)

// Detector finds issues in a text snapshot.
type Detector interface {
	Detect(text, language string) []issue.Issue
}

// Analyzer is a remote detection strategy. Implementations report failures
// by returning no issues.
type Analyzer interface {
	Analyze(ctx context.Context, text, language string) []issue.Issue
}

// Display is implemented by editables that redraw from a segment sequence.
// It is called before the caret is restored.
type Display interface {
	Render(text string, segments []highlight.Segment)
}

// Options configures a Session.
type Options struct {
	Language string
	Analyzer Analyzer
	// RefineTimeout bounds each Refine call. Zero leaves the caller's
	// context as the only deadline.
	RefineTimeout time.Duration
	Logger        zerolog.Logger
}

// Snapshot is a consistent view of a session.
type Snapshot struct {
	Text     string              `json:"text"`
	Language string              `json:"language"`
	Revision uint64              `json:"revision"`
	Issues   []issue.Issue       `json:"issues"`
	Segments []highlight.Segment `json:"segments"`
}

// Session owns one text buffer and its current issues. All methods are safe
// for concurrent use; mutations are serialized.
type Session struct {
	mu    sync.Mutex
	muted atomic.Int32

	detector Detector
	analyzer Analyzer
	timeout  time.Duration
	log      zerolog.Logger
	editable caret.Editable

	text     string
	language string
	revision uint64
	issues   []issue.Issue
	segments []highlight.Segment
}

// New creates an empty session.
func New(d Detector, opts Options) *Session {
	return &Session{
		detector: d,
		analyzer: opts.Analyzer,
		timeout:  opts.RefineTimeout,
		log:      opts.Logger,
		language: opts.Language,
		issues:   []issue.Issue{},
		segments: []highlight.Segment{},
	}
}

// Attach connects an editable region whose caret is preserved across
// programmatic edits.
func (s *Session) Attach(ed caret.Editable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editable = ed
}

// SetText replaces the text and re-detects. It returns false when the call
// was suppressed because it arrived while the session was applying an edit
// of its own.
func (s *Session) SetText(text string) bool {
	if s.muted.Load() > 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if text == s.text && s.revision > 0 {
		return true
	}
	s.text = text
	s.revision++
	s.detectLocked()
	return true
}

// SetLanguage changes the language and re-detects.
func (s *Session) SetLanguage(lang string) {
	if s.muted.Load() > 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if lang == s.language {
		return
	}
	s.language = lang
	s.revision++
	s.detectLocked()
}

// Recheck runs detection again on the current text.
func (s *Session) Recheck() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detectLocked()
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Text:     s.text,
		Language: s.language,
		Revision: s.revision,
		Issues:   s.issues,
		Segments: s.segments,
	}
}

// Text returns the current text.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Issues returns the current issues, sorted by position.
func (s *Session) Issues() []issue.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issues
}

// Render returns the highlight segments for the current text and issues.
func (s *Session) Render() []highlight.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segments
}

// Apply replaces the issue identified by id with replacement. It reports
// false when id is unknown.
func (s *Session) Apply(id, replacement string) bool {
	var applied bool
	s.mutate(func(ref caret.Ref) caret.Ref {
		out, ok := edit.Apply(s.text, s.issues, id, replacement)
		if !ok {
			return ref
		}
		applied = true
		s.text = out.Text
		s.issues = out.Issues

		s.log.Debug().Str("issue", id).Int("delta", out.Splice.Delta()).Msg("applied suggestion")
		return caret.ShiftSplice(ref, out.Splice)
	})
	return applied
}

// ApplySuggestion applies the first suggestion of the issue identified by
// id. Issues without suggestions cannot be applied, only dismissed.
func (s *Session) ApplySuggestion(id string) bool {
	s.mu.Lock()
	target, ok := issue.Find(s.issues, id)
	s.mu.Unlock()
	if !ok || !target.HasSuggestions() {
		return false
	}
	return s.Apply(id, target.Suggestions[0])
}

// ApplyAll applies the first suggestion of every issue in one pass.
func (s *Session) ApplyAll() edit.Result {
	var res edit.Result
	s.mutate(func(ref caret.Ref) caret.Ref {
		res = edit.Batch(s.text, s.issues)
		if len(res.Applied) == 0 {
			return ref
		}
		s.text = res.Text
		s.issues = res.Remaining
		for _, sp := range res.Splices {
			ref = caret.ShiftSplice(ref, sp)
		}

		s.log.Debug().Int("applied", len(res.Applied)).Int("skipped", len(res.Skipped)).Msg("applied all suggestions")
		return ref
	})
	return res
}

// Dismiss removes the issue identified by id without changing the text.
func (s *Session) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := issue.Find(s.issues, id); !ok {
		return false
	}
	s.issues = edit.Dismiss(s.issues, id)
	s.segments = highlight.Render(s.text, s.issues)
	return true
}

// Refine runs the remote analyzer against the current text. Remote issues
// are renamed into the remote-<position> namespace and merged ahead of
// local ones, and only if the document did not change while the analyzer ran. It returns the number of remote issues adopted.
func (s *Session) Refine(ctx context.Context) (int, error) {
	s.mu.Lock()
	text, lang, rev, analyzer := s.text, s.language, s.revision, s.analyzer
	s.mu.Unlock()

	if analyzer == nil {
		return 0, ErrNoAnalyzer
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	remote := analyzer.Analyze(ctx, text, lang)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.revision != rev {
		return 0, ErrStale
	}

	valid := make([]issue.Issue, 0, len(remote))
	for _, is := range remote {
		if is.InBounds(text) {
			valid = append(valid, is)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}

	local := make(map[string]bool, len(s.issues))
	for _, is := range s.issues {
		local[is.ID] = true
	}
	valid = issue.Namespace(valid, issue.RemoteRule, func(id string) bool { return local[id] })

	merged := issue.Resolve(append(valid, s.issues...))
	adopted := 0
	for _, is := range merged {
		if !local[is.ID] {
			adopted++
		}
	}
	s.issues = merged
	s.segments = highlight.Render(s.text, s.issues)

	s.log.Debug().Int("remote", len(remote)).Int("adopted", adopted).Msg("refined issues")
	return adopted, nil
}

// mutate runs fn under the session lock with re-entrant updates suppressed.
// fn receives the saved caret and returns it adjusted for its edit. After fn
// the session re-detects once, redraws the attached editable and restores
// its caret, all before re-entrant updates are accepted again.
func (s *Session) mutate(fn func(caret.Ref) caret.Ref) {
	s.muted.Add(1)
	defer s.muted.Add(-1)

	s.mu.Lock()
	ed := s.editable
	ref := caret.Ref{}
	if ed != nil {
		ref = caret.Save(ed)
	}

	before := s.text
	ref = fn(ref)
	if s.text != before {
		s.revision++
		s.detectLocked()
	}
	text, segments := s.text, s.segments
	s.mu.Unlock()

	if ed == nil {
		return
	}
	if d, ok := ed.(Display); ok {
		d.Render(text, segments)
	}
	caret.Restore(ed, segments, ref)
}

func (s *Session) detectLocked() {
	s.issues = s.detector.Detect(s.text, s.language)
	s.segments = highlight.Render(s.text, s.issues)
}
