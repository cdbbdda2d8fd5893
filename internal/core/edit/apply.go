// Package edit applies issue suggestions to text and keeps the remaining
// issues aligned with the edited text.
package edit

import (
	"cmp"
	"slices"

	"github.com/hay-kot/polish/internal/core/issue"
)

// Skip reasons reported by Batch.
const (
	ReasonConsumed      = "overlapped by an earlier edit"
	ReasonOutOfBounds   = "out of bounds"
	ReasonNoSuggestions = "no applicable suggestion"
)

// Outcome is the result of applying one replacement.
type Outcome struct {
	Text   string
	Issues []issue.Issue
	Splice issue.Splice
}

// Apply replaces the issue identified by id with replacement. It reports
// false, and changes nothing, when id is not in issues or no longer fits text.
func Apply(text string, issues []issue.Issue, id, replacement string) (Outcome, bool) {
	target, ok := issue.Find(issues, id)
	if !ok || !target.InBounds(text) {
		return Outcome{Text: text, Issues: issues}, false
	}

	sp := target.SpliceIn(text, replacement)
	return Outcome{
		Text:   sp.Apply(text),
		Issues: Rebase(text, issues, id, sp),
		Splice: sp,
	}, true
}

// ApplyOne replaces the issue identified by id with replacement and returns
// the new text with the remaining issues. An unknown id is a no-op.
func ApplyOne(text string, issues []issue.Issue, id, replacement string) (string, []issue.Issue) {
	out, _ := Apply(text, issues, id, replacement)
	return out.Text, out.Issues
}

// Rebase returns the issues that survive sp being applied to text, excluding
// the issue with id consumed. Issues ending at or before the splice are kept
// as-is, issues starting at or after its end shift by the length change, and
// issues intersecting it are dropped. Scoped suggestions whose scope the
// splice touches are localized first, against text.
func Rebase(text string, issues []issue.Issue, consumed string, sp issue.Splice) []issue.Issue {
	out := make([]issue.Issue, 0, len(issues))
	for _, is := range issues {
		if is.ID == consumed {
			continue
		}

		var shift bool
		switch {
		case is.End() <= sp.Position:
		case is.Position >= sp.End():
			shift = true
		default:
			continue
		}

		if is.Scope != nil && touches(*is.Scope, sp) {
			is = is.Localize(text)
		}
		if shift {
			is = is.Moved(sp.Delta())
		}
		out = append(out, is)
	}
	return out
}

func touches(scope issue.Range, sp issue.Splice) bool {
	return sp.Position <= scope.End() && scope.Position <= sp.End()
}

// Dismiss removes the issue identified by id. Every other issue is returned
// unchanged.
func Dismiss(issues []issue.Issue, id string) []issue.Issue {
	return issue.Without(issues, id)
}

// Skipped records an issue Batch did not apply.
type Skipped struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Result describes a batch application.
type Result struct {
	Text    string    `json:"text"`
	Applied []string  `json:"applied"`
	Skipped []Skipped `json:"skipped,omitempty"`
	// Splices are in application order; each refers to the text as it was
	// when that splice was applied.
	Splices []issue.Splice `json:"-"`
	// Remaining are the issues left after the batch, aligned with Text.
	Remaining []issue.Issue `json:"remaining"`
}

// Batch applies the first suggestion of every issue that has one, in a
// single pass from the end of the text towards the start, so no applied edit
// moves text that a later step still refers to.
func Batch(text string, issues []issue.Issue) Result {
	pending := make([]issue.Issue, 0, len(issues))
	for _, is := range issues {
		if is.HasSuggestions() {
			pending = append(pending, is)
		}
	}
	slices.SortStableFunc(pending, func(a, b issue.Issue) int {
		if c := cmp.Compare(b.Position, a.Position); c != 0 {
			return c
		}
		return cmp.Compare(b.Length, a.Length)
	})

	res := Result{Text: text, Applied: []string{}}
	remaining := slices.Clone(issues)

	for _, p := range pending {
		cur, ok := issue.Find(remaining, p.ID)
		switch {
		case !ok:
			res.Skipped = append(res.Skipped, Skipped{ID: p.ID, Reason: ReasonConsumed})
			continue
		case !cur.InBounds(res.Text):
			res.Skipped = append(res.Skipped, Skipped{ID: p.ID, Reason: ReasonOutOfBounds})
			remaining = issue.Without(remaining, p.ID)
			continue
		case !cur.HasSuggestions():
			res.Skipped = append(res.Skipped, Skipped{ID: p.ID, Reason: ReasonNoSuggestions})
			remaining = issue.Without(remaining, p.ID)
			continue
		}

		sp := cur.SpliceIn(res.Text, cur.Suggestions[0])
		remaining = Rebase(res.Text, remaining, cur.ID, sp)
		res.Text = sp.Apply(res.Text)
		res.Applied = append(res.Applied, cur.ID)
		res.Splices = append(res.Splices, sp)
	}

	res.Remaining = remaining
	return res
}

// ApplyAll applies the first suggestion of every issue that has one and
// returns the final text and the number of suggestions applied.
func ApplyAll(text string, issues []issue.Issue) (string, int) {
	res := Batch(text, issues)
	return res.Text, len(res.Applied)
}
