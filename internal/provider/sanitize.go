package provider

import (
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hay-kot/polish/internal/core/issue"
)

var validate = validator.New()

// Sanitize converts raw model issues into issues that fit text. Offsets are
// trusted only when they select the reported text; otherwise the text is
// searched for and the occurrence nearest the reported position is used.
// Records that cannot be placed or fail validation are dropped, and the
// survivors are overlap-resolved in the order the model listed them. Model
// ids are discarded: every survivor is named remote-<position>. The number
// of dropped records is returned alongside.
func Sanitize(text string, raws []RawIssue) ([]issue.Issue, int) {
	candidates := make([]issue.Issue, 0, len(raws))

	for _, r := range raws {
		is, ok := place(text, r)
		if !ok {
			continue
		}
		if err := validate.Struct(is); err != nil {
			continue
		}
		candidates = append(candidates, is)
	}

	out := issue.Namespace(issue.Resolve(candidates), issue.RemoteRule, nil)
	return out, len(raws) - len(out)
}

func place(text string, r RawIssue) (issue.Issue, bool) {
	if math.IsNaN(r.Position) || math.IsNaN(r.Length) || r.Position < 0 || r.Length < 0 {
		return issue.Issue{}, false
	}

	t, err := issue.ParseType(r.Type)
	if err != nil {
		return issue.Issue{}, false
	}

	is := issue.Issue{
		ID:          strings.TrimSpace(r.ID),
		Type:        t,
		Message:     strings.TrimSpace(r.Message),
		Position:    int(r.Position),
		Length:      int(r.Length),
		Suggestions: nonEmpty(r.Suggestions),
		Explanation: strings.TrimSpace(r.Explanation),
	}
	if is.Message == "" {
		is.Message = t.Label()
	}

	if r.Text != "" {
		pos, ok := locate(text, r.Text, is.Position)
		if !ok {
			return issue.Issue{}, false
		}
		is.Position = pos
		is.Length = len(r.Text)
	}

	if !is.InBounds(text) {
		return issue.Issue{}, false
	}
	is.Text = text[is.Position:is.End()]
	return is, true
}

// locate finds needle in text, preferring the reported position and then the
// occurrence closest to it.
func locate(text, needle string, hint int) (int, bool) {
	if hint >= 0 && hint+len(needle) <= len(text) && text[hint:hint+len(needle)] == needle {
		return hint, true
	}

	best, bestDist := -1, 0
	for from := 0; from <= len(text)-len(needle); {
		idx := strings.Index(text[from:], needle)
		if idx < 0 {
			break
		}
		at := from + idx
		dist := at - hint
		if dist < 0 {
			dist = -dist
		}
		if best < 0 || dist < bestDist {
			best, bestDist = at, dist
		}
		from = at + 1
	}
	return best, best >= 0
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
