package detect

import (
	"math/rand/v2"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/hay-kot/polish/internal/core/issue"
)

// fallbackMinLength is the text length above which the fallback may fire.
const fallbackMinLength = 20

// RandSource supplies the randomness for the fallback rule.
type RandSource interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
}

// NewRand returns a RandSource. A zero seed draws from the runtime's
// global generator; any other seed gives a reproducible sequence.
func NewRand(seed uint64) RandSource {
	if seed == 0 {
		return globalRand{}
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed))}
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

type template struct {
	message string
	suggest func(word string) string
}

var templates = map[issue.Type]template{
	issue.Grammar: {
		message: "Possible grammar issue",
		suggest: upperFirst,
	},
	issue.Style: {
		message: "Style could be improved",
		suggest: func(w string) string { return w + " (improved)" },
	},
	issue.Clarity: {
		message: "This could be clearer",
		suggest: func(w string) string { return "Clearer " + w },
	},
	issue.Punctuation: {
		message: "Punctuation may be missing",
		suggest: func(w string) string { return w + "," },
	},
	issue.Capitalization: {
		message: "Check capitalization",
		suggest: flipFirst,
	},
}

// fallback builds a demonstration issue on a random word.
func fallback(text string, rnd RandSource) (issue.Issue, bool) {
	words := extractWords(text)
	if len(words) == 0 {
		return issue.Issue{}, false
	}

	w := words[rnd.IntN(len(words))]
	typ := issue.Types[rnd.IntN(len(issue.Types))]
	tmpl := templates[typ]

	return issue.Issue{
		ID:          issue.MakeID("fallback", w.Position),
		Type:        typ,
		Message:     tmpl.message,
		Text:        w.Text,
		Position:    w.Position,
		Length:      w.Length,
		Suggestions: []string{tmpl.suggest(w.Text)},
		Explanation: "This is a demonstration issue.",
	}, true
}

func flipFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	if unicode.IsUpper(r) {
		return string(unicode.ToLower(r)) + s[size:]
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
