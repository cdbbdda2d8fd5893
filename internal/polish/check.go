package polish

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/hay-kot/polish/internal/core/logging"
	"github.com/hay-kot/polish/internal/core/session"
	"golang.org/x/sync/errgroup"
)

// StdinPath names the document read from standard input.
const StdinPath = "-"

// Document is one text to check.
type Document struct {
	Path string
	Text string
}

// Report is the result of checking one document.
type Report struct {
	Path     string        `json:"path"`
	Language string        `json:"language"`
	Issues   []issue.Issue `json:"issues"`
	Stats    session.Stats `json:"stats"`
	Refined  int           `json:"refined,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// CheckOptions controls CheckFiles and CheckDocuments.
type CheckOptions struct {
	Language string
	// Remote also runs the provider on every document.
	Remote bool
	// Workers bounds concurrent documents. Zero uses the configured value.
	Workers int
}

// ExpandPaths expands glob patterns (doublestar syntax, so "**" matches
// across directories) into file paths. Plain paths are kept as given even
// when they do not exist, so the error surfaces per file; patterns matching
// nothing are dropped. Duplicates are
// removed; order follows the patterns.
func ExpandPaths(patterns []string) ([]string, error) {
	var out []string
	seen := map[string]struct{}{}
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			if !strings.ContainsAny(pattern, "*?[{") {
				add(pattern)
			}
			continue
		}
		slices.Sort(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

// CheckFiles reads and checks every path. Read failures are reported on the
// file's Report rather than aborting the run.
func (a *App) CheckFiles(ctx context.Context, paths []string, opts CheckOptions) ([]Report, error) {
	docs := make([]Document, len(paths))
	failed := make(map[int]error)
	for i, p := range paths {
		docs[i].Path = p
		data, err := os.ReadFile(p)
		if err != nil {
			failed[i] = err
			continue
		}
		docs[i].Text = string(data)
	}

	reports, err := a.CheckDocuments(ctx, docs, opts)
	if err != nil {
		return nil, err
	}
	for i, ferr := range failed {
		reports[i] = Report{Path: paths[i], Language: a.Language(opts.Language), Issues: []issue.Issue{}, Error: ferr.Error()}
	}
	return reports, nil
}

// CheckDocuments checks documents concurrently, one session per document.
// Reports are returned in input order.
func (a *App) CheckDocuments(ctx context.Context, docs []Document, opts CheckOptions) ([]Report, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = a.Config.Check.Workers
	}

	reports := make([]Report, len(docs))
	if len(docs) == 0 {
		return reports, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(max(workers, 1), len(docs)))

	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = a.checkOne(logging.WithDocument(gctx, doc.Path), doc, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (a *App) checkOne(ctx context.Context, doc Document, opts CheckOptions) Report {
	s := a.NewSession(opts.Language)
	s.SetText(doc.Text)

	r := Report{Path: doc.Path, Language: s.Language()}
	if opts.Remote && a.Remote() {
		n, err := s.Refine(ctx)
		if err != nil {
			a.log.Warn().Ctx(ctx).Err(err).Msg("remote analysis skipped")
		}
		r.Refined = n
	}

	r.Issues = s.Issues()
	r.Stats = s.Stats()
	a.log.Debug().Ctx(ctx).Int("issues", len(r.Issues)).Msg("checked document")
	return r
}

// Total returns the number of issues across reports.
func Total(reports []Report) int {
	n := 0
	for _, r := range reports {
		n += len(r.Issues)
	}
	return n
}
