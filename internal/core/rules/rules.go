// Package rules holds the language-keyed literal rule tables used by the
// detector. Built-in tables are embedded; extra packs can be merged from YAML
// or TOML files.
package rules

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/hay-kot/polish/internal/core/issue"
	"golang.org/x/text/language"
)

// DefaultLanguage is the table used for languages without one of their own.
const DefaultLanguage = "en-us"

// ErrUnknownType is returned when a rule names an issue type that does not exist.
var ErrUnknownType = errors.New("unknown issue type")

//go:embed tables/*.yaml
var tablesFS embed.FS

// Rule is a literal phrase that is reported wherever it occurs.
type Rule struct {
	ID          string     `yaml:"id"          toml:"id"          json:"id"`
	Text        string     `yaml:"text"        toml:"text"        json:"text"`
	Type        issue.Type `yaml:"type"        toml:"type"        json:"type"`
	Message     string     `yaml:"message"     toml:"message"     json:"message"`
	Suggestions []string   `yaml:"suggestions" toml:"suggestions" json:"suggestions"`
	Explanation string     `yaml:"explanation" toml:"explanation" json:"explanation,omitempty"`
}

// Table is the ordered rule list for one language. Earlier rules take
// priority when matches overlap.
type Table struct {
	Language string `yaml:"language" toml:"language" json:"language"`
	Name     string `yaml:"name"     toml:"name"     json:"name"`
	Rules    []Rule `yaml:"rules"    toml:"rules"    json:"rules"`
}

// Validate checks every rule in the table and reports all problems as field
// errors.
func (t Table) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if Normalize(t.Language) == "" {
		errs = errs.Append("language", fmt.Errorf("language is required"))
	}

	seen := make(map[string]bool, len(t.Rules))
	for i, r := range t.Rules {
		field := fmt.Sprintf("rules[%d]", i)
		if r.ID == "" {
			errs = errs.Append(field+".id", fmt.Errorf("id is required"))
		} else if seen[r.ID] {
			errs = errs.Append(field+".id", fmt.Errorf("duplicate rule id %q", r.ID))
		}
		seen[r.ID] = true

		if r.Text == "" {
			errs = errs.Append(field+".text", fmt.Errorf("text is required"))
		}
		switch {
		case r.Type == "":
			errs = errs.Append(field+".type", fmt.Errorf("type is required"))
		case !r.Type.IsValid():
			errs = errs.Append(field+".type", fmt.Errorf("%w %q", ErrUnknownType, r.Type))
		}
	}
	return errs.ToError()
}

// Registry maps language ids to rule tables.
type Registry struct {
	tables map[string]Table
}

// NewRegistry builds a registry from tables. Tables sharing a language are
// merged in order.
func NewRegistry(tables ...Table) *Registry {
	r := &Registry{tables: make(map[string]Table, len(tables))}
	for _, t := range tables {
		r.Merge(t)
	}
	return r
}

// Builtin returns a registry holding the embedded tables.
func Builtin() (*Registry, error) {
	entries, err := fs.ReadDir(tablesFS, "tables")
	if err != nil {
		return nil, fmt.Errorf("read embedded tables: %w", err)
	}

	r := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		data, err := tablesFS.ReadFile(path.Join("tables", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read embedded %s: %w", entry.Name(), err)
		}

		t, err := Parse(data, FormatYAML)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", entry.Name(), err)
		}
		r.Merge(t)
	}
	return r, nil
}

// MustBuiltin is Builtin for callers that cannot recover from a broken build.
func MustBuiltin() *Registry {
	r, err := Builtin()
	if err != nil {
		panic(err)
	}
	return r
}

// Merge adds t to the registry. Rules whose id already exists in the target
// table replace it in place; new rules are appended.
func (r *Registry) Merge(t Table) {
	lang := Normalize(t.Language)
	cur, ok := r.tables[lang]
	if !ok {
		cur = Table{Language: lang, Name: t.Name}
	}
	if t.Name != "" {
		cur.Name = t.Name
	}

	rules := slices.Clone(cur.Rules)
	for _, rule := range t.Rules {
		idx := slices.IndexFunc(rules, func(x Rule) bool { return x.ID == rule.ID })
		if idx >= 0 {
			rules[idx] = rule
			continue
		}
		rules = append(rules, rule)
	}
	cur.Rules = rules
	r.tables[lang] = cur
}

// Resolve returns the id of the table used for lang: the exact id, then the
// canonical tag, then the base language, then DefaultLanguage.
func (r *Registry) Resolve(lang string) string {
	id := Normalize(lang)
	if _, ok := r.tables[id]; ok {
		return id
	}

	tag, err := language.Parse(id)
	if err == nil {
		if canon := strings.ToLower(tag.String()); r.has(canon) {
			return canon
		}
		if base, conf := tag.Base(); conf != language.No {
			if b := strings.ToLower(base.String()); r.has(b) {
				return b
			}
		}
	}
	return DefaultLanguage
}

// Lookup returns the table used for lang. The result is empty only when the
// registry has no default table.
func (r *Registry) Lookup(lang string) Table {
	return r.tables[r.Resolve(lang)]
}

// Languages returns the ids of all tables in sorted order.
func (r *Registry) Languages() []string {
	ids := make([]string, 0, len(r.tables))
	for id := range r.tables {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *Registry) has(id string) bool {
	_, ok := r.tables[id]
	return ok
}

// Normalize lower-cases a language id and converts underscores to dashes.
func Normalize(lang string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(lang)), "_", "-")
}
