package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/hay-kot/polish/internal/core/rules"
	"github.com/hay-kot/polish/internal/core/styles"
	"github.com/hay-kot/polish/internal/polish"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

type RulesCmd struct {
	flags *Flags
	app   *polish.App

	// flags
	raw bool
}

// NewRulesCmd creates a new rules command
func NewRulesCmd(flags *Flags, app *polish.App) *RulesCmd {
	return &RulesCmd{flags: flags, app: app}
}

// Register adds the rules command to the application
func (cmd *RulesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rules",
		Usage:     "Show the rule table for a language",
		UsageText: "polish rules [--raw] [language]",
		Description: `Prints the literal rules used for a language, including rules from configured
rule packs. Unknown languages show the table they fall back to.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print markdown without rendering",
				Destination: &cmd.raw,
			},
		},
		ShellComplete: LanguageCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *RulesCmd) run(ctx context.Context, c *cli.Command) error {
	lang := c.Args().First()
	if lang == "" {
		lang = cmd.flags.Language
	}
	lang = cmd.app.Language(lang)

	md := rulesMarkdown(cmd.app.Rules, lang)
	out := c.Root().Writer
	if cmd.raw {
		_, err := fmt.Fprint(out, md)
		return err
	}

	width := 100
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	rendered, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render rules: %w", err)
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

// rulesMarkdown describes the table used for lang as a markdown document.
func rulesMarkdown(reg *rules.Registry, lang string) string {
	resolved := reg.Resolve(lang)
	table := reg.Lookup(lang)

	var b strings.Builder
	title := table.Name
	if title == "" {
		title = resolved
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if resolved != lang {
		fmt.Fprintf(&b, "> No table for `%s`, using `%s`.\n\n", lang, resolved)
	}

	if len(table.Rules) == 0 {
		b.WriteString("No literal rules.\n")
	} else {
		b.WriteString("| ID | Type | Matches | Suggestions | Message |\n")
		b.WriteString("|----|------|---------|-------------|---------|\n")
		for _, r := range table.Rules {
			fmt.Fprintf(&b, "| %s | %s | `%s` | %s | %s |\n",
				r.ID, r.Type.Label(), r.Text, cell(strings.Join(r.Suggestions, ", ")), cell(r.Message))
		}
	}

	b.WriteString("\nEvery language also checks sentence capitalization and end punctuation.\n")
	fmt.Fprintf(&b, "\nAvailable languages: %s\n", strings.Join(reg.Languages(), ", "))
	return b.String()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
