package commands

import (
	"context"
	"fmt"

	"github.com/hay-kot/polish/internal/polish"
	"github.com/urfave/cli/v3"
)

// LanguageCompleter returns a ShellCompleteFunc that suggests the languages
// with a rule table as positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func LanguageCompleter(app *polish.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if app.Rules == nil {
			return
		}

		w := cmd.Root().Writer
		for _, lang := range app.Rules.Languages() {
			_, _ = fmt.Fprintln(w, lang)
		}
	}
}
