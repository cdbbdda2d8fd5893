package initcmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/hay-kot/polish/internal/core/doctor"
	"github.com/hay-kot/polish/internal/core/rules"
	"github.com/hay-kot/polish/internal/core/styles"
	"github.com/hay-kot/polish/internal/provider"
)

// WizardOptions configures the wizard behavior.
type WizardOptions struct {
	ConfigPath string
	DataDir    string
	Yes        bool // skip prompts, use defaults
	Force      bool // overwrite existing config
	Defaults   ConfigOptions
	Out        io.Writer
}

// Wizard orchestrates the init process.
type Wizard struct {
	opts WizardOptions
}

// NewWizard creates a new init wizard.
func NewWizard(opts WizardOptions) *Wizard {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Wizard{opts: opts}
}

// Run executes the wizard.
func (w *Wizard) Run(ctx context.Context) error {
	if ConfigExists(w.opts.ConfigPath) && !w.opts.Force {
		if w.opts.Yes {
			return fmt.Errorf("config exists at %s; use --force to overwrite", w.opts.ConfigPath)
		}

		var overwrite bool
		err := huh.NewConfirm().
			Title("Config file already exists").
			Description(w.opts.ConfigPath + "\nOverwrite? (a backup will be created)").
			Value(&overwrite).
			WithTheme(styles.FormTheme()).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			w.printf("%s\n", styles.MutedStyle.Render("Init cancelled"))
			return nil
		}
	}

	answers := w.opts.Defaults
	if !w.opts.Yes {
		var err error
		answers, err = w.promptUser(answers)
		if err != nil {
			return err
		}
	}

	backupPath, err := BackupConfig(w.opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("backup config: %w", err)
	}
	if backupPath != "" {
		w.success("Backed up config to: %s", backupPath)
	}

	cfg := GenerateConfig(answers)
	if err := WriteConfig(cfg, w.opts.ConfigPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	w.success("Created config: %s", w.opts.ConfigPath)

	cfg.DataDir = w.opts.DataDir
	results := doctor.RunAll(ctx, doctor.Checks(&cfg, w.opts.ConfigPath))

	w.printf("\n")
	for _, result := range results {
		w.printf("%s\n", styles.HeaderStyle.Render(result.Name))
		for _, item := range result.Items {
			icon := styles.SuccessStyle.Render("✔")
			switch item.Status {
			case doctor.StatusWarn:
				icon = styles.WarningStyle.Render("●")
			case doctor.StatusFail:
				icon = styles.ErrorStyle.Render("✘")
			}
			w.printf("  %s %s %s\n", icon, item.Label, styles.MutedStyle.Render(item.Detail))
		}
	}

	w.printNextSteps(cfg.Provider.Kind, cfg.Provider.APIKeyEnv)
	return nil
}

const providerNone = "none"

func (w *Wizard) promptUser(defaults ConfigOptions) (ConfigOptions, error) {
	answers := defaults
	if answers.Language == "" {
		answers.Language = rules.DefaultLanguage
	}
	if answers.Theme == "" {
		answers.Theme = styles.DefaultTheme
	}
	kind := answers.Provider
	if kind == "" {
		kind = providerNone
	}

	kinds := []huh.Option[string]{huh.NewOption("none (local rules only)", providerNone)}
	for _, k := range provider.Kinds {
		kinds = append(kinds, huh.NewOption(k, k))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default language").
				Options(huh.NewOptions(rules.MustBuiltin().Languages()...)...).
				Value(&answers.Language),
			huh.NewSelect[string]().
				Title("Theme").
				Options(huh.NewOptions(styles.ThemeNames()...)...).
				Value(&answers.Theme),
			huh.NewSelect[string]().
				Title("Remote provider").
				Description("Optional model that refines local results").
				Options(kinds...).
				Value(&kind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Model").
				Description("Leave empty for the provider default").
				Value(&answers.Model),
		).WithHideFunc(func() bool { return kind == providerNone }),
	).WithTheme(styles.FormTheme())

	if err := form.Run(); err != nil {
		return ConfigOptions{}, err
	}

	answers.Provider = kind
	if kind == providerNone {
		answers.Provider = ""
		answers.Model = ""
	}
	return answers, nil
}

func (w *Wizard) printNextSteps(providerKind, keyEnv string) {
	w.printf("\n%s\n", styles.HeaderStyle.Render("Next Steps"))

	step := 1
	if providerKind != "" {
		w.printf("  %d. Export %s with your %s API key\n", step, keyEnv, providerKind)
		step++
	}
	w.printf("  %d. Run 'polish check <files>' to check documents\n", step)
	w.printf("  %d. Run 'polish review <file>' to fix issues interactively\n", step+1)
}

func (w *Wizard) success(format string, args ...any) {
	w.printf("%s %s\n", styles.SuccessStyle.Render("✔"), fmt.Sprintf(format, args...))
}

func (w *Wizard) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.opts.Out, format, args...)
}
