package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// scriptTemplates are the starting points offered by `new`. %[1]s is the
// widget name.
var scriptTemplates = map[string]string{
	"clock": `function init(name) {}

function update(ctx) {
	const d = new Date(ctx.now);
	return {type: "SetBigText", name: "%[1]s", text: d.toTimeString().slice(0, 8), fg: "cyan"};
}
`,
	"chart": `const data = [];

function init(name) {}

function update(ctx) {
	data.push(Math.random() * 100);
	if (data.length > 64) data.shift();
	return {type: "SetChart", name: "%[1]s", data: data, max: 100, fg: "green"};
}
`,
	"fetch": `function init(name) {}

function update(ctx) {
	if (ctx.tick %% 30 !== 1) return [];
	const body = sys.fetch("GET", "https://example.com/");
	return {type: "SetText", name: "%[1]s", text: body.length + " bytes"};
}
`,
	"background": `// Runs once at startup and is never restarted by reload.
let n = 0;
while (true) {
	sys.send({type: "SetText", name: "%[1]s", text: "beat " + n++, align: "center"});
	sys.sleep(5000);
}
`,
}

var (
	newTemplate string
	newForce    bool
)

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVarP(&newTemplate, "template", "t", "", "clock, chart, fetch or background (prompts when empty)")
	newCmd.Flags().BoolVarP(&newForce, "force", "f", false, "overwrite an existing script")
}

var newCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Scaffold a dashboard script",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveSettings(cmd)
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		tpl := newTemplate
		if name == "" || tpl == "" {
			if err := runNewForm(&name, &tpl); err != nil {
				return err
			}
		}
		path, err := writeScript(s.Scripts, s.BackgroundPrefix, name, tpl, newForce)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n✓ created %s\n\n", path)
		return nil
	},
}

func validScriptName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("name is required")
	}
	if strings.ContainsAny(s, `/\ `) {
		return errors.New("name must not contain spaces or path separators")
	}
	return nil
}

func runNewForm(name, tpl *string) error {
	green := lipgloss.Color("#4d9375")
	theme := huh.ThemeCharm()
	theme.FieldSeparator = lipgloss.NewStyle()
	theme.Focused.Title = theme.Focused.Title.Foreground(green).Bold(true)
	theme.Focused.SelectedOption = lipgloss.NewStyle().Foreground(green)

	if *tpl == "" {
		*tpl = "clock"
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Script file stem and widget name").
				Value(name).
				Validate(validScriptName),
			huh.NewSelect[string]().
				Title("Template").
				Options(
					huh.NewOption("Big clock", "clock"),
					huh.NewOption("Random chart", "chart"),
					huh.NewOption("HTTP fetch", "fetch"),
					huh.NewOption("Background loop", "background"),
				).
				Value(tpl),
		),
	).WithTheme(theme).WithWidth(60)
	return form.Run()
}

// writeScript renders template tpl into <dir>/<name>.js. Background scripts
// get the background prefix when the name lacks it.
func writeScript(dir, bgPrefix, name, tpl string, force bool) (string, error) {
	name = strings.TrimSpace(name)
	if err := validScriptName(name); err != nil {
		return "", err
	}
	body, ok := scriptTemplates[tpl]
	if !ok {
		return "", fmt.Errorf("unknown template %q", tpl)
	}
	widget := name
	if tpl == "background" && !strings.HasPrefix(name, bgPrefix) {
		name = bgPrefix + name
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+".js")
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force)", path)
	}
	if err := os.WriteFile(path, []byte(fmt.Sprintf(body, widget)), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
