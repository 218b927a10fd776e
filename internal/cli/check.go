package cli

import (
    "encoding/json"
    "fmt"
    "io"
    "strings"

    "github.com/charmbracelet/glamour"
    "github.com/sahilm/fuzzy"
    "github.com/spf13/cobra"

    "r2dash/internal/script"
)

type checkItem struct {
    Name   string `json:"name"`
    Kind   string `json:"kind"`
    Status string `json:"status"`
    Error  string `json:"error,omitempty"`
}

type checkReport struct {
    Dir    string      `json:"dir"`
    Items  []checkItem `json:"items"`
    Failed int         `json:"failed"`
}

var (
    checkJSON bool
)

func init() {
    rootCmd.AddCommand(checkCmd)
    checkCmd.Flags().BoolVar(&checkJSON, "json", false, "output JSON report")
}

var checkCmd = &cobra.Command{
    Use:   "check [filter...]",
    Short: "Compile and initialize scripts without starting the dashboard",
    Long: "check loads every script the dashboard would load, runs init on foreground\n" +
        "scripts and reports which ones fail. Filters fuzzy-match script names.",
    RunE: func(cmd *cobra.Command, args []string) error {
        s, err := resolveSettings(cmd)
        if err != nil {
            return err
        }
        sources, err := script.DirLoader{Dir: s.Scripts}.Load()
        if err != nil {
            return fmt.Errorf("discover scripts: %w", err)
        }
        sources = filterSources(sources, args)
        infos := script.Check(cmd.Context(), script.NewGoja(), sources, s.BackgroundPrefix)
        rep := buildCheckReport(s.Scripts, infos)

        out := cmd.OutOrStdout()
        if checkJSON {
            // pretty JSON to stdout
            enc := json.NewEncoder(out)
            enc.SetIndent("", "  ")
            if err := enc.Encode(rep); err != nil {
                return err
            }
        } else if err := printCheckReport(out, rep); err != nil {
            return err
        }

        if rep.Failed > 0 {
            // non-zero when any script fails
            return fmt.Errorf("check failed: %d script(s)", rep.Failed)
        }
        return nil
    },
}

// filterSources keeps sources whose name fuzzy-matches any pattern. No
// patterns keeps everything.
func filterSources(srcs []script.Source, patterns []string) []script.Source {
    if len(patterns) == 0 {
        return srcs
    }
    names := make([]string, len(srcs))
    for i, s := range srcs {
        names[i] = s.Name
    }
    keep := make([]bool, len(srcs))
    for _, p := range patterns {
        for _, m := range fuzzy.Find(p, names) {
            keep[m.Index] = true
        }
    }
    var out []script.Source
    for i, s := range srcs {
        if keep[i] {
            out = append(out, s)
        }
    }
    return out
}

func buildCheckReport(dir string, infos []script.ModuleInfo) checkReport {
    rep := checkReport{Dir: dir, Items: make([]checkItem, 0, len(infos))}
    for _, mi := range infos {
        it := checkItem{Name: mi.Name, Kind: mi.Kind.String(), Status: mi.Status.String()}
        if mi.Err != nil {
            it.Error = mi.Err.Error()
        }
        if mi.Status == script.Failed {
            rep.Failed++
        }
        rep.Items = append(rep.Items, it)
    }
    return rep
}

// checkMarkdown renders the report as a markdown table.
func checkMarkdown(rep checkReport) string {
    var b strings.Builder
    fmt.Fprintf(&b, "# Scripts in `%s`\n\n", rep.Dir)
    if len(rep.Items) == 0 {
        b.WriteString("No scripts found.\n")
        return b.String()
    }
    b.WriteString("| Script | Kind | Status | Error |\n|---|---|---|---|\n")
    for _, it := range rep.Items {
        status := it.Status
        if it.Status == script.Failed.String() {
            status = "**" + status + "**"
        }
        fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", it.Name, it.Kind, status, cell(it.Error))
    }
    fmt.Fprintf(&b, "\n%d script(s), %d failed\n", len(rep.Items), rep.Failed)
    return b.String()
}

// cell flattens text for a table cell.
func cell(s string) string {
    s = strings.ReplaceAll(s, "\n", " ")
    return strings.ReplaceAll(s, "|", `\|`)
}

func printCheckReport(w io.Writer, rep checkReport) error {
    md := checkMarkdown(rep)
    r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
    if err == nil {
        if out, rerr := r.Render(md); rerr == nil {
            md = out
        }
    }
    _, err = io.WriteString(w, md)
    return err
}
