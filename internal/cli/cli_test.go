package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"r2dash/internal/script"
	"r2dash/internal/testutil"
	appver "r2dash/internal/version"
)

func TestFilterSourcesFuzzy(t *testing.T) {
	srcs := []script.Source{{Name: "clock"}, {Name: "bg_weather"}, {Name: "cpu_chart"}}
	names := func(ss []script.Source) []string {
		var out []string
		for _, s := range ss {
			out = append(out, s.Name)
		}
		return out
	}
	assert.Equal(t, []string{"clock", "bg_weather", "cpu_chart"}, names(filterSources(srcs, nil)))
	assert.Equal(t, []string{"cpu_chart"}, names(filterSources(srcs, []string{"cpch"})))
	assert.Equal(t, []string{"clock", "bg_weather"}, names(filterSources(srcs, []string{"wthr", "clk"})))
	assert.Empty(t, filterSources(srcs, []string{"zzz"}))
}

func TestCheckReportMarkdown(t *testing.T) {
	rep := buildCheckReport("scripts", []script.ModuleInfo{
		{Name: "clock", Kind: script.Foreground, Status: script.Ready},
		{Name: "bad", Kind: script.Foreground, Status: script.Failed, Err: errors.New("a | b\nline")},
	})
	assert.Equal(t, 1, rep.Failed)
	md := checkMarkdown(rep)
	assert.Contains(t, md, "| clock | foreground | ready |  |")
	assert.Contains(t, md, `| bad | foreground | **failed** | a \| b line |`)
	assert.Contains(t, md, "2 script(s), 1 failed")

	assert.Contains(t, checkMarkdown(checkReport{Dir: "x"}), "No scripts found.")
}

func TestWriteScriptTemplatesLoad(t *testing.T) {
	dir := t.TempDir()
	for _, tpl := range []string{"clock", "chart", "fetch", "background"} {
		_, err := writeScript(dir, "bg_", tpl+"w", tpl, false)
		require.NoError(t, err, tpl)
	}
	assert.FileExists(t, filepath.Join(dir, "bg_backgroundw.js"))

	_, err := writeScript(dir, "bg_", "clockw", "clock", false)
	assert.ErrorContains(t, err, "already exists")
	_, err = writeScript(dir, "bg_", "clockw", "clock", true)
	assert.NoError(t, err)
	_, err = writeScript(dir, "bg_", "a/b", "clock", false)
	assert.Error(t, err)
	_, err = writeScript(dir, "bg_", "x", "nope", false)
	assert.ErrorContains(t, err, "unknown template")

	srcs, err := script.DirLoader{Dir: dir}.Load()
	require.NoError(t, err)
	require.Len(t, srcs, 4)
	for _, mi := range script.Check(context.Background(), script.NewGoja(), srcs, "bg_") {
		assert.Equal(t, script.Ready, mi.Status, "%s: %v", mi.Name, mi.Err)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSchemaCommand(t *testing.T) {
	out, err := run(t, "schema")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "r2dash command", doc["title"])
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, appver.AppVersion+"\n", out)

	t.Cleanup(func() { versionJSON = false })
	out, err = run(t, "version", "--json")
	require.NoError(t, err)
	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, appver.AppVersion, info.Version)
	assert.Equal(t, runtime.Version(), info.Go)
	assert.Equal(t, []string{"patch", "full", "size"}, info.Opcodes)
}

func TestCheckCommandJSON(t *testing.T) {
	testutil.TempConfigHome(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.js"), []byte("function init(n) {}\nfunction update(c) {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.js"), []byte("function init( {"), 0o644))
	t.Cleanup(func() { checkJSON = false })

	out, err := run(t, "check", "--json", "--scripts", dir)
	assert.ErrorContains(t, err, "check failed: 1 script(s)")

	var rep checkReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Items, 2)
	assert.Equal(t, "broken", rep.Items[0].Name)
	assert.Equal(t, "failed", rep.Items[0].Status)
	assert.Equal(t, "ok", rep.Items[1].Status)
}

func TestResolveSettingsFlagsOverrideFile(t *testing.T) {
	testutil.TempConfigHome(t)
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("addr: 0.0.0.0:9999\nscripts: from-file\n"), 0o644))

	require.NoError(t, rootCmd.ParseFlags([]string{"--config", p, "--scripts", "from-flag"}))
	t.Cleanup(func() {
		flagConfig = ""
		_ = rootCmd.PersistentFlags().Set("scripts", "scripts")
		rootCmd.PersistentFlags().Lookup("scripts").Changed = false
	})
	s, err := resolveSettings(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", s.Addr)
	assert.Equal(t, "from-flag", s.Scripts)
}
