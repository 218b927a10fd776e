package script

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"r2dash/internal/command"
)

type recorder struct {
	sent     []command.Command
	printed  []string
	rejected []error
}

func (r *recorder) caps(name string) Capabilities {
	return Capabilities{
		Name:   name,
		Send:   func(c command.Command) { r.sent = append(r.sent, c) },
		Fetch:  HTTPFetch,
		Print:  func(s string) { r.printed = append(r.printed, s) },
		Reject: func(err error) { r.rejected = append(r.rejected, err) },
	}
}

func compile(t *testing.T, code string, caps Capabilities) Module {
	t.Helper()
	m, err := NewGoja().Compile(Source{Name: caps.Name, Code: code}, caps)
	require.NoError(t, err)
	require.NoError(t, m.Run(context.Background()))
	return m
}

func TestSysSendAndPrint(t *testing.T) {
	var rec recorder
	m := compile(t, `
function update() {
	sys.print("hello", 42);
	console.log("from", sys.name);
	sys.send({type: "SetText", name: "a", text: "x"}, {type: "Nope"});
	sys.send([{type: "Clear", name: "b"}]);
}
`, rec.caps("demo"))

	_, err := m.Call(context.Background(), "update")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello 42", "from demo"}, rec.printed)
	assert.Equal(t, []command.Command{command.SetText{Name: "a", Text: "x"}, command.Clear{Name: "b"}}, rec.sent)
	require.Len(t, rec.rejected, 1)
	assert.ErrorIs(t, rec.rejected[0], command.ErrMalformed)
}

func TestSysFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			http.Error(w, "bad", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "pong")
	}))
	defer srv.Close()

	var rec recorder
	m := compile(t, `
function get(url) { return sys.fetch("GET", url); }
function post(url) {
	try { sys.fetch("POST", url); return "no error"; } catch (e) { return "caught: " + e.message; }
}
`, rec.caps("net"))

	got, err := m.Call(context.Background(), "get", srv.URL+"/ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", got)

	got, err = m.Call(context.Background(), "post", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, got, "method incorrect")

	_, err = m.Call(context.Background(), "get", srv.URL+"/fail")
	assert.ErrorContains(t, err, "500")
}

func TestCallMissingEntrypoint(t *testing.T) {
	var rec recorder
	m := compile(t, `var x = 1;`, rec.caps("m"))
	assert.False(t, m.Has("update"))
	_, err := m.Call(context.Background(), "update")
	assert.ErrorIs(t, err, ErrNoEntrypoint)
}

func TestCallExportsResult(t *testing.T) {
	var rec recorder
	m := compile(t, `function f(a) { return {sum: a.x + 1, list: [1, "two"]}; }`, rec.caps("m"))
	got, err := m.Call(context.Background(), "f", map[string]any{"x": 2})
	require.NoError(t, err)
	obj := got.(map[string]any)
	assert.EqualValues(t, 3, obj["sum"])
	assert.Len(t, obj["list"], 2)
}

func TestSleepHonoursCancellation(t *testing.T) {
	var rec recorder
	m := compile(t, `function wait() { sys.sleep(10000); }`, rec.caps("m"))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := m.Call(ctx, "wait")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestCompileError(t *testing.T) {
	_, err := NewGoja().Compile(Source{Name: "bad", Code: "function ("}, Capabilities{})
	assert.ErrorContains(t, err, "compile bad")
}

func TestHTTPFetchRejectsMethods(t *testing.T) {
	_, err := HTTPFetch(context.Background(), "DELETE", "http://127.0.0.1:1")
	assert.ErrorContains(t, err, "method incorrect")
}

func TestDirLoader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scripts")
	srcs, err := DirLoader{Dir: dir}.Load()
	require.NoError(t, err)
	assert.Empty(t, srcs)
	assert.DirExists(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.js"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.js"), 0o755))

	srcs, err = DirLoader{Dir: dir}.Load()
	require.NoError(t, err)
	assert.Equal(t, []Source{{Name: "a", Code: "a"}, {Name: "b", Code: "b"}}, srcs)
}

func TestWatchDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := Watch(ctx, dir, ".js", 30*time.Millisecond)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "x.js"), []byte(fmt.Sprint(i)), 0o644))
	}
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			_, ok = <-ch
		}
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("watch channel not closed")
	}
}
