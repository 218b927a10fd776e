package mirror

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/vt"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"r2dash/internal/frame"
)

func newTestServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	s := &Server{Hub: h, Log: clog.New(io.Discard)}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) (Opcode, []byte) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	mt, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, mt)
	op, payload, err := Decode(msg)
	require.NoError(t, err)
	return op, payload
}

func TestClientBootstrapOrder(t *testing.T) {
	h := NewHub(16)
	base := frame.New(12, 3)
	base.SetString(0, 0, "dashboard", frame.Style{Fg: frame.Indexed(2), Mods: frame.Bold}, 12)
	base.SetString(0, 2, "ok", frame.Style{}, 12)
	h.Publish(base)

	srv := newTestServer(t, h)
	conn := dial(t, srv)

	op, payload := read(t, conn)
	require.Equal(t, OpSize, op)
	size, err := DecodeSize(payload)
	require.NoError(t, err)
	assert.Equal(t, Size{Rows: 3, Cols: 12}, size)

	op, payload = read(t, conn)
	require.Equal(t, OpFull, op)
	emu := vt.NewEmulator(size.Cols, size.Rows)
	_, err = emu.Write(payload)
	require.NoError(t, err)
	screen := xansi.Strip(emu.Render())
	assert.Contains(t, screen, "dashboard")
	assert.Contains(t, screen, "ok")

	// the client is registered once the bootstrap is on the wire
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 10*time.Millisecond)
	next := base.Clone()
	next.SetString(0, 1, "tick", frame.Style{}, 12)
	h.Publish(next)

	op, payload = read(t, conn)
	require.Equal(t, OpPatch, op)
	_, err = emu.Write(payload)
	require.NoError(t, err)
	assert.Contains(t, xansi.Strip(emu.Render()), "tick")
}

func TestClientDisconnectUnsubscribes(t *testing.T) {
	h := NewHub(16)
	srv := newTestServer(t, h)
	conn := dial(t, srv)
	read(t, conn)
	read(t, conn)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 10*time.Millisecond)

	// inbound messages are accepted and ignored
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hello")))
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return h.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestAPI(t *testing.T) {
	h := NewHub(4)
	h.SetIndex([]WidgetInfo{{Name: "clock", Kind: "text"}})
	srv := newTestServer(t, h)

	resp, err := http.Get(srv.URL + "/api/widgets")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ws []WidgetInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ws))
	assert.Equal(t, []WidgetInfo{{Name: "clock", Kind: "text"}}, ws)

	resp, err = http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "/ws")
}

func TestListenReportsBindFailure(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, err = Listen(ln.Addr().String())
	assert.ErrorContains(t, err, "bind mirror endpoint")
}
