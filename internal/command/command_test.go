package command

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"r2dash/internal/frame"
)

func TestDecodeVariants(t *testing.T) {
	c, err := Decode([]byte(`{"type":"SetText","name":"clock","text":"12:00","align":"center"}`))
	require.NoError(t, err)
	assert.Equal(t, SetText{Name: "clock", Text: "12:00", Align: AlignCenter}, c)

	c, err = Decode([]byte(`{"type":"SetColorText","name":"w","text":"hi","fg":"red","bg":"#000010","style":["bold"]}`))
	require.NoError(t, err)
	assert.Equal(t, SetColorText{
		Name:  "w",
		Text:  "hi",
		Style: frame.Style{Fg: frame.Indexed(1), Bg: frame.RGB(0, 0, 16), Mods: frame.Bold},
	}, c)

	c, err = Decode([]byte(`{"type":"SetChart","name":"cpu","data":[1,2.5,3]}`))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 3}, c.(SetChart).Data)

	c, err = Decode([]byte(`{"type":"TodoAdd","text":"ship","author":"ops","deadline":1700000000000}`))
	require.NoError(t, err)
	assert.Equal(t, TodoAdd{Text: "ship", Author: "ops", Deadline: 1700000000000}, c)

	for _, kind := range []string{"Reload", "Exit"} {
		c, err = Decode([]byte(`{"type":"` + kind + `"}`))
		require.NoError(t, err)
		assert.Equal(t, kind, c.Kind())
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	bad := []string{
		`not json`,
		`{}`,
		`{"type":"Explode"}`,
		`{"type":"SetText","text":"no name"}`,
		`{"type":"SetText","name":"w","align":"diagonal"}`,
		`{"type":"SetColorText","name":"w","fg":"mauve"}`,
		`{"type":"SetColorText","name":"w","style":["sparkle"]}`,
		`{"type":"SetChart","name":"w","max":-1}`,
		`{"type":"SetImage","name":"w"}`,
		`{"type":"SetImage","name":"w","base64":"!!"}`,
		`{"type":"TodoAdd"}`,
		`{"type":"TodoComplete","text":"  "}`,
	}
	for _, in := range bad {
		_, err := Decode([]byte(in))
		assert.ErrorIs(t, err, ErrMalformed, in)
	}
}

func TestDecodeImageBase64(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	raw := `{"type":"SetImage","name":"pic","base64":"` + base64.StdEncoding.EncodeToString(buf.Bytes()) + `"}`
	c, err := Decode([]byte(raw))
	require.NoError(t, err)
	got := c.(SetImage).Image
	assert.Equal(t, image.Rect(0, 0, 2, 2), got.Bounds())
	r, _, _, _ := got.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestDecodeImageRejectsHugeDimensions(t *testing.T) {
	data := encodePNG(t, 1, 1)
	// IHDR width and height follow the signature and chunk header.
	binary.BigEndian.PutUint32(data[16:], 60000)
	binary.BigEndian.PutUint32(data[20:], 60000)
	binary.BigEndian.PutUint32(data[29:], crc32.ChecksumIEEE(data[12:29]))

	raw := `{"type":"SetImage","name":"pic","base64":"` + base64.StdEncoding.EncodeToString(data) + `"}`
	_, err := Decode([]byte(raw))
	require.ErrorIs(t, err, ErrMalformed)
	assert.ErrorContains(t, err, "60000x60000")
}

func TestDecodeImagePathMustBeLocal(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("pic.png", encodePNG(t, 3, 2), 0o644))

	c, err := Decode([]byte(`{"type":"SetImage","name":"pic","path":"pic.png"}`))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), c.(SetImage).Image.Bounds())

	for _, p := range []string{filepath.Join(dir, "pic.png"), "../pic.png", "a/../../pic.png"} {
		raw, _ := json.Marshal(map[string]string{"type": "SetImage", "name": "pic", "path": p})
		_, err := Decode(raw)
		assert.ErrorIs(t, err, ErrMalformed, p)
		assert.ErrorContains(t, err, "not local", p)
	}
}

func TestFromValueList(t *testing.T) {
	v := []any{
		map[string]any{"type": "SetText", "name": "a", "text": "1"},
		map[string]any{"type": "Bogus"},
		map[string]any{"type": "Clear", "name": "b"},
	}
	cmds, err := FromValue(v)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Equal(t, []Command{SetText{Name: "a", Text: "1"}, Clear{Name: "b"}}, cmds)

	cmds, err = FromValue(nil)
	assert.NoError(t, err)
	assert.Empty(t, cmds)
}

func TestTarget(t *testing.T) {
	assert.Equal(t, "w", Target(SetBigText{Name: "w"}))
	assert.Equal(t, "", Target(TodoAdd{Text: "x"}))
}

func TestSchemaListsKinds(t *testing.T) {
	s := Schema()
	require.NotNil(t, s.Properties)
	typ, ok := s.Properties.Get("type")
	require.True(t, ok)
	assert.Len(t, typ.Enum, len(Kinds))
	assert.Contains(t, s.Required, "type")
}

func TestBusFIFOPerProducer(t *testing.T) {
	bus := NewBus()
	const producers, each = 4, 200
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			send := bus.Sender(string(rune('a'+p)), false)
			for i := 0; i < each; i++ {
				send(SetChart{Name: "n", Max: float64(i)})
			}
		}(p)
	}
	wg.Wait()

	got := bus.TryDrain()
	require.Len(t, got, producers*each)
	last := map[string]float64{}
	for _, e := range got {
		m := e.Command.(SetChart).Max
		if prev, ok := last[e.Origin]; ok {
			assert.Greater(t, m, prev)
		}
		last[e.Origin] = m
	}
	assert.Zero(t, bus.Len())
}

func TestBusDrainWaitsBriefly(t *testing.T) {
	bus := NewBus()
	start := time.Now()
	assert.Empty(t, bus.Drain(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	go func() {
		time.Sleep(5 * time.Millisecond)
		bus.Send(Envelope{Origin: "x", Command: Exit{}})
	}()
	got := bus.Drain(context.Background(), time.Second)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Origin)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Nil(t, bus.Drain(ctx, time.Second))
}
