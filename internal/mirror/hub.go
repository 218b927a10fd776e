package mirror

import (
	"sync"

	"r2dash/internal/frame"
)

const DefaultQueue = 64

// Client is one subscriber. Its channel is closed when the hub drops it.
type Client struct {
	out chan []byte
}

// Messages yields encoded messages in send order.
func (c *Client) Messages() <-chan []byte { return c.out }

// WidgetInfo describes one widget for the HTTP API.
type WidgetInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Hub holds the baseline frame and fans patches out to clients. Broadcasts
// never block: a client whose queue is full is dropped.
type Hub struct {
	queue int

	mu       sync.Mutex
	baseline *frame.Buffer
	clients  map[*Client]struct{}
	index    []WidgetInfo
}

// NewHub returns a hub whose clients buffer up to queue messages.
func NewHub(queue int) *Hub {
	if queue < 2 {
		queue = DefaultQueue
	}
	return &Hub{
		queue:    queue,
		baseline: frame.New(0, 0),
		clients:  map[*Client]struct{}{},
	}
}

func (h *Hub) size() Size {
	return Size{Rows: h.baseline.Height(), Cols: h.baseline.Width()}
}

// Subscribe registers a client primed with the current size and a full dump
// of the baseline.
func (h *Hub) Subscribe() *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := &Client{out: make(chan []byte, h.queue)}
	c.out <- EncodeSize(h.size())
	c.out <- Encode(OpFull, frame.FullDump(h.baseline))
	h.clients[c] = struct{}{}
	return c
}

// Unsubscribe drops c. It is safe to call more than once.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.out)
}

func (h *Hub) broadcast(msgs ...[]byte) {
	for c := range h.clients {
		for _, m := range msgs {
			select {
			case c.out <- m:
				continue
			default:
			}
			h.drop(c)
			break
		}
	}
}

// Publish makes buf the new baseline. Clients receive the patch from the old
// baseline, or a size message and full dump when the dimensions changed.
func (h *Hub) Publish(buf *frame.Buffer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if buf.Width() != h.baseline.Width() || buf.Height() != h.baseline.Height() {
		h.baseline = buf.Clone()
		h.broadcast(EncodeSize(h.size()), Encode(OpFull, frame.FullDump(buf)))
		return
	}
	patch := frame.Diff(h.baseline, buf)
	if len(patch) == 0 {
		return
	}
	h.baseline = buf.Clone()
	h.broadcast(Encode(OpPatch, patch))
}

// Resync sends every client a full dump of the baseline, so a reload repaints
// mirrors even where no cell changed.
func (h *Hub) Resync() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcast(Encode(OpFull, frame.FullDump(h.baseline)))
}

// Baseline returns a copy of the last published frame.
func (h *Hub) Baseline() *frame.Buffer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.baseline.Clone()
}

// Clients reports the number of subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// SetIndex replaces the widget list served by the API.
func (h *Hub) SetIndex(ws []WidgetInfo) {
	h.mu.Lock()
	h.index = ws
	h.mu.Unlock()
}

func (h *Hub) Index() []WidgetInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]WidgetInfo{}, h.index...)
}
