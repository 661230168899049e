package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"commuter/internal/domain"
)

// SnapshotFunc flattens the network around the given cells.
type SnapshotFunc func(cells [][2]int) *domain.Snapshot

type Client struct {
	ID    string
	Send  chan []byte
	cells map[string]struct{}
	mu    sync.RWMutex

	sendMu sync.Mutex
	closed bool
}

func NewClient(id string, bufferSize int) *Client {
	return &Client{
		ID:    id,
		Send:  make(chan []byte, bufferSize),
		cells: make(map[string]struct{}),
	}
}

// Deliver queues data without blocking. It reports false when the buffer is
// full or the client is closed.
func (c *Client) Deliver(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) HasCell(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.cells[key]
	return ok
}

func (c *Client) AddCells(keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.cells[k] = struct{}{}
	}
}

func (c *Client) RemoveCells(keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.cells, k)
	}
}

func (c *Client) GetCells() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cells := make([]string, 0, len(c.cells))
	for k := range c.cells {
		cells = append(cells, k)
	}
	return cells
}

type Hub struct {
	mu          sync.RWMutex
	clients     map[*Client]struct{}
	cellClients map[string]map[*Client]struct{}

	reload chan struct{}
	done   bool

	snapshot SnapshotFunc
	logger   *slog.Logger
}

func NewHub(snapshot SnapshotFunc, logger *slog.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]struct{}),
		cellClients: make(map[string]map[*Client]struct{}),
		reload:      make(chan struct{}, 1),
		snapshot:    snapshot,
		logger:      logger.With("component", "hub"),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return

		case <-h.reload:
			h.fanoutSnapshots()
		}
	}
}

// Subscribe adds cells for a registered client. Unknown clients are ignored.
func (h *Hub) Subscribe(client *Client, keys []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	client.AddCells(keys)

	for _, k := range keys {
		if h.cellClients[k] == nil {
			h.cellClients[k] = make(map[*Client]struct{})
		}
		h.cellClients[k][client] = struct{}{}
	}
}

func (h *Hub) Unsubscribe(client *Client, keys []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.RemoveCells(keys)

	for _, k := range keys {
		if h.cellClients[k] != nil {
			delete(h.cellClients[k], client)
			if len(h.cellClients[k]) == 0 {
				delete(h.cellClients, k)
			}
		}
	}
}

// NotifyReload schedules a fresh snapshot for every subscribed client.
// Reloads arriving while one is pending collapse into it.
func (h *Hub) NotifyReload() {
	select {
	case h.reload <- struct{}{}:
	default:
	}
}

// Register adds client. After shutdown the client is closed right away.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done {
		client.close()
		return
	}
	h.clients[client] = struct{}{}
	h.logger.Debug("client registered", "client_id", client.ID, "total", len(h.clients))
}

// Unregister drops client and its subscriptions and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeClient(client)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SubscribedCells is the number of cells with at least one subscriber.
func (h *Hub) SubscribedCells() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.cellClients)
}

type SnapshotMessage struct {
	Type    string           `json:"type"`
	Payload *domain.Snapshot `json:"payload"`
}

// BuildSnapshotMessage encodes the snapshot of the given cell keys.
// Keys that do not parse are ignored.
func (h *Hub) BuildSnapshotMessage(keys []string) ([]byte, error) {
	cells := make([][2]int, 0, len(keys))
	for _, k := range keys {
		if x, y, ok := ParseCellKey(k); ok {
			cells = append(cells, [2]int{x, y})
		}
	}
	return json.Marshal(SnapshotMessage{
		Type:    "snapshot",
		Payload: h.snapshot(cells),
	})
}

func (h *Hub) fanoutSnapshots() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for client := range h.clients {
		keys := client.GetCells()
		if len(keys) == 0 {
			continue
		}
		data, err := h.BuildSnapshotMessage(keys)
		if err != nil {
			h.logger.Error("failed to encode snapshot", "client_id", client.ID, "error", err)
			continue
		}

		if client.Deliver(data) {
			sent++
		} else {
			h.logger.Debug("client send buffer full", "client_id", client.ID)
		}
	}
	h.logger.Debug("reload snapshots sent", "clients", sent)
}

// removeClient requires h.mu held for writing.
func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}

	for _, k := range client.GetCells() {
		if h.cellClients[k] != nil {
			delete(h.cellClients[k], client)
			if len(h.cellClients[k]) == 0 {
				delete(h.cellClients, k)
			}
		}
	}

	delete(h.clients, client)
	client.close()
	h.logger.Debug("client unregistered", "client_id", client.ID, "total", len(h.clients))
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.done = true
	for client := range h.clients {
		client.close()
	}
	h.clients = make(map[*Client]struct{})
	h.cellClients = make(map[string]map[*Client]struct{})
}
