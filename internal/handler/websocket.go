package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"commuter/internal/domain"
	"commuter/internal/hub"
)

// maxSubscribeCells caps the cells a single subscribe message may add.
const maxSubscribeCells = 4096

type WSHandler struct {
	hub            *hub.Hub
	originPatterns []string
	logger         *slog.Logger
}

func NewWSHandler(h *hub.Hub, allowedOrigins []string, logger *slog.Logger) *WSHandler {
	patterns := allowedOrigins
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}
	return &WSHandler{hub: h, originPatterns: patterns, logger: logger.With("component", "ws_handler")}
}

type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscribePayload selects cells explicitly, by rectangle, or as the 3x3
// block around a point. All given selectors are combined.
type SubscribePayload struct {
	Cells []string     `json:"cells"`
	Rect  *domain.Rect `json:"rect,omitempty"`
	Near  *[2]float64  `json:"near,omitempty"`
}

func (p SubscribePayload) keys() []string {
	seen := make(map[string]struct{})
	var keys []string
	add := func(k string) {
		if len(keys) >= maxSubscribeCells {
			return
		}
		if _, _, ok := hub.ParseCellKey(k); !ok {
			return
		}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	for _, k := range p.Cells {
		add(k)
	}
	if p.Rect != nil {
		for _, k := range hub.CellsInRect(p.Rect.MinX, p.Rect.MinY, p.Rect.Width, p.Rect.Height, maxSubscribeCells) {
			add(k)
		}
	}
	if p.Near != nil {
		x, y := int(math.Floor(p.Near[0])), int(math.Floor(p.Near[1]))
		for _, k := range hub.AdjacentCells(x, y) {
			add(k)
		}
	}
	return keys
}

type UnsubscribePayload struct {
	Cells []string `json:"cells"`
}

type PongMessage struct {
	Type string `json:"type"`
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}

	client := hub.NewClient(uuid.NewString(), 256)
	h.hub.Register(client)
	ServerStats.IncWSConnections()
	defer ServerStats.DecWSConnections()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.writeLoop(ctx, conn, client)

	h.readLoop(ctx, conn, client)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *hub.Client) {
	defer func() {
		h.hub.Unregister(client)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				h.logger.Debug("websocket read error", "client_id", client.ID, "error", err)
			}
			return
		}

		if msgType != websocket.MessageText {
			continue
		}
		ServerStats.IncWSMessagesIn()

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("invalid message format", "client_id", client.ID, "error", err)
			continue
		}

		switch msg.Type {
		case "subscribe":
			var payload SubscribePayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				continue
			}
			if keys := payload.keys(); len(keys) > 0 {
				h.hub.Subscribe(client, keys)
				h.sendSnapshot(client, keys)
			}

		case "unsubscribe":
			var payload UnsubscribePayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				continue
			}
			if len(payload.Cells) > 0 {
				h.hub.Unsubscribe(client, payload.Cells)
			}

		case "ping":
			h.sendPong(client)
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *hub.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
			ServerStats.IncWSMessagesOut()

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) sendSnapshot(client *hub.Client, keys []string) {
	data, err := h.hub.BuildSnapshotMessage(keys)
	if err != nil {
		h.logger.Error("failed to encode snapshot", "client_id", client.ID, "error", err)
		return
	}

	if !client.Deliver(data) {
		h.logger.Debug("failed to send snapshot", "client_id", client.ID)
	}
}

func (h *WSHandler) sendPong(client *hub.Client) {
	data, err := json.Marshal(PongMessage{Type: "pong"})
	if err != nil {
		return
	}

	client.Deliver(data)
}
